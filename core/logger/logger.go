package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/quizbot/core/buildinfo"
	coreconfig "github.com/m3rciful/quizbot/core/config"
)

var (
	initOnce sync.Once

	closeMu sync.Mutex
	closed  bool
	writer  *lineWriter
	files   []io.Closer

	levelVar slog.LevelVar
	sampler  eventSampler
	trace    bool

	// L is the base logger. It discards output until InitLogger runs.
	L = slog.New(discardHandler{})

	// TG logs Telegram transport events.
	TG = L
	// TWire logs Telegram wiring steps.
	TWire = L
	// Settings logs settings store mutations.
	Settings = L
	// Dialogue logs admin dialogue transitions.
	Dialogue = L
)

func init() {
	sampler.configure(defaultSampleNum, defaultSampleDen)
}

// InitLogger configures the global structured logger. Calls after the first are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		opts := optionsFrom(cfg)
		levelVar.Set(opts.level)
		sampler.configure(opts.sampleNum, opts.sampleDen)
		trace = envFlag("TRACE") || envFlag("LOG_TRACE")

		sinks := []io.Writer{os.Stdout}
		if opts.filePath != "" {
			f, err := openLogFile(opts.filePath)
			if err != nil {
				// stdout keeps working; the structured logger is not up yet
				log.Printf("logger: log file %s unavailable: %v", opts.filePath, err)
			} else {
				sinks = append(sinks, f)
				files = append(files, f)
			}
		}
		writer = newLineWriter(sinks, 64<<10)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			sink:     writer,
			format:   opts.format,
			keyOrder: opts.keyOrder,
		}))
		slog.SetDefault(L)
		TG = Component("tg")
		TWire = Component("tg.wire")
		Settings = Component("settings")
		Dialogue = Component("dialogue")

		attrs := []slog.Attr{
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("build", buildinfo.Short()),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", opts.profile),
		}
		if cfg != nil {
			attrs = append(attrs, slog.Int("admins", len(cfg.Telegram.Admins)))
		}
		L.LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
	})
	return nil
}

// Shutdown flushes buffered log output and closes opened sinks.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if writer != nil {
		errs = append(errs, writer.Sync(), writer.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a debug line for a high-volume event
// should be written. TRACE=1 disables sampling.
func ShouldSampleDebug(event string) bool {
	return trace || sampler.allow(event)
}

// Background returns context.Background(); kept so call sites read uniformly.
func Background() context.Context {
	return context.Background()
}

// LogEvent logs attrs under the given event name using logg, the context
// logger or the base logger, in that order of preference.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns a logger tagged with the component attribute.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// discardHandler drops every record; used before InitLogger and in tests.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
