package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/quizbot/core/config"
	"github.com/m3rciful/quizbot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options[T any] struct {
	Config *coreconfig.Config
	// AppConfig is handed to service providers; defaults to Config.
	AppConfig interface{}
	Storage   Storage
	Modules   Modules[T]

	LoggerInit func(*coreconfig.Config) error
}

// Run initializes the logger, runs seeders against storage in order and
// builds the application services.
func Run[T any](ctx context.Context, opts Options[T]) (T, error) {
	var zero T
	if opts.Config == nil {
		return zero, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.Modules.Services == nil {
		return zero, fmt.Errorf("bootstrap: no service provider")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return zero, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	start := time.Now()
	for i, s := range opts.Modules.Seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx, opts.Storage); err != nil {
			return zero, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
	}
	if n := len(opts.Modules.Seeders); n > 0 {
		logger.Info(ctx, "app", "bootstrap.seeded",
			slog.String("status", "ok"),
			slog.Int("seeders", n),
			slog.Duration("duration", logger.Took(start)),
		)
	}

	appCfg := opts.AppConfig
	if appCfg == nil {
		appCfg = opts.Config
	}
	svc, err := opts.Modules.Services.Provide(ctx, appCfg, opts.Storage)
	if err != nil {
		return zero, fmt.Errorf("bootstrap: services failed: %w", err)
	}
	return svc, nil
}
