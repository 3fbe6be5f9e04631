// Package cmd holds the process entrypoint shared by bot binaries: env files,
// configuration, signal handling, bootstrap and the Telegram runtime.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	coreconfig "github.com/m3rciful/quizbot/core/config"
	"github.com/m3rciful/quizbot/core/logger"
	coretelegram "github.com/m3rciful/quizbot/core/telegram"
)

const defaultConfigEnv = "CONFIG_PATH"

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is the minimal interface required to run a Telegram bot.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string
	// EnvFiles are loaded before configuration; missing files are skipped.
	EnvFiles []string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(ctx context.Context, cfg ConfigCarrier) (TelegramApp, error)

	// ShutdownLogger defaults to logger.Shutdown, RunTelegram to coretelegram.RunTelegram.
	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

// Run loads configuration, bootstraps the app and blocks in the Telegram
// runtime until SIGINT or SIGTERM.
func Run(opts Options) error {
	startedAt := time.Now()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closeLogs := opts.ShutdownLogger
	if closeLogs == nil {
		closeLogs = logger.Shutdown
	}
	defer func() {
		if err := closeLogs(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()

	app, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	addLifecycleLogs(&runOpts, startedAt)

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

func loadConfig(opts Options) (ConfigCarrier, error) {
	switch {
	case opts.LoadConfig == nil:
		return nil, errors.New("cmd: LoadConfig is required")
	case opts.Bootstrap == nil:
		return nil, errors.New("cmd: Bootstrap is required")
	}
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	path := ResolveConfigPath(opts.ConfigEnvVar, opts.DefaultConfigPath)
	if path == "" {
		return nil, errors.New("cmd: config path not provided")
	}
	// structured logging needs the config, so this goes to the std logger
	log.Printf("loading config: %s", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("cmd: load config %s: %w", path, err)
	}
	if cfg == nil || cfg.CoreConfig() == nil {
		return nil, errors.New("cmd: loaded config is missing core configuration")
	}
	return cfg, nil
}

// addLifecycleLogs wraps the app hooks with the ready and shutdown lines.
func addLifecycleLogs(opts *coretelegram.RunOptions, startedAt time.Time) {
	onStart, onStop := opts.OnStart, opts.OnStop

	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready",
			slog.String("status", "ok"),
			slog.Duration("startup_duration", logger.Took(startedAt)),
		)
		return nil
	}
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown", slog.String("status", "ok"))
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}
}

// ResolveConfigPath returns the path from envVar (CONFIG_PATH when empty),
// falling back to def.
func ResolveConfigPath(envVar, def string) string {
	if envVar == "" {
		envVar = defaultConfigEnv
	}
	if p, ok := os.LookupEnv(envVar); ok && p != "" {
		return p
	}
	return def
}

// loadEnvFiles applies dotenv files in order. Variables already set in the
// environment win.
func loadEnvFiles(files []string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		switch {
		case err == nil, errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("cmd: env file %s: %w", f, err)
		}
	}
	return nil
}
