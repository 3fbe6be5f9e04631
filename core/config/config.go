package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// Admins lists Telegram usernames (without '@') allowed to use admin actions.
	Admins  []string `yaml:"admins" envconfig:"ADMIN_USERNAMES"`
	RunMode string   `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// SenderConfig tunes the asynchronous outbound dispatcher.
// Zero values fall back to dispatcher defaults; retries stay disabled unless set.
type SenderConfig struct {
	QueueSize      int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers        int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries     int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoffMS int `yaml:"retry_backoff_ms" envconfig:"SENDER_RETRY_BACKOFF_MS"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sender   SenderConfig   `yaml:"sender"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := ReadInto(path, cfg); err != nil {
		return nil, err
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadInto decodes the YAML file at path into dst, then lets environment
// variables override it. dst may be any struct embedding Config.
func ReadInto(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("config: env overrides: %w", err)
	}
	return nil
}

// Normalize validates cfg and fills defaults. Every section is checked and
// all problems are reported together.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	return errors.Join(
		cfg.Telegram.normalize(),
		cfg.Webhook.validate(cfg.Telegram.RunMode),
		cfg.Sender.validate(),
	)
}

func (t *TelegramConfig) normalize() error {
	var errs []error
	if strings.TrimSpace(t.Token) == "" {
		errs = append(errs, errors.New("telegram token is required"))
	}
	if t.Admins = NormalizeUsernames(t.Admins); len(t.Admins) == 0 {
		errs = append(errs, errors.New("telegram.admins must list at least one username"))
	}

	switch mode := strings.ToLower(strings.TrimSpace(t.RunMode)); mode {
	case "", "polling", RunModeLongpoll:
		t.RunMode = RunModeLongpoll
	case RunModeWebhook:
		t.RunMode = RunModeWebhook
	default:
		errs = append(errs, fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", t.RunMode))
	}
	if t.LongPollTimeoutSeconds < 0 {
		errs = append(errs, errors.New("telegram.longpoll_timeout_seconds must be >= 0"))
	}
	return errors.Join(errs...)
}

// validate checks the listener settings; they only matter in webhook mode.
func (w WebhookConfig) validate(runMode string) error {
	if runMode != RunModeWebhook {
		return nil
	}
	var errs []error
	if strings.TrimSpace(w.URL) == "" {
		errs = append(errs, errors.New("webhook.url is required in webhook mode"))
	}
	if strings.TrimSpace(w.Listen) == "" {
		errs = append(errs, errors.New("webhook.listen is required in webhook mode"))
	}
	if w.Port <= 0 {
		errs = append(errs, errors.New("webhook.port must be > 0 in webhook mode"))
	}
	return errors.Join(errs...)
}

func (s SenderConfig) validate() error {
	var errs []error
	if s.MaxRetries < 0 {
		errs = append(errs, errors.New("sender.max_retries must be >= 0"))
	}
	if s.QueueSize < 0 || s.Workers < 0 || s.RetryBackoffMS < 0 {
		errs = append(errs, errors.New("sender.queue_size, sender.workers and sender.retry_backoff_ms must be >= 0"))
	}
	return errors.Join(errs...)
}

// NormalizeUsernames trims entries, drops a single leading '@' and removes
// blanks and duplicates. Case is preserved: usernames are compared verbatim.
func NormalizeUsernames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		name := strings.TrimPrefix(strings.TrimSpace(raw), "@")
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
