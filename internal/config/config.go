// Package config extends the core configuration with quiz bot settings.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/quizbot/core/config"
	"github.com/m3rciful/quizbot/internal/settings"
)

const defaultWelcome = "Ласкаво просимо до бота бронювання участі в квізі! ✅"

// DefaultsConfig overrides the built-in settings values. Empty entries keep the built-in value.
type DefaultsConfig struct {
	PaymentCard        string `yaml:"payment_card" envconfig:"DEFAULT_PAYMENT_CARD"`
	NextGameLink       string `yaml:"next_game_link" envconfig:"DEFAULT_NEXT_GAME_LINK"`
	CalendarLink       string `yaml:"calendar_link" envconfig:"DEFAULT_CALENDAR_LINK"`
	GeneralChatLink    string `yaml:"general_chat_link" envconfig:"DEFAULT_GENERAL_CHAT_LINK"`
	ModeratorLink      string `yaml:"moderator_link" envconfig:"DEFAULT_MODERATOR_LINK"`
	CharityLink        string `yaml:"charity_link" envconfig:"DEFAULT_CHARITY_LINK"`
	CharityDescription string `yaml:"charity_description" envconfig:"DEFAULT_CHARITY_DESCRIPTION"`
}

// Overrides returns the configured values keyed by settings field.
func (d DefaultsConfig) Overrides() map[settings.Field]string {
	return map[settings.Field]string{
		settings.PaymentCard:        strings.TrimSpace(d.PaymentCard),
		settings.NextGameLink:       strings.TrimSpace(d.NextGameLink),
		settings.CalendarLink:       strings.TrimSpace(d.CalendarLink),
		settings.GeneralChatLink:    strings.TrimSpace(d.GeneralChatLink),
		settings.ModeratorLink:      strings.TrimSpace(d.ModeratorLink),
		settings.CharityLink:        strings.TrimSpace(d.CharityLink),
		settings.CharityDescription: strings.TrimSpace(d.CharityDescription),
	}
}

// TextsConfig holds static texts.
type TextsConfig struct {
	Welcome string `yaml:"welcome" envconfig:"WELCOME_TEXT"`
}

// DialogueConfig tunes the admin edit dialogue.
type DialogueConfig struct {
	// Timeout drops a pending edit after inactivity. Zero keeps it forever.
	Timeout time.Duration `yaml:"timeout" envconfig:"DIALOGUE_TIMEOUT"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Defaults DefaultsConfig `yaml:"defaults"`
	Texts    TextsConfig    `yaml:"texts"`
	Dialogue DialogueConfig `yaml:"dialogue"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path, overlays environment variables and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core section and fills application defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Texts.Welcome) == "" {
		cfg.Texts.Welcome = defaultWelcome
	}
	if cfg.Dialogue.Timeout < 0 {
		return fmt.Errorf("dialogue.timeout must be >= 0")
	}
	return nil
}
