package main

import (
	"context"
	"fmt"
	"log"

	corecmd "github.com/m3rciful/quizbot/core/cmd"
	"github.com/m3rciful/quizbot/internal/app"
	"github.com/m3rciful/quizbot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("quizbot: unexpected config type %T", cfg)
			}
			a, err := app.Bootstrap(ctx, appCfg)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
