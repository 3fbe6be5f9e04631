// Package app wires the quiz bot domain onto the Telegram runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/quizbot/core/bootstrap"
	"github.com/m3rciful/quizbot/core/logger"
	tg "github.com/m3rciful/quizbot/core/telegram"
	"github.com/m3rciful/quizbot/core/telegram/middleware"
	"github.com/m3rciful/quizbot/core/telegram/router"
	"github.com/m3rciful/quizbot/core/telegram/state"
	"github.com/m3rciful/quizbot/core/telegram/ui"
	"github.com/m3rciful/quizbot/internal/admins"
	"github.com/m3rciful/quizbot/internal/config"
	"github.com/m3rciful/quizbot/internal/dialogue"
	"github.com/m3rciful/quizbot/internal/menu"
	"github.com/m3rciful/quizbot/internal/settings"

	tele "gopkg.in/telebot.v4"
)

// App holds the bot services.
type App struct {
	cfg      *config.Config
	store    *settings.Store
	admins   *admins.AllowList
	fsm      state.Manager
	dialogue *dialogue.Controller
	registry *tg.Registry
	fallback ui.FallbackProvider
}

// Bootstrap initialises logging, seeds the settings store from configuration
// and builds the App.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	store := settings.NewStore(settings.Defaults())
	return bootstrap.Run(ctx, bootstrap.Options[*App]{
		Config:    cfg.CoreConfig(),
		AppConfig: cfg,
		Storage:   store,
		Modules: bootstrap.Modules[*App]{
			Seeders:  []bootstrap.Seeder{SettingsSeeder(cfg.Defaults)},
			Services: bootstrap.ServiceProviderFunc[*App](provide),
		},
	})
}

// SettingsSeeder applies configured default overrides to the settings store.
func SettingsSeeder(d config.DefaultsConfig) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		store, ok := storage.(*settings.Store)
		if !ok {
			return fmt.Errorf("app: unexpected storage %T", storage)
		}
		return store.Apply(ctx, d.Overrides())
	})
}

func provide(_ context.Context, cfg interface{}, storage bootstrap.Storage) (*App, error) {
	c, ok := cfg.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config %T", cfg)
	}
	store, ok := storage.(*settings.Store)
	if !ok {
		return nil, fmt.Errorf("app: unexpected storage %T", storage)
	}
	return New(c, store)
}

// New builds the App and registers its commands, callbacks and dialogue handlers.
func New(cfg *config.Config, store *settings.Store) (*App, error) {
	if cfg == nil || store == nil {
		return nil, fmt.Errorf("app: config and store are required")
	}
	fsm := state.NewMemoryManager(state.WithTTL(cfg.Dialogue.Timeout))
	a := &App{
		cfg:      cfg,
		store:    store,
		admins:   admins.New(cfg.Telegram.Admins),
		fsm:      fsm,
		dialogue: dialogue.NewController(fsm, store),
		registry: tg.NewRegistry(),
	}
	a.fallback = fallbacks{}
	if err := a.register(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) register() error {
	cmds := map[string]tg.Command{
		"/start": {
			Handler:     a.handleStart,
			Description: "Головне меню",
			Aliases:     []string{"menu"},
		},
		"/admin": {
			Handler:     a.handleAdmin,
			Description: "Адміністративна панель",
			AdminOnly:   true,
		},
		"/cancel": {
			Handler:     a.handleCancel,
			Description: "Скасувати редагування",
			AdminOnly:   true,
			Hidden:      true,
		},
	}
	for name, cmd := range cmds {
		if err := a.registry.RegisterCommand(name, cmd); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	}

	guard := a.adminGuard()
	for _, action := range menu.AdminActions {
		var h tele.HandlerFunc
		switch action.Unique {
		case menu.AdminView:
			h = a.handleView
		case menu.AdminBack:
			h = a.handleBack
		default:
			h = a.beginEdit(action.State)
		}
		if err := a.registry.RegisterCallback(action.Unique, guard(h)); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	}
	if err := a.registry.RegisterCallback(menu.AdminCancel, guard(a.handleCancel)); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.registry.SetCallbackNotFound(a.fallback.UnknownCallback())

	for _, st := range dialogue.AwaitingStates {
		a.fsm.RegisterHandler(st, a.handleDialogueInput)
	}
	return nil
}

func (a *App) adminGuard() tele.MiddlewareFunc {
	return middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		Authorizer: a.admins,
		OnReject:   a.fallback.Denied(),
	})
}

// Routes returns every endpoint the bot serves.
func (a *App) Routes() []tg.Route {
	buttons := make([]router.TextButton, 0, len(menu.MainItems))
	for _, item := range menu.MainItems {
		buttons = append(buttons, router.TextButton{
			Name:    item.Key,
			Label:   item.Label,
			Handler: a.handleMainItem(item),
		})
	}

	var routes []tg.Route
	routes = append(routes, router.CommandRoutes(a.registry, router.CommandRouteOptions{
		Authorizer:    a.admins,
		OnAdminReject: a.fallback.Denied(),
	})...)
	routes = append(routes, router.ButtonRoutes(buttons)...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: a.fallback.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.fsm, a.registry, router.TextOptions{
		UnknownText: a.fallback.UnknownText(),
	})...)
	return routes
}

// TelegramRunOptions builds the runtime options for the bot.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(),
		Routes:      a.Routes(),
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			logger.Info(ctx, "app", "app.wired",
				slog.String("status", "ok"),
				slog.Int("admins", a.admins.Len()),
				slog.Int("callbacks", len(rt.Registry.ListCallbacks())),
				slog.Duration("dialogue_timeout", a.cfg.Dialogue.Timeout),
			)
			return nil
		},
	}, nil
}
