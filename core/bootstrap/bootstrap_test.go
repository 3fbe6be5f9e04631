package bootstrap

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/quizbot/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunSeedsThenProvides(t *testing.T) {
	var order []string
	store := map[string]string{}
	got, err := Run(context.Background(), Options[string]{
		Config:     &coreconfig.Config{},
		Storage:    store,
		LoggerInit: noLogger,
		Modules: Modules[string]{
			Seeders: []Seeder{
				SeederFunc(func(_ context.Context, s Storage) error {
					order = append(order, "seed")
					s.(map[string]string)["k"] = "v"
					return nil
				}),
			},
			Services: ServiceProviderFunc[string](func(_ context.Context, _ interface{}, s Storage) (string, error) {
				order = append(order, "provide")
				return s.(map[string]string)["k"], nil
			}),
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "v" {
		t.Fatalf("expected seeded value, got %q", got)
	}
	if len(order) != 2 || order[0] != "seed" || order[1] != "provide" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRunStopsOnSeederError(t *testing.T) {
	boom := errors.New("boom")
	provided := false
	_, err := Run(context.Background(), Options[int]{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Modules: Modules[int]{
			Seeders: []Seeder{SeederFunc(func(context.Context, Storage) error { return boom })},
			Services: ServiceProviderFunc[int](func(context.Context, interface{}, Storage) (int, error) {
				provided = true
				return 1, nil
			}),
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected seeder error, got %v", err)
	}
	if provided {
		t.Fatal("services must not be built after a seeder failure")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := Run(context.Background(), Options[int]{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
