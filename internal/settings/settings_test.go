package settings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.PaymentCard != "5375 4141 0123 4567" {
		t.Fatalf("unexpected default card %q", d.PaymentCard)
	}
	for _, f := range Fields {
		if d.Value(f) == "" {
			t.Fatalf("default for %s is empty", f)
		}
	}
}

func TestStoreGetSet(t *testing.T) {
	s := NewStore(Defaults())
	if err := s.Set(context.Background(), CalendarLink, "https://example.org/cal"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(CalendarLink)
	if err != nil || got != "https://example.org/cal" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if s.All().CalendarLink != "https://example.org/cal" {
		t.Fatal("All does not reflect Set")
	}
}

func TestStoreAcceptsEmptyValue(t *testing.T) {
	s := NewStore(Defaults())
	if err := s.Set(context.Background(), ModeratorLink, ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := s.Get(ModeratorLink); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestStoreUnknownField(t *testing.T) {
	s := NewStore(Defaults())
	if err := s.Set(context.Background(), Field("bogus"), "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Set: expected ErrUnknownField, got %v", err)
	}
	if _, err := s.Get(Field("bogus")); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Get: expected ErrUnknownField, got %v", err)
	}
	if s.All() != Defaults() {
		t.Fatal("failed Set must not change the store")
	}
}

func TestStoreApply(t *testing.T) {
	s := NewStore(Defaults())
	err := s.Apply(context.Background(), map[Field]string{
		PaymentCard:  "0000",
		NextGameLink: "",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	all := s.All()
	if all.PaymentCard != "0000" {
		t.Fatalf("override not applied: %q", all.PaymentCard)
	}
	if all.NextGameLink != Defaults().NextGameLink {
		t.Fatal("empty override must keep the default")
	}

	err = s.Apply(context.Background(), map[Field]string{"nope": "x", CalendarLink: "y"})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if s.All().CalendarLink != Defaults().CalendarLink {
		t.Fatal("Apply with an unknown field must not write anything")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(Defaults())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(context.Background(), PaymentCard, "1111")
		}()
		go func() {
			defer wg.Done()
			_ = s.All()
		}()
	}
	wg.Wait()
	if got, _ := s.Get(PaymentCard); got != "1111" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestPropertySetChangesOnlyThatField(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewStore(Defaults())
		before := s.All().Map()

		field := rapid.SampledFrom(Fields).Draw(rt, "field")
		value := rapid.String().Draw(rt, "value")
		if err := s.Set(context.Background(), field, value); err != nil {
			rt.Fatal(err)
		}

		after := s.All().Map()
		for _, f := range Fields {
			want := before[f]
			if f == field {
				want = value
			}
			if after[f] != want {
				rt.Fatalf("field %s = %q, want %q", f, after[f], want)
			}
		}
	})
}
