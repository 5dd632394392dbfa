package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"multibot/internal/domain"
	"multibot/internal/menu"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// stubLister serves a fixed catalog.
type stubLister struct {
	breeds []domain.Breed
	err    error
}

func (s *stubLister) ListBreeds(ctx context.Context) ([]domain.Breed, error) {
	return s.breeds, s.err
}

var _ BreedLister = (*stubLister)(nil)

func catalog(n int) []domain.Breed {
	breeds := make([]domain.Breed, 0, n)
	for i := 0; i < n; i++ {
		breeds = append(breeds, domain.Breed{
			ID:   fmt.Sprintf("b%02d", i),
			Name: fmt.Sprintf("Breed %02d", i),
		})
	}
	return breeds
}

func TestRegistry_ResolveStatic(t *testing.T) {
	labels := menu.Defaults()
	r := NewRegistry(labels, &stubLister{}, testLogger())

	b := r.Resolve(labels.Astronomy, MenuMain)
	if b == nil || b.Kind != KindAstronomy {
		t.Fatalf("expected astronomy binding, got %+v", b)
	}

	// Static triggers are matched exactly, case-sensitively.
	if r.Resolve("кОтИкИ", MenuMain) != nil {
		t.Error("static triggers must not match case-insensitively")
	}
}

func TestRegistry_StaticWorksInAnyMenu(t *testing.T) {
	labels := menu.Defaults()
	r := NewRegistry(labels, &stubLister{}, testLogger())

	b := r.Resolve(labels.Back, MenuBreeds)
	if b == nil || b.Kind != KindBack {
		t.Fatalf("back must resolve inside the breed menu, got %+v", b)
	}
}

func TestRegistry_BreedResolvesOnlyInBreedMenu(t *testing.T) {
	r := NewRegistry(menu.Defaults(), &stubLister{breeds: catalog(3)}, testLogger())
	if _, err := r.RefreshBreeds(context.Background()); err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}

	if b := r.Resolve("Breed 01", MenuBreeds); b == nil || b.Kind != KindBreed {
		t.Fatalf("expected breed binding, got %+v", b)
	}
	if r.Resolve("Breed 01", MenuMain) != nil {
		t.Error("breed names must not resolve from the main menu")
	}
}

func TestRegistry_BreedResolveCaseInsensitive(t *testing.T) {
	r := NewRegistry(menu.Defaults(), &stubLister{breeds: catalog(3)}, testLogger())
	if _, err := r.RefreshBreeds(context.Background()); err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}

	b := r.Resolve("bReEd 02", MenuBreeds)
	if b == nil || b.Breed.ID != "b02" {
		t.Fatalf("case-insensitive breed resolution failed: %+v", b)
	}
}

func TestRegistry_ButtonsCappedResolutionIsNot(t *testing.T) {
	r := NewRegistry(menu.Defaults(), &stubLister{breeds: catalog(25)}, testLogger())
	labels, err := r.RefreshBreeds(context.Background())
	if err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}

	if len(labels) != maxBreedButtons {
		t.Errorf("expected %d buttons, got %d", maxBreedButtons, len(labels))
	}
	// A breed beyond the rendered subset still resolves.
	if b := r.Resolve("Breed 20", MenuBreeds); b == nil || b.Breed.ID != "b20" {
		t.Errorf("unrendered breed must stay resolvable, got %+v", b)
	}
}

func TestRegistry_StaticShadowsCollidingBreed(t *testing.T) {
	labels := menu.Defaults()
	breeds := append(catalog(2), domain.Breed{ID: "bad", Name: labels.Back})
	r := NewRegistry(labels, &stubLister{breeds: breeds}, testLogger())

	buttons, err := r.RefreshBreeds(context.Background())
	if err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}
	for _, l := range buttons {
		if l == labels.Back {
			t.Errorf("colliding breed rendered as a button")
		}
	}

	b := r.Resolve(labels.Back, MenuBreeds)
	if b == nil || b.Kind != KindBack {
		t.Fatalf("static binding must win the collision, got %+v", b)
	}
}

func TestRegistry_RefreshReplacesPreviousGeneration(t *testing.T) {
	lister := &stubLister{breeds: catalog(3)}
	r := NewRegistry(menu.Defaults(), lister, testLogger())
	if _, err := r.RefreshBreeds(context.Background()); err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}

	lister.breeds = []domain.Breed{{ID: "new", Name: "Новая порода"}}
	if _, err := r.RefreshBreeds(context.Background()); err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}

	if r.Resolve("Breed 01", MenuBreeds) != nil {
		t.Error("stale breed still resolvable after refresh")
	}
	if b := r.Resolve("новая порода", MenuBreeds); b == nil || b.Breed.ID != "new" {
		t.Errorf("fresh breed not resolvable: %+v", b)
	}
}

func TestRegistry_RefreshEmptyCatalogFails(t *testing.T) {
	r := NewRegistry(menu.Defaults(), &stubLister{}, testLogger())
	if _, err := r.RefreshBreeds(context.Background()); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestRegistry_RefreshErrorKeepsOldBindings(t *testing.T) {
	lister := &stubLister{breeds: catalog(3)}
	r := NewRegistry(menu.Defaults(), lister, testLogger())
	if _, err := r.RefreshBreeds(context.Background()); err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}

	lister.err = fmt.Errorf("upstream down")
	if _, err := r.RefreshBreeds(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if b := r.Resolve("Breed 00", MenuBreeds); b == nil {
		t.Error("failed refresh must keep the previous generation")
	}
}
