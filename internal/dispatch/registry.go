package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"

	"multibot/internal/domain"
	"multibot/internal/menu"
	"multibot/internal/metrics"
)

// maxBreedButtons caps how many breeds the submenu keyboard renders.
// Resolution is not capped: every catalog breed stays resolvable.
const maxBreedButtons = 10

// Kind identifies what a resolved binding does.
type Kind int

const (
	KindBreeds Kind = iota + 1 // open the breed submenu
	KindAstronomy
	KindLatestLaunch
	KindNextLaunch
	KindRockets
	KindCompany
	KindPets
	KindBack
	KindBreed // dynamic: one breed of the catalog
)

func (k Kind) String() string {
	switch k {
	case KindBreeds:
		return "breeds"
	case KindAstronomy:
		return "astronomy"
	case KindLatestLaunch:
		return "latest_launch"
	case KindNextLaunch:
		return "next_launch"
	case KindRockets:
		return "rockets"
	case KindCompany:
		return "company"
	case KindPets:
		return "pets"
	case KindBack:
		return "back"
	case KindBreed:
		return "breed"
	default:
		return "unknown"
	}
}

// Binding associates a trigger text with the action it invokes.
type Binding struct {
	Trigger string
	Kind    Kind
	Breed   domain.Breed // set for KindBreed only
}

// BreedLister is the slice of the breed client the registry needs.
type BreedLister interface {
	ListBreeds(ctx context.Context) ([]domain.Breed, error)
}

// Registry is the two-tier routing table: a fixed set of static bindings
// matched case-sensitively, plus a replaceable breed index matched
// case-insensitively. The breed index is swapped atomically so a resolve
// never observes a half-updated set.
type Registry struct {
	static map[string]Kind
	breeds atomic.Pointer[breedIndex]
	lister BreedLister
	logger *slog.Logger
}

// breedIndex is one immutable generation of the dynamic binding set.
type breedIndex struct {
	byName map[string]domain.Breed // key: lowercased breed name
	labels []string                // first maxBreedButtons names, catalog order
}

func NewRegistry(labels menu.Labels, lister BreedLister, logger *slog.Logger) *Registry {
	static := map[string]Kind{
		labels.Breeds:       KindBreeds,
		labels.Astronomy:    KindAstronomy,
		labels.LatestLaunch: KindLatestLaunch,
		labels.NextLaunch:   KindNextLaunch,
		labels.Rockets:      KindRockets,
		labels.Company:      KindCompany,
		labels.Pets:         KindPets,
		labels.Back:         KindBack,
	}
	r := &Registry{
		static: static,
		lister: lister,
		logger: logger,
	}
	r.breeds.Store(&breedIndex{byName: map[string]domain.Breed{}})
	return r
}

// Resolve maps a text to at most one binding for the given menu state.
// Static bindings win over a dynamic breed with a colliding name.
func (r *Registry) Resolve(text string, m Menu) *Binding {
	if kind, ok := r.static[text]; ok {
		return &Binding{Trigger: text, Kind: kind}
	}

	if m != MenuBreeds {
		return nil
	}
	idx := r.breeds.Load()
	if breed, ok := idx.byName[strings.ToLower(text)]; ok {
		return &Binding{Trigger: text, Kind: KindBreed, Breed: breed}
	}
	return nil
}

// RefreshBreeds rebuilds the dynamic binding set from the live catalog and
// swaps it in atomically. It returns the labels for the submenu keyboard.
// Results are never cached: every call re-fetches.
func (r *Registry) RefreshBreeds(ctx context.Context) ([]string, error) {
	breeds, err := r.lister.ListBreeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh breed menu: %w", err)
	}
	if len(breeds) == 0 {
		return nil, fmt.Errorf("refresh breed menu: empty catalog")
	}

	byName := make(map[string]domain.Breed, len(breeds))
	for _, b := range breeds {
		if r.collidesWithStatic(b.Name) {
			r.logger.Warn("breed name collides with a static binding, skipping", "breed", b.Name)
			continue
		}
		byName[strings.ToLower(b.Name)] = b
	}

	labels := lo.Map(breeds, func(b domain.Breed, _ int) string { return b.Name })
	labels = lo.Filter(labels, func(name string, _ int) bool { return !r.collidesWithStatic(name) })
	if len(labels) > maxBreedButtons {
		labels = labels[:maxBreedButtons]
	}

	r.breeds.Store(&breedIndex{byName: byName, labels: labels})
	metrics.BreedRefreshTotal.Inc()
	r.logger.Info("breed menu refreshed", "breeds", len(byName), "buttons", len(labels))
	return labels, nil
}

// BreedLabels returns the submenu labels of the current generation.
func (r *Registry) BreedLabels() []string {
	return r.breeds.Load().labels
}

// collidesWithStatic reports whether a breed name would shadow a static
// trigger under case-insensitive matching. Static bindings take precedence.
func (r *Registry) collidesWithStatic(name string) bool {
	for trigger := range r.static {
		if strings.EqualFold(trigger, name) {
			return true
		}
	}
	return false
}
