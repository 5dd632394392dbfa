package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"multibot/internal/domain"
	"multibot/internal/journal"
	"multibot/internal/menu"
	"multibot/internal/provider"
)

// --- stub clients ---

type stubCats struct {
	breeds   []domain.Breed
	image    string
	imageErr error
	err      error
}

func (s *stubCats) BreedByName(ctx context.Context, name string) (domain.Breed, error) {
	if s.err != nil {
		return domain.Breed{}, s.err
	}
	for _, b := range s.breeds {
		if strings.EqualFold(b.Name, name) {
			return b, nil
		}
	}
	return domain.Breed{}, &provider.FetchError{Provider: "catapi", Op: "breed by name", Err: provider.ErrNotFound}
}

func (s *stubCats) ImageByBreed(ctx context.Context, breedID string) (string, error) {
	if s.imageErr != nil {
		return "", s.imageErr
	}
	return s.image, nil
}

type stubAstronomy struct {
	item domain.AstronomyItem
	err  error
}

func (s *stubAstronomy) RandomAstronomy(ctx context.Context) (domain.AstronomyItem, error) {
	return s.item, s.err
}

type stubLaunches struct {
	latest  domain.LaunchSummary
	next    domain.LaunchSummary
	rockets []domain.Rocket
	company domain.CompanyInfo
	err     error
}

func (s *stubLaunches) LatestLaunch(ctx context.Context) (domain.LaunchSummary, error) {
	return s.latest, s.err
}
func (s *stubLaunches) NextLaunch(ctx context.Context) (domain.LaunchSummary, error) {
	return s.next, s.err
}
func (s *stubLaunches) Rockets(ctx context.Context) ([]domain.Rocket, error) {
	return s.rockets, s.err
}
func (s *stubLaunches) Company(ctx context.Context) (domain.CompanyInfo, error) {
	return s.company, s.err
}

type stubInventory struct {
	pets  []domain.Pet
	photo string
	err   error
}

func (s *stubInventory) PetsByStatus(ctx context.Context, status string) ([]domain.Pet, error) {
	return s.pets, s.err
}
func (s *stubInventory) PetPhoto(ctx context.Context, id int64) (string, error) {
	return s.photo, s.err
}
func (s *stubInventory) CreatePet(ctx context.Context, name, status string) (domain.Pet, error) {
	if s.err != nil {
		return domain.Pet{}, s.err
	}
	return domain.Pet{ID: 1, Name: name, Status: status}, nil
}

var (
	_ CatClient       = (*stubCats)(nil)
	_ AstronomyClient = (*stubAstronomy)(nil)
	_ LaunchClient    = (*stubLaunches)(nil)
	_ InventoryClient = (*stubInventory)(nil)
)

// stubBus captures outbound messages; inbound side is unused here.
type stubBus struct {
	mu   sync.Mutex
	sent []domain.OutboundMessage
}

func (b *stubBus) Publish(msg domain.InboundMessage)         {}
func (b *stubBus) Subscribe() <-chan domain.InboundMessage   { return nil }
func (b *stubBus) SendOutbound(msg domain.OutboundMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
}
func (b *stubBus) OnOutbound(name string, h func(domain.OutboundMessage)) {}
func (b *stubBus) Close()                                                 {}

var _ domain.MessageBus = (*stubBus)(nil)

type stubRecorder struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (r *stubRecorder) Record(ctx context.Context, e journal.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// --- fixture ---

type fixture struct {
	d      *Dispatcher
	bus    *stubBus
	cats   *stubCats
	astro  *stubAstronomy
	sky    *stubLaunches
	pets   *stubInventory
	labels menu.Labels
	rec    *stubRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	labels := menu.Defaults()
	breeds := []domain.Breed{
		{ID: "abys", Name: "Abyssinian", Description: "Active", LifeSpan: "14 - 15"},
		{ID: "sphy", Name: "Sphynx", Description: "Hairless", LifeSpan: "12 - 14"},
	}
	cats := &stubCats{breeds: breeds, image: "https://cdn.example.com/cat.jpg"}
	astro := &stubAstronomy{item: domain.AstronomyItem{
		Title: "Nebula", Explanation: "Gas.", ImageURL: "https://apod.example.com/n.jpg",
	}}
	sky := &stubLaunches{
		latest: domain.LaunchSummary{Name: "CRS-21", Status: domain.StatusSuccess},
		next:   domain.LaunchSummary{Name: "Starlink-99"},
	}
	pets := &stubInventory{pets: []domain.Pet{{Name: "Rex", Status: "available"}}, photo: "https://img.example.com/rex.jpg"}

	registry := NewRegistry(labels, &stubLister{breeds: breeds}, testLogger())
	if _, err := registry.RefreshBreeds(context.Background()); err != nil {
		t.Fatalf("RefreshBreeds: %v", err)
	}

	bus := &stubBus{}
	rec := &stubRecorder{}
	d := NewDispatcher(DispatcherConfig{
		Registry:  registry,
		Sessions:  NewSessionManager(testLogger()),
		Cats:      cats,
		Astronomy: astro,
		Launches:  sky,
		Inventory: pets,
		Bus:       bus,
		Journal:   rec,
		Labels:    labels,
		Logger:    testLogger(),
	})
	return &fixture{d: d, bus: bus, cats: cats, astro: astro, sky: sky, pets: pets, labels: labels, rec: rec}
}

func inbound(text string) domain.InboundMessage {
	return domain.InboundMessage{Channel: "test", ChatID: "7", SenderID: "7", Content: text}
}

func keyboardLabels(kb *domain.Keyboard) []string {
	if kb == nil {
		return nil
	}
	var out []string
	for _, row := range kb.Rows {
		out = append(out, row...)
	}
	return out
}

// --- tests ---

func TestDispatch_BreedsFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	units, kb, outcome, err := f.d.dispatch(ctx, inbound(f.labels.Breeds))
	if err != nil {
		t.Fatalf("breeds press: %v", err)
	}
	if outcome != "breeds" {
		t.Errorf("outcome = %q", outcome)
	}
	if units[0].Body != "Выбери породу кота:" {
		t.Errorf("prompt = %q", units[0].Body)
	}
	got := keyboardLabels(kb)
	want := []string{"Abyssinian", "Sphynx", f.labels.Back}
	if len(got) != len(want) {
		t.Fatalf("keyboard = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyboard[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Session is now in the breed menu: a breed name resolves.
	units, kb, outcome, err = f.d.dispatch(ctx, inbound("Sphynx"))
	if err != nil {
		t.Fatalf("breed press: %v", err)
	}
	if outcome != "breed" {
		t.Errorf("outcome = %q", outcome)
	}
	if units[0].Kind != domain.UnitPhoto {
		t.Fatalf("expected breed photo card, got %s", units[0].Kind)
	}
	if !strings.Contains(units[0].Caption, "Sphynx") {
		t.Errorf("caption missing breed name: %q", units[0].Caption)
	}
	// A breed card keeps the breed keyboard: the session stays in the menu.
	if labels := keyboardLabels(kb); labels[len(labels)-1] != f.labels.Back {
		t.Errorf("breed keyboard lost after breed card: %v", labels)
	}

	// Back returns to the main menu.
	units, kb, _, err = f.d.dispatch(ctx, inbound(f.labels.Back))
	if err != nil {
		t.Fatalf("back press: %v", err)
	}
	if units[0].Body != "Вы вернулись в главное меню." {
		t.Errorf("back notice = %q", units[0].Body)
	}
	if got := keyboardLabels(kb); got[0] != f.labels.Breeds {
		t.Errorf("main keyboard not restored: %v", got)
	}
	if f.d.sessions.Menu("test:7") != MenuMain {
		t.Error("session not back in main menu")
	}
}

func TestDispatch_BreedNameOutsideBreedMenuIsUnrecognized(t *testing.T) {
	f := newFixture(t)

	units, _, outcome, err := f.d.dispatch(context.Background(), inbound("Sphynx"))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if outcome != "unrecognized" {
		t.Errorf("outcome = %q", outcome)
	}
	if !strings.Contains(units[0].Body, "Не понимаю") {
		t.Errorf("notice = %q", units[0].Body)
	}
}

func TestDispatch_ProviderErrorBecomesNotice(t *testing.T) {
	f := newFixture(t)
	f.astro.err = fmt.Errorf("apod down")

	units, _, _, err := f.d.dispatch(context.Background(), inbound(f.labels.Astronomy))
	if err == nil {
		t.Fatal("expected error to be reported for logging")
	}
	if units[0].Kind != domain.UnitText || !strings.Contains(units[0].Body, "картинки NASA") {
		t.Errorf("expected NASA failure notice, got %+v", units[0])
	}
	if f.d.sessions.Menu("test:7") != MenuMain {
		t.Error("failure must not change the menu state")
	}
}

func TestDispatch_BreedsRefreshFailureKeepsMenu(t *testing.T) {
	labels := menu.Defaults()
	registry := NewRegistry(labels, &stubLister{err: fmt.Errorf("down")}, testLogger())
	f := newFixture(t)
	f.d.registry = registry

	units, _, _, err := f.d.dispatch(context.Background(), inbound(labels.Breeds))
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if !strings.Contains(units[0].Body, "список пород") {
		t.Errorf("notice = %q", units[0].Body)
	}
	if f.d.sessions.Menu("test:7") != MenuMain {
		t.Error("failed submenu entry must leave the session in main")
	}
}

func TestDispatch_BreedGoneFromCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, _, err := f.d.dispatch(ctx, inbound(f.labels.Breeds)); err != nil {
		t.Fatalf("breeds press: %v", err)
	}

	// The index still knows the breed, but the detail lookup misses.
	f.cats.breeds = nil
	units, _, _, err := f.d.dispatch(ctx, inbound("Sphynx"))
	if err != nil {
		t.Fatalf("absence is not an error: %v", err)
	}
	if units[0].Body != "Порода не найдена." {
		t.Errorf("notice = %q", units[0].Body)
	}
}

func TestDispatch_BreedImageFailureDegradesCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, _, err := f.d.dispatch(ctx, inbound(f.labels.Breeds)); err != nil {
		t.Fatalf("breeds press: %v", err)
	}

	f.cats.imageErr = fmt.Errorf("image search down")
	units, _, _, err := f.d.dispatch(ctx, inbound("Abyssinian"))
	if err != nil {
		t.Fatalf("image failure must not fail the card: %v", err)
	}
	if units[0].Kind != domain.UnitText || !strings.Contains(units[0].Body, "Изображение не найдено") {
		t.Errorf("expected degraded text card, got %+v", units[0])
	}
}

func TestDispatch_LaunchButtons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	units, _, _, err := f.d.dispatch(ctx, inbound(f.labels.LatestLaunch))
	if err != nil {
		t.Fatalf("latest launch: %v", err)
	}
	if !strings.Contains(units[0].Body, "Последний запуск SpaceX:") || !strings.Contains(units[0].Body, "CRS-21") {
		t.Errorf("latest launch body = %q", units[0].Body)
	}

	units, _, _, err = f.d.dispatch(ctx, inbound(f.labels.NextLaunch))
	if err != nil {
		t.Fatalf("next launch: %v", err)
	}
	if !strings.Contains(units[0].Body, "Ближайший запуск SpaceX:") {
		t.Errorf("next launch body = %q", units[0].Body)
	}
}

func TestDispatch_PetsButton(t *testing.T) {
	f := newFixture(t)

	units, _, outcome, err := f.d.dispatch(context.Background(), inbound(f.labels.Pets))
	if err != nil {
		t.Fatalf("pets press: %v", err)
	}
	if outcome != "pets" {
		t.Errorf("outcome = %q", outcome)
	}
	if !strings.Contains(units[0].Body, "Rex") {
		t.Errorf("pet listing = %q", units[0].Body)
	}
}

func TestHandle_SendsOutboundAndJournals(t *testing.T) {
	f := newFixture(t)

	f.d.handle(context.Background(), inbound(f.labels.Company))

	f.bus.mu.Lock()
	sent := append([]domain.OutboundMessage(nil), f.bus.sent...)
	f.bus.mu.Unlock()
	if len(sent) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(sent))
	}
	if sent[0].Channel != "test" || sent[0].ChatID != "7" {
		t.Errorf("outbound addressing wrong: %+v", sent[0])
	}
	if len(sent[0].Units) == 0 {
		t.Fatal("outbound carries no units")
	}

	f.rec.mu.Lock()
	entries := append([]journal.Entry(nil), f.rec.entries...)
	f.rec.mu.Unlock()
	if len(entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(entries))
	}
	if entries[0].Outcome != "company" || entries[0].Trigger != f.labels.Company {
		t.Errorf("journal entry = %+v", entries[0])
	}
}
