package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"multibot/internal/compose"
	"multibot/internal/domain"
	"multibot/internal/journal"
	"multibot/internal/menu"
	"multibot/internal/metrics"
	"multibot/internal/provider"
)

const (
	defaultConcurrency  = 5
	defaultFetchTimeout = 10 * time.Second
)

// CatClient is the breed-detail slice of the cat catalog client.
type CatClient interface {
	BreedByName(ctx context.Context, name string) (domain.Breed, error)
	ImageByBreed(ctx context.Context, breedID string) (string, error)
}

// AstronomyClient fetches a random picture of the day.
type AstronomyClient interface {
	RandomAstronomy(ctx context.Context) (domain.AstronomyItem, error)
}

// LaunchClient fetches launch data.
type LaunchClient interface {
	LatestLaunch(ctx context.Context) (domain.LaunchSummary, error)
	NextLaunch(ctx context.Context) (domain.LaunchSummary, error)
	Rockets(ctx context.Context) ([]domain.Rocket, error)
	Company(ctx context.Context) (domain.CompanyInfo, error)
}

// InventoryClient manages the pet inventory.
type InventoryClient interface {
	PetsByStatus(ctx context.Context, status string) ([]domain.Pet, error)
	PetPhoto(ctx context.Context, id int64) (string, error)
	CreatePet(ctx context.Context, name, status string) (domain.Pet, error)
}

// Recorder journals handled requests. Best effort: a journal failure never
// affects the response.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Dispatcher is the core engine: receive text event, resolve it through the
// registry, invoke the matched provider call, compose, emit.
type Dispatcher struct {
	registry  *Registry
	sessions  *SessionManager
	cats      CatClient
	astronomy AstronomyClient
	launches  LaunchClient
	inventory InventoryClient
	bus       domain.MessageBus
	journal   Recorder
	labels    menu.Labels
	logger    *slog.Logger

	concurrency  int
	fetchTimeout time.Duration
	startTime    time.Time
}

// DispatcherConfig holds all dependencies and tuning parameters.
type DispatcherConfig struct {
	Registry     *Registry
	Sessions     *SessionManager
	Cats         CatClient
	Astronomy    AstronomyClient
	Launches     LaunchClient
	Inventory    InventoryClient
	Bus          domain.MessageBus
	Journal      Recorder // optional
	Labels       menu.Labels
	Logger       *slog.Logger
	Concurrency  int           // max messages handled in parallel
	FetchTimeout time.Duration // budget per provider fetch
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &Dispatcher{
		registry:     cfg.Registry,
		sessions:     cfg.Sessions,
		cats:         cfg.Cats,
		astronomy:    cfg.Astronomy,
		launches:     cfg.Launches,
		inventory:    cfg.Inventory,
		bus:          cfg.Bus,
		journal:      cfg.Journal,
		labels:       cfg.Labels,
		logger:       cfg.Logger,
		concurrency:  cfg.Concurrency,
		fetchTimeout: cfg.FetchTimeout,
		startTime:    time.Now(),
	}
}

// Run consumes inbound messages with bounded concurrency. The semaphore is
// also the cap on concurrent outbound provider calls.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("dispatcher started", "concurrency", d.concurrency)

	sem := make(chan struct{}, d.concurrency)
	inbound := d.bus.Subscribe()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopping")
			return
		case msg, ok := <-inbound:
			if !ok {
				d.logger.Info("inbound channel closed, dispatcher stopping")
				return
			}
			sem <- struct{}{}
			go func(m domain.InboundMessage) {
				defer func() { <-sem }()
				d.handle(ctx, m)
			}(msg)
		}
	}
}

// handle processes one text event end to end. No error crosses the
// transport boundary: every failure becomes a short user-facing notice and
// the menu state stays where it was.
func (d *Dispatcher) handle(ctx context.Context, msg domain.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic", "chat", msg.ChatID, "panic", r)
		}
	}()

	start := time.Now()
	metrics.MessagesTotal.Inc()

	units, kb, outcome, err := d.dispatch(ctx, msg)
	if err != nil {
		metrics.HandlerErrors.Inc()
		d.logger.Error("handler error", "chat", msg.ChatID, "outcome", outcome, "err", err)
	}

	d.bus.SendOutbound(domain.OutboundMessage{
		Channel:  msg.Channel,
		ChatID:   msg.ChatID,
		Units:    units,
		Keyboard: kb,
	})
	metrics.OutboundUnitsTotal.Add(int64(len(units)))

	d.record(ctx, msg, outcome, err, time.Since(start))
}

func (d *Dispatcher) record(ctx context.Context, msg domain.InboundMessage, outcome string, err error, latency time.Duration) {
	if d.journal == nil {
		return
	}
	e := journal.Entry{
		Channel:   msg.Channel,
		ChatID:    msg.ChatID,
		Trigger:   msg.Content,
		Outcome:   outcome,
		LatencyMS: latency.Milliseconds(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	if jerr := d.journal.Record(ctx, e); jerr != nil {
		d.logger.Warn("journal write failed", "err", jerr)
	}
}

// dispatch resolves and executes one message. The returned units are always
// user-ready, also on error; err is reported for logging and journaling.
func (d *Dispatcher) dispatch(ctx context.Context, msg domain.InboundMessage) ([]domain.ContentUnit, *domain.Keyboard, string, error) {
	key := msg.Channel + ":" + msg.ChatID

	if cmd := ParseCommand(msg.Content); cmd != nil {
		units, kb, err := d.handleCommand(ctx, cmd, key)
		return units, kb, "command:" + cmd.Name, err
	}

	current := d.sessions.Menu(key)
	binding := d.registry.Resolve(msg.Content, current)
	if binding == nil {
		metrics.UnrecognizedTotal.Inc()
		return textUnits("Не понимаю эту команду. Выбери действие на клавиатуре."),
			d.keyboardFor(current), "unrecognized", nil
	}

	units, kb, err := d.invoke(ctx, binding, key)
	return units, kb, binding.Kind.String(), err
}

// invoke runs the provider call behind a resolved binding under the
// per-fetch timeout and composes the response.
func (d *Dispatcher) invoke(ctx context.Context, b *Binding, key string) ([]domain.ContentUnit, *domain.Keyboard, error) {
	fctx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
	defer cancel()

	current := d.sessions.Menu(key)

	switch b.Kind {
	case KindBreeds:
		labels, err := d.registry.RefreshBreeds(fctx)
		if err != nil {
			return textUnits("Не удалось получить список пород."), d.keyboardFor(current), err
		}
		d.sessions.SetMenu(key, MenuBreeds)
		return textUnits("Выбери породу кота:"), d.breedKeyboard(labels), nil

	case KindBreed:
		// Stays in the breed menu; only the back binding leaves it.
		units, err := d.breedCard(fctx, b.Trigger)
		return units, d.breedKeyboard(d.registry.BreedLabels()), err

	case KindBack:
		d.sessions.SetMenu(key, MenuMain)
		return textUnits("Вы вернулись в главное меню."), d.mainKeyboard(), nil

	case KindAstronomy:
		item, err := d.astronomy.RandomAstronomy(fctx)
		if err != nil {
			return textUnits("Произошла ошибка при получении картинки NASA."), d.keyboardFor(current), err
		}
		return compose.Astronomy(item), d.keyboardFor(current), nil

	case KindLatestLaunch:
		launch, err := d.launches.LatestLaunch(fctx)
		if err != nil {
			return textUnits("Ошибка при получении данных о последнем запуске."), d.keyboardFor(current), err
		}
		return compose.Launch("Последний запуск SpaceX:", launch), d.keyboardFor(current), nil

	case KindNextLaunch:
		launch, err := d.launches.NextLaunch(fctx)
		if err != nil {
			return textUnits("Ошибка при получении данных о ближайшем запуске."), d.keyboardFor(current), err
		}
		return compose.Launch("Ближайший запуск SpaceX:", launch), d.keyboardFor(current), nil

	case KindRockets:
		rockets, err := d.launches.Rockets(fctx)
		if err != nil {
			return textUnits("Ошибка при получении списка ракет."), d.keyboardFor(current), err
		}
		return compose.Rockets(rockets), d.keyboardFor(current), nil

	case KindCompany:
		company, err := d.launches.Company(fctx)
		if err != nil {
			return textUnits("Ошибка при получении информации о компании."), d.keyboardFor(current), err
		}
		return compose.Company(company), d.keyboardFor(current), nil

	case KindPets:
		pets, err := d.inventory.PetsByStatus(fctx, provider.PetStatusAvailable)
		if err != nil {
			return textUnits("Ошибка при получении списка питомцев."), d.keyboardFor(current), err
		}
		return compose.Pets(provider.PetStatusAvailable, pets), d.keyboardFor(current), nil

	default:
		return textUnits("Не понимаю эту команду."), d.keyboardFor(current), fmt.Errorf("unhandled binding kind %d", b.Kind)
	}
}

// breedCard fetches detail and a representative image for one breed. The
// name is matched against the full catalog, so a breed resolves even when
// it was not among the rendered buttons. A missing image degrades the card,
// it does not fail it.
func (d *Dispatcher) breedCard(ctx context.Context, name string) ([]domain.ContentUnit, error) {
	breed, err := d.cats.BreedByName(ctx, name)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return textUnits("Порода не найдена."), nil
		}
		return textUnits("Произошла ошибка при получении информации о породе."), err
	}

	imageURL, err := d.cats.ImageByBreed(ctx, breed.ID)
	if err != nil {
		d.logger.Warn("breed image unavailable", "breed", breed.ID, "err", err)
		imageURL = ""
	}
	return compose.Breed(breed, imageURL), nil
}

func (d *Dispatcher) mainKeyboard() *domain.Keyboard {
	return &domain.Keyboard{Rows: d.labels.MainRows()}
}

func (d *Dispatcher) breedKeyboard(labels []string) *domain.Keyboard {
	rows := make([][]string, 0, len(labels)+1)
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	rows = append(rows, []string{d.labels.Back})
	return &domain.Keyboard{Rows: rows}
}

func (d *Dispatcher) keyboardFor(m Menu) *domain.Keyboard {
	if m == MenuBreeds {
		return d.breedKeyboard(d.registry.BreedLabels())
	}
	return d.mainKeyboard()
}

func textUnits(body string) []domain.ContentUnit {
	return []domain.ContentUnit{domain.TextUnit(body)}
}
