package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"multibot/internal/domain"
)

const (
	petstoreName        = "petstore"
	defaultPetstoreBase = "https://petstore.swagger.io/v2"

	// PetStatusAvailable is the default listing status.
	PetStatusAvailable = "available"
)

// Petstore is the pet-inventory client.
type Petstore struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

type PetstoreConfig struct {
	APIBase string
	Client  *http.Client
	Logger  *slog.Logger
}

func NewPetstore(cfg PetstoreConfig) *Petstore {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultPetstoreBase
	}
	if cfg.Client == nil {
		cfg.Client = SharedHTTPClient(10 * time.Second)
	}
	return &Petstore{
		base:   strings.TrimRight(cfg.APIBase, "/"),
		client: cfg.Client,
		logger: cfg.Logger,
	}
}

type petWire struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	PhotoURLs []string `json:"photoUrls"`
}

func (p petWire) toDomain() domain.Pet {
	return domain.Pet{
		ID:        p.ID,
		Name:      p.Name,
		Status:    p.Status,
		PhotoURLs: p.PhotoURLs,
	}
}

// PetsByStatus lists pets in the given status; empty status means available.
func (p *Petstore) PetsByStatus(ctx context.Context, status string) ([]domain.Pet, error) {
	if status == "" {
		status = PetStatusAvailable
	}
	endpoint := p.base + "/pet/findByStatus?status=" + url.QueryEscape(status)

	var wire []petWire
	err := doJSON(ctx, p.client, p.logger, petstoreName, "find by status", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, &wire)
	if err != nil {
		return nil, err
	}

	pets := make([]domain.Pet, 0, len(wire))
	for _, w := range wire {
		pets = append(pets, w.toDomain())
	}
	return pets, nil
}

// PetPhoto fetches a pet's primary photo URL: the first of its photo list.
// A pet with no photos is reported as absence.
func (p *Petstore) PetPhoto(ctx context.Context, id int64) (string, error) {
	endpoint := fmt.Sprintf("%s/pet/%d", p.base, id)

	var wire petWire
	err := doJSON(ctx, p.client, p.logger, petstoreName, "pet photo", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, &wire)
	if err != nil {
		return "", err
	}
	if len(wire.PhotoURLs) == 0 || wire.PhotoURLs[0] == "" {
		return "", fetchErr(petstoreName, "pet photo", fmt.Errorf("pet %d has no photos: %w", id, ErrNotFound))
	}
	return wire.PhotoURLs[0], nil
}

// CreatePet adds a pet record with the given name and status.
func (p *Petstore) CreatePet(ctx context.Context, name, status string) (domain.Pet, error) {
	if status == "" {
		status = PetStatusAvailable
	}
	payload, err := json.Marshal(petWire{Name: name, Status: status, PhotoURLs: []string{}})
	if err != nil {
		return domain.Pet{}, fetchErr(petstoreName, "create pet", err)
	}

	var wire petWire
	err = doJSON(ctx, p.client, p.logger, petstoreName, "create pet", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/pet", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &wire)
	if err != nil {
		return domain.Pet{}, err
	}
	return wire.toDomain(), nil
}
