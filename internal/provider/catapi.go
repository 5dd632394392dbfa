package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"multibot/internal/domain"
)

const (
	catAPIName        = "catapi"
	defaultCatAPIBase = "https://api.thecatapi.com/v1"
)

// CatAPI is the breed-catalog client.
type CatAPI struct {
	base   string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

type CatAPIConfig struct {
	APIBase string
	APIKey  string
	Client  *http.Client
	Logger  *slog.Logger
}

func NewCatAPI(cfg CatAPIConfig) *CatAPI {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultCatAPIBase
	}
	if cfg.Client == nil {
		cfg.Client = SharedHTTPClient(10 * time.Second)
	}
	return &CatAPI{
		base:   strings.TrimRight(cfg.APIBase, "/"),
		apiKey: cfg.APIKey,
		client: cfg.Client,
		logger: cfg.Logger,
	}
}

type catBreed struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LifeSpan    string `json:"life_span"`
}

type catImage struct {
	URL string `json:"url"`
}

func (b catBreed) toDomain() domain.Breed {
	return domain.Breed{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		LifeSpan:    b.LifeSpan,
	}
}

// ListBreeds fetches the full breed catalog in provider order.
func (c *CatAPI) ListBreeds(ctx context.Context) ([]domain.Breed, error) {
	var wire []catBreed
	if err := c.get(ctx, "list breeds", c.base+"/breeds", &wire); err != nil {
		return nil, err
	}

	breeds := make([]domain.Breed, 0, len(wire))
	for _, b := range wire {
		if b.Name == "" {
			continue
		}
		breeds = append(breeds, b.toDomain())
	}
	return breeds, nil
}

// BreedByName looks a breed up by case-insensitive name match against the
// full catalog, not just any rendered subset.
func (c *CatAPI) BreedByName(ctx context.Context, name string) (domain.Breed, error) {
	breeds, err := c.ListBreeds(ctx)
	if err != nil {
		return domain.Breed{}, err
	}
	for _, b := range breeds {
		if strings.EqualFold(b.Name, name) {
			return b, nil
		}
	}
	return domain.Breed{}, fetchErr(catAPIName, "breed by name", fmt.Errorf("breed %q: %w", name, ErrNotFound))
}

// ImageByBreed fetches one representative image URL for a breed id: the
// first search result, arbitrary when the provider returns several.
func (c *CatAPI) ImageByBreed(ctx context.Context, breedID string) (string, error) {
	endpoint := c.base + "/images/search?breed_ids=" + url.QueryEscape(breedID)

	var wire []catImage
	if err := c.get(ctx, "image search", endpoint, &wire); err != nil {
		return "", err
	}
	if len(wire) == 0 || wire[0].URL == "" {
		return "", fetchErr(catAPIName, "image search", fmt.Errorf("no image for breed %q: %w", breedID, ErrNotFound))
	}
	return wire[0].URL, nil
}

func (c *CatAPI) get(ctx context.Context, op, endpoint string, out any) error {
	return doJSON(ctx, c.client, c.logger, catAPIName, op, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}
		return req, nil
	}, out)
}
