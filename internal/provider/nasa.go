package provider

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"multibot/internal/domain"
)

const (
	nasaName        = "nasa"
	defaultNASABase = "https://api.nasa.gov"

	// astronomyWindowDays is the trailing window a random picture date is
	// drawn from, inclusive of today and of the oldest day.
	astronomyWindowDays = 365
)

// NASA is the astronomy-picture-of-the-day client.
type NASA struct {
	base   string
	apiKey string
	client *http.Client
	logger *slog.Logger

	now func() time.Time
}

type NASAConfig struct {
	APIBase string
	APIKey  string
	Client  *http.Client
	Logger  *slog.Logger
	Now     func() time.Time // test hook, defaults to time.Now
}

func NewNASA(cfg NASAConfig) *NASA {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultNASABase
	}
	if cfg.Client == nil {
		cfg.Client = SharedHTTPClient(10 * time.Second)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &NASA{
		base:   strings.TrimRight(cfg.APIBase, "/"),
		apiKey: cfg.APIKey,
		client: cfg.Client,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
}

type apodResponse struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	Date        string `json:"date"`
}

// RandomAstronomy picks a uniformly random calendar date within the
// trailing 365-day window and fetches that day's item.
func (n *NASA) RandomAstronomy(ctx context.Context) (domain.AstronomyItem, error) {
	daysBack := rand.Intn(astronomyWindowDays + 1)
	date := n.now().AddDate(0, 0, -daysBack).Format("2006-01-02")

	q := url.Values{}
	q.Set("api_key", n.apiKey)
	q.Set("date", date)
	endpoint := n.base + "/planetary/apod?" + q.Encode()

	var wire apodResponse
	err := doJSON(ctx, n.client, n.logger, nasaName, "apod "+date, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, &wire)
	if err != nil {
		return domain.AstronomyItem{}, err
	}

	return domain.AstronomyItem{
		Title:       wire.Title,
		Explanation: wire.Explanation,
		ImageURL:    wire.URL,
		Date:        wire.Date,
	}, nil
}
