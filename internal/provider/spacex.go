package provider

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"multibot/internal/domain"
)

const (
	spacexName        = "spacex"
	defaultSpaceXBase = "https://api.spacexdata.com/v4"
)

// SpaceX is the launch-data client.
type SpaceX struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

type SpaceXConfig struct {
	APIBase string
	Client  *http.Client
	Logger  *slog.Logger
}

func NewSpaceX(cfg SpaceXConfig) *SpaceX {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultSpaceXBase
	}
	if cfg.Client == nil {
		cfg.Client = SharedHTTPClient(10 * time.Second)
	}
	return &SpaceX{
		base:   strings.TrimRight(cfg.APIBase, "/"),
		client: cfg.Client,
		logger: cfg.Logger,
	}
}

type spacexLaunch struct {
	Name    string `json:"name"`
	DateUTC string `json:"date_utc"`
	Success *bool  `json:"success"`
	Details string `json:"details"`
	Links   struct {
		Webcast string `json:"webcast"`
		Patch   struct {
			Large string `json:"large"`
		} `json:"patch"`
	} `json:"links"`
}

func (l spacexLaunch) toDomain() domain.LaunchSummary {
	// An absent success flag is Unknown, never Failure.
	status := domain.StatusUnknown
	if l.Success != nil {
		if *l.Success {
			status = domain.StatusSuccess
		} else {
			status = domain.StatusFailure
		}
	}
	return domain.LaunchSummary{
		Name:          l.Name,
		DateUTC:       l.DateUTC,
		Status:        status,
		Details:       l.Details,
		WebcastURL:    l.Links.Webcast,
		PatchImageURL: l.Links.Patch.Large,
	}
}

type spacexRocket struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	FlickrImages []string `json:"flickr_images"`
}

type spacexCompany struct {
	Name      string `json:"name"`
	Founder   string `json:"founder"`
	Founded   int    `json:"founded"`
	Employees int    `json:"employees"`
	Summary   string `json:"summary"`
}

// LatestLaunch fetches the most recent launch.
func (s *SpaceX) LatestLaunch(ctx context.Context) (domain.LaunchSummary, error) {
	return s.launch(ctx, "latest launch", s.base+"/launches/latest")
}

// NextLaunch fetches the next scheduled launch.
func (s *SpaceX) NextLaunch(ctx context.Context) (domain.LaunchSummary, error) {
	return s.launch(ctx, "next launch", s.base+"/launches/next")
}

func (s *SpaceX) launch(ctx context.Context, op, endpoint string) (domain.LaunchSummary, error) {
	var wire spacexLaunch
	if err := s.get(ctx, op, endpoint, &wire); err != nil {
		return domain.LaunchSummary{}, err
	}
	return wire.toDomain(), nil
}

// Rockets fetches all rocket models.
func (s *SpaceX) Rockets(ctx context.Context) ([]domain.Rocket, error) {
	var wire []spacexRocket
	if err := s.get(ctx, "rockets", s.base+"/rockets", &wire); err != nil {
		return nil, err
	}
	rockets := make([]domain.Rocket, 0, len(wire))
	for _, r := range wire {
		rockets = append(rockets, domain.Rocket{
			Name:        r.Name,
			Description: r.Description,
			ImageURLs:   r.FlickrImages,
		})
	}
	return rockets, nil
}

// Company fetches the company profile.
func (s *SpaceX) Company(ctx context.Context) (domain.CompanyInfo, error) {
	var wire spacexCompany
	if err := s.get(ctx, "company", s.base+"/company", &wire); err != nil {
		return domain.CompanyInfo{}, err
	}
	return domain.CompanyInfo{
		Name:      wire.Name,
		Founder:   wire.Founder,
		Founded:   wire.Founded,
		Employees: wire.Employees,
		Summary:   wire.Summary,
	}, nil
}

func (s *SpaceX) get(ctx context.Context, op, endpoint string, out any) error {
	return doJSON(ctx, s.client, s.logger, spacexName, op, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, out)
}
