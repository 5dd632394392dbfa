package domain

// Provider payloads. All are immutable value types constructed fresh per
// request; none persist beyond the request that produced them.

// Breed is one entry of the cat-breed catalog.
type Breed struct {
	ID          string
	Name        string
	Description string
	LifeSpan    string // provider range string, e.g. "12 - 15"
}

// AstronomyItem is one astronomy-picture-of-the-day record.
type AstronomyItem struct {
	Title       string
	Explanation string
	ImageURL    string
	Date        string // ISO date the item was published for
}

// LaunchStatus is the tri-state outcome of a launch. A provider that omits
// the success flag yields StatusUnknown, never StatusFailure.
type LaunchStatus int

const (
	StatusUnknown LaunchStatus = iota
	StatusSuccess
	StatusFailure
)

// LaunchSummary describes a single rocket launch.
type LaunchSummary struct {
	Name          string
	DateUTC       string
	Status        LaunchStatus
	Details       string
	WebcastURL    string
	PatchImageURL string
}

// Rocket describes one rocket model.
type Rocket struct {
	Name        string
	Description string
	ImageURLs   []string
}

// CompanyInfo is the launch provider's company profile.
type CompanyInfo struct {
	Name      string
	Founder   string
	Founded   int
	Employees int
	Summary   string
}

// Pet is one record of the pet inventory.
type Pet struct {
	ID        int64
	Name      string
	Status    string
	PhotoURLs []string
}
