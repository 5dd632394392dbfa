// Package menu holds the main-menu button labels. Labels default to the
// built-in set and can be overridden per deployment from a YAML file.
package menu

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Labels are the trigger texts of the static menu bindings.
type Labels struct {
	Breeds       string `yaml:"breeds"`
	Astronomy    string `yaml:"astronomy"`
	LatestLaunch string `yaml:"latestLaunch"`
	NextLaunch   string `yaml:"nextLaunch"`
	Rockets      string `yaml:"rockets"`
	Company      string `yaml:"company"`
	Pets         string `yaml:"pets"`
	Back         string `yaml:"back"`
}

func Defaults() Labels {
	return Labels{
		Breeds:       "Котики",
		Astronomy:    "Случайная картинка NASA",
		LatestLaunch: "SpaceX: Последний запуск",
		NextLaunch:   "SpaceX: Ближайший запуск",
		Rockets:      "SpaceX: Ракеты",
		Company:      "SpaceX: О компании",
		Pets:         "Питомцы",
		Back:         "Назад",
	}
}

// Load returns the defaults overlaid with any labels set in the YAML file
// at path. A missing path is not an error; a malformed file is.
func Load(path string, logger *slog.Logger) (Labels, error) {
	labels := Defaults()
	if path == "" {
		return labels, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("menu file does not exist, using defaults", "path", path)
		return labels, nil
	}
	if err != nil {
		return labels, fmt.Errorf("read menu file: %w", err)
	}

	var override Labels
	if err := yaml.Unmarshal(data, &override); err != nil {
		return labels, fmt.Errorf("parse menu file %s: %w", path, err)
	}

	merge(&labels.Breeds, override.Breeds)
	merge(&labels.Astronomy, override.Astronomy)
	merge(&labels.LatestLaunch, override.LatestLaunch)
	merge(&labels.NextLaunch, override.NextLaunch)
	merge(&labels.Rockets, override.Rockets)
	merge(&labels.Company, override.Company)
	merge(&labels.Pets, override.Pets)
	merge(&labels.Back, override.Back)

	logger.Info("loaded menu labels", "path", path)
	return labels, nil
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// MainRows lays the main menu out one button per row.
func (l Labels) MainRows() [][]string {
	return [][]string{
		{l.Breeds},
		{l.Astronomy},
		{l.LatestLaunch},
		{l.NextLaunch},
		{l.Rockets},
		{l.Company},
		{l.Pets},
	}
}
