// Package compose turns provider payloads into platform-safe content units.
// All functions are pure: they never fetch, never fail, and degrade
// gracefully when a payload field is missing or an image URL is unusable.
package compose

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"multibot/internal/domain"
)

const (
	// CaptionLimit is the platform ceiling for a photo caption.
	CaptionLimit = 1000
	// TextLimit is the platform ceiling for a standalone text body.
	TextLimit = 4096

	// explanationSplit is where an overlong astronomy explanation is cut
	// before the continuation unit takes over.
	explanationSplit = 950
	// rocketDescLimit caps a rocket description before caption assembly.
	rocketDescLimit = 900
	// maxRockets bounds how many rockets are rendered per request.
	maxRockets = 5
	// maxPetLines bounds the pet inventory listing.
	maxPetLines = 10

	unknownText       = "Неизвестно"
	noDescriptionText = "Нет описания"
)

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func runeLen(s string) int { return len([]rune(s)) }

// PhotoOrText places the URL into a Photo unit when it validates as an
// image link; otherwise the unit degrades to Text carrying the raw URL.
func PhotoOrText(imageURL, caption string) domain.ContentUnit {
	if IsImageURL(imageURL) {
		return domain.PhotoUnit(imageURL, truncate(caption, CaptionLimit))
	}
	return domain.TextUnit(truncate(caption+"\n"+imageURL, TextLimit))
}

// Breed renders a breed card: a photo with the info caption when the image
// URL validates, otherwise text with an explanatory note about the image.
func Breed(b domain.Breed, imageURL string) []domain.ContentUnit {
	info := fmt.Sprintf("Информация о породе кота:\nНазвание породы: %s\nОписание породы: %s\nПродолжительность жизни: %s лет",
		b.Name, b.Description, b.LifeSpan)

	switch {
	case imageURL == "":
		return []domain.ContentUnit{domain.TextUnit(truncate(info+"\n(Изображение не найдено)", TextLimit))}
	case !IsImageURL(imageURL):
		return []domain.ContentUnit{domain.TextUnit(truncate(info+"\n(Это не ссылка на изображение: "+imageURL+")", TextLimit))}
	default:
		return photoWithOverflow(imageURL, info)
	}
}

// Astronomy renders the picture of the day. A caption over the platform
// limit is split: the photo keeps the title plus the first 950 explanation
// characters and an ellipsis, a trailing text unit carries the remainder.
func Astronomy(item domain.AstronomyItem) []domain.ContentUnit {
	caption := item.Title + "\n\n" + item.Explanation
	if runeLen(caption) <= CaptionLimit {
		return []domain.ContentUnit{PhotoOrText(item.ImageURL, caption)}
	}

	expl := []rune(item.Explanation)
	cut := explanationSplit
	if cut > len(expl) {
		cut = len(expl)
	}
	head := truncate(item.Title+"\n\n"+string(expl[:cut])+"...", CaptionLimit)
	tail := "Продолжение описания:\n" + string(expl[cut:])

	return []domain.ContentUnit{
		PhotoOrText(item.ImageURL, head),
		domain.TextUnit(truncate(tail, TextLimit)),
	}
}

// Launch renders one launch under the given header line. The patch image is
// used as the primary unit when it validates; a webcast link, when present,
// follows as a separate text unit.
func Launch(header string, l domain.LaunchSummary) []domain.ContentUnit {
	name := l.Name
	if name == "" {
		name = unknownText
	}
	date := l.DateUTC
	if date == "" {
		date = unknownText
	}
	details := l.Details
	if details == "" {
		details = noDescriptionText
	}
	text := fmt.Sprintf("%s\nНазвание: %s\nДата: %s\nСтатус: %s\nОписание: %s",
		header, name, date, statusText(l.Status), details)

	var units []domain.ContentUnit
	if l.PatchImageURL != "" && IsImageURL(l.PatchImageURL) {
		units = append(units, domain.PhotoUnit(l.PatchImageURL, truncate(text, CaptionLimit)))
	} else {
		units = append(units, domain.TextUnit(truncate(text, TextLimit)))
	}
	if l.WebcastURL != "" {
		units = append(units, domain.TextUnit("Видео запуска: "+l.WebcastURL))
	}
	return units
}

func statusText(s domain.LaunchStatus) string {
	switch s {
	case domain.StatusSuccess:
		return "Успех"
	case domain.StatusFailure:
		return "Неудача"
	default:
		return unknownText
	}
}

// Rockets renders at most five rockets, one unit each. A rocket gets a
// photo unit only when its first listed image URL validates.
func Rockets(rockets []domain.Rocket) []domain.ContentUnit {
	if len(rockets) == 0 {
		return []domain.ContentUnit{domain.TextUnit("Не удалось получить список ракет.")}
	}
	shown := rockets
	if len(shown) > maxRockets {
		shown = shown[:maxRockets]
	}

	units := make([]domain.ContentUnit, 0, len(shown))
	for _, r := range shown {
		name := r.Name
		if name == "" {
			name = unknownText
		}
		desc := r.Description
		if desc == "" {
			desc = noDescriptionText
		}
		text := "Ракета: " + name + "\n" + truncate(desc, rocketDescLimit)

		if len(r.ImageURLs) > 0 && IsImageURL(r.ImageURLs[0]) {
			units = append(units, domain.PhotoUnit(r.ImageURLs[0], truncate(text, CaptionLimit)))
		} else {
			units = append(units, domain.TextUnit(text))
		}
	}
	return units
}

// Company renders the company profile as a single text unit.
func Company(c domain.CompanyInfo) []domain.ContentUnit {
	founder := c.Founder
	if founder == "" {
		founder = unknownText
	}
	text := fmt.Sprintf("%s\nОснователь: %s\nГод основания: %d\nСотрудников: %d\n\n%s",
		c.Name, founder, c.Founded, c.Employees, c.Summary)
	return []domain.ContentUnit{domain.TextUnit(truncate(text, TextLimit))}
}

// Pets renders the inventory listing for the given status.
func Pets(status string, pets []domain.Pet) []domain.ContentUnit {
	if len(pets) == 0 {
		return []domain.ContentUnit{domain.TextUnit("Питомцы не найдены.")}
	}
	shown := pets
	if len(shown) > maxPetLines {
		shown = shown[:maxPetLines]
	}
	lines := lo.Map(shown, func(p domain.Pet, _ int) string {
		name := p.Name
		if name == "" {
			name = "Без имени"
		}
		return "• " + name + " (" + p.Status + ")"
	})
	text := fmt.Sprintf("Питомцы со статусом «%s» (%d):\n%s", status, len(pets), strings.Join(lines, "\n"))
	return []domain.ContentUnit{domain.TextUnit(truncate(text, TextLimit))}
}

// photoWithOverflow emits a photo whose caption is split into a trailing
// text continuation when it exceeds the caption limit.
func photoWithOverflow(imageURL, caption string) []domain.ContentUnit {
	r := []rune(caption)
	if len(r) <= CaptionLimit {
		return []domain.ContentUnit{domain.PhotoUnit(imageURL, caption)}
	}
	cut := CaptionLimit - 3 // room for the ellipsis
	head := string(r[:cut]) + "..."
	tail := "Продолжение:\n" + string(r[cut:])
	return []domain.ContentUnit{
		domain.PhotoUnit(imageURL, head),
		domain.TextUnit(truncate(tail, TextLimit)),
	}
}
