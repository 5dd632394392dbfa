package domain

// UnitKind distinguishes the deliverable forms of a response.
type UnitKind string

const (
	UnitText  UnitKind = "text"
	UnitPhoto UnitKind = "photo"
)

// ContentUnit is one deliverable piece of a response: either a text block
// or an image with a caption. Composer output, transport input.
type ContentUnit struct {
	Kind     UnitKind
	Body     string // UnitText only
	ImageURL string // UnitPhoto only
	Caption  string // UnitPhoto only
}

func TextUnit(body string) ContentUnit {
	return ContentUnit{Kind: UnitText, Body: body}
}

func PhotoUnit(imageURL, caption string) ContentUnit {
	return ContentUnit{Kind: UnitPhoto, ImageURL: imageURL, Caption: caption}
}

// Keyboard is a fixed set of labeled quick-reply buttons, one label per
// button, laid out in rows.
type Keyboard struct {
	Rows [][]string
}

// SingleColumn builds a keyboard with one button per row.
func SingleColumn(labels ...string) *Keyboard {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	return &Keyboard{Rows: rows}
}
