package compose

import (
	"net/url"
	"path"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// IsImageURL reports whether raw is an http(s) URL pointing at a recognized
// image file. The query string and fragment are ignored for the extension
// check.
func IsImageURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return imageExtensions[ext]
}
