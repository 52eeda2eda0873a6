// Package convert turns uploaded PDFs into editable PowerPoint decks and
// tracks the conversion jobs doing it.
package convert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the tunable conversion settings. A profile file is
// optional; zero fields fall back to the defaults.
type Profile struct {
	// MaxPages caps how many PDF pages become slides.
	MaxPages int `yaml:"maxPages"`
	// TitleFontPt and BodyFontPt are slide text sizes in points.
	TitleFontPt int `yaml:"titleFontPt"`
	BodyFontPt  int `yaml:"bodyFontPt"`
	// MinTextChars is the minimum extracted text length per page before
	// the editable placeholder is substituted.
	MinTextChars int `yaml:"minTextChars"`
}

// DefaultProfile returns the stock conversion settings.
func DefaultProfile() Profile {
	return Profile{
		MaxPages:     30,
		TitleFontPt:  28,
		BodyFontPt:   16,
		MinTextChars: 20,
	}
}

// LoadProfile reads a YAML profile, layering it over the defaults. A
// missing file yields the defaults without error.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("reading profile: %w", err)
	}

	var overlay Profile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return p, fmt.Errorf("parsing profile: %w", err)
	}

	if overlay.MaxPages > 0 {
		p.MaxPages = overlay.MaxPages
	}
	if overlay.TitleFontPt > 0 {
		p.TitleFontPt = overlay.TitleFontPt
	}
	if overlay.BodyFontPt > 0 {
		p.BodyFontPt = overlay.BodyFontPt
	}
	if overlay.MinTextChars > 0 {
		p.MinTextChars = overlay.MinTextChars
	}
	return p, nil
}
