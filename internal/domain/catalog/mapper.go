package catalog

import (
	"strings"
	"time"
)

// Defaults applied when a raw record omits optional classifier fields.
const (
	DefaultType   = "unknown"
	DefaultRarity = "common"
)

// addedLayouts are the date shapes the feeds serve, most specific first.
var addedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MapItem converts a raw feed record into a canonical Item. Missing optional
// fields never fail the mapping: classifiers fall back to defaults, the image
// is the first populated of icon, small icon, and featured, and a record with
// no identifier maps to an item with an empty id, which downstream treats as
// unusable.
func MapItem(raw RawItem) Item {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = strings.TrimSpace(raw.MainID)
	}

	name := raw.Name
	if name == "" {
		name = "Unknown"
	}

	added := raw.Added
	if added == "" {
		added = raw.IntroducedAt
	}

	return Item{
		ID:     id,
		Name:   name,
		Type:   raw.Type.Resolve(DefaultType),
		Rarity: raw.Rarity.Resolve(DefaultRarity),
		Added:  parseAdded(added),
		Image:  raw.Images.First(),
	}
}

// parseAdded parses a feed date, returning the zero time when the value is
// absent or in none of the known shapes.
func parseAdded(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range addedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
