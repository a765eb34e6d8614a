package catalog

import "time"

// Item is the canonical, de-duplicated representation of a catalog entry.
// Identity is the ID field; two raw records naming the same underlying item
// resolve to equal IDs only through their identifier variant sets (see
// Variants), never through direct field comparison.
type Item struct {
	ID     string
	Name   string
	Type   string
	Rarity string
	// Added is the catalog inclusion date, zero when the feed omits it.
	Added time.Time
	Image string
}

// Usable reports whether the item carries a resolvable identifier.
// Items mapped from records without any id field are kept out of offer
// tagging and purchase flows.
func (i Item) Usable() bool {
	return i.ID != ""
}

// RecentVariants returns the union of identifier variants of every item whose
// added date falls within the window ending at now. It backs the documented
// fallback for the deprecated "new items" feed endpoint: when that endpoint
// is gone, recency is recomputed from catalog added dates.
func RecentVariants(items []Item, now time.Time, window time.Duration) IDSet {
	cutoff := now.Add(-window)
	recent := make(IDSet)
	for _, item := range items {
		if item.Added.IsZero() || item.Added.Before(cutoff) {
			continue
		}
		for _, v := range IDVariants(item.ID) {
			recent.Add(v)
		}
	}
	return recent
}
