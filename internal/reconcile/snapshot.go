// Package reconcile joins canonical catalog items against shop offers and the
// cross-feed sync snapshot, producing per-item pricing and status views.
package reconcile

import "lootshop/internal/domain/catalog"

// Snapshot is the wholesale-replaceable bundle of cross-feed lookup sets
// refreshed by the sync driver. A snapshot is immutable once published:
// refreshes publish a new value instead of editing the sets in place, so
// readers always observe a complete snapshot.
type Snapshot struct {
	NewIDs     catalog.IDSet
	OnSaleIDs  catalog.IDSet
	OnPromoIDs catalog.IDSet
}

// EmptySnapshot returns the startup snapshot with empty sets.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		NewIDs:     make(catalog.IDSet),
		OnSaleIDs:  make(catalog.IDSet),
		OnPromoIDs: make(catalog.IDSet),
	}
}

// IsNew reports whether any identifier variant of the item is in the
// new-items set.
func (s *Snapshot) IsNew(item catalog.Item) bool {
	return hasAnyVariant(s.NewIDs, item.ID)
}

// IsOnSale reports whether any identifier variant of the item is in the
// on-sale set.
func (s *Snapshot) IsOnSale(item catalog.Item) bool {
	return hasAnyVariant(s.OnSaleIDs, item.ID)
}

// IsOnPromotion reports whether any identifier variant of the item is in the
// on-promotion set.
func (s *Snapshot) IsOnPromotion(item catalog.Item) bool {
	return hasAnyVariant(s.OnPromoIDs, item.ID)
}

// hasAnyVariant tests set membership across every variant form of id;
// a match on any single variant counts.
func hasAnyVariant(set catalog.IDSet, id string) bool {
	for _, v := range catalog.IDVariants(id) {
		if set.Has(v) {
			return true
		}
	}
	return false
}
