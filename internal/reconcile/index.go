package reconcile

import (
	"github.com/shopspring/decimal"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/domain/pricing"
	"lootshop/internal/domain/shop"
)

// PriceView is the per-item pricing derived on each reconciliation pass.
// Final and Regular are nil when no applicable price exists; a bundle item
// has no single-item price at all — the owning offer's final price covers the
// whole set.
type PriceView struct {
	Final    *decimal.Decimal
	Regular  *decimal.Decimal
	IsBundle bool
	Offer    *shop.Offer
}

// Index maps catalog item ids to their owning shop offer. Views are derived
// fresh per lookup; the index itself holds no per-item state.
type Index struct {
	offerByItem map[string]*shop.Offer
}

// BuildIndex indexes offers by the ids of the items they contain. When an id
// appears in more than one offer the first one wins.
func BuildIndex(offers []shop.Offer) *Index {
	byItem := make(map[string]*shop.Offer)
	for i := range offers {
		offer := &offers[i]
		for _, item := range offer.Items {
			if !item.Usable() {
				continue
			}
			if _, ok := byItem[item.ID]; !ok {
				byItem[item.ID] = offer
			}
		}
	}
	return &Index{offerByItem: byItem}
}

// View derives the price view for an item:
//
//   - keyed by a single-item offer: the offer's final price, with the regular
//     price shown only when it differs;
//   - keyed by a bundle: no single-item price, the bundle flag set;
//   - unmatched: the static rarity estimate, when one exists.
func (ix *Index) View(item catalog.Item) PriceView {
	offer, ok := ix.offerByItem[item.ID]
	if !ok {
		view := PriceView{}
		if est, ok := pricing.SuggestByRarity(item.Rarity); ok {
			view.Final = &est
		}
		return view
	}

	if offer.IsBundle() {
		return PriceView{IsBundle: true, Offer: offer}
	}

	view := PriceView{Offer: offer}
	final := offer.FinalPrice
	view.Final = &final
	if !offer.RegularPrice.Equal(offer.FinalPrice) {
		regular := offer.RegularPrice
		view.Regular = &regular
	}
	return view
}
