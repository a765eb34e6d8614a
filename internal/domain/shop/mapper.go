package shop

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"lootshop/internal/domain/catalog"
)

// MapEntries converts raw shop-feed listings (current schema) into canonical
// offers and accumulates the global on-sale and on-promotion identifier sets.
// Malformed listings degrade instead of failing: missing prices fall back to
// the shared price field, items without a resolvable id are skipped, and a
// listing advertised only by a display asset still tags that identifier.
func MapEntries(entries []Entry) Mapped {
	m := Mapped{
		OnSale:      make(catalog.IDSet),
		OnPromotion: make(catalog.IDSet),
	}

	for _, entry := range entries {
		regular := resolvePrice(entry.RegularPrice, entry.Price)
		final := resolvePrice(entry.FinalPrice, entry.Price)
		promo := final > 0 && regular > 0 && final < regular

		rawItems := entry.Items
		if len(rawItems) == 0 {
			rawItems = entry.AltItems
		}

		// A listing with no enumerated items but a display asset is a bundle
		// advertised by a single visual; its identifier still marks the sets.
		if len(rawItems) == 0 && entry.DisplayAsset != nil && entry.DisplayAsset.CosmeticID != "" {
			tagID(m.OnSale, entry.DisplayAsset.CosmeticID)
			if promo {
				tagID(m.OnPromotion, entry.DisplayAsset.CosmeticID)
			}
		}

		items := make([]catalog.Item, 0, len(rawItems))
		for _, raw := range rawItems {
			item := catalog.MapItem(raw)
			if !item.Usable() {
				continue
			}
			items = append(items, item)
			catalog.AddVariants(m.OnSale, raw)
			if promo {
				catalog.AddVariants(m.OnPromotion, raw)
			}
		}

		m.Offers = append(m.Offers, Offer{
			ID:           offerID(entry, len(m.Offers)),
			BundleName:   bundleName(entry),
			RegularPrice: offerPrice(entry.RegularPrice, entry.Price, final),
			FinalPrice:   offerPrice(entry.FinalPrice, entry.Price, regular),
			Promotional:  promo,
			Items:        items,
		})
	}

	return m
}

// MapLegacyEntries converts listings served by the legacy shop endpoint.
// The legacy schema enumerates items only in the plain items field (AltItems
// on the wire type), has no positivity guard on the promotion predicate, and
// falls back to a flat bundle-name field.
func MapLegacyEntries(entries []Entry) Mapped {
	m := Mapped{
		OnSale:      make(catalog.IDSet),
		OnPromotion: make(catalog.IDSet),
	}

	for _, entry := range entries {
		regular := resolvePrice(entry.RegularPrice, entry.Price)
		final := resolvePrice(entry.FinalPrice, entry.Price)
		promo := final < regular

		items := make([]catalog.Item, 0, len(entry.AltItems))
		for _, raw := range entry.AltItems {
			item := catalog.MapItem(raw)
			if !item.Usable() {
				continue
			}
			items = append(items, item)
			catalog.AddVariants(m.OnSale, raw)
			if promo {
				catalog.AddVariants(m.OnPromotion, raw)
			}
		}

		name := entry.BundleName
		if name == "" {
			name = entry.FlatBundleName
		}

		m.Offers = append(m.Offers, Offer{
			ID:           offerID(entry, len(m.Offers)),
			BundleName:   name,
			RegularPrice: offerPrice(entry.RegularPrice, entry.Price, final),
			FinalPrice:   offerPrice(entry.FinalPrice, entry.Price, regular),
			Promotional:  promo,
			Items:        items,
		})
	}

	return m
}

// resolvePrice applies the feed's price fallback: the dedicated field when
// present, else the shared price field, else zero.
func resolvePrice(dedicated, shared *float64) float64 {
	switch {
	case dedicated != nil:
		return *dedicated
	case shared != nil:
		return *shared
	default:
		return 0
	}
}

// offerPrice resolves the stored offer price. When one side of the
// regular/final split is wholly absent (neither a dedicated nor a shared price
// field) it mirrors the counterpart side, so a single-priced listing reads as
// undiscounted rather than free. This deliberately diverges from feeds that
// report an absent side as zero; zero regular prices make every listing look
// promotional downstream.
func offerPrice(dedicated, shared *float64, counterpart float64) decimal.Decimal {
	if dedicated == nil && shared == nil {
		return decimal.NewFromFloat(counterpart)
	}
	return decimal.NewFromFloat(resolvePrice(dedicated, shared))
}

// offerID picks a stable listing id: the feed's own offer id, falling back to
// the developer name, falling back to a positional placeholder unique only
// within one mapping pass.
func offerID(entry Entry, index int) string {
	if entry.OfferID != "" {
		return entry.OfferID
	}
	if entry.DevName != "" {
		return entry.DevName
	}
	return "offer-" + strconv.Itoa(index)
}

// bundleName picks a display name for a listing: the bundle's own name, the
// layout name, then the developer name.
func bundleName(entry Entry) string {
	switch {
	case entry.BundleName != "":
		return entry.BundleName
	case entry.LayoutName != "":
		return entry.LayoutName
	default:
		return entry.DevName
	}
}

// tagID adds the lowercase variant forms of a bare identifier string to the set.
func tagID(set catalog.IDSet, id string) {
	for _, v := range catalog.IDVariants(id) {
		set.Add(strings.ToLower(v))
	}
}
