package shop

import (
	"github.com/shopspring/decimal"

	"lootshop/internal/domain/catalog"
)

// Offer is a shop-feed listing carrying authoritative current pricing.
// A single-item offer is a plain listing; more than one item marks a bundle —
// buying any one of its items purchases the whole set at FinalPrice.
type Offer struct {
	ID           string
	BundleName   string
	RegularPrice decimal.Decimal
	FinalPrice   decimal.Decimal
	Promotional  bool
	Items        []catalog.Item
}

// IsBundle reports whether the offer sells more than one item as a set.
func (o Offer) IsBundle() bool {
	return len(o.Items) > 1
}

// Entry is a raw shop-feed listing in the loose shape the feed serves.
// Price fields are pointers so that an absent regular/final split can fall
// back to the shared Price field.
type Entry struct {
	OfferID string
	DevName string

	RegularPrice *float64
	FinalPrice   *float64
	Price        *float64

	// Items and AltItems are the two known item-array fields; whichever is
	// populated wins, with Items taking precedence.
	Items    []catalog.RawItem
	AltItems []catalog.RawItem

	BundleName string
	// FlatBundleName is the legacy endpoint's top-level bundle name field.
	FlatBundleName string
	LayoutName     string

	DisplayAsset *catalog.RawDisplayAsset
}

// Mapped is the result of one shop mapping pass: ordered offers plus the
// accumulated global identifier sets.
type Mapped struct {
	Offers      []Offer
	OnSale      catalog.IDSet
	OnPromotion catalog.IDSet
}
