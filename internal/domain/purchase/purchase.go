package purchase

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/domain/pricing"
	"lootshop/internal/reconcile"
)

// ErrNoPrice is returned when neither a live offer nor a rarity estimate can
// price the chosen item.
var ErrNoPrice = errors.New("item has no resolvable price")

// LineItem is one purchased item with its allocated share of the total.
type LineItem struct {
	Item  catalog.Item
	Price decimal.Decimal
}

// Request is the payload shape submitted to the backend collaborator. The
// allocator guarantees the line item prices sum to Total exactly at 2-decimal
// precision; callers never compute the split themselves.
type Request struct {
	Items      []LineItem
	BundleID   string
	BundleName string
	Total      decimal.Decimal
}

// Build constructs the purchase request for a chosen item given its current
// price view. When the item belongs to a genuine bundle the request covers
// the offer's full item list at the bundle's final price and carries the
// offer's id and display name; otherwise it covers just the chosen item at
// its resolved price.
func Build(item catalog.Item, view reconcile.PriceView) (Request, error) {
	offer := view.Offer
	bundle := offer != nil && offer.IsBundle() && containsItem(offer.Items, item.ID)

	var total decimal.Decimal
	switch {
	case view.Final != nil:
		total = *view.Final
	case bundle:
		total = offer.FinalPrice
	default:
		return Request{}, ErrNoPrice
	}

	items := []catalog.Item{item}
	req := Request{Total: total}
	if bundle {
		items = offer.Items
		req.BundleID = offer.ID
		req.BundleName = offer.BundleName
		if req.BundleName == "" && len(offer.Items) > 0 {
			req.BundleName = offer.Items[0].Name
		}
	}

	prices := pricing.Allocate(total, len(items))
	req.Items = make([]LineItem, len(items))
	for i, it := range items {
		req.Items[i] = LineItem{Item: it, Price: prices[i]}
	}
	return req, nil
}

// containsItem reports whether any offer item carries the given id.
func containsItem(items []catalog.Item, id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// OwnedRecord is one acquired item as the backend stores it.
type OwnedRecord struct {
	ID         string
	ItemID     string
	Name       string
	Price      decimal.Decimal
	Rarity     string
	Type       string
	Image      string
	BundleID   string
	BundleName string
	Active     bool
	AcquiredAt time.Time
	RefundedAt *time.Time
}

// HistoryEntry is one purchase or refund in the backend's ledger.
type HistoryEntry struct {
	ID         string
	Kind       string
	Amount     decimal.Decimal
	BundleID   string
	BundleName string
	CreatedAt  time.Time
}

// User is the backend-held account the engine purchases against. The engine
// never mutates it; it only shapes requests and interprets the backend's
// returned state.
type User struct {
	ID      string
	Name    string
	Email   string
	Balance decimal.Decimal
	Owned   []OwnedRecord
	History []HistoryEntry
}

// Backend is the collaborator owning all durable state: balance, inventory,
// and history. Purchase and Refund return the updated user on success.
type Backend interface {
	Purchase(ctx context.Context, userID string, req Request) (*User, error)
	Refund(ctx context.Context, userID, recordID string) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}
