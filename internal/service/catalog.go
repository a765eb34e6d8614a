// Package service joins the canonical catalog, the mapped shop offers, and
// the sync snapshot into the views the HTTP shell serves.
package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/domain/shop"
	"lootshop/internal/reconcile"
	"lootshop/internal/syncer"
)

// ErrNotFound is returned when no catalog item carries the requested id.
var ErrNotFound = errors.New("item not found")

// DefaultPageSize is the browse page size.
const DefaultPageSize = 24

// recencyWindow bounds the added-date fallback used when the new-items feed
// publishes nothing.
const recencyWindow = 30 * 24 * time.Hour

// Feed is the slice of the feed client the catalog service consumes.
type Feed interface {
	FetchItems(ctx context.Context) ([]catalog.RawItem, error)
	FetchShop(ctx context.Context) (shop.Mapped, error)
	FetchItemDetails(ctx context.Context, id string) (jx.Raw, error)
}

// Query filters one browse call. Zero values mean "no filter"; Page is
// 1-based and clamps to the first page.
type Query struct {
	Search string
	Type   string
	Rarity string

	OnlyNew    bool
	OnlyOnSale bool
	OnlyPromo  bool

	Page int
}

// ItemView is one catalog item joined with its price view and snapshot flags.
type ItemView struct {
	Item  catalog.Item
	Price reconcile.PriceView

	New         bool
	OnSale      bool
	OnPromotion bool
}

// Page is one browse result page.
type Page struct {
	Items     []ItemView
	Page      int
	PageCount int
	Total     int
}

// Catalog serves browse, detail, and purchase-resolution lookups. The catalog
// and offer fetch is cached for the TTL; snapshot flags are always read fresh
// from the sync store, so sale/promotion state follows the driver's cadence
// regardless of the cache.
type Catalog struct {
	feed     Feed
	store    *syncer.Store
	pageSize int
	ttl      time.Duration
	now      func() time.Time
	lg       *zap.Logger

	mu       sync.Mutex
	items    []catalog.Item
	index    *reconcile.Index
	loadedAt time.Time
}

// NewCatalog creates the catalog service. ttl bounds how long one catalog +
// shop fetch is reused; non-positive values disable caching.
func NewCatalog(feed Feed, store *syncer.Store, ttl time.Duration, lg *zap.Logger) *Catalog {
	return &Catalog{
		feed:     feed,
		store:    store,
		pageSize: DefaultPageSize,
		ttl:      ttl,
		now:      time.Now,
		lg:       lg,
	}
}

// load returns the cached catalog and offer index, refreshing both from the
// feed when the cache is stale. Items and offers are fetched together so a
// page never joins a fresh catalog against stale offers.
func (c *Catalog) load(ctx context.Context) ([]catalog.Item, *reconcile.Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl {
		return c.items, c.index, nil
	}

	raws, err := c.feed.FetchItems(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch catalog")
	}
	mapped, err := c.feed.FetchShop(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch shop")
	}

	items := make([]catalog.Item, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		item := catalog.MapItem(raw)
		if !item.Usable() {
			continue
		}
		// The feed occasionally repeats a record; the first occurrence wins.
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}

	c.items = items
	c.index = reconcile.BuildIndex(mapped.Offers)
	c.loadedAt = c.now()
	c.lg.Debug("Catalog loaded",
		zap.Int("items", len(items)),
		zap.Int("offers", len(mapped.Offers)),
	)
	return c.items, c.index, nil
}

// newSet returns the effective new-items set: the snapshot's set when the
// feed published one, otherwise recency recomputed from catalog added dates.
func (c *Catalog) newSet(snap *reconcile.Snapshot, items []catalog.Item) catalog.IDSet {
	if snap.NewIDs.Len() > 0 {
		return snap.NewIDs
	}
	return catalog.RecentVariants(items, c.now(), recencyWindow)
}

// Browse returns one filtered, sorted page of joined item views.
func (c *Catalog) Browse(ctx context.Context, q Query) (Page, error) {
	items, index, err := c.load(ctx)
	if err != nil {
		return Page{}, err
	}

	snap := c.store.Load()
	newIDs := c.newSet(snap, items)

	matched := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{
			Item:        item,
			New:         hasAnyVariant(newIDs, item.ID),
			OnSale:      snap.IsOnSale(item),
			OnPromotion: snap.IsOnPromotion(item),
		}
		if !q.match(view) {
			continue
		}
		view.Price = index.View(item)
		matched = append(matched, view)
	}

	sortViews(matched)
	return paginate(matched, q.Page, c.pageSize), nil
}

// Resolve returns the canonical item and its current price view, for the
// purchase path.
func (c *Catalog) Resolve(ctx context.Context, itemID string) (catalog.Item, reconcile.PriceView, error) {
	items, index, err := c.load(ctx)
	if err != nil {
		return catalog.Item{}, reconcile.PriceView{}, err
	}
	for _, item := range items {
		if item.ID == itemID {
			return item, index.View(item), nil
		}
	}
	return catalog.Item{}, reconcile.PriceView{}, errors.Wrapf(ErrNotFound, "item %s", itemID)
}

// Details returns the joined view plus the raw upstream detail payload.
// The payload is best-effort: a dead details endpoint degrades to the view
// alone rather than failing the page.
func (c *Catalog) Details(ctx context.Context, itemID string) (ItemView, jx.Raw, error) {
	items, index, err := c.load(ctx)
	if err != nil {
		return ItemView{}, nil, err
	}

	var item catalog.Item
	found := false
	for _, it := range items {
		if it.ID == itemID {
			item, found = it, true
			break
		}
	}
	if !found {
		return ItemView{}, nil, errors.Wrapf(ErrNotFound, "item %s", itemID)
	}

	snap := c.store.Load()
	view := ItemView{
		Item:        item,
		Price:       index.View(item),
		New:         hasAnyVariant(c.newSet(snap, items), item.ID),
		OnSale:      snap.IsOnSale(item),
		OnPromotion: snap.IsOnPromotion(item),
	}

	raw, err := c.feed.FetchItemDetails(ctx, itemID)
	if err != nil {
		c.lg.Debug("Item details unavailable", zap.String("item_id", itemID), zap.Error(err))
		raw = nil
	}
	return view, raw, nil
}

func (q Query) match(v ItemView) bool {
	if q.OnlyNew && !v.New {
		return false
	}
	if q.OnlyOnSale && !v.OnSale {
		return false
	}
	if q.OnlyPromo && !v.OnPromotion {
		return false
	}
	if q.Type != "" && !strings.EqualFold(q.Type, v.Item.Type) {
		return false
	}
	if q.Rarity != "" && !strings.EqualFold(q.Rarity, v.Item.Rarity) {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(v.Item.Name), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// sortViews orders views newest-added first; undated items go last, ties
// break by name for a stable page layout.
func sortViews(views []ItemView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Item, views[j].Item
		switch {
		case a.Added.IsZero() && b.Added.IsZero():
			return a.Name < b.Name
		case a.Added.IsZero():
			return false
		case b.Added.IsZero():
			return true
		case !a.Added.Equal(b.Added):
			return a.Added.After(b.Added)
		default:
			return a.Name < b.Name
		}
	})
}

func paginate(views []ItemView, page, size int) Page {
	if page < 1 {
		page = 1
	}
	total := len(views)
	count := (total + size - 1) / size
	if count < 1 {
		count = 1
	}
	if page > count {
		page = count
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page{
		Items:     views[start:end],
		Page:      page,
		PageCount: count,
		Total:     total,
	}
}

func hasAnyVariant(set catalog.IDSet, id string) bool {
	for _, v := range catalog.IDVariants(id) {
		if set.Has(v) {
			return true
		}
	}
	return false
}
