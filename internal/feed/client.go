// Package feed talks to the upstream catalog and shop feeds. The upstream is
// versioned loosely: current endpoints are tried first and deprecated ones are
// kept as fallbacks, each with its own response shape and mapping rules.
package feed

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/domain/shop"
)

// ErrUnavailable marks an endpoint answering with a non-success status.
// Callers use it to decide between falling back to a legacy endpoint and
// failing the whole fetch.
var ErrUnavailable = errors.New("feed endpoint unavailable")

// Client fetches and decodes the upstream feeds.
type Client struct {
	base string
	http *http.Client
	lg   *zap.Logger
}

// NewClient creates a feed client. baseURL must not have a trailing slash.
func NewClient(baseURL string, httpClient *http.Client, lg *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base: baseURL,
		http: httpClient,
		lg:   lg,
	}
}

// get fetches one endpoint and returns the body. A non-success status maps to
// ErrUnavailable; transport failures are returned as-is.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrUnavailable, "GET %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return body, nil
}

// FetchItems returns the full catalog feed as raw records.
func (c *Client) FetchItems(ctx context.Context) ([]catalog.RawItem, error) {
	body, err := c.get(ctx, "/v2/cosmetics/br")
	if err != nil {
		return nil, err
	}
	items, err := decodeCatalogResponse(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return items, nil
}

// FetchNewIDs returns the identifier variants of every record the new-items
// feed currently advertises. The current endpoint is tried first; when it is
// unavailable the deprecated one is used. When both are unavailable the set is
// empty and nil error is returned: callers derive recency from catalog dates
// instead, so a retired endpoint must not fail the refresh cycle.
func (c *Client) FetchNewIDs(ctx context.Context) (catalog.IDSet, error) {
	ids := catalog.NewIDSet()

	body, err := c.get(ctx, "/v2/cosmetics/new")
	switch {
	case err == nil:
		items, err := decodeNewResponse(body)
		if err != nil {
			return nil, errors.Wrap(err, "decode new items")
		}
		for _, raw := range items {
			catalog.AddVariants(ids, raw)
		}
		return ids, nil
	case !errors.Is(err, ErrUnavailable):
		return nil, err
	}

	body, err = c.get(ctx, "/v2/cosmetics/br/new")
	switch {
	case err == nil:
		items, err := decodeLegacyNewResponse(body)
		if err != nil {
			return nil, errors.Wrap(err, "decode legacy new items")
		}
		for _, raw := range items {
			catalog.AddVariants(ids, raw)
		}
		return ids, nil
	case errors.Is(err, ErrUnavailable):
		c.lg.Debug("New-items endpoints unavailable, returning empty set")
		return ids, nil
	default:
		return nil, err
	}
}

// FetchShop returns the mapped shop feed. The current endpoint is tried first
// and mapped with the current schema rules; when it is unavailable the
// deprecated endpoint is used with the legacy rules. When both are
// unavailable the fetch fails: a refresh cycle without offer data must not
// publish, it keeps the previous snapshot instead.
func (c *Client) FetchShop(ctx context.Context) (shop.Mapped, error) {
	body, err := c.get(ctx, "/v2/shop")
	switch {
	case err == nil:
		entries, err := decodeShopResponse(body)
		if err != nil {
			return shop.Mapped{}, errors.Wrap(err, "decode shop")
		}
		return shop.MapEntries(entries), nil
	case !errors.Is(err, ErrUnavailable):
		return shop.Mapped{}, err
	}

	body, err = c.get(ctx, "/v2/shop/br")
	if err != nil {
		return shop.Mapped{}, err
	}
	entries, err := decodeShopResponse(body)
	if err != nil {
		return shop.Mapped{}, errors.Wrap(err, "decode legacy shop")
	}
	c.lg.Debug("Shop endpoint unavailable, served from legacy endpoint")
	return shop.MapLegacyEntries(entries), nil
}

// FetchItemDetails returns the raw detail payload for one item. The payload is
// passed through untouched: detail pages render upstream fields this service
// has no model for.
func (c *Client) FetchItemDetails(ctx context.Context, id string) (jx.Raw, error) {
	body, err := c.get(ctx, "/v2/cosmetics/br/"+id)
	if err != nil {
		return nil, err
	}

	var raw jx.Raw
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		var err error
		raw, err = d.Raw()
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "decode item details")
	}
	if raw == nil {
		return nil, errors.Wrapf(ErrUnavailable, "item %s: no data", id)
	}
	return raw, nil
}
