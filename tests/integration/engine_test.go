// Package integration exercises the whole engine in-process: a stub feed and
// a stub account service behind httptest, the real feed client, sync driver,
// catalog join, purchase construction, and HTTP shell wired together the way
// the application wires them.
package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lootshop/internal/backend"
	"lootshop/internal/domain/purchase"
	"lootshop/internal/feed"
	"lootshop/internal/handler"
	"lootshop/internal/service"
	"lootshop/internal/syncer"
	"lootshop/pkg/httpmiddleware"
)

// upstream is the stub feed: catalog, new-items, and shop bodies swappable
// mid-test to simulate feed churn and outages.
type upstream struct {
	mu     sync.Mutex
	routes map[string]string
}

func (u *upstream) set(path, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[path] = body
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	body, ok := u.routes[r.URL.Path]
	u.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

const catalogBody = `{"data": [
	{"id": "CID_Solo", "name": "Solo Outfit", "type": {"value": "outfit"},
	 "rarity": {"value": "epic"}, "added": "2026-08-28T00:00:00Z",
	 "images": {"icon": "solo.png"}},
	{"id": "CID_Pack_A", "name": "Pack Item A", "type": "outfit",
	 "rarity": "rare", "added": "2026-08-27T00:00:00Z"},
	{"id": "CID_Pack_B", "name": "Pack Item B", "type": "backpack",
	 "rarity": "rare", "added": "2026-08-27T00:00:00Z"}
]}`

const shopBody = `{"data": {"entries": [
	{"offerId": "v2:/pack", "regularPrice": 2500, "finalPrice": 2000,
	 "bundle": {"name": "The Pack"},
	 "brItems": [{"id": "CID_Pack_A", "name": "Pack Item A"},
	             {"id": "CID_Pack_B", "name": "Pack Item B"}]}
]}}`

const newBody = `{"data": {"items": {"br": [{"id": "CID_Solo"}]}}}`

// accountStub accepts purchases, tracks the submitted body, and answers with
// an updated user.
type accountStub struct {
	mu       sync.Mutex
	lastBody map[string]any
}

func (a *accountStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/purchase"):
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		a.mu.Lock()
		a.lastBody = body
		a.mu.Unlock()
		_, _ = w.Write([]byte(`{"user": {"id": "u1", "balance": 500}}`))
	case strings.HasSuffix(r.URL.Path, "/refund"):
		_, _ = w.Write([]byte(`{"user": {"id": "u1", "balance": 2500}}`))
	default:
		_, _ = w.Write([]byte(`{"user": {"id": "u1", "balance": 2500}}`))
	}
}

type engine struct {
	api      *httptest.Server
	feedURL  string
	upstream *upstream
	account  *accountStub
	store    *syncer.Store
	driver   *syncer.Driver
}

func startEngine(t *testing.T) *engine {
	t.Helper()
	lg := zaptest.NewLogger(t)

	up := &upstream{routes: map[string]string{
		"/v2/cosmetics/br":  catalogBody,
		"/v2/cosmetics/new": newBody,
		"/v2/shop":          shopBody,
	}}
	feedSrv := httptest.NewServer(up)
	t.Cleanup(feedSrv.Close)

	account := &accountStub{}
	accountSrv := httptest.NewServer(account)
	t.Cleanup(accountSrv.Close)

	feedClient := feed.NewClient(feedSrv.URL, feedSrv.Client(), lg.Named("feed"))
	backendClient := backend.NewClient(accountSrv.URL, accountSrv.Client())

	store := syncer.NewStore()
	driver := syncer.NewDriver(feedClient, store, time.Hour, lg.Named("syncer"))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan struct{})
	go func() {
		driver.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, driver.Refreshed, 5*time.Second, 10*time.Millisecond)

	catalogSvc := service.NewCatalog(feedClient, store, 0, lg.Named("catalog"))
	h := handler.New(catalogSvc, purchase.NewService(backendClient))

	mux := http.NewServeMux()
	h.Routes(mux)
	api := httptest.NewServer(httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
	))
	t.Cleanup(api.Close)

	return &engine{
		api:      api,
		feedURL:  feedSrv.URL,
		upstream: up,
		account:  account,
		store:    store,
		driver:   driver,
	}
}

func get(t *testing.T, e *engine, path string) (int, map[string]any) {
	t.Helper()
	resp, err := e.api.Client().Get(e.api.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func post(t *testing.T, e *engine, path, body string) (int, map[string]any) {
	t.Helper()
	resp, err := e.api.Client().Post(e.api.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestEngine_CatalogJoin(t *testing.T) {
	e := startEngine(t)

	status, body := get(t, e, "/api/catalog")
	require.Equal(t, http.StatusOK, status)

	items := body["items"].([]any)
	require.Len(t, items, 3)

	byID := map[string]map[string]any{}
	for _, it := range items {
		m := it.(map[string]any)
		byID[m["id"].(string)] = m
	}

	// The new-items feed flagged CID_Solo; its price is the epic estimate.
	solo := byID["CID_Solo"]
	assert.Equal(t, true, solo["isNew"])
	assert.Equal(t, false, solo["isOnSale"])
	assert.Equal(t, float64(1500), solo["price"].(map[string]any)["final"])

	// Bundle members carry the bundle, no single price, and sale/promo flags
	// from the discounted offer.
	packA := byID["CID_Pack_A"]
	assert.Equal(t, true, packA["isOnSale"])
	assert.Equal(t, true, packA["isOnPromotion"])
	assert.Equal(t, "v2:/pack", packA["bundleId"])
	assert.Equal(t, true, packA["price"].(map[string]any)["isBundle"])
}

func TestEngine_BundlePurchaseAllocatesExactly(t *testing.T) {
	e := startEngine(t)

	status, body := post(t, e, "/api/users/u1/purchase", `{"itemId": "CID_Pack_A"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(500), body["user"].(map[string]any)["balance"])

	e.account.mu.Lock()
	submitted := e.account.lastBody
	e.account.mu.Unlock()

	assert.Equal(t, "v2:/pack", submitted["bundleId"])
	assert.Equal(t, "The Pack", submitted["bundleName"])
	assert.Equal(t, float64(2000), submitted["totalPrice"])

	items := submitted["items"].([]any)
	require.Len(t, items, 2)
	sum := 0.0
	for _, it := range items {
		sum += it.(map[string]any)["price"].(float64)
	}
	assert.Equal(t, float64(2000), sum)
}

func TestEngine_FeedOutageKeepsSnapshot(t *testing.T) {
	e := startEngine(t)

	// A second driver on a tight interval against the same upstream.
	lg := zaptest.NewLogger(t)
	fast := syncer.NewDriver(
		feed.NewClient(e.feedURL, http.DefaultClient, lg.Named("feed")),
		e.store, 20*time.Millisecond, lg.Named("syncer"),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		fast.Run(ctx)
		close(done)
	}()
	require.Eventually(t, fast.Refreshed, 5*time.Second, 5*time.Millisecond)

	// Shop endpoints vanish entirely: subsequent cycles must fail and leave
	// the published snapshot value untouched.
	e.upstream.mu.Lock()
	delete(e.upstream.routes, "/v2/shop")
	e.upstream.mu.Unlock()

	// Let in-flight cycles settle, then hold the pointer across several more
	// failed cycles.
	time.Sleep(100 * time.Millisecond)
	settled := e.store.Load()
	time.Sleep(150 * time.Millisecond)
	assert.Same(t, settled, e.store.Load())

	cancel()
	<-done
}

func TestEngine_LegacyShopFallback(t *testing.T) {
	e := startEngine(t)

	// Current shop endpoint retired; the legacy one serves the old schema.
	e.upstream.mu.Lock()
	delete(e.upstream.routes, "/v2/shop")
	e.upstream.routes["/v2/shop/br"] = `{"data": {"entries": [
		{"devName": "legacy", "price": 800, "bundleName": "Legacy Pack",
		 "items": [{"id": "CID_Solo", "name": "Solo Outfit"}]}
	]}}`
	e.upstream.mu.Unlock()

	status, body := get(t, e, "/api/catalog")
	require.Equal(t, http.StatusOK, status)

	for _, it := range body["items"].([]any) {
		m := it.(map[string]any)
		if m["id"] == "CID_Solo" {
			assert.Equal(t, float64(800), m["price"].(map[string]any)["final"])
		}
	}
}

func TestEngine_RefundRoundTrip(t *testing.T) {
	e := startEngine(t)

	status, body := post(t, e, "/api/users/u1/refund", `{"recordId": "rec1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2500), body["user"].(map[string]any)["balance"])
}
