package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/domain/purchase"
)

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func TestPurchase_EncodesRequestAndDecodesUser(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user": {
			"id": "u1", "name": "Ada", "balance": 500.5,
			"items": [{
				"id": "rec1", "itemId": "cid_a", "name": "A", "price": 666.67,
				"bundleId": "v2:/pack", "bundleName": "Pack",
				"active": true, "acquiredAt": "2026-08-29T10:00:00Z"
			}],
			"history": [{"id": "h1", "kind": "purchase", "amount": 2000, "createdAt": "2026-08-29T10:00:00Z"}]
		}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	req := purchase.Request{
		Items: []purchase.LineItem{
			{Item: catalog.Item{ID: "cid_a", Name: "A", Rarity: "epic", Type: "outfit"}, Price: dec("666.66")},
			{Item: catalog.Item{ID: "cid_b", Name: "B", Rarity: "rare", Type: "glider"}, Price: dec("666.66")},
			{Item: catalog.Item{ID: "cid_c", Name: "C", Rarity: "rare", Type: "emote"}, Price: dec("666.68")},
		},
		BundleID:   "v2:/pack",
		BundleName: "Pack",
		Total:      dec("2000"),
	}

	user, err := c.Purchase(context.Background(), "u1", req)
	require.NoError(t, err)

	assert.Equal(t, "/users/u1/purchase", gotPath)
	assert.Equal(t, "v2:/pack", gotBody["bundleId"])
	assert.Equal(t, "Pack", gotBody["bundleName"])
	assert.Equal(t, float64(2000), gotBody["totalPrice"])

	items, ok := gotBody["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 3)
	first := items[0].(map[string]any)
	assert.Equal(t, "cid_a", first["itemId"])
	assert.Equal(t, 666.66, first["price"])
	assert.Equal(t, "epic", first["rarity"])

	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.Balance.Equal(dec("500.5")))
	require.Len(t, user.Owned, 1)
	assert.Equal(t, "cid_a", user.Owned[0].ItemID)
	assert.True(t, user.Owned[0].Active)
	assert.Nil(t, user.Owned[0].RefundedAt)
	require.Len(t, user.History, 1)
	assert.Equal(t, "purchase", user.History[0].Kind)
}

func TestPurchase_SingleItemOmitsBundleFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		_, _ = w.Write([]byte(`{"user": {"id": "u1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.Purchase(context.Background(), "u1", purchase.Request{
		Items: []purchase.LineItem{{Item: catalog.Item{ID: "cid_a"}, Price: dec("800")}},
		Total: dec("800"),
	})
	require.NoError(t, err)

	_, hasBundleID := gotBody["bundleId"]
	_, hasBundleName := gotBody["bundleName"]
	assert.False(t, hasBundleID)
	assert.False(t, hasBundleName)
}

func TestPurchase_DeclineSurfacesTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error": "insufficient balance"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.Purchase(context.Background(), "u1", purchase.Request{Total: dec("100")})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusPaymentRequired, reqErr.Status)
	assert.Equal(t, "insufficient balance", reqErr.Message)
}

func TestRefund_HitsRecordEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"user": {"id": "u1", "balance": 1300}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	user, err := c.Refund(context.Background(), "u1", "rec1")
	require.NoError(t, err)

	assert.Equal(t, "/users/u1/items/rec1/refund", gotPath)
	assert.True(t, user.Balance.Equal(dec("1300")))
}

func TestGetUser_TopLevelUserShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		// No "user" envelope: the object at the top level.
		_, _ = w.Write([]byte(`{"id": "u2", "email": "a@b.c", "balance": "42.50"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	user, err := c.GetUser(context.Background(), "u2")
	require.NoError(t, err)

	assert.Equal(t, "u2", user.ID)
	assert.Equal(t, "a@b.c", user.Email)
	assert.True(t, user.Balance.Equal(dec("42.5")))
}

func TestGetUser_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "no such user"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.GetUser(context.Background(), "ghost")

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
	assert.Equal(t, "no such user", reqErr.Message)
}
