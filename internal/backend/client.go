// Package backend implements the HTTP client for the user-account
// collaborator: the service owning balances, inventories, and purchase
// history. The engine shapes requests; the collaborator decides them.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"lootshop/internal/domain/purchase"
)

// RequestError is a decline or failure answered by the collaborator with a
// non-success status. Message carries the collaborator's own error text when
// the body had one.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// Client talks to the user-account collaborator. It satisfies
// purchase.Backend.
type Client struct {
	base string
	http *http.Client
}

var _ purchase.Backend = (*Client)(nil)

// NewClient creates a backend client. baseURL must not have a trailing slash.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: baseURL, http: httpClient}
}

// Purchase submits a shaped purchase and returns the updated user.
func (c *Client) Purchase(ctx context.Context, userID string, req purchase.Request) (*purchase.User, error) {
	body := encodePurchase(req)
	user, err := c.do(ctx, http.MethodPost, "/users/"+userID+"/purchase", body)
	if err != nil {
		return nil, errors.Wrap(err, "purchase")
	}
	return user, nil
}

// Refund asks the collaborator to refund one owned record.
func (c *Client) Refund(ctx context.Context, userID, recordID string) (*purchase.User, error) {
	user, err := c.do(ctx, http.MethodPost, "/users/"+userID+"/items/"+recordID+"/refund", nil)
	if err != nil {
		return nil, errors.Wrap(err, "refund")
	}
	return user, nil
}

// GetUser fetches the current account state.
func (c *Client) GetUser(ctx context.Context, userID string) (*purchase.User, error) {
	user, err := c.do(ctx, http.MethodGet, "/users/"+userID, nil)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*purchase.User, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(raw),
		}
	}

	user, err := decodeUserResponse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return user, nil
}

// encodePurchase serializes the request the way the collaborator expects:
// line items flattened to the fields it stores, prices as plain numbers.
func encodePurchase(req purchase.Request) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, li := range req.Items {
					li := li
					e.Obj(func(e *jx.Encoder) {
						e.Field("itemId", func(e *jx.Encoder) { e.Str(li.Item.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(li.Item.Name) })
						e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, li.Price) })
						e.Field("rarity", func(e *jx.Encoder) { e.Str(li.Item.Rarity) })
						e.Field("type", func(e *jx.Encoder) { e.Str(li.Item.Type) })
						e.Field("image", func(e *jx.Encoder) { e.Str(li.Item.Image) })
					})
				}
			})
		})
		if req.BundleID != "" {
			e.Field("bundleId", func(e *jx.Encoder) { e.Str(req.BundleID) })
		}
		if req.BundleName != "" {
			e.Field("bundleName", func(e *jx.Encoder) { e.Str(req.BundleName) })
		}
		e.Field("totalPrice", func(e *jx.Encoder) { encodeDecimal(e, req.Total) })
	})
	return e.Bytes()
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.RawStr(d.String())
}

// decodeErrorMessage pulls the error text out of a failure body. Any shape
// problem yields an empty message; the status alone is enough to report.
func decodeErrorMessage(body []byte) string {
	var msg string
	d := jx.DecodeBytes(body)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "error", "message":
			if d.Next() != jx.String {
				return d.Skip()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			if msg == "" {
				msg = v
			}
			return nil
		default:
			return d.Skip()
		}
	})
	return msg
}

// decodeUserResponse reads a success body: {"user": {...}} or the user object
// at the top level.
func decodeUserResponse(body []byte) (*purchase.User, error) {
	d := jx.DecodeBytes(body)

	var (
		user  *purchase.User
		inner jx.Raw
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "user" {
			return d.Skip()
		}
		var err error
		inner, err = d.Raw()
		return err
	})
	if err != nil {
		return nil, err
	}
	if inner != nil {
		body = inner
	}

	user, err = decodeUser(jx.DecodeBytes(body))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func decodeUser(d *jx.Decoder) (*purchase.User, error) {
	var u purchase.User
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			u.ID, err = readStr(d)
		case "name":
			u.Name, err = readStr(d)
		case "email":
			u.Email, err = readStr(d)
		case "balance":
			u.Balance, err = readDecimal(d)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				rec, err := decodeOwnedRecord(d)
				if err != nil {
					return err
				}
				u.Owned = append(u.Owned, rec)
				return nil
			})
		case "history":
			err = d.Arr(func(d *jx.Decoder) error {
				entry, err := decodeHistoryEntry(d)
				if err != nil {
					return err
				}
				u.History = append(u.History, entry)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func decodeOwnedRecord(d *jx.Decoder) (purchase.OwnedRecord, error) {
	var rec purchase.OwnedRecord
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			rec.ID, err = readStr(d)
		case "itemId":
			rec.ItemID, err = readStr(d)
		case "name":
			rec.Name, err = readStr(d)
		case "price":
			rec.Price, err = readDecimal(d)
		case "rarity":
			rec.Rarity, err = readStr(d)
		case "type":
			rec.Type, err = readStr(d)
		case "image":
			rec.Image, err = readStr(d)
		case "bundleId":
			rec.BundleID, err = readStr(d)
		case "bundleName":
			rec.BundleName, err = readStr(d)
		case "active":
			if d.Next() != jx.Bool {
				return d.Skip()
			}
			rec.Active, err = d.Bool()
		case "acquiredAt":
			rec.AcquiredAt, err = readTime(d)
		case "refundedAt":
			t, e := readTime(d)
			if e == nil && !t.IsZero() {
				rec.RefundedAt = &t
			}
			err = e
		default:
			err = d.Skip()
		}
		return err
	})
	return rec, err
}

func decodeHistoryEntry(d *jx.Decoder) (purchase.HistoryEntry, error) {
	var entry purchase.HistoryEntry
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			entry.ID, err = readStr(d)
		case "kind", "type":
			v, e := readStr(d)
			if e == nil && entry.Kind == "" {
				entry.Kind = v
			}
			err = e
		case "amount":
			entry.Amount, err = readDecimal(d)
		case "bundleId":
			entry.BundleID, err = readStr(d)
		case "bundleName":
			entry.BundleName, err = readStr(d)
		case "createdAt":
			entry.CreatedAt, err = readTime(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return entry, err
}

func readStr(d *jx.Decoder) (string, error) {
	if d.Next() != jx.String {
		return "", d.Skip()
	}
	return d.Str()
}

func readDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		f, err := d.Float64()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromFloat(f), nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, d.Skip()
	}
}

func readTime(d *jx.Decoder) (time.Time, error) {
	s, err := readStr(d)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}
