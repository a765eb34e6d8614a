package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lootshop/internal/domain/purchase"
	"lootshop/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError answers with the uniform error shape {code, message}.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.Int("status", status),
			zap.String("message", msg),
		)
	}
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, status, &e)
}

func encodeDecimalField(e *jx.Encoder, name string, d decimal.Decimal) {
	e.Field(name, func(e *jx.Encoder) { e.RawStr(d.String()) })
}

// encodeItemView writes one joined catalog view. Absent prices and zero dates
// are omitted rather than nulled.
func encodeItemView(e *jx.Encoder, v service.ItemView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(v.Item.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(v.Item.Name) })
		e.Field("type", func(e *jx.Encoder) { e.Str(v.Item.Type) })
		e.Field("rarity", func(e *jx.Encoder) { e.Str(v.Item.Rarity) })
		if !v.Item.Added.IsZero() {
			e.Field("added", func(e *jx.Encoder) { e.Str(v.Item.Added.Format(time.RFC3339)) })
		}
		if v.Item.Image != "" {
			e.Field("image", func(e *jx.Encoder) { e.Str(v.Item.Image) })
		}

		e.Field("price", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				if v.Price.Final != nil {
					encodeDecimalField(e, "final", *v.Price.Final)
				}
				if v.Price.Regular != nil {
					encodeDecimalField(e, "regular", *v.Price.Regular)
				}
				e.Field("isBundle", func(e *jx.Encoder) { e.Bool(v.Price.IsBundle) })
			})
		})
		if offer := v.Price.Offer; offer != nil && offer.IsBundle() {
			e.Field("bundleId", func(e *jx.Encoder) { e.Str(offer.ID) })
			e.Field("bundleName", func(e *jx.Encoder) { e.Str(offer.BundleName) })
			encodeDecimalField(e, "bundlePrice", offer.FinalPrice)
		}

		e.Field("isNew", func(e *jx.Encoder) { e.Bool(v.New) })
		e.Field("isOnSale", func(e *jx.Encoder) { e.Bool(v.OnSale) })
		e.Field("isOnPromotion", func(e *jx.Encoder) { e.Bool(v.OnPromotion) })
	})
}

func encodeUser(e *jx.Encoder, u *purchase.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(u.ID) })
		if u.Name != "" {
			e.Field("name", func(e *jx.Encoder) { e.Str(u.Name) })
		}
		if u.Email != "" {
			e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
		}
		encodeDecimalField(e, "balance", u.Balance)

		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range u.Owned {
					encodeOwnedRecord(e, u.Owned[i])
				}
			})
		})
		e.Field("history", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range u.History {
					encodeHistoryEntry(e, u.History[i])
				}
			})
		})
	})
}

func encodeOwnedRecord(e *jx.Encoder, rec purchase.OwnedRecord) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(rec.ID) })
		e.Field("itemId", func(e *jx.Encoder) { e.Str(rec.ItemID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(rec.Name) })
		encodeDecimalField(e, "price", rec.Price)
		e.Field("rarity", func(e *jx.Encoder) { e.Str(rec.Rarity) })
		e.Field("type", func(e *jx.Encoder) { e.Str(rec.Type) })
		if rec.Image != "" {
			e.Field("image", func(e *jx.Encoder) { e.Str(rec.Image) })
		}
		if rec.BundleID != "" {
			e.Field("bundleId", func(e *jx.Encoder) { e.Str(rec.BundleID) })
			e.Field("bundleName", func(e *jx.Encoder) { e.Str(rec.BundleName) })
		}
		e.Field("active", func(e *jx.Encoder) { e.Bool(rec.Active) })
		if !rec.AcquiredAt.IsZero() {
			e.Field("acquiredAt", func(e *jx.Encoder) { e.Str(rec.AcquiredAt.Format(time.RFC3339)) })
		}
		if rec.RefundedAt != nil {
			e.Field("refundedAt", func(e *jx.Encoder) { e.Str(rec.RefundedAt.Format(time.RFC3339)) })
		}
	})
}

func encodeHistoryEntry(e *jx.Encoder, entry purchase.HistoryEntry) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(entry.ID) })
		e.Field("kind", func(e *jx.Encoder) { e.Str(entry.Kind) })
		encodeDecimalField(e, "amount", entry.Amount)
		if entry.BundleID != "" {
			e.Field("bundleId", func(e *jx.Encoder) { e.Str(entry.BundleID) })
			e.Field("bundleName", func(e *jx.Encoder) { e.Str(entry.BundleName) })
		}
		if !entry.CreatedAt.IsZero() {
			e.Field("createdAt", func(e *jx.Encoder) { e.Str(entry.CreatedAt.Format(time.RFC3339)) })
		}
	})
}
