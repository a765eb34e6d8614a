package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"lootshop/internal/backend"
	"lootshop/internal/domain/purchase"
	"lootshop/internal/service"
)

// purchase resolves the requested item's current price view, builds the
// purchase, and submits it to the backend collaborator.
func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	itemID, ok := readIDField(w, r, "itemId")
	if !ok {
		return
	}

	item, view, err := h.catalog.Resolve(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, r, http.StatusBadGateway, "catalog feed unavailable")
		return
	}

	user, err := h.purchases.Purchase(r.Context(), r.PathValue("id"), item, view)
	if err != nil {
		mapPurchaseError(w, r, err)
		return
	}
	writeUser(w, user)
}

// refund submits a refund for one owned record.
func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	recordID, ok := readIDField(w, r, "recordId")
	if !ok {
		return
	}

	user, err := h.purchases.Refund(r.Context(), r.PathValue("id"), recordID)
	if err != nil {
		mapPurchaseError(w, r, err)
		return
	}
	writeUser(w, user)
}

// getUser serves the backend-held account state.
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.purchases.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		mapPurchaseError(w, r, err)
		return
	}
	writeUser(w, user)
}

// readIDField decodes a one-field JSON body {field: "..."} and rejects
// missing or empty values.
func readIDField(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unreadable body")
		return "", false
	}

	var value string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != field {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		value = v
		return nil
	}); err != nil || value == "" {
		writeError(w, r, http.StatusBadRequest, field+" is required")
		return "", false
	}
	return value, true
}

func writeUser(w http.ResponseWriter, user *purchase.User) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("user", func(e *jx.Encoder) { encodeUser(e, user) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// mapPurchaseError converts purchase-path errors to wire responses: an
// unpriceable item is the caller's problem, a backend decline passes through
// the collaborator's status and message, anything else is an upstream fault.
func mapPurchaseError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, purchase.ErrNoPrice) {
		writeError(w, r, http.StatusUnprocessableEntity, "item has no resolvable price")
		return
	}

	var reqErr *backend.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.Message
		if msg == "" {
			msg = "purchase rejected"
		}
		writeError(w, r, reqErr.Status, msg)
		return
	}

	writeError(w, r, http.StatusBadGateway, "account service unavailable")
}
