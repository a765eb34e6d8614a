package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"lootshop/internal/service"
)

// browseCatalog serves the filtered, paged catalog join.
func (h *Handler) browseCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.Query{
		Search:     q.Get("search"),
		Type:       q.Get("type"),
		Rarity:     q.Get("rarity"),
		OnlyNew:    q.Get("onlyNew") == "true",
		OnlyOnSale: q.Get("onlyOnSale") == "true",
		OnlyPromo:  q.Get("onlyPromo") == "true",
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		query.Page = page
	}

	result, err := h.catalog.Browse(r.Context(), query)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "catalog feed unavailable")
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range result.Items {
					encodeItemView(e, v)
				}
			})
		})
		e.Field("page", func(e *jx.Encoder) { e.Int(result.Page) })
		e.Field("pageCount", func(e *jx.Encoder) { e.Int(result.PageCount) })
		e.Field("total", func(e *jx.Encoder) { e.Int(result.Total) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// itemDetails serves one joined view plus the raw upstream detail payload.
func (h *Handler) itemDetails(w http.ResponseWriter, r *http.Request) {
	view, raw, err := h.catalog.Details(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, r, http.StatusBadGateway, "catalog feed unavailable")
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("item", func(e *jx.Encoder) { encodeItemView(e, view) })
		if raw != nil {
			e.Field("details", func(e *jx.Encoder) { e.Raw(raw) })
		}
	})
	writeJSON(w, http.StatusOK, &e)
}
