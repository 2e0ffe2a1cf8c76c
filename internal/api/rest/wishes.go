package rest

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"dabwish/internal/domain/wish"
)

type searchQuery struct {
	Query string `validate:"required,max=200"`
}

func (h *Handler) createWish(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	form, err := parseWishForm(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer form.Close()

	item := &wish.Wish{Description: form.Description}
	if form.Title != nil {
		item.Title = *form.Title
	}
	if form.Price != nil {
		item.Price = decimal.NewNullDecimal(*form.Price)
	}
	if form.photo == nil {
		item.PhotoURL = form.PhotoURL
	}

	created, err := h.wishes.Create(r.Context(), userID, item, form.photo)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getWish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "wishId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.wishes.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) updateWish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "wishId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	form, err := parseWishForm(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer form.Close()

	patch := wish.Patch{Title: form.Title, Description: form.Description, Price: form.Price}
	updated, err := h.wishes.Update(r.Context(), id, patch, form.photo)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteWish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "wishId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.wishes.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUserWishes(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := pageParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.wishes.ListByUser(r.Context(), userID, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) searchWishes(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{Query: r.URL.Query().Get("query")}
	if err := validateStruct(q); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := pageParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var exclude *int64
	if raw := r.URL.Query().Get("excludeUserId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, r, badRequest("invalid excludeUserId %q", raw))
			return
		}
		exclude = &id
	}

	page, err := h.wishes.Search(r.Context(), q.Query, exclude, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
