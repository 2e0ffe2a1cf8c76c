package rest

import (
	"context"
	"net/http"

	"dabwish/internal/domain/user"
	"dabwish/pkg/pagination"
)

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	subscriberID, targetID, err := subscriptionIDs(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), subscriberID, targetID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	subscriberID, targetID, err := subscriptionIDs(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.subscriptions.Unsubscribe(r.Context(), subscriberID, targetID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.subscriptions.ListSubscriptions)
}

func (h *Handler) listSubscribers(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.subscriptions.ListSubscribers)
}

func (h *Handler) listUsers(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[user.User], error),
) {
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

	page, err := list(r.Context(), userID, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func subscriptionIDs(r *http.Request) (int64, int64, error) {
	subscriberID, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	targetID, err := pathID(r, "targetId")
	if err != nil {
		return 0, 0, err
	}
	return subscriberID, targetID, nil
}
