package rest

import (
	"net/http"
)

const (
	codeSentMessage       = "Код верификации отправлен в Telegram бот"
	telegramLinkedMessage = "Telegram успешно привязан"
)

type verifyTelegramRequest struct {
	TelegramUsername string `json:"telegramUsername" validate:"required,max=64"`
}

type confirmTelegramRequest struct {
	VerificationCode string `json:"verificationCode" validate:"required,len=6,numeric"`
}

func (h *Handler) requestVerification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req verifyTelegramRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	// The code itself only travels through Telegram
	if _, err := h.verification.RequestVerification(r.Context(), id, req.TelegramUsername); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: codeSentMessage})
}

func (h *Handler) confirmVerification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req confirmTelegramRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.verification.ConfirmVerification(r.Context(), id, req.VerificationCode); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: telegramLinkedMessage})
}
