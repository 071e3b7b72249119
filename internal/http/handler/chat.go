package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"leadgen/internal/assistant"
	"leadgen/internal/auth"
)

type ChatHandler struct {
	Runner *assistant.Runner
}

type chatReq struct {
	Message string `json:"message"`
}

// Chat runs one conversation exchange for the authenticated user and
// returns the assistant's reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}

	reply, err := h.Runner.SendMessage(r.Context(), strconv.FormatUint(uid, 10), req.Message)
	if err != nil {
		var rfe *assistant.RunFailedError
		if errors.As(err, &rfe) || errors.Is(err, assistant.ErrSubmission) {
			http.Error(w, "assistant exchange failed", http.StatusBadGateway)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"reply": reply})
}
