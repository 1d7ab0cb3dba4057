package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/push"
	"github.com/dukerupert/tally/internal/store"
)

// maxBodyBytes caps request bodies; a subscription is well under 1 KiB.
const maxBodyBytes = 64 << 10

// Registry is the subscription set the relay maintains.
type Registry interface {
	Add(ctx context.Context, sub model.Subscription) (bool, error)
	Remove(ctx context.Context, endpoint string) (bool, error)
	Len() int
}

// Broadcaster delivers one payload to every subscription.
type Broadcaster interface {
	Broadcast(ctx context.Context, payload push.Payload) push.Result
}

type RelayHandler struct {
	registry    Registry
	broadcaster Broadcaster
	publicKey   string
	logger      *slog.Logger
}

func NewRelayHandler(reg Registry, b Broadcaster, publicKey string, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{registry: reg, broadcaster: b, publicKey: publicKey, logger: logger}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// SaveSubscription handles POST /api/save-subscription
func (h *RelayHandler) SaveSubscription(w http.ResponseWriter, r *http.Request) {
	var sub model.Subscription
	if err := decode(w, r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	sub.Endpoint = strings.TrimSpace(sub.Endpoint)

	added, err := h.registry.Add(r.Context(), sub)
	if errors.Is(err, store.ErrInvalidSubscription) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("save subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	if added {
		h.logger.Info("subscription added", "endpoint", sub.Endpoint, "total", h.registry.Len())
	}
	writeJSON(w, http.StatusCreated, map[string]any{"added": added})
}

type removeRequest struct {
	Endpoint string `json:"endpoint"`
}

// RemoveSubscription handles POST /api/remove-subscription
func (h *RelayHandler) RemoveSubscription(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	removed, err := h.registry.Remove(r.Context(), strings.TrimSpace(req.Endpoint))
	if err != nil {
		h.logger.Error("remove subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove subscription")
		return
	}

	if removed {
		h.logger.Info("subscription removed", "endpoint", req.Endpoint, "total", h.registry.Len())
	}
	writeJSON(w, http.StatusCreated, map[string]any{"removed": removed})
}

type sendRequest struct {
	Message string `json:"message"`
}

type sendResponse struct {
	Message string `json:"message"`
	push.Result
}

// SendPush handles POST /api/send-push. An empty or missing body sends the
// default message.
func (h *RelayHandler) SendPush(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = push.DefaultMessage
	}

	res := h.broadcaster.Broadcast(r.Context(), push.Payload{
		Title: push.DefaultTitle,
		Body:  message,
	})
	writeJSON(w, http.StatusOK, sendResponse{Message: message, Result: res})
}

// VAPIDPublicKey handles GET /api/vapid-public-key
func (h *RelayHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if h.publicKey == "" {
		writeError(w, http.StatusNotFound, "push not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.publicKey})
}

// Health handles GET /health
func (h *RelayHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"subscriptions": h.registry.Len(),
	})
}
