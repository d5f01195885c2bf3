package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pmsstreaming/storefront/internal/livekit"
	"github.com/pmsstreaming/storefront/internal/middleware"
)

// Premiere room defaults.
const (
	// PremiereEmptyTimeout closes an abandoned room after ten minutes.
	PremiereEmptyTimeout = 600

	// PremiereMaxParticipants caps the audience of one premiere.
	PremiereMaxParticipants = 500
)

// LiveKitHandlers holds dependencies for live premiere HTTP handlers.
type LiveKitHandlers struct {
	tokens *livekit.TokenService
	rooms  *livekit.RoomService
	logger *slog.Logger
}

// NewLiveKitHandlers creates a new LiveKitHandlers instance. rooms may be nil
// when room control is not configured; token generation still works.
func NewLiveKitHandlers(tokens *livekit.TokenService, rooms *livekit.RoomService, logger *slog.Logger) *LiveKitHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveKitHandlers{tokens: tokens, rooms: rooms, logger: logger}
}

// TokenRequest represents the request body for a premiere access token.
type TokenRequest struct {
	RoomName string `json:"roomName"`
	Host     bool   `json:"host,omitempty"`
}

// Token issues a LiveKit access token for the authenticated user.
// POST /api/live/token
func (h *LiveKitHandlers) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	resp, err := h.tokens.GenerateToken(&livekit.TokenRequest{
		RoomName: req.RoomName,
		Identity: "user-" + userID,
		Host:     req.Host,
	})
	if errors.Is(err, livekit.ErrMissingRoomName) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "roomName is required")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate livekit token", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateRoomRequest represents the request body for opening a premiere room.
type CreateRoomRequest struct {
	RoomName string `json:"roomName"`
}

// CreateRoom opens a premiere room.
// POST /api/live/rooms
func (h *LiveKitHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if middleware.GetUserID(ctx) == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if req.RoomName == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "roomName is required")
		return
	}

	room, err := h.rooms.CreateRoom(ctx, req.RoomName, PremiereEmptyTimeout, PremiereMaxParticipants)
	if errors.Is(err, livekit.ErrRoomServiceNotConfigured) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusServiceUnavailable, ErrCodeInternal, "live premieres are not configured")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create premiere room",
			slog.String("room", req.RoomName),
			slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to create room")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"name":            room.Name,
		"maxParticipants": room.MaxParticipants,
	})
}

// GetRoom reports a premiere room's state and audience size.
// GET /api/live/rooms/{name}
func (h *LiveKitHandlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	room, err := h.rooms.GetRoom(ctx, name)
	if errors.Is(err, livekit.ErrRoomNotFound) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "room not found")
		return
	}
	if errors.Is(err, livekit.ErrRoomServiceNotConfigured) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusServiceUnavailable, ErrCodeInternal, "live premieres are not configured")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get premiere room",
			slog.String("room", name),
			slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to get room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":            room.Name,
		"numParticipants": room.NumParticipants,
		"maxParticipants": room.MaxParticipants,
	})
}
