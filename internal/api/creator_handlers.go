package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pmsstreaming/storefront/internal/catalog"
	"github.com/pmsstreaming/storefront/internal/creator"
	"github.com/pmsstreaming/storefront/internal/middleware"
)

// CreatorHandlers holds dependencies for creator profile HTTP handlers.
type CreatorHandlers struct {
	repo    creator.Repository
	catalog catalog.Repository
	logger  *slog.Logger
}

// NewCreatorHandlers creates a new CreatorHandlers instance.
func NewCreatorHandlers(repo creator.Repository, cat catalog.Repository, logger *slog.Logger) *CreatorHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreatorHandlers{repo: repo, catalog: cat, logger: logger}
}

// ListCreators returns all creator profiles.
// GET /api/creators
func (h *CreatorHandlers) ListCreators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creators, err := h.repo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list creators", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to list creators")
		return
	}
	if creators == nil {
		creators = []*creator.Creator{}
	}
	writeJSON(w, http.StatusOK, creators)
}

// GetCreator returns one creator profile by ID.
// GET /api/creators/{id}
func (h *CreatorHandlers) GetCreator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.repo.Get(ctx, r.PathValue("id"))
	if errors.Is(err, creator.ErrCreatorNotFound) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "creator not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get creator", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to get creator")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListCreatorMovies returns a creator's movies, drafts included.
// GET /api/creators/{id}/movies
func (h *CreatorHandlers) ListCreatorMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if _, err := h.repo.Get(ctx, id); errors.Is(err, creator.ErrCreatorNotFound) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "creator not found")
		return
	} else if err != nil {
		h.logger.ErrorContext(ctx, "failed to get creator", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to get creator")
		return
	}

	movies, err := h.catalog.ListByCreator(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list creator movies", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to list movies")
		return
	}
	if movies == nil {
		movies = []*catalog.Movie{}
	}
	writeJSON(w, http.StatusOK, movies)
}

// CreateCreator registers a creator profile.
// POST /api/creators
func (h *CreatorHandlers) CreateCreator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if middleware.GetUserID(ctx) == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var c creator.Creator
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if err := c.Validate(); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := h.repo.Create(ctx, &c); err != nil {
		h.logger.ErrorContext(ctx, "failed to create creator", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to create creator")
		return
	}

	writeJSON(w, http.StatusCreated, &c)
}
