package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pmsstreaming/storefront/internal/catalog"
	"github.com/pmsstreaming/storefront/internal/middleware"
)

// CatalogHandlers holds dependencies for movie catalog HTTP handlers.
type CatalogHandlers struct {
	repo   catalog.Repository
	logger *slog.Logger
}

// NewCatalogHandlers creates a new CatalogHandlers instance.
func NewCatalogHandlers(repo catalog.Repository, logger *slog.Logger) *CatalogHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandlers{repo: repo, logger: logger}
}

// ListMovies returns the published catalog.
// GET /api/movies
func (h *CatalogHandlers) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	movies, err := h.repo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list movies", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to list movies")
		return
	}
	if movies == nil {
		movies = []*catalog.Movie{}
	}
	writeJSON(w, http.StatusOK, movies)
}

// GetMovie returns one movie by ID.
// GET /api/movies/{id}
func (h *CatalogHandlers) GetMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	movie, err := h.repo.Get(ctx, r.PathValue("id"))
	if errors.Is(err, catalog.ErrMovieNotFound) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "movie not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get movie", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to get movie")
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

// CreateMovie adds a movie to the catalog. Requires an authenticated user,
// who becomes the movie's creator when no creator is set.
// POST /api/movies
func (h *CatalogHandlers) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var movie catalog.Movie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if movie.CreatorID == "" {
		movie.CreatorID = userID
	}

	if err := movie.Validate(); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := h.repo.Create(ctx, &movie); err != nil {
		h.logger.ErrorContext(ctx, "failed to create movie", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to create movie")
		return
	}

	writeJSON(w, http.StatusCreated, &movie)
}
