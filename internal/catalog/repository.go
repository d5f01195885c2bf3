package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository provides access to the movie catalog.
type Repository interface {
	// Create stores a new movie and assigns its ID when empty.
	Create(ctx context.Context, movie *Movie) error

	// Get returns one movie by ID. Returns ErrMovieNotFound when absent.
	Get(ctx context.Context, id string) (*Movie, error)

	// List returns published movies, newest first.
	List(ctx context.Context) ([]*Movie, error)

	// ListByCreator returns a creator's movies, newest first, published or not.
	ListByCreator(ctx context.Context, creatorID string) ([]*Movie, error)
}

// InMemoryRepository implements Repository with an in-memory map.
// Safe for concurrent use. Intended for tests and local development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	movies map[string]*Movie
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{movies: make(map[string]*Movie)}
}

// Create stores a new movie and assigns its ID when empty.
func (r *InMemoryRepository) Create(_ context.Context, movie *Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if movie.ID == "" {
		movie.ID = uuid.New().String()
	}
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now().UTC()
	}
	clone := *movie
	r.movies[movie.ID] = &clone
	return nil
}

// Get returns one movie by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movie, ok := r.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	clone := *movie
	return &clone, nil
}

// List returns published movies, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]*Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Movie
	for _, movie := range r.movies {
		if !movie.Published {
			continue
		}
		clone := *movie
		out = append(out, &clone)
	}
	sortNewestFirst(out)
	return out, nil
}

// ListByCreator returns a creator's movies, newest first.
func (r *InMemoryRepository) ListByCreator(_ context.Context, creatorID string) ([]*Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Movie
	for _, movie := range r.movies {
		if movie.CreatorID != creatorID {
			continue
		}
		clone := *movie
		out = append(out, &clone)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(movies []*Movie) {
	sort.Slice(movies, func(i, j int) bool {
		return movies[i].CreatedAt.After(movies[j].CreatedAt)
	})
}
