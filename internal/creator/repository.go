package creator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository provides access to creator profiles.
type Repository interface {
	// Create stores a new creator and assigns its ID when empty.
	Create(ctx context.Context, creator *Creator) error

	// Get returns one creator by ID. Returns ErrCreatorNotFound when absent.
	Get(ctx context.Context, id string) (*Creator, error)

	// List returns all creators, newest first.
	List(ctx context.Context) ([]*Creator, error)
}

// InMemoryRepository implements Repository with an in-memory map.
// Safe for concurrent use. Intended for tests and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	creators map[string]*Creator
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{creators: make(map[string]*Creator)}
}

// Create stores a new creator and assigns its ID when empty.
func (r *InMemoryRepository) Create(_ context.Context, creator *Creator) error {
	if err := creator.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if creator.ID == "" {
		creator.ID = uuid.New().String()
	}
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = time.Now().UTC()
	}
	clone := *creator
	r.creators[creator.ID] = &clone
	return nil
}

// Get returns one creator by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Creator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	creator, ok := r.creators[id]
	if !ok {
		return nil, ErrCreatorNotFound
	}
	clone := *creator
	return &clone, nil
}

// List returns all creators, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]*Creator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Creator, 0, len(r.creators))
	for _, creator := range r.creators {
		clone := *creator
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
