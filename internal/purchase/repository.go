package purchase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository provides access to recorded purchases.
type Repository interface {
	// Create records a new purchase. The payment reference is the
	// idempotency key: a second create for the same reference returns
	// ErrPurchaseExists and leaves the first record untouched.
	Create(ctx context.Context, p *Purchase) error

	// GetByReference returns the purchase recorded under a payment
	// reference. Returns ErrPurchaseNotFound when absent.
	GetByReference(ctx context.Context, reference string) (*Purchase, error)

	// ListByUser returns a viewer's purchases, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Purchase, error)
}

// InMemoryRepository implements Repository with an in-memory map keyed by
// payment reference. Safe for concurrent use.
type InMemoryRepository struct {
	mu          sync.RWMutex
	byReference map[string]*Purchase
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byReference: make(map[string]*Purchase)}
}

// Create records a new purchase, enforcing reference uniqueness.
func (r *InMemoryRepository) Create(_ context.Context, p *Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byReference[p.Reference]; ok {
		return ErrPurchaseExists
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	clone := *p
	r.byReference[p.Reference] = &clone
	return nil
}

// GetByReference returns the purchase recorded under a payment reference.
func (r *InMemoryRepository) GetByReference(_ context.Context, reference string) (*Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byReference[reference]
	if !ok {
		return nil, ErrPurchaseNotFound
	}
	clone := *p
	return &clone, nil
}

// ListByUser returns a viewer's purchases, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Purchase
	for _, p := range r.byReference {
		if p.UserID != userID {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
