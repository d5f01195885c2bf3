package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmsstreaming/storefront/internal/catalog"
)

// DefaultCurrency is applied when a purchase arrives without one.
const DefaultCurrency = "USD"

// Service records fulfilled orders against the catalog.
type Service struct {
	repo    Repository
	catalog catalog.Repository
	logger  *slog.Logger
}

// NewService creates a purchase service.
func NewService(repo Repository, cat catalog.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, catalog: cat, logger: logger}
}

// Record fulfills a confirmed payment by writing the purchase. It is
// idempotent on the payment reference: a retry for an already-recorded
// reference returns the existing purchase instead of an error, so callers
// can safely re-drive fulfillment after a crash.
func (s *Service) Record(ctx context.Context, p *Purchase) (*Purchase, error) {
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}

	if _, err := s.catalog.Get(ctx, p.MovieID); err != nil {
		return nil, fmt.Errorf("failed to resolve movie %s: %w", p.MovieID, err)
	}

	err := s.repo.Create(ctx, p)
	if errors.Is(err, ErrPurchaseExists) {
		existing, getErr := s.repo.GetByReference(ctx, p.Reference)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load existing purchase: %w", getErr)
		}
		s.logger.Info("purchase already recorded, treating retry as success",
			slog.String("reference", p.Reference))
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase recorded",
		slog.String("reference", p.Reference),
		slog.String("movie_id", p.MovieID),
		slog.String("method", p.Method))
	return p, nil
}

// ByReference returns the purchase recorded under a payment reference.
func (s *Service) ByReference(ctx context.Context, reference string) (*Purchase, error) {
	return s.repo.GetByReference(ctx, reference)
}

// ForUser returns a viewer's purchases, newest first.
func (s *Service) ForUser(ctx context.Context, userID string) ([]*Purchase, error) {
	return s.repo.ListByUser(ctx, userID)
}
