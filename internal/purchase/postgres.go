package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL. Reference
// uniqueness is enforced by a unique index on purchases.reference.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// Create records a new purchase, enforcing reference uniqueness.
func (r *PostgresRepository) Create(ctx context.Context, p *Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO purchases (id, reference, movie_id, user_id, method, amount, currency, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Reference, p.MovieID, nullableString(p.UserID), p.Method,
		p.Amount, p.Currency, p.TransactionID, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrPurchaseExists
		}
		r.logger.Error("failed to insert purchase",
			slog.String("error", err.Error()),
			slog.String("reference", p.Reference))
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// GetByReference returns the purchase recorded under a payment reference.
func (r *PostgresRepository) GetByReference(ctx context.Context, reference string) (*Purchase, error) {
	query := `
		SELECT id, reference, movie_id, COALESCE(user_id, ''), method, amount, currency, transaction_id, created_at
		FROM purchases WHERE reference = $1
	`
	var p Purchase
	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&p.ID, &p.Reference, &p.MovieID, &p.UserID, &p.Method,
		&p.Amount, &p.Currency, &p.TransactionID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase: %w", err)
	}
	return &p, nil
}

// ListByUser returns a viewer's purchases, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Purchase, error) {
	query := `
		SELECT id, reference, movie_id, COALESCE(user_id, ''), method, amount, currency, transaction_id, created_at
		FROM purchases WHERE user_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var out []*Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(
			&p.ID, &p.Reference, &p.MovieID, &p.UserID, &p.Method,
			&p.Amount, &p.Currency, &p.TransactionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}
	return out, nil
}

// nullableString maps an empty string to NULL for optional foreign keys.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
