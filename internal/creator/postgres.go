package creator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository implements Repository using PostgreSQL.
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

// Create stores a new creator and assigns its ID when empty.
func (r *PostgresRepository) Create(ctx context.Context, creator *Creator) error {
	if err := creator.Validate(); err != nil {
		return err
	}
	if creator.ID == "" {
		creator.ID = uuid.New().String()
	}
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO creators (id, name, bio, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		creator.ID, creator.Name, creator.Bio, creator.AvatarURL, creator.CreatedAt)
	if err != nil {
		r.logger.Error("failed to insert creator",
			slog.String("error", err.Error()),
			slog.String("creator_id", creator.ID))
		return fmt.Errorf("failed to insert creator: %w", err)
	}
	return nil
}

// Get returns one creator by ID. Returns ErrCreatorNotFound when absent.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Creator, error) {
	query := `
		SELECT id, name, bio, avatar_url, created_at FROM creators WHERE id = $1
	`
	var creator Creator
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&creator.ID, &creator.Name, &creator.Bio, &creator.AvatarURL, &creator.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query creator: %w", err)
	}
	return &creator, nil
}

// List returns all creators, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Creator, error) {
	query := `
		SELECT id, name, bio, avatar_url, created_at FROM creators ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	defer rows.Close()

	var out []*Creator
	for rows.Next() {
		var creator Creator
		if err := rows.Scan(&creator.ID, &creator.Name, &creator.Bio, &creator.AvatarURL, &creator.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		out = append(out, &creator)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate creators: %w", err)
	}
	return out, nil
}
