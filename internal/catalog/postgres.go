package catalog

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

// Create stores a new movie and assigns its ID when empty.
func (r *PostgresRepository) Create(ctx context.Context, movie *Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}
	if movie.ID == "" {
		movie.ID = uuid.New().String()
	}
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO movies (id, title, description, price, currency, video_url, thumbnail_url, creator_id, published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		movie.ID, movie.Title, movie.Description, movie.Price, movie.Currency,
		movie.VideoURL, movie.ThumbnailURL, nullable(movie.CreatorID), movie.Published, movie.CreatedAt)
	if err != nil {
		r.logger.Error("failed to insert movie",
			slog.String("error", err.Error()),
			slog.String("movie_id", movie.ID))
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

// Get returns one movie by ID. Returns ErrMovieNotFound when absent.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Movie, error) {
	query := `
		SELECT id, title, description, price, currency, video_url, thumbnail_url, COALESCE(creator_id, ''), published, created_at
		FROM movies WHERE id = $1
	`
	var movie Movie
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&movie.ID, &movie.Title, &movie.Description, &movie.Price, &movie.Currency,
		&movie.VideoURL, &movie.ThumbnailURL, &movie.CreatorID, &movie.Published, &movie.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie: %w", err)
	}
	return &movie, nil
}

// List returns published movies, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Movie, error) {
	query := `
		SELECT id, title, description, price, currency, video_url, thumbnail_url, COALESCE(creator_id, ''), published, created_at
		FROM movies WHERE published = TRUE ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

// ListByCreator returns a creator's movies, newest first.
func (r *PostgresRepository) ListByCreator(ctx context.Context, creatorID string) ([]*Movie, error) {
	query := `
		SELECT id, title, description, price, currency, video_url, thumbnail_url, COALESCE(creator_id, ''), published, created_at
		FROM movies WHERE creator_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creator movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

func scanMovies(rows *sql.Rows) ([]*Movie, error) {
	var out []*Movie
	for rows.Next() {
		var movie Movie
		if err := rows.Scan(
			&movie.ID, &movie.Title, &movie.Description, &movie.Price, &movie.Currency,
			&movie.VideoURL, &movie.ThumbnailURL, &movie.CreatorID, &movie.Published, &movie.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		out = append(out, &movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}
	return out, nil
}

// nullable maps an empty string to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
