// Package catalog manages the movie catalog: the titles viewers can browse
// and purchase.
package catalog

import (
	"errors"
	"strings"
	"time"
)

// ErrMovieNotFound is returned when the requested movie does not exist.
var ErrMovieNotFound = errors.New("movie not found")

// Movie is one purchasable title in the catalog.
type Movie struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatorID    string    `json:"creatorId,omitempty"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks the fields required before a movie can be listed.
func (m *Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return errors.New("title is required")
	}
	if m.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if m.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}
