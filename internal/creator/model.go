// Package creator manages filmmaker profiles: the people who publish movies
// and host live premieres.
package creator

import (
	"errors"
	"strings"
	"time"
)

// ErrCreatorNotFound is returned when the requested creator does not exist.
var ErrCreatorNotFound = errors.New("creator not found")

// Creator is one filmmaker profile.
type Creator struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required before a profile can be created.
func (c *Creator) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}
