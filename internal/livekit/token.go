// Package livekit provides utilities for live premiere rooms: token
// generation for hosts and viewers, and room management.
package livekit

import (
	"errors"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
)

// Token expiry configuration.
const (
	DefaultTokenExpiry = 5 * time.Minute
	MinTokenExpiry     = 1 * time.Minute
	MaxTokenExpiry     = 15 * time.Minute
)

var (
	// ErrInvalidExpiry is returned when token expiry is outside valid bounds.
	ErrInvalidExpiry = errors.New("token expiry must be between 1 and 15 minutes")

	// ErrMissingAPIKey is returned when API key is empty.
	ErrMissingAPIKey = errors.New("livekit API key is required")

	// ErrMissingAPISecret is returned when API secret is empty.
	ErrMissingAPISecret = errors.New("livekit API secret is required")

	// ErrMissingRoomName is returned when room name is empty.
	ErrMissingRoomName = errors.New("room name is required")

	// ErrMissingIdentity is returned when identity is empty.
	ErrMissingIdentity = errors.New("participant identity is required")
)

// TokenService handles LiveKit token generation for premiere rooms.
type TokenService struct {
	apiKey    string
	apiSecret string
}

// NewTokenService creates a new TokenService with the given API credentials.
func NewTokenService(apiKey, apiSecret string) (*TokenService, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if apiSecret == "" {
		return nil, ErrMissingAPISecret
	}

	return &TokenService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}, nil
}

// TokenRequest represents the parameters for generating a LiveKit access token.
type TokenRequest struct {
	RoomName string        // Required: premiere room name
	Identity string        // Required: participant identity (e.g., "user-{uuid}")
	Host     bool          // Hosts can publish; viewers are subscribe-only
	Expiry   time.Duration // Token expiry (defaults to DefaultTokenExpiry if zero)
}

// TokenResponse represents the generated token with expiry information.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GenerateToken creates a new LiveKit access token with the specified
// parameters. Viewers get a subscribe-only grant; hosts can also publish.
func (s *TokenService) GenerateToken(req *TokenRequest) (*TokenResponse, error) {
	if req.RoomName == "" {
		return nil, ErrMissingRoomName
	}
	if req.Identity == "" {
		return nil, ErrMissingIdentity
	}

	expiry := req.Expiry
	if expiry == 0 {
		expiry = DefaultTokenExpiry
	}
	if expiry < MinTokenExpiry || expiry > MaxTokenExpiry {
		return nil, ErrInvalidExpiry
	}

	expiresAt := time.Now().Add(expiry)

	canPublish := req.Host
	canSubscribe := true
	at := auth.NewAccessToken(s.apiKey, s.apiSecret)
	at.SetIdentity(req.Identity)
	at.AddGrant(&auth.VideoGrant{
		RoomJoin:     true,
		Room:         req.RoomName,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	})
	at.SetValidFor(expiry)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}
