package livekit

import (
	"context"
	"errors"
	"fmt"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

var (
	// ErrRoomServiceNotConfigured is returned when room operations are attempted without proper configuration.
	ErrRoomServiceNotConfigured = errors.New("livekit room service not configured")

	// ErrRoomNotFound is returned when a requested room does not exist in LiveKit.
	ErrRoomNotFound = errors.New("room not found")
)

// RoomService provides operations for managing premiere rooms.
type RoomService struct {
	roomClient *lksdk.RoomServiceClient
}

// NewRoomService creates a new RoomService with the given configuration.
// Returns nil if apiKey, apiSecret, or url is empty (room control will not be available).
func NewRoomService(url, apiKey, apiSecret string) *RoomService {
	if url == "" || apiKey == "" || apiSecret == "" {
		return nil
	}

	return &RoomService{
		roomClient: lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
	}
}

// CreateRoom creates a premiere room.
// emptyTimeout is the duration in seconds after which an empty room closes (0 = no timeout).
// maxParticipants caps the audience size (0 = unlimited).
func (s *RoomService) CreateRoom(ctx context.Context, roomName string, emptyTimeout, maxParticipants uint32) (*livekit.Room, error) {
	if s == nil || s.roomClient == nil {
		return nil, ErrRoomServiceNotConfigured
	}

	req := &livekit.CreateRoomRequest{
		Name:            roomName,
		EmptyTimeout:    emptyTimeout,
		MaxParticipants: maxParticipants,
	}

	room, err := s.roomClient.CreateRoom(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return room, nil
}

// DeleteRoom ends a premiere, disconnecting all participants.
func (s *RoomService) DeleteRoom(ctx context.Context, roomName string) error {
	if s == nil || s.roomClient == nil {
		return ErrRoomServiceNotConfigured
	}

	_, err := s.roomClient.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: roomName,
	})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}

// GetRoom retrieves information about a specific premiere room.
// Returns ErrRoomNotFound if the room does not exist in LiveKit.
func (s *RoomService) GetRoom(ctx context.Context, roomName string) (*livekit.Room, error) {
	if s == nil || s.roomClient == nil {
		return nil, ErrRoomServiceNotConfigured
	}

	resp, err := s.roomClient.ListRooms(ctx, &livekit.ListRoomsRequest{
		Names: []string{roomName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if len(resp.Rooms) == 0 {
		return nil, ErrRoomNotFound
	}

	return resp.Rooms[0], nil
}

// ListParticipants returns the participants currently in a premiere room.
func (s *RoomService) ListParticipants(ctx context.Context, roomName string) ([]*livekit.ParticipantInfo, error) {
	if s == nil || s.roomClient == nil {
		return nil, ErrRoomServiceNotConfigured
	}

	resp, err := s.roomClient.ListParticipants(ctx, &livekit.ListParticipantsRequest{
		Room: roomName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	return resp.Participants, nil
}
