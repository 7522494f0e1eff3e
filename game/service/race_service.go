package service

import (
	"context"
	"errors"
	"time"

	"github.com/keystroke-games/typerace/game/engine"
)

var (
	// ErrRoomNotFound is returned for any operation naming a code with no
	// live room behind it.
	ErrRoomNotFound = errors.New("room not found")

	// ErrNicknameNotSet is returned when a connection attempts a room action
	// before sending CreateNickname. It is recoverable: the router logs
	// and drops the event, and the connection stays open.
	ErrNicknameNotSet = errors.New("nickname not set for connection")

	// ErrNotMember marks a progress update from a connection that is not a
	// member of the target room. Routers treat it as a silent no-op.
	ErrNotMember = errors.New("connection is not a member of the room")
)

// RaceService defines all race coordination operations.
type RaceService interface {
	// Identity
	SetNickname(ctx context.Context, connID, nick string) error

	// Room lifecycle
	CreateRoom(ctx context.Context, connID string) (*engine.Room, error)
	JoinRoom(ctx context.Context, code, connID string) (*engine.Room, error)
	Disconnect(ctx context.Context, connID string) []string

	// Race progression
	UpdateProgress(ctx context.Context, code, connID string, progress float64) (*engine.Room, error)
	Complete(ctx context.Context, code, connID string) error
	StartRace(ctx context.Context, code string) (*engine.Room, error)
	RestartRace(ctx context.Context, code string) (*engine.Room, error)

	// Observation
	GetRoom(ctx context.Context, code string) (*engine.Room, error)
	ListRooms(ctx context.Context) []*RoomSummary
}

// RoomStore defines room storage operations (implemented by game/rooms).
type RoomStore interface {
	Create() (*RoomSession, error)
	Get(code string) (*RoomSession, error)
	List() []*RoomSession
	Delete(code string) error
	Touch(code string)
	RemoveConnection(connID string) []string
	Count() int
}

// IdentityRegistry defines nickname storage operations (implemented by
// game/identity).
type IdentityRegistry interface {
	Set(connID, nick string)
	Lookup(connID string) (string, bool)
	Remove(connID string)
}

// PassageProvider supplies race passages (implemented by game/passage).
type PassageProvider interface {
	Fetch(ctx context.Context) (string, error)
}

// RoomSession wraps a live room with store bookkeeping.
type RoomSession struct {
	Code           string
	State          *engine.Room
	CreatedAt      time.Time
	LastActivityAt time.Time
}
