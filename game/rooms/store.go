package rooms

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/keystroke-games/typerace/game/engine"
	"github.com/keystroke-games/typerace/game/service"
)

// ErrCodeSpaceExhausted is returned when Create cannot find an unused code.
// With the default 5-character codes this takes ~916 million live rooms.
var ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")

const (
	// DefaultCodeLength is the 5-character codes the web client displays.
	DefaultCodeLength = 5

	maxCodeAttempts = 100
)

// Store owns the mapping from room code to live room session.
type Store struct {
	codeLength int

	mu    sync.RWMutex
	rooms map[string]*service.RoomSession
	rng   *rand.Rand // guarded by mu
}

// NewStore creates an empty store generating codes of the given length.
// A non-positive length falls back to DefaultCodeLength.
func NewStore(codeLength int) *Store {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	return &Store{
		codeLength: codeLength,
		rooms:      make(map[string]*service.RoomSession),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create allocates a room under a freshly generated unique code.
func (s *Store) Create() (*service.RoomSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, ErrCodeSpaceExhausted
		}
		code = generateCode(s.rng, s.codeLength)
		if _, taken := s.rooms[code]; !taken {
			break
		}
	}

	now := time.Now()
	sess := &service.RoomSession{
		Code:           code,
		State:          engine.NewRoom(code),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	s.rooms[code] = sess
	return sess, nil
}

// Get returns the session for a code.
func (s *Store) Get(code string) (*service.RoomSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.rooms[code]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", code, service.ErrRoomNotFound)
	}
	return sess, nil
}

// List returns every live session.
func (s *Store) List() []*service.RoomSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*service.RoomSession, 0, len(s.rooms))
	for _, sess := range s.rooms {
		result = append(result, sess)
	}
	return result
}

// Delete removes a room.
func (s *Store) Delete(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[code]; !ok {
		return fmt.Errorf("room %s: %w", code, service.ErrRoomNotFound)
	}
	delete(s.rooms, code)
	return nil
}

// Touch records activity on a room. Unknown codes are ignored.
func (s *Store) Touch(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.rooms[code]; ok {
		sess.LastActivityAt = time.Now()
	}
}

// RemoveConnection scans every room and removes the connection's member
// records. The scan is unconditionally global even though a connection is
// expected to be in at most one room. A room left with no members is torn
// down. Returns the codes of the rooms the connection was removed from.
func (s *Store) RemoveConnection(connID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected []string
	for code, sess := range s.rooms {
		if sess.State.RemoveMember(connID) {
			affected = append(affected, code)
			sess.LastActivityAt = time.Now()
			if sess.State.MemberCount() == 0 {
				delete(s.rooms, code)
			}
		}
	}
	return affected
}

// CleanupIdleRooms removes rooms with no activity inside maxIdle and
// returns how many were removed.
func (s *Store) CleanupIdleRooms(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for code, sess := range s.rooms {
		if sess.LastActivityAt.Before(cutoff) {
			delete(s.rooms, code)
			removed++
		}
	}
	return removed
}

// Count returns the number of live rooms.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
