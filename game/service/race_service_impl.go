package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/keystroke-games/typerace/game/engine"
)

// raceServiceImpl implements the RaceService interface.
type raceServiceImpl struct {
	rooms    RoomStore
	identity IdentityRegistry
	passages PassageProvider

	// mu serializes all room mutations. Passage fetches happen outside it.
	mu  sync.RWMutex
	rng *rand.Rand // guarded by mu
}

// NewRaceService creates a new race service instance.
func NewRaceService(rooms RoomStore, identity IdentityRegistry, passages PassageProvider) RaceService {
	return &raceServiceImpl{
		rooms:    rooms,
		identity: identity,
		passages: passages,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetNickname stores or overwrites the caller's nickname. No validation:
// empty and duplicate nicknames are accepted.
func (s *raceServiceImpl) SetNickname(ctx context.Context, connID, nick string) error {
	s.identity.Set(connID, nick)
	return nil
}

// CreateRoom creates a room with a fresh unique code, adds the creator as
// host, then fetches the passage text. The room is already visible and
// joinable while the fetch is in flight; the fetch result overwrites the
// text last-writer-wins.
func (s *raceServiceImpl) CreateRoom(ctx context.Context, connID string) (*engine.Room, error) {
	s.mu.Lock()
	nick, ok := s.identity.Lookup(connID)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("create room: %w", ErrNicknameNotSet)
	}

	sess, err := s.rooms.Create()
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	code := sess.Code
	sess.State.AddMember(connID, nick, true, s.randomHue())
	s.mu.Unlock()

	log.Printf("[ROOM] %s created by %s (%s)", code, nick, connID)

	text := s.fetchPassage(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err = s.rooms.Get(code)
	if err != nil {
		// Everyone left during the fetch and the room was torn down.
		return nil, err
	}
	sess.State.Text = text
	s.rooms.Touch(code)
	return sess.State.Clone(), nil
}

// JoinRoom appends the caller to the room's member list as a non-host.
func (s *raceServiceImpl) JoinRoom(ctx context.Context, code, connID string) (*engine.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nick, ok := s.identity.Lookup(connID)
	if !ok {
		return nil, fmt.Errorf("join room %s: %w", code, ErrNicknameNotSet)
	}

	sess, err := s.rooms.Get(code)
	if err != nil {
		return nil, err
	}

	sess.State.AddMember(connID, nick, false, s.randomHue())
	s.rooms.Touch(code)
	log.Printf("[ROOM] %s joined by %s (%s), %d members", code, nick, connID, sess.State.MemberCount())
	return sess.State.Clone(), nil
}

// UpdateProgress overwrites the caller's progress in the room, verbatim.
func (s *raceServiceImpl) UpdateProgress(ctx context.Context, code, connID string, progress float64) (*engine.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Get(code)
	if err != nil {
		return nil, err
	}

	if !sess.State.UpdateProgress(connID, progress) {
		return nil, fmt.Errorf("room %s: %w", code, ErrNotMember)
	}
	s.rooms.Touch(code)
	return sess.State.Clone(), nil
}

// Complete records the caller's finish placement. Idempotent, and a silent
// no-op for non-members. Completion triggers no broadcast: the new placement
// reaches the room with the next RoomInfo.
func (s *raceServiceImpl) Complete(ctx context.Context, code, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Get(code)
	if err != nil {
		return err
	}

	if sess.State.RecordCompletion(connID) {
		s.rooms.Touch(code)
		m := sess.State.Member(connID)
		log.Printf("[RACE] %s: %s placed %q", code, m.Nick, m.Place)
	}
	return nil
}

// StartRace flags the room as racing. Unconditional on current state.
func (s *raceServiceImpl) StartRace(ctx context.Context, code string) (*engine.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Get(code)
	if err != nil {
		return nil, err
	}

	sess.State.Start()
	s.rooms.Touch(code)
	log.Printf("[RACE] %s started with %d members", code, sess.State.MemberCount())
	return sess.State.Clone(), nil
}

// RestartRace fetches a fresh passage and returns the room to the lobby
// state. The fetch is a suspension point: events arriving while it is in
// flight observe and mutate the pre-restart state, and the reset is applied
// when the fetch resolves.
func (s *raceServiceImpl) RestartRace(ctx context.Context, code string) (*engine.Room, error) {
	s.mu.RLock()
	_, err := s.rooms.Get(code)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	text := s.fetchPassage(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.rooms.Get(code)
	if err != nil {
		return nil, err
	}

	sess.State.Reset(text)
	s.rooms.Touch(code)
	log.Printf("[RACE] %s restarted, %d members back in lobby", code, sess.State.MemberCount())
	return sess.State.Clone(), nil
}

// Disconnect drops the caller's identity and removes its member records from
// every room. Rooms left empty are torn down. Returns the codes of the rooms
// the connection was removed from; no broadcast is sent for them.
func (s *raceServiceImpl) Disconnect(ctx context.Context, connID string) []string {
	s.identity.Remove(connID)

	s.mu.Lock()
	defer s.mu.Unlock()

	affected := s.rooms.RemoveConnection(connID)
	if len(affected) > 0 {
		log.Printf("[ROOM] connection %s removed from %v", connID, affected)
	}
	return affected
}

// GetRoom returns a snapshot of the room.
func (s *raceServiceImpl) GetRoom(ctx context.Context, code string) (*engine.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.rooms.Get(code)
	if err != nil {
		return nil, err
	}
	return sess.State.Clone(), nil
}

// ListRooms returns summaries of every live room.
func (s *raceServiceImpl) ListRooms(ctx context.Context) []*RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.rooms.List()
	result := make([]*RoomSummary, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, &RoomSummary{
			Code:           sess.Code,
			MemberCount:    sess.State.MemberCount(),
			Started:        sess.State.Started,
			CreatedAt:      sess.CreatedAt,
			LastActivityAt: sess.LastActivityAt,
		})
	}
	return result
}

// fetchPassage asks the provider for a paragraph and degrades to empty text
// on any failure. The error never reaches clients.
func (s *raceServiceImpl) fetchPassage(ctx context.Context) string {
	text, err := s.passages.Fetch(ctx)
	if err != nil {
		log.Printf("[PASSAGE] fetch failed, continuing with empty text: %v", err)
		return ""
	}
	return text
}

// randomHue picks a member color hue in [0, 360). Callers hold mu.
func (s *raceServiceImpl) randomHue() float64 {
	return s.rng.Float64() * engine.MaxColorHue
}
