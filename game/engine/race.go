package engine

import "fmt"

// NewRoom creates an empty room in the Lobby state.
func NewRoom(code string) *Room {
	return &Room{
		Players:   []*Member{},
		Code:      code,
		NextPlace: FirstPlacement,
	}
}

// AddMember appends a new member with zero progress and no placement.
// Membership is keyed by connection ID but duplicates are not rejected here;
// a well-behaved client joins a room once.
func (r *Room) AddMember(connID, nick string, isHost bool, colorHue float64) *Member {
	m := &Member{
		ID:     connID,
		Nick:   nick,
		IsHost: isHost,
		Color:  colorHue,
	}
	r.Players = append(r.Players, m)
	return m
}

// Member returns the member for the given connection ID, or nil.
func (r *Room) Member(connID string) *Member {
	for _, m := range r.Players {
		if m.ID == connID {
			return m
		}
	}
	return nil
}

// HasMember reports whether the connection is a member of the room.
func (r *Room) HasMember(connID string) bool {
	return r.Member(connID) != nil
}

// MemberCount returns the number of members in the room.
func (r *Room) MemberCount() int {
	return len(r.Players)
}

// UpdateProgress overwrites the member's progress with the reported value,
// verbatim. Returns false when the connection is not a member.
func (r *Room) UpdateProgress(connID string, progress float64) bool {
	m := r.Member(connID)
	if m == nil {
		return false
	}
	m.Progress = progress
	return true
}

// RecordCompletion assigns the next placement label ("Finished N") to the
// member and advances the placement counter. Idempotent: a member that
// already holds a placement keeps it, and the counter does not move.
// Returns true only when a placement was newly assigned.
func (r *Room) RecordCompletion(connID string) bool {
	m := r.Member(connID)
	if m == nil || m.Place != "" {
		return false
	}
	m.Place = fmt.Sprintf("Finished %d", r.NextPlace)
	r.NextPlace++
	return true
}

// Start flags the race as running. Unconditional: calling it mid-race only
// re-flags the room.
func (r *Room) Start() {
	r.Started = true
}

// Reset returns the room to the Lobby state for a rematch: every member's
// progress and placement are cleared, the placement counter restarts, and
// the passage text is replaced with the provided one.
func (r *Room) Reset(text string) {
	r.Text = text
	for _, m := range r.Players {
		m.Progress = 0
		m.Place = ""
	}
	r.Started = false
	r.NextPlace = FirstPlacement
}

// RemoveMember deletes every member record for the connection, preserving
// the order of the remaining members. Returns true when at least one record
// was removed.
func (r *Room) RemoveMember(connID string) bool {
	kept := r.Players[:0]
	removed := false
	for _, m := range r.Players {
		if m.ID == connID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	r.Players = kept
	return removed
}

// Clone returns a deep copy of the room. Snapshots that leave the service's
// serialized context (broadcasts, API responses) must be clones so that
// later mutations and concurrent encoding never race.
func (r *Room) Clone() *Room {
	c := &Room{
		Players:   make([]*Member, len(r.Players)),
		Text:      r.Text,
		Code:      r.Code,
		NextPlace: r.NextPlace,
		Started:   r.Started,
	}
	for i, m := range r.Players {
		member := *m
		c.Players[i] = &member
	}
	return c
}
