// Package engine implements the room/race state machine for the typing race.
//
// The engine package is pure state: it knows nothing about WebSockets,
// passage providers, or storage. A Room moves between two states:
//
//	Lobby  (start=false): members gather, progress and placements are empty
//	Racing (start=true):  members report progress and finish placements
//
// Reset returns a room to the Lobby state for a rematch, clearing per-member
// race data and the placement counter. There is no terminal state; a room
// lives until all members leave.
//
// Core Types:
//
// Room is the full race session: passage text, started flag, placement
// counter, and the ordered member list. Member is one connection's
// participation record (progress, placement, host flag, color hue).
// Both types carry the wire-format JSON tags; a Room snapshot marshals
// directly into the RoomInfo payload broadcast to clients.
//
// Concurrency:
//
// Room is not safe for concurrent use. Callers (the service layer) are
// responsible for serializing mutations and for handing out deep copies
// (Clone) when a snapshot escapes the serialized context.
//
// Trust Model:
//
// Progress values are stored verbatim as reported by clients. The server
// performs no clamping and no monotonicity enforcement, so a client can
// regress its own progress. Placement assignment is idempotent: once a
// member holds a placement it keeps it until the next Reset.
package engine
