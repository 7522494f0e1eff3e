// Package websocket provides the WebSocket transport for the typing race.
//
// The package implements:
//   - Real-time bidirectional communication with clients
//   - Room-scoped multicast groups (the RoomInfo fanout)
//   - Inbound event routing to the race service
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub runs an event loop that owns all multicast state: which
// client belongs to which room group, plus registration and broadcast
// ordering. Each connection gets a read pump and a write pump goroutine.
// The Router translates inbound JSON events into RaceService calls and
// broadcasts the returned room snapshot to the room's group.
//
// Message Protocol:
//
// Inbound events are JSON envelopes:
//
//	{"event":"CreateNickname","nickname":"Alice"}
//	{"event":"CreateRoom"}
//	{"event":"JoinRoom","roomCode":"AbC12"}
//	{"event":"UpdateProgress","roomCode":"AbC12","progress":0.42}
//	{"event":"Completed","roomCode":"AbC12"}
//	{"event":"Start","roomCode":"AbC12"}
//	{"event":"Restart","roomCode":"AbC12"}
//
// The only outbound event is RoomInfo, carrying the full room snapshot:
//
//	{"event":"RoomInfo","room":{...}}
//
// Failures are silent on the wire: a join to an unknown code, a progress
// report from a non-member, or a room action before CreateNickname produce
// a server log line and nothing else.
//
// Concurrency:
//
// Each connection's events are dispatched serially on its read pump, so a
// connection's own operations never interleave with each other. Operations
// that fetch a passage (CreateRoom, Restart) block only that connection's
// pump; other connections and rooms keep flowing.
package websocket
