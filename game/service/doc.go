// Package service defines the race coordination operations and the
// orchestration layer that implements them.
//
// RaceService is the single entry point for every inbound event: nickname
// registration, room creation and joining, progress updates, completion
// ranking, start/restart, and disconnect cleanup. Transports (WebSocket
// router, REST API, MCP tools) call RaceService and broadcast the room
// snapshots it returns; they never touch engine state directly.
//
// Collaborators are injected behind small interfaces (RoomStore,
// IdentityRegistry, PassageProvider) so tests can substitute fakes and no
// package-level globals exist.
//
// Concurrency:
//
// All room and identity mutations are serialized through a single service
// mutex, preserving the one-mutation-at-a-time guarantee the game logic
// assumes. The two passage fetches (room creation and restart) deliberately
// run OUTSIDE the mutex: they are the system's only suspension points, so a
// slow or hung passage endpoint stalls just the requesting handler's pending
// broadcast while every other room keeps operating. When a fetch resolves,
// it re-acquires the lock and overwrites the room's text last-writer-wins
// with no staleness check; events processed during the fetch observe the
// pre-fetch state. This behavior is pinned by tests.
//
// Snapshots returned by RaceService are deep copies; callers may encode or
// inspect them without further locking.
package service
