// Package rooms provides the store that owns every live room.
//
// The rooms package implements:
//   - Thread-safe room storage keyed by short shareable codes
//   - Random code generation with a uniqueness retry loop
//   - Connection cleanup across all rooms on disconnect
//   - Empty-room teardown and idle-room reaping
//
// Room Codes:
//
// Codes are short human-shareable strings drawn uniformly from the 62-symbol
// alphanumeric alphabet with a non-cryptographic random source. Create
// retries until it finds an unused code, failing only when the code space is
// effectively exhausted.
//
// Lifecycle:
//
// A room is created with an empty passage and destroyed either when its last
// member disconnects or when it sits idle past the configured timeout (the
// cleanup ticker in main drives the latter). The store only guards its own
// map and bookkeeping; mutation of the room state inside a session is
// serialized by the service layer.
package rooms
