// Package api provides the HTTP surface of the typing race server.
//
// The api package implements:
//   - Read-only observer endpoints over the room registry
//   - Admin operations to start and restart races
//   - WebSocket upgrade handling for the realtime protocol
//   - Static file serving for the web client
//
// Endpoints:
//
// Observer:
//   - GET /api/rooms - List active rooms (newest activity first, ?limit=N)
//   - GET /api/rooms/{code} - Full snapshot of one room
//
// Admin:
//   - POST /api/rooms/{code}/start - Start the race and broadcast the state
//   - POST /api/rooms/{code}/restart - Refetch a passage, reset the race and
//     broadcast the state
//
// Other:
//   - GET /healthz - Liveness probe with room/client counts
//   - /ws - WebSocket endpoint players connect to
//   - /* - Static web client
//
// All API endpoints return JSON. Errors are returned as JSON with an
// appropriate HTTP status code:
//
//	{
//	  "error": "room not found"
//	}
//
// Usage:
//
//	server := api.NewServer(raceService, hub, wsRouter, "./static")
//	http.ListenAndServe(":8080", server)
package api
