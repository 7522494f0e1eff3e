// Package mcp exposes the race server to MCP hosts.
//
// The package implements a thin Model Context Protocol client: every tool
// call is proxied to the REST API over HTTP, so the MCP surface never touches
// the room registry directly and can run in a separate process from the
// server itself.
//
// Tools:
//   - list_rooms - list active rooms with member counts
//   - get_room - full snapshot of one room
//   - start_race - start the race in a room
//   - restart_race - fetch a fresh passage and return a room to the lobby
//
// The underlying MCP server is exposed via GetMCPServer so main can serve it
// over stdio or mount it as an HTTP endpoint:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
