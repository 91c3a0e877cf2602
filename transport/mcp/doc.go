// Package mcp exposes room management and state inspection as MCP
// tools.
//
// The package follows a thin-proxy design: every tool call is
// translated into a request against the server's own REST API, so the
// MCP surface can never drift from what the HTTP surface allows. The
// embedded MCP server is mounted at /mcp by the main server and can
// also be driven over stdio.
//
// Tools: list_rooms, get_room, create_room, delete_room, room_state.
// Gameplay traffic (join/move/shoot) is WebSocket-only and deliberately
// not reachable from here.
package mcp
