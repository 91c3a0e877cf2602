// Package api provides the REST surface of the arena server.
//
// The API covers room management (create, list, inspect, delete) and a
// read-only entity state snapshot per room, plus the /ws WebSocket
// upgrade endpoint. Rooms are sessions: creating a room registers a new
// session in the registry, and deleting one tears down its broadcast
// group. The default room exists for the lifetime of the process and
// cannot be deleted.
//
// Endpoints:
//
//	POST   /api/rooms            create a room
//	GET    /api/rooms            list rooms with member/entity counts
//	GET    /api/rooms/{id}       one room's info
//	DELETE /api/rooms/{id}       delete a room (default refused)
//	GET    /api/rooms/{id}/state avatar and projectile snapshot
//	GET    /ws?room={id}         WebSocket upgrade
//
// The relay protocol itself never flows through this package; the REST
// surface is for matchmaking and observability only.
package api
