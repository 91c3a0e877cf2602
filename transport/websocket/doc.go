// Package websocket provides the WebSocket transport for the arena
// relay.
//
// Each connection is handled by two goroutines in the usual
// gorilla/websocket arrangement: readPump parses inbound RPC envelopes
// and dispatches them into the relay, writePump drains the client's
// buffered event queue onto the wire and keeps the connection alive
// with pings.
//
// Message Protocol:
//
// Messages are JSON-encoded. Inbound requests carry an op selector:
//
//	{"op":"join","position":{"x":0,"y":0,"z":0}}
//	{"op":"move","position":{...},"rotation":{...}}
//
// Outbound pushes wrap one relay event:
//
//	{"event":"player_joined","data":{...}}
//
// Multiple queued pushes may be coalesced into a single text frame,
// separated by newlines.
//
// Room Selection:
//
// Clients pick a room with the ?room=<uuid> query parameter on the
// upgrade request; without it the connection joins the default session.
//
// Lifecycle:
//
// The Client value is the broadcast.Sendable registered with the
// session's group. Its Send never blocks: events are queued to the
// writePump, and a client whose queue overflows is disconnected. The
// readPump owns teardown: its deferred Detach runs exactly once,
// whether the connection closed gracefully, timed out, or errored.
package websocket
