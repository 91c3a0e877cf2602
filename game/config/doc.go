// Package config loads the arena server settings.
//
// Settings are layered: built-in defaults, then an optional JSON
// settings file, then ARENA_* environment variables. The package also
// owns the announce_unjoined_leave switch, which decides whether a
// connection that disconnects before joining is announced to the
// remaining players.
package config
