package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Settings holds the server configuration. Values come from defaults,
// then an optional JSON settings file, then environment variables, each
// layer overriding the previous one.
type Settings struct {
	// Host and Port select the HTTP listen address.
	Host string `json:"host"`
	Port int    `json:"port"`

	// SendQueueSize is the per-client outbound event buffer. A client
	// that falls this many events behind is disconnected rather than
	// allowed to stall the relay.
	SendQueueSize int `json:"send_queue_size"`

	// AnnounceUnjoinedLeave controls whether a connection that
	// disconnects without ever joining still emits player_left.
	AnnounceUnjoinedLeave bool `json:"announce_unjoined_leave"`

	// Debug enables verbose logging with file/line information.
	Debug bool `json:"debug"`
}

// Default returns the settings used when no file or environment
// overrides are present.
func Default() Settings {
	return Settings{
		Host:                  "localhost",
		Port:                  8080,
		SendQueueSize:         256,
		AnnounceUnjoinedLeave: true,
	}
}

// Load reads settings from the given JSON file, falling back to
// defaults when path is empty or the file does not exist, and applies
// environment overrides on top.
func Load(path string) (Settings, error) {
	settings := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing settings file is fine, defaults apply.
		case err != nil:
			return settings, fmt.Errorf("failed to read settings file: %w", err)
		default:
			if err := json.Unmarshal(data, &settings); err != nil {
				return settings, fmt.Errorf("invalid settings file %s: %w", path, err)
			}
		}
	}

	settings.applyEnv()

	if settings.SendQueueSize <= 0 {
		settings.SendQueueSize = Default().SendQueueSize
	}
	return settings, nil
}

// applyEnv overrides individual fields from ARENA_* variables.
func (s *Settings) applyEnv() {
	if host := os.Getenv("ARENA_HOST"); host != "" {
		s.Host = host
	}
	if port := os.Getenv("ARENA_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			s.Port = n
		}
	}
	if size := os.Getenv("ARENA_SEND_QUEUE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			s.SendQueueSize = n
		}
	}
	if v := os.Getenv("ARENA_ANNOUNCE_UNJOINED_LEAVE"); v != "" {
		s.AnnounceUnjoinedLeave = v == "true" || v == "1"
	}
	if v := os.Getenv("ARENA_DEBUG"); v == "true" || v == "1" {
		s.Debug = true
	}
}

// Addr returns the listen address in host:port form.
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
