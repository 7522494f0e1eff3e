package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/keystroke-games/typerace/game/passage"
	"github.com/keystroke-games/typerace/game/rooms"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the runtime configuration of the race server.
type Settings struct {
	// Addr is the listen address of the HTTP server.
	Addr string `json:"addr"`

	// RoomCodeLength is the number of characters in generated room codes.
	RoomCodeLength int `json:"room_code_length"`

	// PassageURL is the endpoint passages are fetched from.
	PassageURL string `json:"passage_url"`

	// PassageTimeout bounds a single passage fetch.
	PassageTimeout time.Duration `json:"passage_timeout"`

	// RoomIdleTimeout is how long a room may sit without activity before
	// the cleanup loop removes it.
	RoomIdleTimeout time.Duration `json:"room_idle_timeout"`

	// StaticDir is the directory the web client is served from. Empty
	// disables static hosting.
	StaticDir string `json:"static_dir"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Addr:            ":8080",
		RoomCodeLength:  rooms.DefaultCodeLength,
		PassageURL:      passage.DefaultEndpoint,
		PassageTimeout:  passage.DefaultTimeout,
		RoomIdleTimeout: time.Hour,
		StaticDir:       "./static",
	}
}

// Load builds the settings from an optional JSON file and environment
// variables. Environment variables win over the file, the file wins over the
// defaults. An empty path skips the file entirely.
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to parse settings file: %w", err)
		}
	}

	s.Addr = envStr("TYPERACE_ADDR", s.Addr)
	s.RoomCodeLength = envInt("TYPERACE_ROOM_CODE_LENGTH", s.RoomCodeLength)
	s.PassageURL = envStr("TYPERACE_PASSAGE_URL", s.PassageURL)
	s.PassageTimeout = envDuration("TYPERACE_PASSAGE_TIMEOUT", s.PassageTimeout)
	s.RoomIdleTimeout = envDuration("TYPERACE_ROOM_IDLE_TIMEOUT", s.RoomIdleTimeout)
	s.StaticDir = envStr("TYPERACE_STATIC_DIR", s.StaticDir)

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the settings for values the server cannot run with.
func (s Settings) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidSettings)
	}
	if s.RoomCodeLength <= 0 {
		return fmt.Errorf("%w: room_code_length must be positive, got %d", ErrInvalidSettings, s.RoomCodeLength)
	}
	if s.PassageTimeout <= 0 {
		return fmt.Errorf("%w: passage_timeout must be positive, got %s", ErrInvalidSettings, s.PassageTimeout)
	}
	if s.RoomIdleTimeout <= 0 {
		return fmt.Errorf("%w: room_idle_timeout must be positive, got %s", ErrInvalidSettings, s.RoomIdleTimeout)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
