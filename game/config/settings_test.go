package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.Addr != ":8080" {
		t.Errorf("Expected addr :8080, got %s", s.Addr)
	}
	if s.RoomCodeLength != 5 {
		t.Errorf("Expected code length 5, got %d", s.RoomCodeLength)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s != Default() {
		t.Errorf("Expected defaults without file or env, got %+v", s)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/settings.json")
	if err == nil {
		t.Error("Expected error for missing settings file")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"addr": ":9090", "room_code_length": 8}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Addr != ":9090" {
		t.Errorf("Expected addr from file, got %s", s.Addr)
	}
	if s.RoomCodeLength != 8 {
		t.Errorf("Expected code length from file, got %d", s.RoomCodeLength)
	}
	// Untouched fields keep their defaults
	if s.PassageURL != Default().PassageURL {
		t.Errorf("Expected default passage URL, got %s", s.PassageURL)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed settings file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TYPERACE_ADDR", ":7070")
	t.Setenv("TYPERACE_ROOM_CODE_LENGTH", "6")
	t.Setenv("TYPERACE_ROOM_IDLE_TIMEOUT", "30m")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Addr != ":7070" {
		t.Errorf("Expected addr from env, got %s", s.Addr)
	}
	if s.RoomCodeLength != 6 {
		t.Errorf("Expected code length from env, got %d", s.RoomCodeLength)
	}
	if s.RoomIdleTimeout != 30*time.Minute {
		t.Errorf("Expected idle timeout from env, got %s", s.RoomIdleTimeout)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"addr": ":9090"}`), 0644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}
	t.Setenv("TYPERACE_ADDR", ":7070")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Addr != ":7070" {
		t.Errorf("Expected env to win over file, got %s", s.Addr)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty addr", func(s *Settings) { s.Addr = "" }},
		{"zero code length", func(s *Settings) { s.RoomCodeLength = 0 }},
		{"negative passage timeout", func(s *Settings) { s.PassageTimeout = -time.Second }},
		{"zero idle timeout", func(s *Settings) { s.RoomIdleTimeout = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}
