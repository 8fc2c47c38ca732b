package notify

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Settings controls which notifications are delivered.
type Settings struct {
	Enabled          bool `json:"enabled"`
	SoundEnabled     bool `json:"soundEnabled"`
	NotifyOnApproval bool `json:"notifyOnApproval"`
	NotifyOnComplete bool `json:"notifyOnComplete"`
}

// DefaultSettings enables everything.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		SoundEnabled:     true,
		NotifyOnApproval: true,
		NotifyOnComplete: true,
	}
}

// SettingsStore persists notification settings as a JSON file.
type SettingsStore struct {
	path string
}

// NewSettingsStore stores settings under ~/.agentboard.
func NewSettingsStore() *SettingsStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return NewSettingsStoreAt(filepath.Join(home, ".agentboard", "notification-settings.json"))
}

func NewSettingsStoreAt(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load reads the settings file, falling back to defaults on any miss
// or parse failure. Unknown fields are ignored, missing ones keep
// their defaults.
func (s *SettingsStore) Load() Settings {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Printf("notification settings at %s: %v", s.path, err)
		return DefaultSettings()
	}
	return settings
}

// Save writes the settings file, creating the parent directory if
// needed.
func (s *SettingsStore) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
