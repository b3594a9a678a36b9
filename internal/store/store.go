// Package store persists device variables and global toggles as a JSON
// config file under the user's config directory.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"chromaflow/internal/device"
)

// Profile holds the persisted variable values for one named device.
type Profile struct {
	ID        string         `json:"id"`
	Device    string         `json:"device"`
	Variables map[string]any `json:"variables"`
}

// Toggles are global switches applied across devices of a kind.
type Toggles struct {
	DisableKeyboards bool `json:"disableKeyboards"`
	DisableMice      bool `json:"disableMice"`
}

type Config struct {
	Profiles []Profile `json:"profiles"`
	Toggles  Toggles   `json:"toggles"`
}

type Store struct {
	mu       sync.Mutex
	config   Config
	filePath string
}

func New() (*Store, error) {
	p, err := configPath()
	if err != nil {
		return nil, err
	}
	return NewAt(p)
}

// NewAt opens a store backed by an explicit file path.
func NewAt(path string) (*Store, error) {
	s := &Store{filePath: path}
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

func (s *Store) GetToggles() Toggles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Toggles
}

func (s *Store) SetToggles(t Toggles) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Toggles = t
	return s.saveLocked()
}

func (s *Store) GetProfiles() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Profile(nil), s.config.Profiles...)
}

// ApplyVariables overwrites a device's registered variables with the values
// persisted for it. Unknown keys in the profile are ignored, as are keys the
// device no longer registers. JSON decodes numbers as float64, so values are
// coerced back to the registered default's type where possible.
func (s *Store) ApplyVariables(d device.Device) {
	s.mu.Lock()
	profile, ok := s.profileLocked(d.Name())
	s.mu.Unlock()
	if !ok {
		return
	}

	vars := d.Variables()
	for key, value := range profile.Variables {
		if cur, ok := vars.Lookup(key); ok {
			vars.Set(key, coerce(value, cur.Default))
		}
	}
}

// SaveVariables captures a device's current variable values into its profile
// and writes the config to disk.
func (s *Store) SaveVariables(d device.Device) error {
	vars := d.Variables()
	values := make(map[string]any)
	for _, name := range vars.Names() {
		if v, ok := vars.Lookup(name); ok {
			values[name] = v.Value
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.config.Profiles {
		if s.config.Profiles[i].Device == d.Name() {
			s.config.Profiles[i].Variables = values
			return s.saveLocked()
		}
	}
	s.config.Profiles = append(s.config.Profiles, Profile{
		ID:        uuid.NewString(),
		Device:    d.Name(),
		Variables: values,
	})
	return s.saveLocked()
}

func (s *Store) DeleteProfile(deviceName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.config.Profiles {
		if p.Device == deviceName {
			s.config.Profiles = append(s.config.Profiles[:i], s.config.Profiles[i+1:]...)
			break
		}
	}
	return s.saveLocked()
}

func (s *Store) profileLocked(deviceName string) (Profile, bool) {
	for _, p := range s.config.Profiles {
		if p.Device == deviceName {
			return p, true
		}
	}
	return Profile{}, false
}

// coerce nudges a JSON-decoded value back toward the type of the registered
// default. JSON has no integer type, so ints round-trip as float64.
func coerce(value, def any) any {
	f, ok := value.(float64)
	if !ok {
		return value
	}
	switch def.(type) {
	case int:
		return int(f)
	case int64:
		return int64(f)
	default:
		return value
	}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Unmarshal(data, &s.config)
}

// saveLocked marshals config and writes atomically. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func configPath() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "chromaflow", "config.json"), nil
}
