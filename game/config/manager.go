package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/tilemerge/game/ai"
	"github.com/wricardo/mcp-training/tilemerge/game/autoplay"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultName is the profile preferred as default
const DefaultName = "classic"

// profile files are tried in this order
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles profile loading and caching
type Manager struct {
	configDir      string
	defaultProfile *Profile
	profiles       map[string]*Profile
	mu             sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		profiles:  make(map[string]*Profile),
	}

	// Load default config
	if err := m.loadDefaultProfile(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// newTemplate returns the values a profile file starts from before decoding,
// so omitted keys keep their classic values
func newTemplate() *Profile {
	opts := autoplay.DefaultOptions()
	return &Profile{
		Game:     *engine.DefaultGameConfig(),
		Weights:  ai.DefaultWeights(),
		Policy:   ai.DefaultPolicyConfig(),
		Autoplay: &opts,
	}
}

// resolve finds the file for name, which may carry its own extension
func (m *Manager) resolve(name string) (string, error) {
	if ext := filepath.Ext(name); ext != "" {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// Decode parses profile data. format is a file extension; YAML is used for
// .yaml and .yml, JSON otherwise.
func Decode(data []byte, format string) (*Profile, error) {
	p := newTemplate()
	var err error
	switch strings.ToLower(format) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, p)
	default:
		err = json.Unmarshal(data, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return p, nil
}

func idOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// LoadConfig loads a profile by name, with or without extension
func (m *Manager) LoadConfig(name string) (*Profile, error) {
	id := idOf(name)

	m.mu.RLock()
	// Check cache first
	if p, exists := m.profiles[id]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if p, exists := m.profiles[id]; exists {
		return p, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		if id == DefaultName {
			// the built-in classic profile always exists
			p := Classic()
			m.profiles[id] = p
			return p, nil
		}
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	p, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	m.profiles[id] = p
	return p, nil
}

// ListConfigs returns information about all available profiles
func (m *Manager) ListConfigs() ([]*ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*ConfigInfo
	seen := map[string]bool{}

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !isProfileExt(ext) {
			continue
		}

		id := idOf(entry.Name())
		if seen[id] {
			continue
		}

		p, err := m.LoadConfig(entry.Name())
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping invalid config")
			continue
		}
		seen[id] = true
		configs = append(configs, p.Info(entry.Name(), id))
	}

	if !seen[DefaultName] {
		configs = append(configs, Classic().Info("", DefaultName))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

func isProfileExt(ext string) bool {
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// GetDefault returns the default profile
func (m *Manager) GetDefault() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultProfile
}

// SetDefault sets the default profile by name
func (m *Manager) SetDefault(name string) error {
	p, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultProfile = p
	return nil
}

// RefreshCache drops cached profiles so the next load reads from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.profiles = make(map[string]*Profile)
	m.mu.Unlock()

	return m.loadDefaultProfile()
}

// loadDefaultProfile uses the classic profile, falling back to the built-in
// one when the classic file is invalid
func (m *Manager) loadDefaultProfile() error {
	p, err := m.LoadConfig(DefaultName)
	if err != nil {
		log.Warn().Err(err).Msg("classic profile unusable, using built-in")
		p = Classic()
	}

	m.mu.Lock()
	m.defaultProfile = p
	m.mu.Unlock()
	return nil
}

// SaveConfig validates and writes a profile. The extension of name picks
// the format; names without one are written as JSON.
func (m *Manager) SaveConfig(name string, p *Profile) error {
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".json"
		filename = name + ext
	}

	var (
		data []byte
		err  error
	)
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(p)
	} else {
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.profiles[idOf(name)] = p
	m.mu.Unlock()

	return nil
}
