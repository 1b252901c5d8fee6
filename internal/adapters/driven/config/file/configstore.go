package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFile is the settings file name inside the config directory.
const configFile = "config.toml"

// ConfigStore keeps markscan settings in config.toml. In memory every key
// is dotted ("ocr.engine"); on disk the dots become TOML tables:
//
//	[ocr]
//	engine = "tesseract"
//
// Set writes the whole file back, so hand edits survive only until the
// next Set from the CLI.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens config.toml under configDir, or ~/.markscan when
// configDir is empty. The directory is created if needed; a missing file
// yields an empty store.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".markscan")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, configFile),
		data:     map[string]any{},
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the raw decoded value for a dotted key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt accepts any numeric value; go-toml decodes integers as int64.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice drops non-string items from a decoded TOML array.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Set records value under key and rewrites config.toml.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.writeLocked()
}

// Save rewrites config.toml from the in-memory settings.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked()
}

// writeLocked requires s.mu held for writing.
func (s *ConfigStore) writeLocked() error {
	raw, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return err
	}
	// Owner read and write only.
	return os.WriteFile(s.filePath, raw, 0o600)
}

// Load replaces the in-memory settings with the contents of config.toml.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = map[string]any{}
		return nil
	}
	if err != nil {
		return err
	}

	tables := map[string]any{}
	if err := toml.Unmarshal(raw, &tables); err != nil {
		return err
	}
	s.data = flattenMap(tables, "")
	return nil
}

// flattenMap turns TOML tables into dotted keys: {"a": {"b": 1}} gives
// {"a.b": 1}.
func flattenMap(tables map[string]any, prefix string) map[string]any {
	flat := map[string]any{}
	for k, v := range tables {
		if prefix != "" {
			k = prefix + "." + k
		}
		sub, ok := v.(map[string]any)
		if !ok {
			flat[k] = v
			continue
		}
		for sk, sv := range flattenMap(sub, k) {
			flat[sk] = sv
		}
	}
	return flat
}

// nestMap undoes flattenMap. Keys are placed in sorted order; when a key
// collides with a table (or a table with a value) it stays a quoted dotted
// key at the top level.
func nestMap(flat map[string]any) map[string]any {
	root := map[string]any{}
	for _, key := range sortedKeys(flat) {
		parts := strings.Split(key, ".")
		table, ok := tableFor(root, parts[:len(parts)-1])
		leaf := parts[len(parts)-1]
		if _, isTable := table[leaf].(map[string]any); !ok || isTable {
			root[key] = flat[key]
			continue
		}
		table[leaf] = flat[key]
	}
	return root
}

// tableFor walks path from root, creating tables as it goes. It fails when
// a segment already holds a plain value.
func tableFor(root map[string]any, path []string) (map[string]any, bool) {
	table := root
	for _, seg := range path {
		next, exists := table[seg]
		if !exists {
			child := map[string]any{}
			table[seg] = child
			table = child
			continue
		}
		child, isTable := next.(map[string]any)
		if !isTable {
			return nil, false
		}
		table = child
	}
	return table, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keys lists every dotted key in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.data)
}

// Path is the location of config.toml.
func (s *ConfigStore) Path() string {
	return s.filePath
}
