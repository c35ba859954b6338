package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valdor-terrains/internal/ledger"
)

// Cache is the local JSON copy of the validation snapshot. It survives
// database outages and lets the dashboard start offline; its contents are
// merged with the database copy by set union on startup.
type Cache struct {
	path string
}

// NewCache creates a cache backed by the given file path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Load reads the cached snapshot. A missing file yields an empty snapshot,
// not an error.
func (c *Cache) Load() (ledger.Snapshot, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return ledger.Snapshot{Validated: []string{}, Rejected: []string{}}, nil
	}
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("reading validation cache %s: %w", c.path, err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("parsing validation cache %s: %w", c.path, err)
	}
	if snap.Validated == nil {
		snap.Validated = []string{}
	}
	if snap.Rejected == nil {
		snap.Rejected = []string{}
	}
	return snap, nil
}

// Save writes the snapshot atomically (write to a temp file, then rename).
func (c *Cache) Save(snap ledger.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding validation cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".validations-*.json")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing validation cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing validation cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing validation cache %s: %w", c.path, err)
	}
	return nil
}
