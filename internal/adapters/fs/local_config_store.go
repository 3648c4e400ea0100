package fs

import (
	"context"
	"path/filepath"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// LocalConfigStore reads and writes .treb/config.local.json
type LocalConfigStore struct {
	path string
}

// NewLocalConfigStore creates a store in the data directory
func NewLocalConfigStore(cfg *config.RuntimeConfig) *LocalConfigStore {
	return &LocalConfigStore{path: filepath.Join(cfg.DataDir, "config.local.json")}
}

// Load returns the stored selection, or an empty one
func (s *LocalConfigStore) Load(_ context.Context) (*config.LocalConfig, error) {
	var local config.LocalConfig
	if _, err := readJSON(s.path, &local); err != nil {
		return nil, err
	}
	return &local, nil
}

func (s *LocalConfigStore) Save(_ context.Context, local *config.LocalConfig) error {
	return writeJSON(s.path, local)
}

// Path returns the backing file
func (s *LocalConfigStore) Path() string { return s.path }

var _ usecase.LocalConfigStore = (*LocalConfigStore)(nil)
