package fs

import (
	"context"
	"path/filepath"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// ProgressStore keeps one resumable migration record per contract under
// <data>/priv/migrations/<network>/<contractId>.json
type ProgressStore struct {
	dir string
}

// NewProgressStore creates a new progress store
func NewProgressStore(cfg *config.RuntimeConfig) *ProgressStore {
	return &ProgressStore{dir: filepath.Join(cfg.DataDir, "priv", "migrations", cfg.NetworkName())}
}

func (s *ProgressStore) path(id models.ContractID) string {
	return filepath.Join(s.dir, string(id)+".json")
}

func (s *ProgressStore) Load(_ context.Context, id models.ContractID) (*models.MigrationProgress, error) {
	var progress models.MigrationProgress
	found, err := readJSON(s.path(id), &progress)
	if err != nil || !found {
		return nil, err
	}
	return &progress, nil
}

func (s *ProgressStore) Save(_ context.Context, progress *models.MigrationProgress) error {
	return writeJSON(s.path(progress.ContractID), progress)
}

func (s *ProgressStore) Delete(_ context.Context, id models.ContractID) error {
	return removeFile(s.path(id))
}

var _ usecase.MigrationProgressStore = (*ProgressStore)(nil)
