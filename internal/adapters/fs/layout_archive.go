package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// LayoutArchive stores storage layout snapshots as <archive>/<ContractName>.json
// in the compiler's storageLayout format
type LayoutArchive struct {
	dir string
}

// NewLayoutArchive creates an archive under the configured directory,
// defaulting to <data>/layouts
func NewLayoutArchive(cfg *config.RuntimeConfig) *LayoutArchive {
	dir := cfg.LayoutArchiveDir
	if dir == "" {
		dir = filepath.Join(cfg.DataDir, "layouts")
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}
	return &LayoutArchive{dir: dir}
}

func (a *LayoutArchive) Get(_ context.Context, contractName string) (*models.StorageLayout, error) {
	var layout models.StorageLayout
	path := filepath.Join(a.dir, contractName+".json")
	found, err := readJSON(path, &layout)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no archived layout for %s in %s: %w", contractName, a.dir, os.ErrNotExist)
	}
	if layout.ContractName == "" {
		layout.ContractName = contractName
	}
	return &layout, nil
}

func (a *LayoutArchive) Put(_ context.Context, layout *models.StorageLayout) error {
	if layout.ContractName == "" {
		return fmt.Errorf("layout has no contract name")
	}
	return writeJSON(filepath.Join(a.dir, layout.ContractName+".json"), layout)
}

var _ usecase.LayoutArchive = (*LayoutArchive)(nil)
