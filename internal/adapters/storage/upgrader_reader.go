// Package storage reads enumerable set storage that has no public accessor
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// UpgraderReader reads sets through the view accessors of an upgrader
// implementation while the proxy points at it. It never changes code or
// storage and is safe against production deployments.
type UpgraderReader struct {
	backend  usecase.ChainBackend
	admin    usecase.ProxyAdmin
	upgrader *bindings.SetUpgrader
	log      *slog.Logger
}

// NewUpgraderReader creates a new upgrader reader
func NewUpgraderReader(backend usecase.ChainBackend, admin usecase.ProxyAdmin, log *slog.Logger) *UpgraderReader {
	return &UpgraderReader{
		backend:  backend,
		admin:    admin,
		upgrader: bindings.NewSetUpgrader(),
		log:      log.With("component", "UpgraderReader"),
	}
}

func (r *UpgraderReader) Mode() models.ReaderMode { return models.ReaderModeUpgrader }

// ensureUpgrader checks the proxy currently delegates to the run's upgrader
func (r *UpgraderReader) ensureUpgrader(ctx context.Context, run *models.RunContext, target common.Address) error {
	if run == nil || run.Upgrader == (common.Address{}) {
		return fmt.Errorf("no upgrader implementation is active for %s", target.Hex())
	}
	impl, err := r.admin.GetProxyImplementation(ctx, run.ProxyAdmin, target)
	if err != nil {
		return err
	}
	if impl != run.Upgrader {
		return fmt.Errorf("%s points at %s, not the upgrader %s", target.Hex(), impl.Hex(), run.Upgrader.Hex())
	}
	return nil
}

func (r *UpgraderReader) Members(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding) ([]common.Address, error) {
	if err := r.ensureUpgrader(ctx, run, target); err != nil {
		return nil, err
	}
	slot := loc.StorageSlot()
	var data []byte
	if enc == models.SetEncodingLegacy {
		data = r.upgrader.PackLegacyMembers(slot)
	} else {
		data = r.upgrader.PackMembers(slot)
	}
	out, err := r.backend.CallView(ctx, target, data)
	if err != nil {
		return nil, err
	}
	if enc == models.SetEncodingLegacy {
		return r.upgrader.UnpackLegacyMembers(out)
	}
	return r.upgrader.UnpackMembers(out)
}

func (r *UpgraderReader) Contains(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding, member common.Address) (bool, error) {
	if err := r.ensureUpgrader(ctx, run, target); err != nil {
		return false, err
	}
	slot := loc.StorageSlot()
	var data []byte
	if enc == models.SetEncodingLegacy {
		data = r.upgrader.PackLegacyContains(slot, member)
	} else {
		data = r.upgrader.PackContains(slot, member)
	}
	out, err := r.backend.CallView(ctx, target, data)
	if err != nil {
		return false, err
	}
	if enc == models.SetEncodingLegacy {
		return r.upgrader.UnpackLegacyContains(out)
	}
	return r.upgrader.UnpackContains(out)
}

var _ usecase.UpgraderStorageReader = (*UpgraderReader)(nil)
