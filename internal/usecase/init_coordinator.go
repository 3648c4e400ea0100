package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// InitCoordinator creates the coordinator registry for the selected network
// and remembers the selection for later invocations
type InitCoordinator struct {
	coordinator *Coordinator
	local       LocalConfigStore
	cfg         *config.RuntimeConfig
}

// NewInitCoordinator creates a new init coordinator use case
func NewInitCoordinator(coordinator *Coordinator, local LocalConfigStore, cfg *config.RuntimeConfig) *InitCoordinator {
	return &InitCoordinator{coordinator: coordinator, local: local, cfg: cfg}
}

// InitInput describes the registry to create
type InitInput struct {
	Owner common.Address
	// VersionRegistry receives setProtocolVersion at the end of every commit
	VersionRegistry *common.Address
}

// Run initializes the registry owned by input.Owner
func (i *InitCoordinator) Run(ctx context.Context, input InitInput) (*models.CoordinatorState, error) {
	if i.cfg.CoordinatorAddress == (common.Address{}) {
		return nil, fmt.Errorf("no coordinator address given, use --coordinator")
	}
	if input.Owner == (common.Address{}) {
		return nil, fmt.Errorf("coordinator owner must be set")
	}

	state, err := i.coordinator.Initialize(ctx, i.cfg.CoordinatorAddress, input.Owner, input.VersionRegistry)
	if err != nil {
		return nil, err
	}

	local, err := i.local.Load(ctx)
	if err != nil {
		return nil, err
	}
	local.Coordinator = i.cfg.CoordinatorAddress.Hex()
	if i.cfg.Network != nil {
		local.Network = i.cfg.Network.Name
	}
	if err := i.local.Save(ctx, local); err != nil {
		return nil, fmt.Errorf("initialized coordinator but failed to save local config: %w", err)
	}
	return state, nil
}
