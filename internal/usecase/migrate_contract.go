package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/layout"
)

// MigrateContract moves one adopted proxy to a new implementation outside the
// batch workflow, using the strategy configured for its contract id.
type MigrateContract struct {
	coordinator *Coordinator
	check       *CheckLayout
	registry    *StrategyRegistry
	log         *slog.Logger
}

// NewMigrateContract creates a new migrate contract use case
func NewMigrateContract(coordinator *Coordinator, check *CheckLayout, registry *StrategyRegistry, log *slog.Logger) *MigrateContract {
	return &MigrateContract{
		coordinator: coordinator,
		check:       check,
		registry:    registry,
		log:         log.With("component", "MigrateContract"),
	}
}

// MigrateResult is the outcome of a migration
type MigrateResult struct {
	ContractID models.ContractID
	Previous   common.Address
	Target     common.Address
	Summary    *MigrationSummary
}

// Run migrates id to target. callData, when non-empty, is passed to the
// target implementation after the final swap.
func (m *MigrateContract) Run(ctx context.Context, caller common.Address, id models.ContractID, target common.Address, callData []byte) (*MigrateResult, error) {
	record, err := m.prepare(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	results, err := m.check.Check(ctx, []models.ContractID{id})
	if err != nil {
		return nil, err
	}
	if err := layout.ReportError(id, results[0].Report); err != nil {
		return nil, err
	}

	strategy, spec, err := m.registry.For(ctx, id)
	if err != nil {
		return nil, err
	}
	run := models.NewRunContext(id)
	m.log.Info("migrating", "id", id, "run", run.ID, "strategy", strategy.Kind(), "target", target)

	summary, err := strategy.Migrate(ctx, &MigrationJob{
		Record:   record,
		Target:   target,
		CallData: callData,
		Spec:     spec,
		Run:      run,
	})
	if err != nil {
		return nil, err
	}

	if err := m.coordinator.recordImplementation(ctx, id, target); err != nil {
		return nil, fmt.Errorf("%s migrated to %s but the registry could not be saved: %w", id, target.Hex(), err)
	}
	return &MigrateResult{ContractID: id, Previous: record.Implementation, Target: target, Summary: summary}, nil
}

// prepare checks the caller may migrate id and that no batch change is staged for it
func (m *MigrateContract) prepare(ctx context.Context, caller common.Address, id models.ContractID) (models.ProxyRecord, error) {
	state, err := m.coordinator.State(ctx)
	if err != nil {
		return models.ProxyRecord{}, err
	}
	if err := requireOwner(state, caller, "migrate", id); err != nil {
		return models.ProxyRecord{}, err
	}
	record, ok := state.Proxies[id]
	if !ok {
		return models.ProxyRecord{}, fmt.Errorf("migrate %s: %w", id, domain.ErrNotAdopted)
	}
	if _, staged := state.Pending[id]; staged {
		return models.ProxyRecord{}, fmt.Errorf("migrate %s: withdraw the staged change first", id)
	}
	return *record, nil
}
