package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/layout"
	"github.com/trebuchet-org/treb-upgrades/internal/retry"
)

// setTypeMarkers identify layout types that hold enumerable sets
var setTypeMarkers = []string{"EnumerableSet", "AddressSet", "Bytes32Set", "UintSet"}

// VerifySet rehearses a chunked set migration on a local fork and proves
// every set holds the same members before and after.
type VerifySet struct {
	migrate *MigrateContract
	fork    ForkStorageReader
	keys    *keyDiscovery
	log     *slog.Logger
}

// NewVerifySet creates a new verify set use case
func NewVerifySet(migrate *MigrateContract, fork ForkStorageReader, logs EventLogQuery, exec *retry.Executor, cfg *config.RuntimeConfig, log *slog.Logger) *VerifySet {
	return &VerifySet{
		migrate: migrate,
		fork:    fork,
		keys:    &keyDiscovery{logs: logs, retry: exec, fromBlock: cfg.FromBlock},
		log:     log.With("component", "VerifySet"),
	}
}

// VerifySetResult is the outcome of a verification run
type VerifySetResult struct {
	ContractID models.ContractID
	Keys       int
	Sets       []SetComparison
	Summary    *MigrationSummary
}

// Run verifies the migration of id to target
func (v *VerifySet) Run(ctx context.Context, caller common.Address, id models.ContractID, target common.Address, callData []byte) (*VerifySetResult, error) {
	if v.fork.Mode() != models.ReaderModeFork {
		return nil, fmt.Errorf("%s: verification requires a fork storage reader, got %s", id, v.fork.Mode())
	}
	if err := v.fork.CheckFork(ctx); err != nil {
		return nil, fmt.Errorf("verify %s: %w", id, err)
	}

	record, err := v.migrate.prepare(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	strategy, spec, err := v.migrate.registry.For(ctx, id)
	if err != nil {
		return nil, err
	}
	if spec.Strategy != models.StrategyChunkedSet {
		return nil, fmt.Errorf("%s: no chunked-set migration is configured", id)
	}

	results, err := v.migrate.check.Check(ctx, []models.ContractID{id})
	if err != nil {
		return nil, err
	}
	checked := results[0]
	if err := layout.ReportError(id, checked.Report); err != nil {
		return nil, err
	}
	if unhandled := unhandledSetTypes(checked.Current, spec.Sets); len(unhandled) > 0 {
		return nil, &domain.FatalMigrationError{
			ContractID: string(id),
			Step:       "scan storage layout",
			Err:        domain.ErrUnhandledStorageType,
			Unhandled:  unhandled,
		}
	}

	keys, err := v.keys.discover(ctx, record.Proxy, spec.KeyEvents)
	if err != nil {
		return nil, fmt.Errorf("%s: discover migration keys: %w", id, err)
	}

	run := models.NewRunContext(id)
	before, err := readSets(ctx, v.fork, run, record.Proxy, spec.Sets, keys, models.SetEncodingLegacy)
	if err != nil {
		return nil, &domain.FatalMigrationError{ContractID: string(id), Step: "read legacy sets", Err: err}
	}

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

	after, err := readSets(ctx, v.fork, run, record.Proxy, spec.Sets, keys, models.SetEncodingCurrent)
	if err != nil {
		return nil, &domain.FatalMigrationError{ContractID: string(id), Step: "read migrated sets", Err: err}
	}
	sets, err := diffSets(ctx, v.fork, run, record.Proxy, spec.Sets, keys, before, after)
	if err != nil {
		return nil, &domain.FatalMigrationError{ContractID: string(id), Step: "compare sets", Err: err}
	}

	result := &VerifySetResult{ContractID: id, Keys: len(keys), Sets: sets, Summary: summary}
	if failed := failedSets(sets); len(failed) > 0 {
		return result, &domain.FatalMigrationError{
			ContractID: string(id),
			Step:       "compare sets",
			Err:        fmt.Errorf("membership changed for %s", strings.Join(failed, ", ")),
		}
	}
	v.log.Info("verified set migration", "id", id, "run", run.ID, "keys", len(keys), "sets", len(sets))
	return result, nil
}

// unhandledSetTypes lists set-like variables in the layout that no declared
// set covers
func unhandledSetTypes(l *models.StorageLayout, handled []models.SetSpec) []string {
	if l == nil {
		return nil
	}
	covered := make(map[string]bool, len(handled))
	for _, s := range handled {
		covered[s.Label] = true
	}

	var out []string
	for _, slot := range l.Slots {
		if slot.IsGap() || covered[slot.Label] {
			continue
		}
		label := slot.Type
		if t, ok := l.Types[slot.Type]; ok && t.Label != "" {
			label = t.Label
		}
		if isSetLike(slot.Type) || isSetLike(label) {
			out = append(out, fmt.Sprintf("%s (%s)", slot.Label, label))
		}
	}
	return out
}

func isSetLike(typ string) bool {
	for _, marker := range setTypeMarkers {
		if strings.Contains(typ, marker) {
			return true
		}
	}
	return false
}
