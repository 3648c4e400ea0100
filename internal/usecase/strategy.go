package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/retry"
)

// MigrationStrategy moves one adopted proxy to a target implementation
type MigrationStrategy interface {
	Kind() models.StrategyKind
	Migrate(ctx context.Context, job *MigrationJob) (*MigrationSummary, error)
}

// MigrationJob is the input of a strategy run
type MigrationJob struct {
	Record   models.ProxyRecord
	Target   common.Address
	CallData []byte
	Spec     models.StrategySpec
	Run      *models.RunContext
}

// MigrationSummary reports what a strategy did
type MigrationSummary struct {
	Strategy models.StrategyKind
	Resumed  bool
	Keys     int
	Chunks   int
	Sets     []SetComparison
}

// StrategyRegistry selects a strategy by contract id. Contracts without an
// entry in the migration plan use the repoint strategy.
type StrategyRegistry struct {
	plan       MigrationPlanLoader
	fallback   MigrationStrategy
	strategies map[models.StrategyKind]MigrationStrategy
}

// NewStrategyRegistry creates a registry with the built-in strategies
func NewStrategyRegistry(plan MigrationPlanLoader, repoint *RepointStrategy, chunked *ChunkedSetStrategy) *StrategyRegistry {
	return NewStrategyRegistryWith(plan, repoint, repoint, chunked)
}

// NewStrategyRegistryWith creates a registry from arbitrary strategies
func NewStrategyRegistryWith(plan MigrationPlanLoader, fallback MigrationStrategy, strategies ...MigrationStrategy) *StrategyRegistry {
	r := &StrategyRegistry{
		plan:       plan,
		fallback:   fallback,
		strategies: make(map[models.StrategyKind]MigrationStrategy),
	}
	for _, s := range strategies {
		r.strategies[s.Kind()] = s
	}
	return r
}

// For returns the strategy and its configuration for id
func (r *StrategyRegistry) For(ctx context.Context, id models.ContractID) (MigrationStrategy, models.StrategySpec, error) {
	plan, err := r.plan.Load(ctx)
	if err != nil {
		return nil, models.StrategySpec{}, err
	}
	spec, ok := plan.Contracts[id]
	if !ok || spec.Strategy == "" {
		return r.fallback, models.StrategySpec{Strategy: r.fallback.Kind()}, nil
	}
	strategy, ok := r.strategies[spec.Strategy]
	if !ok {
		return nil, spec, fmt.Errorf("%s: unknown migration strategy %q", id, spec.Strategy)
	}
	return strategy, spec, nil
}

// implementationSwapper repoints a proxy through its admin and verifies the
// contract owner is identical immediately before and after the swap.
type implementationSwapper struct {
	backend ChainBackend
	admin   ProxyAdmin
	retry   *retry.Executor
	log     *slog.Logger
}

func (s *implementationSwapper) owner(ctx context.Context, proxy common.Address) (common.Address, error) {
	return retry.Do(ctx, s.retry, "owner", func(ctx context.Context) (common.Address, error) {
		return s.admin.Owner(ctx, proxy)
	})
}

func (s *implementationSwapper) checkOwner(ctx context.Context, record models.ProxyRecord, expected common.Address, step string) error {
	actual, err := s.owner(ctx, record.Proxy)
	if err != nil {
		return &domain.FatalMigrationError{ContractID: string(record.ID), Step: step, Err: err}
	}
	if actual != expected {
		return &domain.FatalMigrationError{
			ContractID: string(record.ID),
			Step:       step,
			Err: &domain.StateMismatchError{
				ContractID: string(record.ID),
				Reason:     domain.ErrOwnerChanged,
				Expected:   expected.Hex(),
				Actual:     actual.Hex(),
			},
		}
	}
	return nil
}

func (s *implementationSwapper) swap(ctx context.Context, record models.ProxyRecord, impl common.Address, data []byte, expectedOwner common.Address, step string) error {
	if err := s.checkOwner(ctx, record, expectedOwner, "before "+step); err != nil {
		return err
	}

	var (
		call models.Call
		err  error
	)
	if len(data) > 0 {
		call, err = s.admin.EncodeUpgradeAndCall(record.ProxyAdmin, record.Proxy, impl, data)
	} else {
		call, err = s.admin.EncodeUpgrade(record.ProxyAdmin, record.Proxy, impl)
	}
	if err != nil {
		return fmt.Errorf("%s: encode %s: %w", record.ID, step, err)
	}
	call.ContractID = record.ID

	if _, err := retry.Do(ctx, s.retry, step, func(ctx context.Context) (*models.BatchReceipt, error) {
		return s.backend.ExecuteBatch(ctx, []models.Call{call})
	}); err != nil {
		return fmt.Errorf("%s: %s: %w", record.ID, step, err)
	}
	s.log.Info("repointed proxy", "id", record.ID, "implementation", impl, "step", step)

	return s.checkOwner(ctx, record, expectedOwner, "after "+step)
}

// RepointStrategy upgrades the proxy straight to the target, calling the
// target with the optional call data.
type RepointStrategy struct {
	swapper *implementationSwapper
}

// NewRepointStrategy creates the default strategy
func NewRepointStrategy(backend ChainBackend, admin ProxyAdmin, exec *retry.Executor, log *slog.Logger) *RepointStrategy {
	return &RepointStrategy{swapper: &implementationSwapper{
		backend: backend,
		admin:   admin,
		retry:   exec,
		log:     log.With("component", "RepointStrategy"),
	}}
}

func (s *RepointStrategy) Kind() models.StrategyKind { return models.StrategyRepoint }

func (s *RepointStrategy) Migrate(ctx context.Context, job *MigrationJob) (*MigrationSummary, error) {
	owner, err := s.swapper.owner(ctx, job.Record.Proxy)
	if err != nil {
		return nil, &domain.FatalMigrationError{ContractID: string(job.Record.ID), Step: "read owner", Err: err}
	}
	if err := s.swapper.swap(ctx, job.Record, job.Target, job.CallData, owner, "switch to target"); err != nil {
		return nil, err
	}
	return &MigrationSummary{Strategy: models.StrategyRepoint}, nil
}
