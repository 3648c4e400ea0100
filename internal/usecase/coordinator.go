package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/retry"
)

// Coordinator is the registry of adopted proxies. It stages per-contract
// changes and commits them as one atomic batch.
type Coordinator struct {
	store    CoordinatorStore
	backend  ChainBackend
	admin    ProxyAdmin
	versions VersionRegistry
	retry    *retry.Executor
	guards   []CommitGuard
	log      *slog.Logger

	// mu serializes operations inside this process. The store lock
	// serializes mutations across processes.
	mu sync.Mutex
}

// NewCoordinator creates a new coordinator use case
func NewCoordinator(
	store CoordinatorStore,
	backend ChainBackend,
	admin ProxyAdmin,
	versions VersionRegistry,
	exec *retry.Executor,
	guards []CommitGuard,
	log *slog.Logger,
) *Coordinator {
	return &Coordinator{
		store:    store,
		backend:  backend,
		admin:    admin,
		versions: versions,
		retry:    exec,
		guards:   guards,
		log:      log.With("component", "Coordinator"),
	}
}

// CommitResult describes a successful commit
type CommitResult struct {
	Applied []models.ContractID
	Nonce   uint64
	Version string
	Receipt *models.BatchReceipt
}

// Initialize creates the coordinator registry owned by owner
func (c *Coordinator) Initialize(ctx context.Context, address, owner common.Address, registry *common.Address) (*models.CoordinatorState, error) {
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := c.store.Load(ctx); err == nil {
		return nil, fmt.Errorf("coordinator %s: %w", address.Hex(), errAlreadyInitialized)
	} else if !errors.Is(err, domain.ErrNotInitialized) {
		return nil, err
	}

	state := models.NewCoordinatorState(address, owner)
	state.VersionRegistry = registry
	if err := c.store.Save(ctx, state); err != nil {
		return nil, err
	}
	c.log.Info("initialized coordinator", "address", address, "owner", owner)
	return state.Clone(), nil
}

var errAlreadyInitialized = errors.New("already initialized")

// lock takes the in-process mutex and the store lock. Mutations hold both
// from Load through Save.
func (c *Coordinator) lock(ctx context.Context) (func(), error) {
	c.mu.Lock()
	release, err := c.store.Lock(ctx)
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("lock coordinator registry: %w", err)
	}
	return func() {
		release()
		c.mu.Unlock()
	}, nil
}

// State returns a snapshot of the registry
func (c *Coordinator) State(ctx context.Context) (*models.CoordinatorState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// Nonce returns the current upgrade nonce
func (c *Coordinator) Nonce(ctx context.Context) (uint64, error) {
	state, err := c.State(ctx)
	if err != nil {
		return 0, err
	}
	return state.Nonce, nil
}

// Adopt registers a proxy. The coordinator must already own both the proxy
// admin and the contract behind the proxy.
func (c *Coordinator) Adopt(ctx context.Context, caller common.Address, id models.ContractID, proxy, proxyAdmin common.Address) (*models.ProxyRecord, error) {
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(state, caller, "adopt", id); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("adopt: contract id is required")
	}
	if _, exists := state.Proxies[id]; exists {
		return nil, &domain.RegistrationError{ContractID: string(id), Reason: domain.ErrDuplicateContractID}
	}

	impl, err := c.checkProxy(ctx, id, proxy, proxyAdmin)
	if err != nil {
		return nil, err
	}
	if err := c.checkOwnership(ctx, state, id, proxy, proxyAdmin); err != nil {
		return nil, err
	}

	record := &models.ProxyRecord{
		ID:             id,
		Proxy:          proxy,
		ProxyAdmin:     proxyAdmin,
		Implementation: impl,
	}
	state.Proxies[id] = record
	if err := c.store.Save(ctx, state); err != nil {
		return nil, err
	}

	c.log.Info("adopted proxy", "id", id, "proxy", proxy, "admin", proxyAdmin, "implementation", impl)
	r := *record
	return &r, nil
}

func (c *Coordinator) checkProxy(ctx context.Context, id models.ContractID, proxy, proxyAdmin common.Address) (common.Address, error) {
	reportedAdmin, adminErr := retry.Do(ctx, c.retry, "getProxyAdmin", func(ctx context.Context) (common.Address, error) {
		return c.admin.GetProxyAdmin(ctx, proxyAdmin, proxy)
	})
	impl, implErr := retry.Do(ctx, c.retry, "getProxyImplementation", func(ctx context.Context) (common.Address, error) {
		return c.admin.GetProxyImplementation(ctx, proxyAdmin, proxy)
	})

	switch {
	case adminErr != nil && implErr != nil:
		return common.Address{}, &domain.RegistrationError{
			ContractID: string(id),
			Reason:     domain.ErrNotAProxy,
			Detail:     fmt.Sprintf("admin queries against %s failed: %v", proxy.Hex(), errors.Join(adminErr, implErr)),
		}
	case adminErr != nil:
		return common.Address{}, &domain.RegistrationError{ContractID: string(id), Reason: domain.ErrNotAProxy, Detail: adminErr.Error()}
	case implErr != nil:
		return common.Address{}, &domain.RegistrationError{ContractID: string(id), Reason: domain.ErrNotAProxy, Detail: implErr.Error()}
	case reportedAdmin != proxyAdmin:
		return common.Address{}, &domain.RegistrationError{
			ContractID: string(id),
			Reason:     domain.ErrNotAProxy,
			Detail:     fmt.Sprintf("proxy is administered by %s, not %s", reportedAdmin.Hex(), proxyAdmin.Hex()),
		}
	}
	return impl, nil
}

func (c *Coordinator) checkOwnership(ctx context.Context, state *models.CoordinatorState, id models.ContractID, proxy, proxyAdmin common.Address) error {
	adminOwner, err := retry.Do(ctx, c.retry, "owner", func(ctx context.Context) (common.Address, error) {
		return c.admin.Owner(ctx, proxyAdmin)
	})
	if err != nil {
		return &domain.RegistrationError{ContractID: string(id), Reason: domain.ErrNotAdminOwner, Detail: err.Error()}
	}
	if adminOwner != state.Address {
		return &domain.RegistrationError{
			ContractID: string(id),
			Reason:     domain.ErrNotAdminOwner,
			Detail:     fmt.Sprintf("proxy admin %s is owned by %s; transfer ownership to %s first", proxyAdmin.Hex(), adminOwner.Hex(), state.Address.Hex()),
		}
	}

	contractOwner, err := retry.Do(ctx, c.retry, "owner", func(ctx context.Context) (common.Address, error) {
		return c.admin.Owner(ctx, proxy)
	})
	if err != nil {
		return &domain.RegistrationError{ContractID: string(id), Reason: domain.ErrNotContractOwner, Detail: err.Error()}
	}
	if contractOwner != state.Address {
		return &domain.RegistrationError{
			ContractID: string(id),
			Reason:     domain.ErrNotContractOwner,
			Detail:     fmt.Sprintf("contract %s is owned by %s; transfer ownership to %s first", proxy.Hex(), contractOwner.Hex(), state.Address.Hex()),
		}
	}
	return nil
}

// ProposeUpgrade stages an implementation change
func (c *Coordinator) ProposeUpgrade(ctx context.Context, caller common.Address, id models.ContractID, implementation common.Address) error {
	return c.propose(ctx, caller, "proposeUpgrade", &models.PendingChange{ID: id, NewImplementation: &implementation})
}

// ProposeCall stages a call against the current implementation
func (c *Coordinator) ProposeCall(ctx context.Context, caller common.Address, id models.ContractID, data []byte) error {
	return c.propose(ctx, caller, "proposeCall", &models.PendingChange{ID: id, CallData: slices.Clone(data)})
}

// ProposeUpgradeAndCall stages an implementation change followed by an initialization call
func (c *Coordinator) ProposeUpgradeAndCall(ctx context.Context, caller common.Address, id models.ContractID, implementation common.Address, data []byte) error {
	return c.propose(ctx, caller, "proposeUpgradeAndCall", &models.PendingChange{ID: id, NewImplementation: &implementation, CallData: slices.Clone(data)})
}

func (c *Coordinator) propose(ctx context.Context, caller common.Address, op string, change *models.PendingChange) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := requireProposer(state, caller, op, change.ID); err != nil {
		return err
	}
	if _, ok := state.Proxies[change.ID]; !ok {
		return fmt.Errorf("%s %s: %w", op, change.ID, domain.ErrNotAdopted)
	}
	if change.NewImplementation != nil && *change.NewImplementation == (common.Address{}) {
		return fmt.Errorf("%s %s: implementation address is zero", op, change.ID)
	}
	if !change.HasUpgrade() && !change.HasCall() {
		return fmt.Errorf("%s %s: call data is empty", op, change.ID)
	}

	// Overwrite and move to the back of the review order
	state.Pending[change.ID] = change
	state.PendingOrder = append(removeID(state.PendingOrder, change.ID), change.ID)

	if err := c.store.Save(ctx, state); err != nil {
		return err
	}
	c.log.Info("staged change", "id", change.ID, "kind", change.Kind(), "by", caller)
	return nil
}

// WithdrawChanges clears the staged change of id
func (c *Coordinator) WithdrawChanges(ctx context.Context, caller common.Address, id models.ContractID) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := requireProposer(state, caller, "withdrawChanges", id); err != nil {
		return err
	}
	if _, ok := state.Pending[id]; !ok {
		return fmt.Errorf("withdraw %s: %w", id, domain.ErrNothingPending)
	}

	delete(state.Pending, id)
	state.PendingOrder = removeID(state.PendingOrder, id)

	if err := c.store.Save(ctx, state); err != nil {
		return err
	}
	c.log.Info("withdrew change", "id", id, "by", caller)
	return nil
}

// PendingChanges returns the proxy addresses with staged changes in commit order
func (c *Coordinator) PendingChanges(ctx context.Context) ([]common.Address, error) {
	state, err := c.State(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(state.PendingOrder))
	for _, id := range state.PendingOrder {
		out = append(out, state.Proxies[id].Proxy)
	}
	return out, nil
}

// PendingDetails returns the staged changes in commit order
func (c *Coordinator) PendingDetails(ctx context.Context) ([]*models.PendingChange, error) {
	state, err := c.State(ctx)
	if err != nil {
		return nil, err
	}
	return orderedChanges(state), nil
}

// Call invokes data against the current implementation of id immediately,
// without the review workflow.
func (c *Coordinator) Call(ctx context.Context, caller common.Address, id models.ContractID, data []byte) (*models.BatchReceipt, error) {
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(state, caller, "call", id); err != nil {
		return nil, err
	}
	record, ok := state.Proxies[id]
	if !ok {
		return nil, fmt.Errorf("call %s: %w", id, domain.ErrNotAdopted)
	}

	calls := []models.Call{{To: record.Proxy, Data: slices.Clone(data), ContractID: id, Description: "call"}}
	receipt, err := c.execute(ctx, calls)
	if err != nil {
		return nil, err
	}
	c.log.Info("executed call", "id", id, "tx", receipt.TxHash)
	return receipt, nil
}

// Commit applies every staged change in pending order as one atomic batch,
// then bumps the protocol version and the nonce. expectedNonce must match
// the nonce the caller observed when reviewing the batch.
func (c *Coordinator) Commit(ctx context.Context, caller common.Address, expectedNonce uint64, newVersion string) (*CommitResult, error) {
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(state, caller, "commit", ""); err != nil {
		return nil, err
	}
	if state.Nonce != expectedNonce {
		return nil, &domain.StateMismatchError{
			Reason:   domain.ErrStaleNonce,
			Expected: fmt.Sprintf("nonce %d", expectedNonce),
			Actual:   fmt.Sprintf("nonce %d", state.Nonce),
		}
	}
	if len(state.PendingOrder) == 0 {
		return nil, domain.ErrNothingToCommit
	}

	changes := orderedChanges(state)
	for _, guard := range c.guards {
		if err := guard.CheckCommit(ctx, state.Clone(), changes); err != nil {
			return nil, err
		}
	}

	calls, err := c.buildBatch(state, changes, newVersion)
	if err != nil {
		return nil, err
	}

	receipt, err := c.execute(ctx, calls)
	if err != nil {
		var unconfirmed *domain.UnconfirmedTxError
		if errors.As(err, &unconfirmed) {
			return nil, fmt.Errorf("commit outcome unknown, staged changes kept until %s is checked: %w", unconfirmed.TxHash.Hex(), err)
		}
		return nil, fmt.Errorf("commit aborted, no changes applied: %w", err)
	}

	applied := make([]models.ContractID, 0, len(changes))
	for _, change := range changes {
		if change.HasUpgrade() {
			state.Proxies[change.ID].Implementation = *change.NewImplementation
		}
		applied = append(applied, change.ID)
	}
	state.Pending = make(map[models.ContractID]*models.PendingChange)
	state.PendingOrder = []models.ContractID{}
	state.ProtocolVersion = newVersion
	state.Nonce++

	if err := c.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("batch %s was mined but the registry could not be saved: %w", receipt.TxHash.Hex(), err)
	}

	c.log.Info("committed batch", "changes", len(applied), "version", newVersion, "nonce", state.Nonce, "tx", receipt.TxHash)
	return &CommitResult{Applied: applied, Nonce: state.Nonce, Version: newVersion, Receipt: receipt}, nil
}

func (c *Coordinator) buildBatch(state *models.CoordinatorState, changes []*models.PendingChange, newVersion string) ([]models.Call, error) {
	calls := make([]models.Call, 0, len(changes)+1)
	for _, change := range changes {
		record := state.Proxies[change.ID]
		var (
			call models.Call
			err  error
		)
		switch {
		case change.HasUpgrade() && change.HasCall():
			call, err = c.admin.EncodeUpgradeAndCall(record.ProxyAdmin, record.Proxy, *change.NewImplementation, change.CallData)
		case change.HasUpgrade():
			call, err = c.admin.EncodeUpgrade(record.ProxyAdmin, record.Proxy, *change.NewImplementation)
		default:
			call = models.Call{To: record.Proxy, Data: slices.Clone(change.CallData), Description: "call"}
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s for %s: %w", change.Kind(), change.ID, err)
		}
		call.ContractID = change.ID
		calls = append(calls, call)
	}

	if state.VersionRegistry != nil {
		call, err := c.versions.EncodeSetProtocolVersion(*state.VersionRegistry, newVersion)
		if err != nil {
			return nil, fmt.Errorf("encode protocol version %q: %w", newVersion, err)
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func (c *Coordinator) execute(ctx context.Context, calls []models.Call) (*models.BatchReceipt, error) {
	receipt, err := retry.Do(ctx, c.retry, "executeBatch", func(ctx context.Context) (*models.BatchReceipt, error) {
		return c.backend.ExecuteBatch(ctx, calls)
	})
	if err != nil {
		var reverted *domain.CallRevertedError
		if errors.As(err, &reverted) && reverted.ContractID == "" && reverted.Index >= 0 && reverted.Index < len(calls) {
			reverted.ContractID = string(calls[reverted.Index].ContractID)
			if reverted.Description == "" {
				reverted.Description = calls[reverted.Index].Description
			}
		}
		return nil, err
	}
	return receipt, nil
}

// recordImplementation updates the implementation pointer of id after a migration
func (c *Coordinator) recordImplementation(ctx context.Context, id models.ContractID, impl common.Address) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	record, ok := state.Proxies[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrNotAdopted)
	}
	record.Implementation = impl
	return c.store.Save(ctx, state)
}

// AddProposer allows addr to stage and withdraw changes
func (c *Coordinator) AddProposer(ctx context.Context, caller, addr common.Address) error {
	return c.updateProposers(ctx, caller, "addProposer", func(s *models.CoordinatorState) {
		if !s.IsProposer(addr) {
			s.Proposers = append(s.Proposers, addr)
		}
	})
}

// RemoveProposer revokes addr's proposer role
func (c *Coordinator) RemoveProposer(ctx context.Context, caller, addr common.Address) error {
	return c.updateProposers(ctx, caller, "removeProposer", func(s *models.CoordinatorState) {
		s.Proposers = slices.DeleteFunc(s.Proposers, func(p common.Address) bool { return p == addr })
	})
}

func (c *Coordinator) updateProposers(ctx context.Context, caller common.Address, op string, mutate func(*models.CoordinatorState)) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := requireOwner(state, caller, op, ""); err != nil {
		return err
	}
	mutate(state)
	return c.store.Save(ctx, state)
}

func requireOwner(state *models.CoordinatorState, caller common.Address, op string, id models.ContractID) error {
	if caller != state.Owner {
		return &domain.AuthorizationError{ContractID: string(id), Caller: caller.Hex(), Operation: op, Required: "the owner"}
	}
	return nil
}

func requireProposer(state *models.CoordinatorState, caller common.Address, op string, id models.ContractID) error {
	if caller != state.Owner && !state.IsProposer(caller) {
		return &domain.AuthorizationError{ContractID: string(id), Caller: caller.Hex(), Operation: op, Required: "a proposer or the owner"}
	}
	return nil
}

func orderedChanges(state *models.CoordinatorState) []*models.PendingChange {
	out := make([]*models.PendingChange, 0, len(state.PendingOrder))
	for _, id := range state.PendingOrder {
		out = append(out, state.Pending[id])
	}
	return out
}

func removeID(ids []models.ContractID, id models.ContractID) []models.ContractID {
	return slices.DeleteFunc(ids, func(x models.ContractID) bool { return x == id })
}
