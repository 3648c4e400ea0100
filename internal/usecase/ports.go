package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// ChainBackend is the single shared mutable resource. Mutations are issued
// one transaction at a time and are mined before the call returns.
type ChainBackend interface {
	// Sender returns the signing account that acts on behalf of the coordinator
	Sender() common.Address
	// CallView performs a read-only call from the coordinator account
	CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	// ExecuteBatch applies all calls in one atomic transaction from the
	// coordinator account. Either every call is applied or none.
	ExecuteBatch(ctx context.Context, calls []models.Call) (*models.BatchReceipt, error)
}

// ProxyAdmin reads and encodes calls against an already deployed proxy admin
type ProxyAdmin interface {
	GetProxyAdmin(ctx context.Context, admin, proxy common.Address) (common.Address, error)
	GetProxyImplementation(ctx context.Context, admin, proxy common.Address) (common.Address, error)
	// Owner returns the owner() of any Ownable contract, including proxies
	Owner(ctx context.Context, contract common.Address) (common.Address, error)
	EncodeUpgrade(admin, proxy, implementation common.Address) (models.Call, error)
	EncodeUpgradeAndCall(admin, proxy, implementation common.Address, data []byte) (models.Call, error)
}

// VersionRegistry encodes the shared protocol version update
type VersionRegistry interface {
	EncodeSetProtocolVersion(registry common.Address, version string) (models.Call, error)
}

// SetUpgrader encodes calls against an upgrader implementation
type SetUpgrader interface {
	EncodeUpgradeChunk(proxy common.Address, keys []common.Address) (models.Call, error)
	EncodeUpgradeFinished(proxy common.Address) (models.Call, error)
}

// ImplementationDeployer deploys implementation contracts from build artifacts
type ImplementationDeployer interface {
	Deploy(ctx context.Context, artifact string) (common.Address, error)
}

// EventLogQuery fetches historical events. Scans are read-only and may run concurrently.
type EventLogQuery interface {
	IndexedAddresses(ctx context.Context, query models.LogQuery) ([]common.Address, error)
}

// RawStorageReader reads enumerable set storage that has no public accessor
type RawStorageReader interface {
	Mode() models.ReaderMode
	Members(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding) ([]common.Address, error)
	Contains(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding, member common.Address) (bool, error)
}

// ForkStorageReader is a RawStorageReader that swaps bytecode on a local fork.
// It must never be pointed at a production deployment.
type ForkStorageReader interface {
	RawStorageReader
	// CheckFork returns ErrNotForkNetwork unless the node is a local dev node
	CheckFork(ctx context.Context) error
}

// UpgraderStorageReader is a RawStorageReader that only reads through a
// deployed upgrader implementation behind the real proxy admin.
type UpgraderStorageReader interface {
	RawStorageReader
}

// CoordinatorStore persists the coordinator registry
type CoordinatorStore interface {
	Load(ctx context.Context) (*models.CoordinatorState, error)
	Save(ctx context.Context, state *models.CoordinatorState) error
	// Lock excludes other processes from the registry until the returned
	// function is called
	Lock(ctx context.Context) (func(), error)
}

// AddressBookRepository reads and rewrites the per-network address book
type AddressBookRepository interface {
	Load(ctx context.Context) (models.AddressBook, error)
	Put(ctx context.Context, id models.ContractID, entry models.AddressBookEntry) error
}

// MigrationProgressStore persists resumable chunked migration state
type MigrationProgressStore interface {
	// Load returns nil when no migration is in progress for id
	Load(ctx context.Context, id models.ContractID) (*models.MigrationProgress, error)
	Save(ctx context.Context, progress *models.MigrationProgress) error
	Delete(ctx context.Context, id models.ContractID) error
}

// LayoutArchive stores storage layout snapshots per contract name
type LayoutArchive interface {
	Get(ctx context.Context, contractName string) (*models.StorageLayout, error)
	Put(ctx context.Context, layout *models.StorageLayout) error
}

// CompiledLayoutSource reads storage layouts from fresh build metadata
type CompiledLayoutSource interface {
	StorageLayout(ctx context.Context, contractName string) (*models.StorageLayout, error)
}

// MigrationPlanLoader loads per-contract strategy overrides
type MigrationPlanLoader interface {
	Load(ctx context.Context) (*models.MigrationPlan, error)
}

// CommitGuard may veto a batch before the coordinator submits it
type CommitGuard interface {
	CheckCommit(ctx context.Context, state *models.CoordinatorState, changes []*models.PendingChange) error
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// LocalConfigStore persists the selected network and coordinator for this checkout
type LocalConfigStore interface {
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, local *config.LocalConfig) error
}

// ForkNodeManager runs local dev nodes forked from a live network
type ForkNodeManager interface {
	Start(ctx context.Context, node *models.ForkNode) error
	Stop(ctx context.Context, node *models.ForkNode) error
	Status(ctx context.Context, node *models.ForkNode) (*models.ForkNodeStatus, error)
}
