package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/anvil"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/ethrpc"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/forge"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/fs"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/onchain"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/plan"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/progress"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/storage"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewCoordinatorStore,
	wire.Bind(new(usecase.CoordinatorStore), new(*fs.CoordinatorStore)),

	fs.NewAddressBook,
	wire.Bind(new(usecase.AddressBookRepository), new(*fs.AddressBook)),

	fs.NewProgressStore,
	wire.Bind(new(usecase.MigrationProgressStore), new(*fs.ProgressStore)),

	fs.NewLayoutArchive,
	wire.Bind(new(usecase.LayoutArchive), new(*fs.LayoutArchive)),

	fs.NewLocalConfigStore,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStore)),

	plan.NewLoader,
	wire.Bind(new(usecase.MigrationPlanLoader), new(*plan.Loader)),
)

// ForgeSet provides build artifact access
var ForgeSet = wire.NewSet(
	forge.NewArtifacts,
	wire.Bind(new(usecase.CompiledLayoutSource), new(*forge.Artifacts)),
	wire.Bind(new(ethrpc.BytecodeSource), new(*forge.Artifacts)),
	wire.Bind(new(storage.DeployedBytecodeSource), new(*forge.Artifacts)),

	forge.NewBuilder,
)

// ChainSet provides JSON-RPC access and the contract encoders on top of it
var ChainSet = wire.NewSet(
	ethrpc.ProvideClient,
	ethrpc.ProvideBackend,
	wire.Bind(new(usecase.ChainBackend), new(*ethrpc.Backend)),

	ethrpc.NewDeployer,
	wire.Bind(new(usecase.ImplementationDeployer), new(*ethrpc.Deployer)),

	ethrpc.NewLogQuery,
	wire.Bind(new(usecase.EventLogQuery), new(*ethrpc.LogQuery)),

	onchain.ProvideProxyAdmin,
	wire.Bind(new(usecase.ProxyAdmin), new(*onchain.ProxyAdmin)),

	onchain.NewVersionRegistry,
	wire.Bind(new(usecase.VersionRegistry), new(*onchain.VersionRegistry)),

	onchain.NewSetUpgrader,
	wire.Bind(new(usecase.SetUpgrader), new(*onchain.SetUpgrader)),
)

// StorageSet provides the raw set storage readers
var StorageSet = wire.NewSet(
	storage.ProvideForkReader,
	wire.Bind(new(usecase.ForkStorageReader), new(*storage.ForkReader)),

	storage.NewUpgraderReader,
	wire.Bind(new(usecase.UpgraderStorageReader), new(*storage.UpgraderReader)),
)

// InteractiveSet provides terminal prompts and progress output
var InteractiveSet = wire.NewSet(
	interactive.NewPrompter,
	progress.ProvideProgressSink,
)

// DevNodeSet provides local fork node management
var DevNodeSet = wire.NewSet(
	anvil.NewManager,
	wire.Bind(new(usecase.ForkNodeManager), new(*anvil.Manager)),
)

// OfflineAdapters needs no network connection
var OfflineAdapters = wire.NewSet(
	FSSet,
	ForgeSet,
	DevNodeSet,
	InteractiveSet,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	OfflineAdapters,
	ChainSet,
	StorageSet,
)
