package usecase_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/fs"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/onchain"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/simchain"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/storage"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/logging"
	"github.com/trebuchet-org/treb-upgrades/internal/retry"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// MockLayoutSource is a mock implementation of CompiledLayoutSource
type MockLayoutSource struct {
	mock.Mock
}

func (m *MockLayoutSource) StorageLayout(ctx context.Context, contractName string) (*models.StorageLayout, error) {
	args := m.Called(ctx, contractName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StorageLayout), args.Error(1)
}

type staticPlan struct {
	plan *models.MigrationPlan
}

func (p *staticPlan) Load(context.Context) (*models.MigrationPlan, error) { return p.plan, nil }

type recordingSink struct {
	usecase.NopProgress
	mu     sync.Mutex
	events []usecase.ProgressEvent
}

func (s *recordingSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// scriptedBackend fails chosen batch attempts, counted from 1, before they
// reach the chain
type scriptedBackend struct {
	*simchain.Chain
	mu     sync.Mutex
	sent   int
	failAt map[int]error
}

func (b *scriptedBackend) ExecuteBatch(ctx context.Context, calls []models.Call) (*models.BatchReceipt, error) {
	b.mu.Lock()
	b.sent++
	err, fail := b.failAt[b.sent]
	b.mu.Unlock()
	if fail {
		return nil, err
	}
	return b.Chain.ExecuteBatch(ctx, calls)
}

func (b *scriptedBackend) failOn(attempt int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAt[b.sent+attempt] = err
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	owner    common.Address
	chain    *simchain.Chain
	backend  *scriptedBackend
	registry common.Address
	config   *config.RuntimeConfig

	compiled *MockLayoutSource
	archive  *fs.LayoutArchive
	progress *fs.ProgressStore
	plan     *staticPlan
	sink     *recordingSink

	coordinator *usecase.Coordinator
	adopt       *usecase.AdoptContract
	migrate     *usecase.MigrateContract
	verify      *usecase.VerifySet
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	owner := common.HexToAddress("0xc0ffee")
	chain := simchain.NewChain(owner)
	backend := &scriptedBackend{Chain: chain, failAt: make(map[int]error)}

	cfg := &config.RuntimeConfig{ProjectRoot: t.TempDir(), DataDir: t.TempDir()}
	log := logging.NewNop()
	exec := retry.NewExecutor(log)
	admin := onchain.NewProxyAdmin(backend)
	book := fs.NewAddressBook(cfg)

	h := &harness{
		t:        t,
		ctx:      ctx,
		owner:    owner,
		chain:    chain,
		backend:  backend,
		registry: chain.DeployVersionRegistry("v1"),
		config:   cfg,
		compiled: &MockLayoutSource{},
		archive:  fs.NewLayoutArchive(cfg),
		progress: fs.NewProgressStore(cfg),
		plan:     &staticPlan{plan: &models.MigrationPlan{Contracts: map[models.ContractID]models.StrategySpec{}}},
		sink:     &recordingSink{},
	}

	check := usecase.NewCheckLayout(h.archive, h.compiled, book, log)
	h.coordinator = usecase.NewCoordinator(
		fs.NewCoordinatorStore(cfg),
		backend,
		admin,
		onchain.NewVersionRegistry(backend),
		exec,
		usecase.ProvideCommitGuards(check),
		log,
	)
	_, err := h.coordinator.Initialize(ctx, owner, owner, &h.registry)
	require.NoError(t, err)
	h.adopt = usecase.NewAdoptContract(h.coordinator, book)

	repoint := usecase.NewRepointStrategy(backend, admin, exec, log)
	chunked := usecase.NewChunkedSetStrategy(
		backend, admin, onchain.NewSetUpgrader(), backend, backend, h.progress,
		storage.NewUpgraderReader(backend, admin, log), exec, h.sink, cfg, log,
	)
	h.migrate = usecase.NewMigrateContract(h.coordinator, check, usecase.NewStrategyRegistry(h.plan, repoint, chunked), log)
	h.verify = usecase.NewVerifySet(h.migrate, chain.ForkReader(), backend, exec, cfg, log)
	return h
}

var (
	merchantsSlot = common.BigToHash(big.NewInt(1))
	rewardsSlot   = common.BigToHash(big.NewInt(3))
)

func baseLayout(name string) *models.StorageLayout {
	return &models.StorageLayout{
		ContractName: name,
		Slots: []models.StorageSlot{
			{Label: "_owner", Slot: "0", Type: "t_address"},
			{Label: "merchants", Slot: "1", Type: "t_struct(AddressSet)4015_storage"},
			{Label: "rewardTokens", Slot: "3", Type: "t_mapping(t_address,t_struct(AddressSet)4015_storage)"},
			{Label: "__gap", Slot: "4", Type: "t_array(t_uint256)46_storage"},
		},
		Types: map[string]models.StorageType{
			"t_struct(AddressSet)4015_storage": {Encoding: "inplace", Label: "struct EnumerableSet.AddressSet", NumberOfBytes: "64"},
		},
	}
}

// deployed is a proxy adopted by the coordinator
type deployed struct {
	id    models.ContractID
	proxy common.Address
	admin common.Address
	impl  common.Address
}

// deploy adopts a fresh proxy for id. The compiled layout defaults to the
// archived one.
func (h *harness) deploy(id models.ContractID, compiled *models.StorageLayout) deployed {
	h.t.Helper()
	archived := baseLayout(string(id))
	if compiled == nil {
		compiled = baseLayout(string(id))
	}
	require.NoError(h.t, h.archive.Put(h.ctx, archived))
	h.compiled.On("StorageLayout", mock.Anything, string(id)).Return(compiled, nil)

	impl := h.chain.DeployImplementation(&simchain.Implementation{Name: string(id) + "V1"})
	admin := h.chain.DeployAdmin(h.owner)
	proxy := h.chain.DeployProxy(admin, impl, h.owner)

	_, err := h.adopt.Run(h.ctx, h.owner, usecase.AdoptInput{ID: id, Proxy: proxy, ProxyAdmin: admin, ContractName: string(id)})
	require.NoError(h.t, err)
	return deployed{id: id, proxy: proxy, admin: admin, impl: impl}
}

const initializeSig = "initialize()"

var initializeCall = crypto.Keccak256([]byte(initializeSig))[:4]

// initializable returns an implementation whose initialize() can run once
func initializable(name string) *simchain.Implementation {
	return &simchain.Implementation{
		Name: name,
		Handlers: map[string]simchain.Handler{
			initializeSig: func(_ common.Address, st *simchain.Storage, _ []byte) ([]byte, error) {
				if len(st.Values["initialized"]) > 0 {
					return nil, simchain.ErrRevert
				}
				st.Values["initialized"] = []byte{1}
				return nil, nil
			},
		},
	}
}

// reverting returns an implementation whose initialize() always reverts
func reverting(name string) *simchain.Implementation {
	return &simchain.Implementation{
		Name: name,
		Handlers: map[string]simchain.Handler{
			initializeSig: func(common.Address, *simchain.Storage, []byte) ([]byte, error) {
				return nil, simchain.ErrRevert
			},
		},
	}
}
