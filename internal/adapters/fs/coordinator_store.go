package fs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// CoordinatorStore persists the coordinator registry of one network
type CoordinatorStore struct {
	path        string
	lockTimeout time.Duration
}

// NewCoordinatorStore creates a store at <data>/coordinator/<network>.json
func NewCoordinatorStore(cfg *config.RuntimeConfig) *CoordinatorStore {
	return &CoordinatorStore{
		path:        filepath.Join(cfg.DataDir, "coordinator", cfg.NetworkName()+".json"),
		lockTimeout: DefaultLockTimeout,
	}
}

// Load reads the registry. It returns ErrNotInitialized when none was created.
func (s *CoordinatorStore) Load(_ context.Context) (*models.CoordinatorState, error) {
	var state models.CoordinatorState
	found, err := readJSON(s.path, &state)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotInitialized
	}

	if state.Proxies == nil {
		state.Proxies = make(map[models.ContractID]*models.ProxyRecord)
	}
	if state.Pending == nil {
		state.Pending = make(map[models.ContractID]*models.PendingChange)
	}
	for id, change := range state.Pending {
		change.ID = id
	}
	return &state, nil
}

// Save writes the registry, creating the directory if needed
func (s *CoordinatorStore) Save(_ context.Context, state *models.CoordinatorState) error {
	return writeJSON(s.path, state)
}

// Lock holds <registry>.lock exclusively until the returned function is
// called. Processes sharing the data directory wait for each other.
func (s *CoordinatorStore) Lock(ctx context.Context) (func(), error) {
	return acquireLock(ctx, s.path+".lock", s.lockTimeout)
}

// WithLockTimeout overrides how long Lock waits for another holder
func (s *CoordinatorStore) WithLockTimeout(d time.Duration) *CoordinatorStore {
	s.lockTimeout = d
	return s
}

// Path returns the backing file
func (s *CoordinatorStore) Path() string { return s.path }

var _ usecase.CoordinatorStore = (*CoordinatorStore)(nil)
