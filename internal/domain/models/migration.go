package models

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// MigrationPhase is the furthest step a chunked migration has completed
type MigrationPhase string

const (
	PhaseStarted        MigrationPhase = "started"
	PhaseUpgraderActive MigrationPhase = "upgrader-active"
	PhaseChunksDone     MigrationPhase = "chunks-done"
)

// MigrationProgress is the resumable state of a chunked set migration
type MigrationProgress struct {
	ContractID ContractID       `json:"contractId"`
	Phase      MigrationPhase   `json:"phase"`
	ChunkSize  int              `json:"chunkSize"`
	Owner      common.Address   `json:"owner"`
	Upgrader   common.Address   `json:"upgrader"`
	Target     common.Address   `json:"target"`
	Processed  []common.Address `json:"processed"`
	Completed  bool             `json:"completed"`
}

// ProcessedSet returns the processed keys as a lookup set
func (p *MigrationProgress) ProcessedSet() map[common.Address]struct{} {
	set := make(map[common.Address]struct{}, len(p.Processed))
	for _, k := range p.Processed {
		set[k] = struct{}{}
	}
	return set
}

// SetEncoding is the internal representation of an enumerable set in storage
type SetEncoding string

const (
	SetEncodingLegacy  SetEncoding = "legacy"
	SetEncodingCurrent SetEncoding = "current"
)

// SetLocation addresses an enumerable set in contract storage, optionally
// as the value of a mapping entry.
type SetLocation struct {
	Slot       common.Hash  `json:"slot" yaml:"slot"`
	MappingKey *common.Hash `json:"mappingKey,omitempty" yaml:"mappingKey,omitempty"`
}

// StorageSlot returns the slot holding the set, applying the mapping
// derivation keccak256(key . slot) when a key is set.
func (l SetLocation) StorageSlot() common.Hash {
	if l.MappingKey == nil {
		return l.Slot
	}
	return crypto.Keccak256Hash(l.MappingKey.Bytes(), l.Slot.Bytes())
}

// ReaderMode identifies how a raw storage reader reaches storage
type ReaderMode string

const (
	ReaderModeFork     ReaderMode = "fork-code-swap"
	ReaderModeUpgrader ReaderMode = "upgrader"
)

// CodeCache holds deployed bytecode captured during a single run
type CodeCache struct {
	mu    sync.Mutex
	codes map[common.Address][]byte
}

// NewCodeCache creates an empty cache
func NewCodeCache() *CodeCache {
	return &CodeCache{codes: make(map[common.Address][]byte)}
}

func (c *CodeCache) Get(addr common.Address) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.codes[addr]
	return code, ok
}

func (c *CodeCache) Put(addr common.Address, code []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[addr] = code
}

// RunContext is per-run state threaded through a migration or verification
type RunContext struct {
	// ID correlates log lines of one run
	ID         string
	ContractID ContractID
	Codes      *CodeCache
	// ProxyAdmin and Upgrader are set while a proxy points at an upgrader implementation
	ProxyAdmin common.Address
	Upgrader   common.Address
}

// NewRunContext creates a run context with a fresh code cache
func NewRunContext(id ContractID) *RunContext {
	return &RunContext{ID: uuid.NewString(), ContractID: id, Codes: NewCodeCache()}
}
