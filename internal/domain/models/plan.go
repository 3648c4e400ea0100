package models

import "github.com/ethereum/go-ethereum/common"

// StrategyKind selects how a contract is moved to a new implementation
type StrategyKind string

const (
	StrategyRepoint    StrategyKind = "repoint"
	StrategyChunkedSet StrategyKind = "chunked-set"
)

// MigrationPlan is the set of per-contract strategy overrides
type MigrationPlan struct {
	Contracts map[ContractID]StrategySpec `yaml:"contracts"`
}

// StrategySpec configures the strategy for one contract
type StrategySpec struct {
	Strategy StrategyKind `yaml:"strategy"`
	// Upgrader is the artifact name of the upgrader implementation
	Upgrader string `yaml:"upgrader,omitempty"`
	// KeyEvents are event signatures whose indexed address arguments are the migration keys
	KeyEvents []KeyEvent `yaml:"keyEvents,omitempty"`
	ChunkSize int        `yaml:"chunkSize,omitempty"`
	Sets      []SetSpec  `yaml:"sets,omitempty"`
}

// KeyEvent locates migration keys in historical logs
type KeyEvent struct {
	Signature string `yaml:"signature"`
	// Topic is the indexed argument position, 1-based as in the log's topic list
	Topic int `yaml:"topic"`
	// Emitter overrides the proxy as the log source
	Emitter *common.Address `yaml:"emitter,omitempty"`
}

// SetSpec declares one enumerable set touched by a migration
type SetSpec struct {
	Label    string      `yaml:"label"`
	Location SetLocation `yaml:"location"`
	// PerKey marks sets stored inside a mapping, one per migration key
	PerKey bool `yaml:"perKey,omitempty"`
}

// LogQuery fetches indexed address arguments from historical events
type LogQuery struct {
	Address   common.Address
	Signature string
	Topic     int
	FromBlock uint64
}
