package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string
	Profile     string

	// Network is nil if not specified
	Network *Network

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// Coordinator account and signer
	CoordinatorAddress common.Address
	PrivateKey         string

	// Retry policy
	MaxAttempts  int
	RetryBackoff time.Duration

	// Migration settings
	ChunkSize      int
	FromBlock      uint64
	LogBlockRange  uint64
	LogConcurrency int
	PlanFile       string
	ReaderArtifact string

	// Layout sources
	LayoutArchiveDir string

	FoundryConfig *FoundryConfig
}

// Network represents network configuration
type Network struct {
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
	ChainID uint64 `json:"chainId"`
}

// NetworkName returns the configured network name or "local"
func (c *RuntimeConfig) NetworkName() string {
	if c.Network == nil || c.Network.Name == "" {
		return "local"
	}
	return c.Network.Name
}
