package ethrpc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// BytecodeSource resolves creation bytecode of a build artifact
type BytecodeSource interface {
	Bytecode(ctx context.Context, artifact string) ([]byte, error)
}

// Deployer deploys implementations from build artifacts
type Deployer struct {
	backend   *Backend
	artifacts BytecodeSource
	log       *slog.Logger
}

// NewDeployer creates a new deployer
func NewDeployer(backend *Backend, artifacts BytecodeSource, log *slog.Logger) *Deployer {
	return &Deployer{backend: backend, artifacts: artifacts, log: log.With("component", "ethrpc.Deployer")}
}

func (d *Deployer) Deploy(ctx context.Context, artifact string) (common.Address, error) {
	code, err := d.artifacts.Bytecode(ctx, artifact)
	if err != nil {
		return common.Address{}, err
	}
	if len(code) == 0 {
		return common.Address{}, fmt.Errorf("artifact %s has no creation bytecode", artifact)
	}
	addr, err := d.backend.DeployContract(ctx, code)
	if err != nil {
		return common.Address{}, fmt.Errorf("deploy %s: %w", artifact, err)
	}
	d.log.Info("deployed", "artifact", artifact, "address", addr)
	return addr, nil
}

var _ usecase.ImplementationDeployer = (*Deployer)(nil)
