package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// DefaultForkPort is the port of the default fork node
const DefaultForkPort = 8545

// ManageFork starts and stops local fork nodes used to rehearse migrations
type ManageFork struct {
	manager  ForkNodeManager
	progress ProgressSink
	cfg      *config.RuntimeConfig
}

// NewManageFork creates a new fork management use case
func NewManageFork(manager ForkNodeManager, progress ProgressSink, cfg *config.RuntimeConfig) *ManageFork {
	return &ManageFork{manager: manager, progress: progress, cfg: cfg}
}

// ForkParams selects the node to act on
type ForkParams struct {
	Name      string
	Port      int
	ForkBlock uint64
}

// ForkResult is the outcome of a fork operation
type ForkResult struct {
	Node    *models.ForkNode
	Status  *models.ForkNodeStatus
	Message string
	// Stopped is set when Stop terminated a running node
	Stopped bool
}

func (m *ManageFork) node(params ForkParams) *models.ForkNode {
	name := params.Name
	if name == "" {
		name = m.cfg.NetworkName()
	}
	port := params.Port
	if port == 0 {
		port = DefaultForkPort
	}
	dir := filepath.Join(m.cfg.DataDir, "fork")
	node := &models.ForkNode{
		Name:      name,
		Port:      port,
		ForkBlock: params.ForkBlock,
		PidFile:   filepath.Join(dir, name+".pid"),
		LogFile:   filepath.Join(dir, name+".log"),
	}
	if m.cfg.Network != nil {
		node.ForkURL = m.cfg.Network.RPCURL
	}
	return node
}

// Start forks the selected network on a local port
func (m *ManageFork) Start(ctx context.Context, params ForkParams) (*ForkResult, error) {
	node := m.node(params)
	if node.ForkURL == "" {
		return nil, fmt.Errorf("no network to fork, use --network")
	}

	status, err := m.manager.Status(ctx, node)
	if err == nil && status.Running {
		return nil, fmt.Errorf("fork '%s' is already running (PID %d)", node.Name, status.PID)
	}

	m.progress.Info(fmt.Sprintf("Forking %s on port %d...", m.cfg.NetworkName(), node.Port))
	if err := m.manager.Start(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to start fork: %w", err)
	}
	if status, err = m.manager.Status(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}
	return &ForkResult{
		Node:    node,
		Status:  status,
		Message: fmt.Sprintf("Fork '%s' started with PID %d", node.Name, status.PID),
	}, nil
}

// Stop stops the fork node. Stopping a node that is not running is not an error.
func (m *ManageFork) Stop(ctx context.Context, params ForkParams) (*ForkResult, error) {
	node := m.node(params)
	status, err := m.manager.Status(ctx, node)
	if err != nil || !status.Running {
		return &ForkResult{Node: node, Status: status, Message: fmt.Sprintf("Fork '%s' is not running", node.Name)}, nil
	}
	if err := m.manager.Stop(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to stop fork: %w", err)
	}
	return &ForkResult{Node: node, Message: fmt.Sprintf("Fork '%s' stopped", node.Name), Stopped: true}, nil
}

// Status reports whether the fork node is up and answering RPC
func (m *ManageFork) Status(ctx context.Context, params ForkParams) (*ForkResult, error) {
	node := m.node(params)
	status, err := m.manager.Status(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return &ForkResult{Node: node, Status: status}, nil
}
