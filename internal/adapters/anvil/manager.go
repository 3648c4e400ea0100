// Package anvil runs local anvil nodes forked from a live network
package anvil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/trebuchet-org/treb-upgrades/internal/adapters/ethrpc"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

const (
	// DefaultStartTimeout bounds the wait for a fresh fork to answer RPC
	DefaultStartTimeout = 30 * time.Second
	stopTimeout         = 5 * time.Second
	healthTimeout       = 2 * time.Second
)

// Manager starts anvil as a detached process tracked by a pid file
type Manager struct {
	binary       string
	startTimeout time.Duration
	log          *slog.Logger
}

// NewManager creates a manager that runs the anvil binary from PATH
func NewManager(log *slog.Logger) *Manager {
	return &Manager{binary: "anvil", startTimeout: DefaultStartTimeout, log: log.With("component", "anvil.Manager")}
}

func buildArgs(node *models.ForkNode) []string {
	args := []string{"--port", strconv.Itoa(node.Port), "--host", "127.0.0.1"}
	if node.ForkURL != "" {
		args = append(args, "--fork-url", node.ForkURL)
	}
	if node.ForkBlock > 0 {
		args = append(args, "--fork-block-number", strconv.FormatUint(node.ForkBlock, 10))
	}
	return args
}

// Start launches the node and waits until it answers RPC
func (m *Manager) Start(ctx context.Context, node *models.ForkNode) error {
	if err := os.MkdirAll(filepath.Dir(node.PidFile), 0755); err != nil {
		return fmt.Errorf("failed to create fork directory: %w", err)
	}
	logFile, err := os.Create(node.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(m.binary, buildArgs(node)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	// own process group so ctrl+c in the terminal leaves the node running
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", m.binary, err)
	}
	pid := cmd.Process.Pid
	if err := writePid(node.PidFile, pid); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	_ = cmd.Process.Release()
	m.log.Debug("started fork node", "pid", pid, "port", node.Port, "fork", node.ForkURL)

	deadline := time.Now().Add(m.startTimeout)
	for {
		if _, err := m.clientVersion(ctx, node.RPCURL()); err == nil {
			return nil
		}
		if !alive(pid) {
			return fmt.Errorf("node exited during startup, see %s", node.LogFile)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("node did not answer on %s within %s", node.RPCURL(), m.startTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Stop terminates the node and removes its pid file
func (m *Manager) Stop(ctx context.Context, node *models.ForkNode) error {
	pid, err := readPid(node.PidFile)
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	deadline := time.Now().Add(stopTimeout)
	for alive(pid) {
		if time.Now().After(deadline) {
			_ = process.Kill()
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	if err := os.Remove(node.PidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	m.log.Debug("stopped fork node", "pid", pid)
	return nil
}

// Status reads the pid file and probes the RPC endpoint of a live node
func (m *Manager) Status(ctx context.Context, node *models.ForkNode) (*models.ForkNodeStatus, error) {
	status := &models.ForkNodeStatus{LogFile: node.LogFile}
	pid, err := readPid(node.PidFile)
	if errors.Is(err, os.ErrNotExist) {
		return status, nil
	}
	if err != nil {
		return nil, err
	}
	if !alive(pid) {
		status.Error = fmt.Sprintf("stale PID file %s", node.PidFile)
		return status, nil
	}

	status.Running = true
	status.PID = pid
	status.RPCURL = node.RPCURL()
	version, err := m.clientVersion(ctx, status.RPCURL)
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.ClientVersion = version
	_, status.RPCHealthy = ethrpc.DevNodeKind(version)
	return status, nil
}

func (m *Manager) clientVersion(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	client, err := ethrpc.Dial(ctx, url, m.log)
	if err != nil {
		return "", err
	}
	defer client.Close()
	return client.ClientVersion(ctx)
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func readPid(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", path, err)
	}
	return pid, nil
}

func writePid(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0644)
}

var _ usecase.ForkNodeManager = (*Manager)(nil)
