package anvil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/logging"
)

func testNode(t *testing.T, port int) *models.ForkNode {
	t.Helper()
	dir := t.TempDir()
	return &models.ForkNode{
		Name:    "sepolia",
		Port:    port,
		PidFile: filepath.Join(dir, "sepolia.pid"),
		LogFile: filepath.Join(dir, "sepolia.log"),
	}
}

func TestBuildArgs(t *testing.T) {
	node := &models.ForkNode{Port: 8545}
	assert.Equal(t, []string{"--port", "8545", "--host", "127.0.0.1"}, buildArgs(node))

	node.ForkURL = "https://rpc.sepolia.example"
	node.ForkBlock = 7_000_000
	assert.Equal(t, []string{
		"--port", "8545",
		"--host", "127.0.0.1",
		"--fork-url", "https://rpc.sepolia.example",
		"--fork-block-number", "7000000",
	}, buildArgs(node))
}

func TestStatus_NotRunning(t *testing.T) {
	m := NewManager(logging.NewNop())
	node := testNode(t, 8545)

	status, err := m.Status(context.Background(), node)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, node.LogFile, status.LogFile)
}

func TestStatus_StalePidFile(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())

	m := NewManager(logging.NewNop())
	node := testNode(t, 8545)
	require.NoError(t, writePid(node.PidFile, cmd.Process.Pid))

	status, err := m.Status(context.Background(), node)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Contains(t, status.Error, "stale")
}

func TestStatus_InvalidPidFile(t *testing.T) {
	m := NewManager(logging.NewNop())
	node := testNode(t, 8545)
	require.NoError(t, os.WriteFile(node.PidFile, []byte("not-a-pid"), 0644))

	_, err := m.Status(context.Background(), node)
	assert.Error(t, err)
}

func TestStatus_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": "anvil/v1.2.3"})
	}))
	defer srv.Close()
	parsed, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	m := NewManager(logging.NewNop())
	node := testNode(t, port)
	require.NoError(t, writePid(node.PidFile, os.Getpid()))

	status, err := m.Status(context.Background(), node)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.True(t, status.RPCHealthy)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.Equal(t, "anvil/v1.2.3", status.ClientVersion)
}

func TestStop(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	go func() { _ = cmd.Wait() }()

	m := NewManager(logging.NewNop())
	node := testNode(t, 8545)
	require.NoError(t, writePid(node.PidFile, cmd.Process.Pid))

	require.NoError(t, m.Stop(context.Background(), node))
	_, err := os.Stat(node.PidFile)
	assert.True(t, os.IsNotExist(err))
}

func TestStart_MissingBinary(t *testing.T) {
	m := NewManager(logging.NewNop())
	m.binary = "anvil-does-not-exist"
	node := testNode(t, 8545)

	err := m.Start(context.Background(), node)
	require.Error(t, err)
	_, statErr := os.Stat(node.PidFile)
	assert.True(t, os.IsNotExist(statErr))
}
