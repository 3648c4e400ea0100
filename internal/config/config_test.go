package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
)

const foundryToml = `
[profile.default]
src = "src"
out = "artifacts"

[rpc_endpoints]
sepolia = "${SEPOLIA_RPC_URL}"
mainnet = "https://eth.example.org/${INFURA_KEY}"
local = "http://localhost:8545"
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(foundryToml), 0644))
	return root
}

func TestGenerateEnvVarName(t *testing.T) {
	assert.Equal(t, "SEPOLIA_RPC_URL", GenerateEnvVarName("sepolia"))
	assert.Equal(t, "CELO_SEPOLIA_RPC_URL", GenerateEnvVarName("celo-sepolia"))
	assert.Equal(t, "BASE_SEPOLIA_RPC_URL", GenerateEnvVarName("base.sepolia"))
}

func TestResolveNetwork(t *testing.T) {
	root := writeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("SEPOLIA_RPC_URL=https://sepolia.example.org\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("SEPOLIA_RPC_URL") })

	foundry, err := loadFoundryConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "artifacts", foundry.OutDir("default"))

	t.Run("env reference from .env", func(t *testing.T) {
		n, err := ResolveNetwork(foundry, "sepolia")
		require.NoError(t, err)
		assert.Equal(t, &config.Network{Name: "sepolia", RPCURL: "https://sepolia.example.org"}, n)
	})

	t.Run("hardcoded", func(t *testing.T) {
		n, err := ResolveNetwork(foundry, "local")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8545", n.RPCURL)
	})

	t.Run("missing variable is named", func(t *testing.T) {
		_, err := ResolveNetwork(foundry, "mainnet")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INFURA_KEY")
	})

	t.Run("unknown network", func(t *testing.T) {
		_, err := ResolveNetwork(foundry, "holesky")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HOLESKY_RPC_URL")
	})

	t.Run("literal url", func(t *testing.T) {
		n, err := ResolveNetwork(foundry, "http://127.0.0.1:8545")
		require.NoError(t, err)
		assert.Equal(t, "custom", n.Name)
	})
}

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("network", "", "")
	cmd.Flags().Int("chunk-size", 0, "")
	cmd.Flags().String("coordinator", "", "")
	return cmd
}

func TestProvider(t *testing.T) {
	root := writeProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".treb"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".treb", "config.local.json"),
		[]byte(`{"network": "local", "coordinator": "0x00000000000000000000000000000000000000c0"}`), 0644))
	t.Setenv("TREB_MAX_ATTEMPTS", "3")

	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("chunk-size", "25"))

	cfg, err := Provider(SetupViper(root, cmd))
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, ".treb"), cfg.DataDir)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, 25, cfg.ChunkSize)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, common.HexToAddress("0xc0"), cfg.CoordinatorAddress)
	require.NotNil(t, cfg.Network)
	assert.Equal(t, "local", cfg.Network.Name)
	assert.Equal(t, "http://localhost:8545", cfg.Network.RPCURL)
}

func TestProvider_RejectsBadCoordinator(t *testing.T) {
	root := writeProject(t)
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("coordinator", "not-an-address"))

	_, err := Provider(SetupViper(root, cmd))
	assert.ErrorContains(t, err, "invalid coordinator address")
}

func TestProvider_NoNetwork(t *testing.T) {
	cfg, err := Provider(SetupViper(writeProject(t), newTestCommand()))
	require.NoError(t, err)
	assert.Nil(t, cfg.Network)
	assert.Equal(t, "local", cfg.NetworkName())
}
