// Package config resolves the runtime configuration from flags, environment,
// .treb/config.local.json and foundry.toml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:      projectRoot,
		DataDir:          filepath.Join(projectRoot, ".treb"),
		Profile:          v.GetString("profile"),
		Debug:            v.GetBool("debug"),
		NonInteractive:   v.GetBool("non_interactive"),
		JSON:             v.GetBool("json"),
		Timeout:          v.GetDuration("timeout"),
		PrivateKey:       v.GetString("private_key"),
		MaxAttempts:      v.GetInt("max_attempts"),
		RetryBackoff:     v.GetDuration("retry_backoff"),
		ChunkSize:        v.GetInt("chunk_size"),
		FromBlock:        v.GetUint64("from_block"),
		LogBlockRange:    v.GetUint64("log_block_range"),
		LogConcurrency:   v.GetInt("log_concurrency"),
		PlanFile:         v.GetString("plan_file"),
		ReaderArtifact:   v.GetString("reader_artifact"),
		LayoutArchiveDir: v.GetString("layout_archive_dir"),
	}

	if raw := v.GetString("coordinator"); raw != "" {
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("invalid coordinator address %q", raw)
		}
		cfg.CoordinatorAddress = common.HexToAddress(raw)
	}
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	if networkName := v.GetString("network"); networkName != "" {
		network, err := ResolveNetwork(foundryConfig, networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		network.ChainID = v.GetUint64("chain_id")
		cfg.Network = network
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find foundry.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "foundry.toml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Foundry project (foundry.toml not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".treb"))

	v.SetEnvPrefix("TREB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("profile", "default")
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("max_attempts", 5)
	v.SetDefault("retry_backoff", 500*time.Millisecond)
	v.SetDefault("reader_artifact", "SetStorageReader")

	// A missing config file is fine
	_ = v.ReadInConfig()

	bind := func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)

	return v
}
