package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// artifact is the subset of a Foundry build artifact that is read
type artifact struct {
	Bytecode struct {
		Object string `json:"object"`
	} `json:"bytecode"`
	DeployedBytecode struct {
		Object string `json:"object"`
	} `json:"deployedBytecode"`
	StorageLayout *models.StorageLayout `json:"storageLayout"`
}

// Artifacts reads storage layouts and bytecode from Foundry build output
type Artifacts struct {
	projectRoot string
	outDir      string
	log         *slog.Logger

	mu    sync.Mutex
	cache map[string]*artifact
	// inspect runs `forge inspect` and is replaced in tests
	inspect func(ctx context.Context, name string) ([]byte, error)
}

// NewArtifacts creates a reader over <root>/<out>
func NewArtifacts(cfg *config.RuntimeConfig, log *slog.Logger) *Artifacts {
	a := &Artifacts{
		projectRoot: cfg.ProjectRoot,
		outDir:      cfg.FoundryConfig.OutDir(cfg.Profile),
		log:         log.With("component", "ForgeArtifacts"),
		cache:       make(map[string]*artifact),
	}
	a.inspect = a.forgeInspect
	return a
}

// artifactPath resolves "Name" or "path/File.sol:Name" to out/File.sol/Name.json
func (a *Artifacts) artifactPath(name string) string {
	file, contract := name+".sol", name
	if i := strings.LastIndex(name, ":"); i >= 0 {
		file, contract = filepath.Base(name[:i]), name[i+1:]
	}
	return filepath.Join(a.projectRoot, a.outDir, file, contract+".json")
}

func contractName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (a *Artifacts) load(name string) (*artifact, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if art, ok := a.cache[name]; ok {
		return art, nil
	}

	path := a.artifactPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact for %s not found at %s, run forge build: %w", name, path, err)
	}
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	a.cache[name] = &art
	return &art, nil
}

// StorageLayout returns the compiled storage layout of name. Artifacts built
// without the storageLayout extra output fall back to forge inspect.
func (a *Artifacts) StorageLayout(ctx context.Context, name string) (*models.StorageLayout, error) {
	art, err := a.load(name)
	if err != nil {
		return nil, err
	}
	if art.StorageLayout != nil {
		layout := *art.StorageLayout
		layout.ContractName = contractName(name)
		return &layout, nil
	}

	a.log.Debug("artifact has no storage layout, using forge inspect", "contract", name)
	out, err := a.inspect(ctx, name)
	if err != nil {
		return nil, err
	}
	var layout models.StorageLayout
	if err := json.Unmarshal(out, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse storage layout of %s: %w", name, err)
	}
	layout.ContractName = contractName(name)
	return &layout, nil
}

func (a *Artifacts) forgeInspect(ctx context.Context, name string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "forge", "inspect", name, "storageLayout", "--json")
	cmd.Dir = a.projectRoot
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("forge inspect %s failed: %w\n%s", name, err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("forge inspect %s failed: %w", name, err)
	}
	return out, nil
}

// Bytecode returns the creation bytecode of name
func (a *Artifacts) Bytecode(_ context.Context, name string) ([]byte, error) {
	art, err := a.load(name)
	if err != nil {
		return nil, err
	}
	return decodeObject(name, "bytecode", art.Bytecode.Object)
}

// DeployedBytecode returns the runtime bytecode of name
func (a *Artifacts) DeployedBytecode(_ context.Context, name string) ([]byte, error) {
	art, err := a.load(name)
	if err != nil {
		return nil, err
	}
	return decodeObject(name, "deployedBytecode", art.DeployedBytecode.Object)
}

func decodeObject(name, field, object string) ([]byte, error) {
	if object == "" || object == "0x" {
		return nil, fmt.Errorf("%s has an empty %s (abstract contract or interface?)", name, field)
	}
	if strings.Contains(object, "__$") {
		return nil, fmt.Errorf("%s %s has unlinked libraries", name, field)
	}
	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	code, err := hexutil.Decode(object)
	if err != nil {
		return nil, fmt.Errorf("invalid %s in %s: %w", field, name, err)
	}
	return code, nil
}

var _ usecase.CompiledLayoutSource = (*Artifacts)(nil)
