// Package plan loads per-contract migration strategy overrides from yaml
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
	"gopkg.in/yaml.v3"
)

// DefaultPlanFile is read from the project root when no plan file is configured
const DefaultPlanFile = "upgrades.yaml"

// planFile mirrors the yaml document. Slots are strings so plans can use the
// decimal slot numbers printed by forge inspect as well as hex.
type planFile struct {
	Contracts map[string]contractPlan `yaml:"contracts"`
}

type contractPlan struct {
	Strategy  string            `yaml:"strategy"`
	Upgrader  string            `yaml:"upgrader"`
	ChunkSize int               `yaml:"chunkSize"`
	KeyEvents []models.KeyEvent `yaml:"keyEvents"`
	Sets      []setPlan         `yaml:"sets"`
}

type setPlan struct {
	Label  string `yaml:"label"`
	Slot   string `yaml:"slot"`
	PerKey bool   `yaml:"perKey"`
}

// Loader reads the migration plan file
type Loader struct {
	path string
	log  *slog.Logger
}

// NewLoader creates a loader for the configured plan file
func NewLoader(cfg *config.RuntimeConfig, log *slog.Logger) *Loader {
	path := cfg.PlanFile
	if path == "" {
		path = DefaultPlanFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectRoot, path)
	}
	return &Loader{path: path, log: log.With("component", "PlanLoader")}
}

// Load returns the plan. A missing file is an empty plan, so every contract
// uses the default strategy.
func (l *Loader) Load(ctx context.Context) (*models.MigrationPlan, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		l.log.Debug("no migration plan file", "path", l.path)
		return &models.MigrationPlan{Contracts: map[models.ContractID]models.StrategySpec{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migration plan: %w", err)
	}

	var doc planFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse migration plan %s: %w", l.path, err)
	}

	plan := &models.MigrationPlan{Contracts: make(map[models.ContractID]models.StrategySpec, len(doc.Contracts))}
	for id, c := range doc.Contracts {
		spec, err := c.toSpec()
		if err != nil {
			return nil, fmt.Errorf("migration plan %s: %s: %w", l.path, id, err)
		}
		plan.Contracts[models.ContractID(id)] = spec
	}
	return plan, nil
}

func (c contractPlan) toSpec() (models.StrategySpec, error) {
	spec := models.StrategySpec{
		Strategy:  models.StrategyKind(c.Strategy),
		Upgrader:  c.Upgrader,
		ChunkSize: c.ChunkSize,
		KeyEvents: c.KeyEvents,
	}
	switch spec.Strategy {
	case "":
		spec.Strategy = models.StrategyRepoint
	case models.StrategyRepoint:
	case models.StrategyChunkedSet:
		if c.Upgrader == "" {
			return spec, fmt.Errorf("chunked-set strategy needs an upgrader artifact")
		}
		if len(c.KeyEvents) == 0 {
			return spec, fmt.Errorf("chunked-set strategy needs at least one key event")
		}
	default:
		return spec, fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.ChunkSize < 0 {
		return spec, fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}

	for _, ev := range c.KeyEvents {
		if ev.Topic < 1 || ev.Topic > 3 {
			return spec, fmt.Errorf("key event %s: topic must be 1, 2 or 3", ev.Signature)
		}
	}
	for _, s := range c.Sets {
		slot, err := parseSlot(s.Slot)
		if err != nil {
			return spec, fmt.Errorf("set %s: %w", s.Label, err)
		}
		spec.Sets = append(spec.Sets, models.SetSpec{
			Label:    s.Label,
			Location: models.SetLocation{Slot: slot},
			PerKey:   s.PerKey,
		})
	}
	return spec, nil
}

// parseSlot accepts decimal or 0x-prefixed hex slot numbers
func parseSlot(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Hash{}, fmt.Errorf("missing slot")
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok || n.Sign() < 0 || n.BitLen() > 256 {
		return common.Hash{}, fmt.Errorf("invalid slot %q", s)
	}
	return common.BigToHash(n), nil
}

var _ usecase.MigrationPlanLoader = (*Loader)(nil)
