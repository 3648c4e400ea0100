package onchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// VersionRegistry encodes protocol version updates
type VersionRegistry struct {
	view     Viewer
	registry *bindings.VersionRegistry
}

// NewVersionRegistry creates a new version registry adapter
func NewVersionRegistry(backend usecase.ChainBackend) *VersionRegistry {
	return &VersionRegistry{view: backend, registry: bindings.NewVersionRegistry()}
}

func (v *VersionRegistry) EncodeSetProtocolVersion(registry common.Address, version string) (models.Call, error) {
	data, err := v.registry.TryPackSetProtocolVersion(version)
	if err != nil {
		return models.Call{}, err
	}
	return models.Call{To: registry, Data: data, Description: fmt.Sprintf("setProtocolVersion(%q)", version)}, nil
}

// ProtocolVersion reads the version currently recorded on chain
func (v *VersionRegistry) ProtocolVersion(ctx context.Context, registry common.Address) (string, error) {
	out, err := v.view.CallView(ctx, registry, v.registry.PackProtocolVersion())
	if err != nil {
		return "", fmt.Errorf("protocolVersion(): %w", err)
	}
	return v.registry.UnpackProtocolVersion(out)
}

var _ usecase.VersionRegistry = (*VersionRegistry)(nil)
