// Package onchain encodes and reads the contracts the coordinator manages
package onchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// Viewer performs read-only calls
type Viewer interface {
	CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// ProxyAdmin talks to transparent proxy admins and Ownable contracts
type ProxyAdmin struct {
	view    Viewer
	admin   *bindings.ProxyAdmin
	ownable *bindings.Ownable
}

// NewProxyAdmin creates a new proxy admin adapter
func NewProxyAdmin(view Viewer) *ProxyAdmin {
	return &ProxyAdmin{
		view:    view,
		admin:   bindings.NewProxyAdmin(),
		ownable: bindings.NewOwnable(),
	}
}

// ProvideProxyAdmin creates a ProxyAdmin over the chain backend for Wire
func ProvideProxyAdmin(backend usecase.ChainBackend) *ProxyAdmin {
	return NewProxyAdmin(backend)
}

func (p *ProxyAdmin) GetProxyAdmin(ctx context.Context, admin, proxy common.Address) (common.Address, error) {
	out, err := p.view.CallView(ctx, admin, p.admin.PackGetProxyAdmin(proxy))
	if err != nil {
		return common.Address{}, fmt.Errorf("getProxyAdmin(%s): %w", proxy.Hex(), err)
	}
	return p.admin.UnpackGetProxyAdmin(out)
}

func (p *ProxyAdmin) GetProxyImplementation(ctx context.Context, admin, proxy common.Address) (common.Address, error) {
	out, err := p.view.CallView(ctx, admin, p.admin.PackGetProxyImplementation(proxy))
	if err != nil {
		return common.Address{}, fmt.Errorf("getProxyImplementation(%s): %w", proxy.Hex(), err)
	}
	return p.admin.UnpackGetProxyImplementation(out)
}

func (p *ProxyAdmin) Owner(ctx context.Context, contract common.Address) (common.Address, error) {
	out, err := p.view.CallView(ctx, contract, p.ownable.PackOwner())
	if err != nil {
		return common.Address{}, fmt.Errorf("owner() of %s: %w", contract.Hex(), err)
	}
	return p.ownable.UnpackOwner(out)
}

func (p *ProxyAdmin) EncodeUpgrade(admin, proxy, implementation common.Address) (models.Call, error) {
	data, err := p.admin.TryPackUpgrade(proxy, implementation)
	if err != nil {
		return models.Call{}, err
	}
	return models.Call{
		To:          admin,
		Data:        data,
		Description: fmt.Sprintf("upgrade to %s", implementation.Hex()),
	}, nil
}

func (p *ProxyAdmin) EncodeUpgradeAndCall(admin, proxy, implementation common.Address, data []byte) (models.Call, error) {
	enc, err := p.admin.TryPackUpgradeAndCall(proxy, implementation, data)
	if err != nil {
		return models.Call{}, err
	}
	return models.Call{
		To:          admin,
		Data:        enc,
		Description: fmt.Sprintf("upgradeAndCall to %s", implementation.Hex()),
	}, nil
}

var _ usecase.ProxyAdmin = (*ProxyAdmin)(nil)
