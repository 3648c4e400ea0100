package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/fs"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

func TestShowStatus(t *testing.T) {
	h := newHarness(t)
	h.deploy("Vault", nil)
	c1 := h.deploy("Escrow", nil)
	v2 := h.chain.DeployImplementation(initializable("VaultV2"))
	require.NoError(t, h.coordinator.ProposeUpgrade(h.ctx, h.owner, "Vault", v2))
	require.NoError(t, h.coordinator.ProposeCall(h.ctx, h.owner, "Escrow", ownerCall))

	cfg := h.config
	status := usecase.NewShowStatus(fs.NewCoordinatorStore(cfg), fs.NewAddressBook(cfg))
	result, err := status.Run(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.ContractID{"Escrow", "Vault"}, result.Adopted)
	require.Len(t, result.Pending, 2)
	assert.Equal(t, models.ContractID("Vault"), result.Pending[0].ID)
	assert.Equal(t, "call", result.Pending[1].Kind())
	assert.Equal(t, c1.proxy, result.Book["Escrow"].Proxy)
}

func TestShowStatus_NotInitialized(t *testing.T) {
	cfg := &config.RuntimeConfig{DataDir: t.TempDir()}
	status := usecase.NewShowStatus(fs.NewCoordinatorStore(cfg), fs.NewAddressBook(cfg))
	_, err := status.Run(t.Context())
	require.ErrorIs(t, err, domain.ErrNotInitialized)
}
