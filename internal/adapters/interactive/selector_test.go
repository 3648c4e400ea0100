package interactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

func TestSuggest(t *testing.T) {
	known := []models.ContractID{"MerchantRegistry", "RewardVault", "Escrow", "MerchantRouter"}

	got := Suggest("merchreg", known, 3)
	require.NotEmpty(t, got)
	assert.Equal(t, models.ContractID("MerchantRegistry"), got[0])

	assert.Empty(t, Suggest("zzz", known, 3))
	assert.Nil(t, Suggest("", known, 3))
	assert.Len(t, Suggest("r", known, 2), 2)
}

func TestFuzzySearcher(t *testing.T) {
	items := []string{"MerchantRegistry", "RewardVault"}
	search := fuzzySearcher(items)

	assert.True(t, search("", 1))
	assert.True(t, search("vault", 1))
	assert.True(t, search("mreg", 0))
	assert.False(t, search("mreg", 1))
}

func TestPrompter_NonInteractive(t *testing.T) {
	p := NewPrompter(&config.RuntimeConfig{NonInteractive: true})

	_, err := p.Confirm("commit?")
	require.ErrorIs(t, err, ErrNonInteractive)

	id, err := p.SelectContract([]models.ContractID{"Escrow"}, "pick")
	require.NoError(t, err)
	assert.Equal(t, models.ContractID("Escrow"), id)

	_, err = p.SelectContract([]models.ContractID{"Escrow", "Vault"}, "pick")
	require.ErrorIs(t, err, ErrNonInteractive)
}
