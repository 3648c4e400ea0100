package usecase_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/simchain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

func TestVerifySet_MembershipPreserved(t *testing.T) {
	h := newHarness(t)
	d, keys := h.seedMerchants(23, nil)
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	result, err := h.verify.Run(h.ctx, h.owner, registryID, target, nil)
	require.NoError(t, err)

	assert.Equal(t, 23, result.Keys)
	require.Len(t, result.Sets, 1+23)
	merchants := result.Sets[0]
	assert.Equal(t, "merchants", merchants.Label)
	assert.Equal(t, keys, merchants.Legacy)
	assert.ElementsMatch(t, keys, merchants.Current)
	for _, set := range result.Sets {
		assert.True(t, set.Verified, "%s at %s", set.Label, set.Slot.Hex())
		assert.Empty(t, set.Missing)
		assert.Empty(t, set.Extra)
	}
	assert.Equal(t, perKeySlot(keys[0], rewardsSlot), result.Sets[1].Slot)
	assert.Len(t, result.Sets[1].Legacy, rewardTokenLen)

	assert.Equal(t, 3, result.Summary.Chunks)
	assert.Equal(t, target, h.chain.ImplementationOf(d.proxy))
}

func TestVerifySet_ListsUnhandledSetTypes(t *testing.T) {
	h := newHarness(t)
	h.seedMerchants(3, nil)
	compiled := baseLayout(string(registryID))
	compiled.Slots = append(compiled.Slots, models.StorageSlot{Label: "operators", Slot: "50", Type: "t_struct(Bytes32Set)4100_storage"})
	h.compiled.ExpectedCalls = nil
	h.compiled.On("StorageLayout", mock.Anything, string(registryID)).Return(compiled, nil)
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	_, err := h.verify.Run(h.ctx, h.owner, registryID, target, nil)
	require.ErrorIs(t, err, domain.ErrUnhandledStorageType)
	var fatal *domain.FatalMigrationError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, []string{"operators (t_struct(Bytes32Set)4100_storage)"}, fatal.Unhandled)
	assert.Contains(t, err.Error(), "operators")
	assert.Empty(t, h.chain.Batches(), "nothing runs before every set type is handled")
}

func TestVerifySet_DetectsLostMembers(t *testing.T) {
	h := newHarness(t)
	d, _ := h.seedMerchants(12, nil)
	// a merchant whose MerchantAdded event was never emitted is not a
	// migration key and is left behind by the upgrader
	orphan := common.HexToAddress("0xdeadbeef")
	h.chain.UpdateStorage(d.proxy, func(st *simchain.Storage) {
		st.Legacy[merchantsSlot] = append(st.Legacy[merchantsSlot], orphan)
	})
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	_, err := h.verify.Run(h.ctx, h.owner, registryID, target, nil)
	var fatal *domain.FatalMigrationError
	require.ErrorAs(t, err, &fatal)
	assert.Contains(t, err.Error(), "merchants")
	assert.NotEqual(t, target, h.chain.ImplementationOf(d.proxy), "the proxy is never pointed at the target")
}

func TestVerifySet_RequiresChunkedStrategy(t *testing.T) {
	h := newHarness(t)
	h.deploy("C1", nil)
	target := h.chain.DeployImplementation(initializable("C1V2"))

	_, err := h.verify.Run(h.ctx, h.owner, "C1", target, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chunked-set migration")
	assert.Empty(t, h.chain.Batches())
}
