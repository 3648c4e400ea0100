package usecase_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/simchain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

const (
	merchantAdded  = "MerchantAdded(address)"
	upgraderName   = "MerchantRegistryUpgrader"
	registryID     = models.ContractID("MerchantRegistry")
	rewardTokenLen = 2
)

func merchantKey(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0x100 + i)))
}

func rewardToken(i, j int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0x10000 + i*16 + j)))
}

func perKeySlot(key common.Address, slot common.Hash) common.Hash {
	return crypto.Keccak256Hash(common.BytesToHash(key.Bytes()).Bytes(), slot.Bytes())
}

func upgraderLogic() *simchain.UpgraderLogic {
	return &simchain.UpgraderLogic{Sets: []simchain.UpgradeSet{
		{Slot: merchantsSlot},
		{Slot: rewardsSlot, PerKey: true},
	}}
}

func chunkedSpec(chunkSize int) models.StrategySpec {
	return models.StrategySpec{
		Strategy:  models.StrategyChunkedSet,
		Upgrader:  upgraderName,
		ChunkSize: chunkSize,
		KeyEvents: []models.KeyEvent{{Signature: merchantAdded, Topic: 1}},
		Sets: []models.SetSpec{
			{Label: "merchants", Location: models.SetLocation{Slot: merchantsSlot}},
			{Label: "rewardTokens", Location: models.SetLocation{Slot: rewardsSlot}, PerKey: true},
		},
	}
}

// seedMerchants adopts the merchant registry, writes n merchants with their
// reward tokens in the legacy encoding and emits one MerchantAdded per key
func (h *harness) seedMerchants(n int, upgrader *simchain.Implementation) (deployed, []common.Address) {
	h.t.Helper()
	if upgrader == nil {
		upgrader = &simchain.Implementation{Name: upgraderName, Upgrader: upgraderLogic()}
	}
	h.chain.RegisterArtifact(upgraderName, upgrader)
	h.plan.plan.Contracts[registryID] = chunkedSpec(10)

	d := h.deploy(registryID, nil)
	keys := make([]common.Address, 0, n)
	for i := range n {
		keys = append(keys, merchantKey(i))
	}
	h.chain.UpdateStorage(d.proxy, func(st *simchain.Storage) {
		st.Legacy[merchantsSlot] = append([]common.Address(nil), keys...)
		for i, k := range keys {
			for j := range rewardTokenLen {
				slot := perKeySlot(k, rewardsSlot)
				st.Legacy[slot] = append(st.Legacy[slot], rewardToken(i, j))
			}
		}
	})
	for _, k := range keys {
		h.chain.EmitLog(d.proxy, merchantAdded, k)
	}
	return d, keys
}

func TestMigrateContract_ChunkedSetMigration(t *testing.T) {
	h := newHarness(t)
	d, keys := h.seedMerchants(23, nil)
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	result, err := h.migrate.Run(h.ctx, h.owner, registryID, target, initializeCall)
	require.NoError(t, err)

	assert.Equal(t, d.impl, result.Previous)
	assert.Equal(t, models.StrategyChunkedSet, result.Summary.Strategy)
	assert.False(t, result.Summary.Resumed)
	assert.Equal(t, 23, result.Summary.Keys)
	assert.Equal(t, 3, result.Summary.Chunks)
	assert.Len(t, result.Summary.Sets, 1+23)
	for _, set := range result.Summary.Sets {
		assert.True(t, set.Verified, set.Label)
	}

	st := h.chain.StorageOf(d.proxy)
	assert.Equal(t, []int{10, 10, 3}, st.Chunks)
	assert.True(t, st.Finished)
	assert.Equal(t, keys, st.Current[merchantsSlot])
	assert.Equal(t, []common.Address{rewardToken(7, 0), rewardToken(7, 1)}, st.Current[perKeySlot(keys[7], rewardsSlot)])
	assert.Equal(t, []byte{1}, st.Values["initialized"])
	assert.Equal(t, target, h.chain.ImplementationOf(d.proxy))

	// upgrader swap, three chunks, upgradeFinished, target swap
	assert.Len(t, h.chain.Batches(), 6)

	progress, err := h.progress.Load(h.ctx, registryID)
	require.NoError(t, err)
	assert.Nil(t, progress, "completed migrations leave no progress record")

	require.Len(t, h.sink.events, 3)
	last := h.sink.events[2]
	assert.Equal(t, 23, last.Current)
	assert.Equal(t, 23, last.Total)

	state, err := h.coordinator.State(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, target, state.Proxies[registryID].Implementation)
}

func TestMigrateContract_RuntimeChunkSizeOverridesPlan(t *testing.T) {
	h := newHarness(t)
	d, _ := h.seedMerchants(23, nil)
	h.config.ChunkSize = 8
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	result, err := h.migrate.Run(h.ctx, h.owner, registryID, target, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Summary.Chunks)
	assert.Equal(t, []int{8, 8, 7}, h.chain.StorageOf(d.proxy).Chunks)
}

func TestMigrateContract_ResumesInterruptedMigration(t *testing.T) {
	h := newHarness(t)
	d, _ := h.seedMerchants(23, nil)
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	// batches: upgrader swap, chunk 1, chunk 2, chunk 3
	h.backend.failOn(4, errors.New("process killed"))
	_, err := h.migrate.Run(h.ctx, h.owner, registryID, target, nil)
	require.Error(t, err)

	progress, err := h.progress.Load(h.ctx, registryID)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, models.PhaseUpgraderActive, progress.Phase)
	assert.Len(t, progress.Processed, 20)
	upgrader := progress.Upgrader
	assert.Equal(t, upgrader, h.chain.ImplementationOf(d.proxy))

	result, err := h.migrate.Run(h.ctx, h.owner, registryID, target, nil)
	require.NoError(t, err)
	assert.True(t, result.Summary.Resumed)
	assert.Equal(t, 1, result.Summary.Chunks)

	st := h.chain.StorageOf(d.proxy)
	assert.Equal(t, []int{10, 10, 3}, st.Chunks, "no key is migrated twice")
	assert.True(t, st.Finished)
	assert.Equal(t, target, h.chain.ImplementationOf(d.proxy))

	progress, err = h.progress.Load(h.ctx, registryID)
	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestMigrateContract_ResumeRejectsDifferentTarget(t *testing.T) {
	h := newHarness(t)
	h.seedMerchants(23, nil)
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))
	other := h.chain.DeployImplementation(initializable("MerchantRegistryV3"))

	h.backend.failOn(2, errors.New("process killed"))
	_, err := h.migrate.Run(h.ctx, h.owner, registryID, target, nil)
	require.Error(t, err)

	_, err = h.migrate.Run(h.ctx, h.owner, registryID, other, nil)
	var mismatch *domain.StateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, target.Hex(), mismatch.Expected)
	assert.Equal(t, other.Hex(), mismatch.Actual)
}

func TestMigrateContract_RetriesTransientChunkFailures(t *testing.T) {
	h := newHarness(t)
	d, _ := h.seedMerchants(23, nil)
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	h.backend.failOn(2, &domain.TransientRPCError{Method: "eth_sendRawTransaction", Err: errors.New("replacement transaction underpriced")})
	result, err := h.migrate.Run(h.ctx, h.owner, registryID, target, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Summary.Chunks)
	assert.Equal(t, []int{10, 10, 3}, h.chain.StorageOf(d.proxy).Chunks)
}

func TestMigrateContract_AbortsWhenOwnerChanges(t *testing.T) {
	h := newHarness(t)
	hijacker := common.HexToAddress("0xbad")
	d, _ := h.seedMerchants(5, &simchain.Implementation{
		Name:          upgraderName,
		OwnerOverride: &hijacker,
		Upgrader:      upgraderLogic(),
	})
	target := h.chain.DeployImplementation(initializable("MerchantRegistryV2"))

	_, err := h.migrate.Run(h.ctx, h.owner, registryID, target, nil)
	require.ErrorIs(t, err, domain.ErrOwnerChanged)
	var fatal *domain.FatalMigrationError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "after switch to upgrader", fatal.Step)
	assert.Empty(t, h.chain.StorageOf(d.proxy).Chunks)
}

func TestMigrateContract_RepointByDefault(t *testing.T) {
	h := newHarness(t)
	d := h.deploy("C1", nil)
	target := h.chain.DeployImplementation(initializable("C1V2"))

	result, err := h.migrate.Run(h.ctx, h.owner, "C1", target, initializeCall)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyRepoint, result.Summary.Strategy)
	assert.Equal(t, target, h.chain.ImplementationOf(d.proxy))
	assert.Equal(t, []byte{1}, h.chain.StorageOf(d.proxy).Values["initialized"])
	assert.Len(t, h.chain.Batches(), 1)
}

func TestMigrateContract_Rejections(t *testing.T) {
	h := newHarness(t)
	broken := baseLayout("Broken")
	broken.Slots[2].Type = "t_mapping(t_address,t_uint256)"
	h.deploy("Broken", broken)
	h.deploy("C1", nil)
	target := h.chain.DeployImplementation(initializable("V2"))

	t.Run("incompatible layout", func(t *testing.T) {
		_, err := h.migrate.Run(h.ctx, h.owner, "Broken", target, nil)
		require.ErrorIs(t, err, domain.ErrLayoutIncompatible)
		assert.Contains(t, err.Error(), "rewardTokens")
	})

	t.Run("not the owner", func(t *testing.T) {
		_, err := h.migrate.Run(h.ctx, common.HexToAddress("0xbad"), "C1", target, nil)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("not adopted", func(t *testing.T) {
		_, err := h.migrate.Run(h.ctx, h.owner, "C9", target, nil)
		require.ErrorIs(t, err, domain.ErrNotAdopted)
	})

	t.Run("staged change", func(t *testing.T) {
		require.NoError(t, h.coordinator.ProposeUpgrade(h.ctx, h.owner, "C1", target))
		_, err := h.migrate.Run(h.ctx, h.owner, "C1", target, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "withdraw")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		h.plan.plan.Contracts["Broken"] = models.StrategySpec{Strategy: "teleport"}
		registry := usecase.NewStrategyRegistryWith(h.plan, nil)
		_, _, err := registry.For(h.ctx, "Broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "teleport")
	})

	assert.Empty(t, h.chain.Batches())
}
