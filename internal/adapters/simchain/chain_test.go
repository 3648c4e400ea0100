package simchain_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/onchain"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/simchain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

func TestChain_ExecuteBatchIsAtomic(t *testing.T) {
	coordinator := common.HexToAddress("0xc0")
	chain := simchain.NewChain(coordinator)
	admin := chain.DeployAdmin(coordinator)
	v1 := chain.DeployImplementation(&simchain.Implementation{Name: "V1"})
	v2 := chain.DeployImplementation(&simchain.Implementation{Name: "V2"})
	first := chain.DeployProxy(admin, v1, coordinator)
	second := chain.DeployProxy(admin, v1, coordinator)

	pa := onchain.NewProxyAdmin(chain)
	ok, err := pa.EncodeUpgrade(admin, first, v2)
	require.NoError(t, err)
	bad, err := pa.EncodeUpgrade(admin, second, common.HexToAddress("0xdead"))
	require.NoError(t, err)

	_, err = chain.ExecuteBatch(context.Background(), []models.Call{ok, bad})
	var reverted *domain.CallRevertedError
	require.ErrorAs(t, err, &reverted)
	assert.Equal(t, 1, reverted.Index)
	assert.ErrorIs(t, err, domain.ErrCallReverted)

	assert.Equal(t, v1, chain.ImplementationOf(first), "first upgrade rolled back")
	assert.Equal(t, v1, chain.ImplementationOf(second))
	assert.Empty(t, chain.Batches())

	receipt, err := chain.ExecuteBatch(context.Background(), []models.Call{ok})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.BlockNumber)
	assert.Equal(t, v2, chain.ImplementationOf(first))
	assert.Len(t, chain.Batches(), 1)
}

func TestChain_UpgradeRequiresAdminOwner(t *testing.T) {
	coordinator := common.HexToAddress("0xc0")
	chain := simchain.NewChain(coordinator)
	admin := chain.DeployAdmin(common.HexToAddress("0x0e"))
	v1 := chain.DeployImplementation(&simchain.Implementation{Name: "V1"})
	v2 := chain.DeployImplementation(&simchain.Implementation{Name: "V2"})
	proxy := chain.DeployProxy(admin, v1, coordinator)

	call, err := onchain.NewProxyAdmin(chain).EncodeUpgrade(admin, proxy, v2)
	require.NoError(t, err)
	_, err = chain.ExecuteBatch(context.Background(), []models.Call{call})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caller is not the owner")
	assert.Equal(t, v1, chain.ImplementationOf(proxy))
}

func TestChain_ProxyAdminViews(t *testing.T) {
	coordinator := common.HexToAddress("0xc0")
	chain := simchain.NewChain(coordinator)
	admin := chain.DeployAdmin(coordinator)
	v1 := chain.DeployImplementation(&simchain.Implementation{Name: "V1"})
	proxy := chain.DeployProxy(admin, v1, coordinator)
	pa := onchain.NewProxyAdmin(chain)
	ctx := context.Background()

	got, err := pa.GetProxyAdmin(ctx, admin, proxy)
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	impl, err := pa.GetProxyImplementation(ctx, admin, proxy)
	require.NoError(t, err)
	assert.Equal(t, v1, impl)

	owner, err := pa.Owner(ctx, proxy)
	require.NoError(t, err)
	assert.Equal(t, coordinator, owner)

	_, err = pa.GetProxyAdmin(ctx, admin, common.HexToAddress("0xbad"))
	assert.Error(t, err, "unknown proxy")
}

func TestChain_IndexedAddresses(t *testing.T) {
	chain := simchain.NewChain(common.HexToAddress("0xc0"))
	emitter := common.HexToAddress("0xe1")
	a, b, c := common.HexToAddress("0xa"), common.HexToAddress("0xb"), common.HexToAddress("0xc")
	sig := "MerchantAdded(address)"

	chain.EmitLog(emitter, sig, a)
	chain.EmitLog(emitter, "Other(address)", b)
	chain.EmitLog(common.HexToAddress("0xe2"), sig, b)
	chain.EmitLog(emitter, sig, c)

	got, err := chain.IndexedAddresses(context.Background(), models.LogQuery{Address: emitter, Signature: sig, Topic: 1})
	require.NoError(t, err)
	assert.Equal(t, []common.Address{a, c}, got)

	got, err = chain.IndexedAddresses(context.Background(), models.LogQuery{Address: emitter, Signature: sig, Topic: 1, FromBlock: 5})
	require.NoError(t, err)
	assert.Equal(t, []common.Address{c}, got)

	_, err = chain.IndexedAddresses(context.Background(), models.LogQuery{Address: emitter, Signature: sig, Topic: 4})
	assert.Error(t, err)
}
