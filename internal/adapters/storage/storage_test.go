package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/onchain"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/simchain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/logging"
)

type rpcCall struct {
	method string
	args   []any
}

type fakeRPC struct {
	version  string
	code     []byte
	result   []byte
	callErr  error
	calls    []rpcCall
	getCodes int
}

func (f *fakeRPC) CallContext(ctx context.Context, result any, method string, args ...any) error {
	f.calls = append(f.calls, rpcCall{method: method, args: args})
	switch method {
	case "web3_clientVersion":
		*result.(*string) = f.version
	case "eth_getCode":
		f.getCodes++
		*result.(*hexutil.Bytes) = f.code
	case "eth_call":
		if f.callErr != nil {
			return f.callErr
		}
		*result.(*hexutil.Bytes) = f.result
	}
	return nil
}

func (f *fakeRPC) methods() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.method)
	}
	return out
}

type staticCode []byte

func (s staticCode) DeployedBytecode(context.Context, string) ([]byte, error) { return s, nil }

func packMembers(t *testing.T, members ...common.Address) []byte {
	t.Helper()
	parsed, err := bindings.SetStorageReaderMetaData.ParseABI()
	require.NoError(t, err)
	out, err := parsed.Methods["legacyMembers"].Outputs.Pack(members)
	require.NoError(t, err)
	return out
}

var (
	target     = common.HexToAddress("0x7a")
	readerCode = staticCode{0xfe, 0xed}
	loc        = models.SetLocation{Slot: common.HexToHash("0x05")}
)

func TestForkReader_RefusesNonDevNode(t *testing.T) {
	rpc := &fakeRPC{version: "Geth/v1.15.11-stable"}
	r := NewForkReader(rpc, readerCode, "SetStorageReader", logging.NewNop())

	_, err := r.Members(context.Background(), models.NewRunContext("C1"), target, loc, models.SetEncodingLegacy)
	require.ErrorIs(t, err, domain.ErrNotForkNetwork)
	assert.Equal(t, []string{"web3_clientVersion"}, rpc.methods(), "no code is touched on a non-dev node")
	assert.ErrorIs(t, r.CheckFork(context.Background()), domain.ErrNotForkNetwork)
}

func TestForkReader_SwapsAndRestoresCode(t *testing.T) {
	member := common.HexToAddress("0xbeef")
	rpc := &fakeRPC{version: "anvil/v1.2.3", code: []byte{0x60, 0x80}, result: packMembers(t, member)}
	r := NewForkReader(rpc, readerCode, "SetStorageReader", logging.NewNop())
	run := models.NewRunContext("C1")

	got, err := r.Members(context.Background(), run, target, loc, models.SetEncodingLegacy)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{member}, got)
	assert.Equal(t, []string{"web3_clientVersion", "eth_getCode", "anvil_setCode", "eth_call", "anvil_setCode"}, rpc.methods())

	swap, restore := rpc.calls[2], rpc.calls[4]
	assert.Equal(t, hexutil.Bytes(readerCode), swap.args[1])
	assert.Equal(t, hexutil.Bytes{0x60, 0x80}, restore.args[1])

	cached, ok := run.Codes.Get(target)
	require.True(t, ok)
	assert.Equal(t, []byte{0x60, 0x80}, cached)

	_, err = r.Members(context.Background(), run, target, loc, models.SetEncodingCurrent)
	require.NoError(t, err)
	assert.Equal(t, 1, rpc.getCodes, "original bytecode is captured once per run")
}

func TestForkReader_RestoresAfterFailedRead(t *testing.T) {
	rpc := &fakeRPC{version: "HardhatNetwork/2.22.0", code: []byte{0x01}, callErr: errors.New("execution reverted")}
	r := NewForkReader(rpc, readerCode, "SetStorageReader", logging.NewNop())

	_, err := r.Contains(context.Background(), models.NewRunContext("C1"), target, loc, models.SetEncodingCurrent, common.HexToAddress("0x1"))
	require.Error(t, err)
	methods := rpc.methods()
	assert.Equal(t, "hardhat_setCode", methods[len(methods)-1])
	assert.Equal(t, hexutil.Bytes{0x01}, rpc.calls[len(rpc.calls)-1].args[1])
}

func TestUpgraderReader(t *testing.T) {
	coordinator := common.HexToAddress("0xc0")
	chain := simchain.NewChain(coordinator)
	slot := common.HexToHash("0x05")

	admin := chain.DeployAdmin(coordinator)
	v1 := chain.DeployImplementation(&simchain.Implementation{Name: "V1"})
	upgrader := chain.DeployImplementation(&simchain.Implementation{
		Name:     "Upgrader",
		Upgrader: &simchain.UpgraderLogic{Sets: []simchain.UpgradeSet{{Slot: slot}}},
	})
	proxy := chain.DeployProxy(admin, v1, coordinator)
	a, b := common.HexToAddress("0xa"), common.HexToAddress("0xb")
	chain.UpdateStorage(proxy, func(st *simchain.Storage) {
		st.Legacy[slot] = []common.Address{a, b}
		st.Current[slot] = []common.Address{a}
	})

	pa := onchain.NewProxyAdmin(chain)
	r := NewUpgraderReader(chain, pa, logging.NewNop())
	run := models.NewRunContext("C1")
	run.ProxyAdmin = admin
	run.Upgrader = upgrader
	ctx := context.Background()

	_, err := r.Members(ctx, run, proxy, models.SetLocation{Slot: slot}, models.SetEncodingLegacy)
	require.Error(t, err, "proxy still points at V1")

	call, err := pa.EncodeUpgrade(admin, proxy, upgrader)
	require.NoError(t, err)
	_, err = chain.ExecuteBatch(ctx, []models.Call{call})
	require.NoError(t, err)

	legacy, err := r.Members(ctx, run, proxy, models.SetLocation{Slot: slot}, models.SetEncodingLegacy)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{a, b}, legacy)

	current, err := r.Members(ctx, run, proxy, models.SetLocation{Slot: slot}, models.SetEncodingCurrent)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{a}, current)

	ok, err := r.Contains(ctx, run, proxy, models.SetLocation{Slot: slot}, models.SetEncodingCurrent, b)
	require.NoError(t, err)
	assert.False(t, ok)
}
