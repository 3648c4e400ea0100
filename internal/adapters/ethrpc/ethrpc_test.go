package ethrpc

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/logging"
	"github.com/trebuchet-org/treb-upgrades/internal/retry"
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type handlerFunc func(params []json.RawMessage) (any, *rpcError)

// fakeNode is a minimal JSON-RPC server
type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    []string
	status   int
}

func newFakeNode(t *testing.T) (*fakeNode, *Client) {
	t.Helper()
	n := &fakeNode{handlers: make(map[string]handlerFunc)}
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(srv.Close)

	raw, err := rpc.DialHTTP(srv.URL)
	require.NoError(t, err)
	c := NewClient(raw, logging.NewNop())
	t.Cleanup(c.Close)
	return n, c
}

func (n *fakeNode) handle(method string, fn handlerFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = fn
}

func (n *fakeNode) methods() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	status := n.status
	n.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, req.Method)
	fn, ok := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = rpcError{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, rerr := fn(req.Params); rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nonce too low", errors.New("nonce too low: next nonce 5"), true},
		{"underpriced", errors.New("replacement transaction underpriced"), true},
		{"already known", errors.New("already known"), false},
		{"header not found", errors.New("header not found"), true},
		{"rate limited", rpc.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}, true},
		{"server error", rpc.HTTPError{StatusCode: 502, Status: "502 Bad Gateway"}, true},
		{"bad request", rpc.HTTPError{StatusCode: 400, Status: "400 Bad Request"}, false},
		{"revert", errors.New("execution reverted: Ownable: caller is not the owner"), false},
		{"cancelled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("eth_call", tt.err)
			assert.Equal(t, tt.transient, domain.IsTransient(err))
			assert.Contains(t, err.Error(), tt.err.Error())
		})
	}
}

func TestSplitRange(t *testing.T) {
	assert.Equal(t, []blockRange{{0, 1}, {2, 3}, {4, 5}}, splitRange(0, 5, 2))
	assert.Equal(t, []blockRange{{3, 4}}, splitRange(3, 4, 10))
	assert.Equal(t, []blockRange{{7, 7}}, splitRange(7, 7, 10))
}

func TestLogQuery_IndexedAddresses(t *testing.T) {
	node, client := newFakeNode(t)
	emitter := common.HexToAddress("0xe1")
	sig := "MerchantAdded(address,address)"
	topic0 := crypto.Keccak256Hash([]byte(sig))

	node.handle("eth_blockNumber", func([]json.RawMessage) (any, *rpcError) { return "0x5", nil })

	var mu sync.Mutex
	var requested []string
	node.handle("eth_getLogs", func(params []json.RawMessage) (any, *rpcError) {
		var filter struct {
			FromBlock string `json:"fromBlock"`
			ToBlock   string `json:"toBlock"`
		}
		_ = json.Unmarshal(params[0], &filter)
		mu.Lock()
		requested = append(requested, filter.FromBlock+"-"+filter.ToBlock)
		mu.Unlock()

		from, _ := hexutil.DecodeUint64(filter.FromBlock)
		var logs []map[string]any
		for b := from; b <= from+1 && b <= 5; b++ {
			key := common.BigToAddress(new(big.Int).SetUint64(100 + b))
			logs = append(logs, map[string]any{
				"address":          emitter,
				"topics":           []common.Hash{topic0, common.BytesToHash(emitter.Bytes()), common.BytesToHash(key.Bytes())},
				"data":             "0x",
				"blockNumber":      hexutil.EncodeUint64(b),
				"transactionHash":  common.Hash{},
				"transactionIndex": "0x0",
				"blockHash":        common.Hash{},
				"logIndex":         "0x0",
				"removed":          false,
			})
		}
		return logs, nil
	})

	q := NewLogQuery(client, &config.RuntimeConfig{LogBlockRange: 2, LogConcurrency: 2}, logging.NewNop())
	got, err := q.IndexedAddresses(context.Background(), models.LogQuery{Address: emitter, Signature: sig, Topic: 2})
	require.NoError(t, err)

	want := make([]common.Address, 0, 6)
	for b := uint64(0); b <= 5; b++ {
		want = append(want, common.BigToAddress(new(big.Int).SetUint64(100+b)))
	}
	assert.Equal(t, want, got, "results keep chain order across ranges")
	assert.ElementsMatch(t, []string{"0x0-0x1", "0x2-0x3", "0x4-0x5"}, requested)
}

func TestLogQuery_RejectsBadTopic(t *testing.T) {
	_, client := newFakeNode(t)
	q := NewLogQuery(client, &config.RuntimeConfig{}, logging.NewNop())
	_, err := q.IndexedAddresses(context.Background(), models.LogQuery{Signature: "X(address)", Topic: 0})
	require.Error(t, err)
}

func encodeBatchFailure(t *testing.T, index int64, reason string) string {
	t.Helper()
	parsed, err := bindings.BatchExecutorMetaData.ParseABI()
	require.NoError(t, err)

	stringT, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	inner, err := abi.Arguments{{Type: stringT}}.Pack(reason)
	require.NoError(t, err)
	inner = append(crypto.Keccak256([]byte("Error(string)"))[:4], inner...)

	failure := parsed.Errors["BatchCallFailed"]
	args, err := failure.Inputs.Pack(big.NewInt(index), inner)
	require.NoError(t, err)
	return hexutil.Encode(append(failure.ID.Bytes()[:4], args...))
}

func newTestBackend(t *testing.T, client *Client) *Backend {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return NewBackend(client, key, common.HexToAddress("0xc0"), big.NewInt(31337), logging.NewNop())
}

func TestBackend_ExecuteBatchDecodesRevertingCall(t *testing.T) {
	node, client := newFakeNode(t)
	data := encodeBatchFailure(t, 1, "Initializable: contract is already initialized")
	node.handle("eth_call", func([]json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: 3, Message: "execution reverted", Data: data}
	})

	backend := newTestBackend(t, client)
	calls := []models.Call{
		{To: common.HexToAddress("0xa1"), Data: []byte{1, 2, 3, 4}, ContractID: "C1", Description: "upgrade"},
		{To: common.HexToAddress("0xa2"), Data: []byte{5, 6, 7, 8}, ContractID: "C2", Description: "call"},
	}
	_, err := backend.ExecuteBatch(context.Background(), calls)
	require.Error(t, err)

	var reverted *domain.CallRevertedError
	require.ErrorAs(t, err, &reverted)
	assert.Equal(t, 1, reverted.Index)
	assert.Equal(t, "C2", reverted.ContractID)
	assert.Equal(t, "Initializable: contract is already initialized", reverted.Reason)
	assert.NotContains(t, node.methods(), "eth_sendRawTransaction", "nothing is sent after a failed simulation")
}

func TestBackend_CallViewMarksServerErrorsTransient(t *testing.T) {
	node, client := newFakeNode(t)
	node.status = http.StatusServiceUnavailable

	backend := newTestBackend(t, client)
	_, err := backend.CallView(context.Background(), common.HexToAddress("0xa1"), []byte{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err), "got %v", err)
}

func TestBackend_CallViewPassesRevertsThrough(t *testing.T) {
	node, client := newFakeNode(t)
	node.handle("eth_call", func([]json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	})

	backend := newTestBackend(t, client)
	_, err := backend.CallView(context.Background(), common.HexToAddress("0xa1"), []byte{1, 2, 3, 4})
	require.Error(t, err)
	assert.False(t, domain.IsTransient(err))
}

func TestDevNodeKind(t *testing.T) {
	for version, want := range map[string]string{
		"anvil/v1.2.3":                            "anvil",
		"HardhatNetwork/2.22.0/@ethereumjs/vm/7":  "hardhat",
		"Geth/v1.15.11-stable/linux-amd64/go1.24": "",
	} {
		t.Run(version, func(t *testing.T) {
			kind, ok := DevNodeKind(version)
			assert.Equal(t, want, kind)
			assert.Equal(t, want != "", ok)
		})
	}
}

// handleSubmission answers every call a batch submission makes before the
// receipt poll, counting broadcasts.
func handleSubmission(node *fakeNode, sends *atomic.Int32, sendErr *rpcError) {
	node.handle("eth_call", func([]json.RawMessage) (any, *rpcError) { return "0x", nil })
	node.handle("eth_estimateGas", func([]json.RawMessage) (any, *rpcError) { return "0x5208", nil })
	node.handle("eth_getTransactionCount", func([]json.RawMessage) (any, *rpcError) { return "0x0", nil })
	node.handle("eth_maxPriorityFeePerGas", func([]json.RawMessage) (any, *rpcError) { return "0x1", nil })
	node.handle("eth_getBlockByNumber", func([]json.RawMessage) (any, *rpcError) {
		return map[string]any{
			"parentHash":       common.Hash{},
			"sha3Uncles":       common.Hash{},
			"miner":            common.Address{},
			"stateRoot":        common.Hash{},
			"transactionsRoot": common.Hash{},
			"receiptsRoot":     common.Hash{},
			"logsBloom":        types.Bloom{},
			"difficulty":       "0x0",
			"number":           "0x1",
			"gasLimit":         "0x1c9c380",
			"gasUsed":          "0x0",
			"timestamp":        "0x0",
			"extraData":        "0x",
			"baseFeePerGas":    "0x1",
		}, nil
	})
	node.handle("eth_sendRawTransaction", func([]json.RawMessage) (any, *rpcError) {
		sends.Add(1)
		if sendErr != nil {
			return nil, sendErr
		}
		return common.Hash{}, nil
	})
}

func minedReceipt(params []json.RawMessage) map[string]any {
	var hash common.Hash
	_ = json.Unmarshal(params[0], &hash)
	return map[string]any{
		"transactionHash":   hash,
		"transactionIndex":  "0x0",
		"blockHash":         common.Hash{},
		"blockNumber":       "0x2",
		"cumulativeGasUsed": "0x5208",
		"gasUsed":           "0x5208",
		"logsBloom":         types.Bloom{},
		"logs":              []any{},
		"status":            "0x1",
		"type":              "0x2",
	}
}

var testBatch = []models.Call{{To: common.HexToAddress("0xa1"), Data: []byte{1, 2, 3, 4}, ContractID: "C1", Description: "upgrade"}}

func TestBackend_ReceiptReadFailuresDoNotRebroadcast(t *testing.T) {
	node, client := newFakeNode(t)
	var sends, reads atomic.Int32
	handleSubmission(node, &sends, nil)
	node.handle("eth_getTransactionReceipt", func(params []json.RawMessage) (any, *rpcError) {
		if reads.Add(1) <= 3 {
			return nil, &rpcError{Code: -32000, Message: "header not found"}
		}
		return minedReceipt(params), nil
	})

	backend := newTestBackend(t, client).WithPollInterval(time.Millisecond)
	exec := retry.NewExecutor(logging.NewNop())
	receipt, err := retry.Do(context.Background(), exec, "executeBatch", func(ctx context.Context) (*models.BatchReceipt, error) {
		return backend.ExecuteBatch(ctx, testBatch)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.BlockNumber)
	assert.Equal(t, int32(1), sends.Load(), "the batch is broadcast exactly once")
	assert.Equal(t, int32(4), reads.Load())
}

func TestBackend_UnreadableReceiptIsNotRetried(t *testing.T) {
	node, client := newFakeNode(t)
	var sends atomic.Int32
	handleSubmission(node, &sends, nil)
	node.handle("eth_getTransactionReceipt", func([]json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "receipts database corrupted"}
	})

	backend := newTestBackend(t, client).WithPollInterval(time.Millisecond)
	exec := retry.NewExecutor(logging.NewNop())
	_, err := retry.Do(context.Background(), exec, "executeBatch", func(ctx context.Context) (*models.BatchReceipt, error) {
		return backend.ExecuteBatch(ctx, testBatch)
	})
	require.Error(t, err)

	var unconfirmed *domain.UnconfirmedTxError
	require.ErrorAs(t, err, &unconfirmed)
	assert.False(t, domain.IsTransient(err))
	assert.Equal(t, int32(1), sends.Load())
}

func TestBackend_CancelledWaitIsUnconfirmed(t *testing.T) {
	node, client := newFakeNode(t)
	var sends atomic.Int32
	handleSubmission(node, &sends, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	node.handle("eth_getTransactionReceipt", func([]json.RawMessage) (any, *rpcError) {
		cancel()
		return nil, nil
	})

	backend := newTestBackend(t, client).WithPollInterval(time.Millisecond)
	_, err := backend.ExecuteBatch(ctx, testBatch)
	var unconfirmed *domain.UnconfirmedTxError
	require.ErrorAs(t, err, &unconfirmed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), sends.Load())
}

func TestBackend_AlreadyKnownWaitsForSameTransaction(t *testing.T) {
	node, client := newFakeNode(t)
	var sends atomic.Int32
	handleSubmission(node, &sends, &rpcError{Code: -32000, Message: "already known"})
	node.handle("eth_getTransactionReceipt", func(params []json.RawMessage) (any, *rpcError) {
		return minedReceipt(params), nil
	})

	backend := newTestBackend(t, client).WithPollInterval(time.Millisecond)
	receipt, err := backend.ExecuteBatch(context.Background(), testBatch)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.BlockNumber)
	assert.Equal(t, int32(1), sends.Load())
}
