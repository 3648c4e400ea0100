package ethrpc

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// DefaultPollInterval is how often receipts are polled while waiting for a transaction
const DefaultPollInterval = time.Second

// Backend sends coordinator batches through the on-chain batch executor.
// Every mutation is a single transaction that is mined before returning.
type Backend struct {
	client      *Client
	key         *ecdsa.PrivateKey
	sender      common.Address
	coordinator common.Address
	chainID     *big.Int
	executor    *bindings.BatchExecutor
	poll        time.Duration
	log         *slog.Logger
}

// NewBackend creates a backend signing with key on behalf of coordinator
func NewBackend(client *Client, key *ecdsa.PrivateKey, coordinator common.Address, chainID *big.Int, log *slog.Logger) *Backend {
	return &Backend{
		client:      client,
		key:         key,
		sender:      crypto.PubkeyToAddress(key.PublicKey),
		coordinator: coordinator,
		chainID:     chainID,
		executor:    bindings.NewBatchExecutor(),
		poll:        DefaultPollInterval,
		log:         log.With("component", "ethrpc.Backend"),
	}
}

// ProvideBackend creates a Backend from runtime configuration for Wire
func ProvideBackend(client *Client, cfg *config.RuntimeConfig, log *slog.Logger) (*Backend, error) {
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("no signer configured, set TREB_PRIVATE_KEY")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if cfg.CoordinatorAddress == (common.Address{}) {
		return nil, fmt.Errorf("no coordinator address configured, set TREB_COORDINATOR or run init")
	}

	chainID := new(big.Int).SetUint64(cfg.Network.ChainID)
	if cfg.Network.ChainID == 0 {
		id, err := client.eth.ChainID(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to get chain ID: %w", classify("eth_chainId", err))
		}
		chainID = id
	} else {
		id, err := client.eth.ChainID(context.Background())
		if err == nil && id.Cmp(chainID) != 0 {
			return nil, fmt.Errorf("chain ID mismatch: expected %d, got %s", cfg.Network.ChainID, id)
		}
	}
	return NewBackend(client, key, cfg.CoordinatorAddress, chainID, log), nil
}

// WithPollInterval overrides the receipt poll interval
func (b *Backend) WithPollInterval(d time.Duration) *Backend {
	b.poll = d
	return b
}

func (b *Backend) Sender() common.Address { return b.sender }

// Coordinator returns the batch executor account
func (b *Backend) Coordinator() common.Address { return b.coordinator }

func (b *Backend) CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := b.client.eth.CallContract(ctx, ethereum.CallMsg{From: b.coordinator, To: &to, Data: data}, nil)
	if err != nil {
		return nil, classify("eth_call", err)
	}
	return out, nil
}

func (b *Backend) ExecuteBatch(ctx context.Context, calls []models.Call) (*models.BatchReceipt, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	targets := lo.Map(calls, func(c models.Call, _ int) common.Address { return c.To })
	payloads := lo.Map(calls, func(c models.Call, _ int) []byte { return c.Data })
	data, err := b.executor.TryPackExecuteBatch(targets, payloads)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	msg := ethereum.CallMsg{From: b.sender, To: &b.coordinator, Data: data}
	if _, err := b.client.eth.CallContract(ctx, msg, nil); err != nil {
		return nil, b.decodeFailure(err, calls)
	}
	gas, err := b.client.eth.EstimateGas(ctx, msg)
	if err != nil {
		return nil, b.decodeFailure(err, calls)
	}

	tx, err := b.signed(ctx, &b.coordinator, data, gas)
	if err != nil {
		return nil, err
	}
	receipt, err := b.send(ctx, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &domain.CallRevertedError{Index: -1, Description: "executeBatch", Reason: fmt.Sprintf("transaction %s reverted", tx.Hash().Hex())}
	}
	b.log.Debug("batch mined", "calls", len(calls), "tx", tx.Hash(), "block", receipt.BlockNumber, "gas", receipt.GasUsed)
	return toReceipt(receipt), nil
}

// DeployContract sends a contract creation transaction and returns the new address
func (b *Backend) DeployContract(ctx context.Context, initCode []byte) (common.Address, error) {
	gas, err := b.client.eth.EstimateGas(ctx, ethereum.CallMsg{From: b.sender, Data: initCode})
	if err != nil {
		return common.Address{}, classify("eth_estimateGas", err)
	}
	tx, err := b.signed(ctx, nil, initCode, gas)
	if err != nil {
		return common.Address{}, err
	}
	receipt, err := b.send(ctx, tx)
	if err != nil {
		return common.Address{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("deployment %s reverted", tx.Hash().Hex())
	}
	return receipt.ContractAddress, nil
}

func (b *Backend) signed(ctx context.Context, to *common.Address, data []byte, gas uint64) (*types.Transaction, error) {
	nonce, err := b.client.eth.PendingNonceAt(ctx, b.sender)
	if err != nil {
		return nil, classify("eth_getTransactionCount", err)
	}
	tip, err := b.client.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, classify("eth_maxPriorityFeePerGas", err)
	}
	head, err := b.client.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, classify("eth_getBlockByNumber", err)
	}
	feeCap := new(big.Int).Mul(tip, big.NewInt(2))
	if head.BaseFee != nil {
		feeCap = new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   b.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas + gas/5,
		To:        to,
		Data:      data,
	})
	return types.SignTx(tx, types.LatestSignerForChainID(b.chainID), b.key)
}

// send broadcasts tx and waits for its receipt. Only failures before the
// broadcast are classified as transient.
func (b *Backend) send(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if err := b.client.eth.SendTransaction(ctx, tx); err != nil {
		if !isAlreadyKnown(err) {
			return nil, classify("eth_sendRawTransaction", err)
		}
		b.log.Warn("node already knows transaction, waiting for it", "tx", tx.Hash(), "nonce", tx.Nonce())
	} else {
		b.log.Info("sent transaction", "tx", tx.Hash(), "nonce", tx.Nonce())
	}
	return b.waitMined(ctx, tx.Hash())
}

// waitMined polls for the receipt of a broadcast transaction. Transient read
// failures are polled through; anything else is an UnconfirmedTxError.
func (b *Backend) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	for {
		receipt, err := b.client.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
		case ctx.Err() != nil:
			return nil, &domain.UnconfirmedTxError{TxHash: hash, Err: ctx.Err()}
		case isTransient(err):
			b.log.Warn("receipt read failed, polling again", "tx", hash, "error", err)
		default:
			return nil, &domain.UnconfirmedTxError{TxHash: hash, Err: err}
		}
		select {
		case <-ctx.Done():
			return nil, &domain.UnconfirmedTxError{TxHash: hash, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// decodeFailure turns a simulated batch failure into the reverting call
func (b *Backend) decodeFailure(err error, calls []models.Call) error {
	data, ok := revertData(err)
	if !ok {
		return classify("eth_call", err)
	}
	decoded, decodeErr := b.executor.UnpackError(data)
	if decodeErr != nil {
		reason, _ := abi.UnpackRevert(data)
		if reason == "" {
			reason = err.Error()
		}
		return &domain.CallRevertedError{Index: -1, Description: "executeBatch", Reason: reason}
	}
	failed := decoded.(*bindings.BatchExecutorBatchCallFailed)
	index := int(failed.Index.Int64())
	reverted := &domain.CallRevertedError{Index: index, Reason: innerReason(failed.Reason)}
	if index >= 0 && index < len(calls) {
		reverted.ContractID = string(calls[index].ContractID)
		reverted.Description = calls[index].Description
	}
	return reverted
}

func innerReason(data []byte) string {
	if len(data) == 0 {
		return "no reason"
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}
	return fmt.Sprintf("0x%x", data)
}

func toReceipt(r *types.Receipt) *models.BatchReceipt {
	out := &models.BatchReceipt{TxHash: r.TxHash, GasUsed: r.GasUsed}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

var _ usecase.ChainBackend = (*Backend)(nil)
