package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/ethrpc"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// RPCCaller performs raw JSON-RPC calls
type RPCCaller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// DeployedBytecodeSource resolves runtime bytecode of a build artifact
type DeployedBytecodeSource interface {
	DeployedBytecode(ctx context.Context, artifact string) ([]byte, error)
}

// ForkReader reads sets by temporarily replacing the code at the target with
// reader bytecode on a local dev node. The original code is restored after
// every read. Reads are serialized so swaps never overlap.
type ForkReader struct {
	rpc      RPCCaller
	code     DeployedBytecodeSource
	artifact string
	reader   *bindings.SetStorageReader
	log      *slog.Logger

	mu      sync.Mutex
	setCode string
}

// NewForkReader creates a reader that swaps in the runtime code of artifact
func NewForkReader(rpc RPCCaller, code DeployedBytecodeSource, artifact string, log *slog.Logger) *ForkReader {
	return &ForkReader{
		rpc:      rpc,
		code:     code,
		artifact: artifact,
		reader:   bindings.NewSetStorageReader(),
		log:      log.With("component", "ForkReader"),
	}
}

// DefaultReaderArtifact is the reader contract used when none is configured
const DefaultReaderArtifact = "SetStorageReader"

// ProvideForkReader creates a ForkReader for Wire
func ProvideForkReader(client *ethrpc.Client, code DeployedBytecodeSource, cfg *config.RuntimeConfig, log *slog.Logger) *ForkReader {
	artifact := cfg.ReaderArtifact
	if artifact == "" {
		artifact = DefaultReaderArtifact
	}
	return NewForkReader(client, code, artifact, log)
}

func (r *ForkReader) Mode() models.ReaderMode { return models.ReaderModeFork }

// CheckFork refuses any node that does not identify as anvil or hardhat
func (r *ForkReader) CheckFork(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.setCodeMethod(ctx)
	return err
}

func (r *ForkReader) setCodeMethod(ctx context.Context) (string, error) {
	if r.setCode != "" {
		return r.setCode, nil
	}
	var version string
	if err := r.rpc.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		return "", fmt.Errorf("identify node: %w", err)
	}
	kind, ok := ethrpc.DevNodeKind(version)
	if !ok {
		return "", fmt.Errorf("%w: node reports %q", domain.ErrNotForkNetwork, version)
	}
	r.setCode = kind + "_setCode"
	return r.setCode, nil
}

// withReader swaps the reader code in at target, runs call, and restores the
// original code whatever the outcome
func (r *ForkReader) withReader(ctx context.Context, run *models.RunContext, target common.Address, data []byte) (out []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	method, err := r.setCodeMethod(ctx)
	if err != nil {
		return nil, err
	}

	original, ok := run.Codes.Get(target)
	if !ok {
		var code hexutil.Bytes
		if err := r.rpc.CallContext(ctx, &code, "eth_getCode", target, "latest"); err != nil {
			return nil, fmt.Errorf("eth_getCode %s: %w", target.Hex(), err)
		}
		original = code
		run.Codes.Put(target, original)
	}
	readerCode, err := r.code.DeployedBytecode(ctx, r.artifact)
	if err != nil {
		return nil, err
	}

	if err := r.rpc.CallContext(ctx, nil, method, target, hexutil.Bytes(readerCode)); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target.Hex(), err)
	}
	defer func() {
		// restore even when ctx is already cancelled
		if restoreErr := r.rpc.CallContext(context.WithoutCancel(ctx), nil, method, target, hexutil.Bytes(original)); restoreErr != nil {
			r.log.Error("failed to restore bytecode", "target", target, "error", restoreErr)
			if err == nil {
				err = fmt.Errorf("restore code at %s: %w", target.Hex(), restoreErr)
			}
		}
	}()

	var result hexutil.Bytes
	call := map[string]any{"to": target, "data": hexutil.Bytes(data)}
	if err := r.rpc.CallContext(ctx, &result, "eth_call", call, "latest"); err != nil {
		return nil, fmt.Errorf("read %s: %w", target.Hex(), err)
	}
	return result, nil
}

func (r *ForkReader) Members(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding) ([]common.Address, error) {
	slot := loc.StorageSlot()
	if enc == models.SetEncodingLegacy {
		out, err := r.withReader(ctx, run, target, r.reader.PackLegacyMembers(slot))
		if err != nil {
			return nil, err
		}
		return r.reader.UnpackLegacyMembers(out)
	}
	out, err := r.withReader(ctx, run, target, r.reader.PackMembers(slot))
	if err != nil {
		return nil, err
	}
	return r.reader.UnpackMembers(out)
}

func (r *ForkReader) Contains(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding, member common.Address) (bool, error) {
	slot := loc.StorageSlot()
	if enc == models.SetEncodingLegacy {
		out, err := r.withReader(ctx, run, target, r.reader.PackLegacyContains(slot, member))
		if err != nil {
			return false, err
		}
		return r.reader.UnpackLegacyContains(out)
	}
	out, err := r.withReader(ctx, run, target, r.reader.PackContains(slot, member))
	if err != nil {
		return false, err
	}
	return r.reader.UnpackContains(out)
}

var _ usecase.ForkStorageReader = (*ForkReader)(nil)
