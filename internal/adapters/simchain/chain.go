// Package simchain is an in-memory chain with atomic batch execution. It
// models proxy admins, transparent proxies, Ownable implementations, chunked
// set upgraders and the protocol version registry closely enough to exercise
// the coordinator and migration engine without a node.
package simchain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// ErrRevert is wrapped by every simulated revert
var ErrRevert = errors.New("execution reverted")

func revert(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRevert, fmt.Sprintf(format, args...))
}

type adminState struct {
	owner common.Address
}

type proxyState struct {
	admin          common.Address
	implementation common.Address
	storage        *Storage
}

type registryState struct {
	version string
}

// Chain is a simulated chain. The zero value is not usable, use NewChain.
type Chain struct {
	mu sync.Mutex

	sender     common.Address
	admins     map[common.Address]*adminState
	proxies    map[common.Address]*proxyState
	impls      map[common.Address]*Implementation
	registries map[common.Address]*registryState
	artifacts  map[string]*Implementation
	logs       []Log

	batches   [][]models.Call
	nextAddr  uint64
	block     uint64
	failBatch []error
	failView  []error
}

// NewChain creates an empty chain whose batches are sent by sender
func NewChain(sender common.Address) *Chain {
	return &Chain{
		sender:     sender,
		admins:     make(map[common.Address]*adminState),
		proxies:    make(map[common.Address]*proxyState),
		impls:      make(map[common.Address]*Implementation),
		registries: make(map[common.Address]*registryState),
		artifacts:  make(map[string]*Implementation),
		nextAddr:   0x1000,
		block:      1,
	}
}

func (c *Chain) newAddress() common.Address {
	c.nextAddr++
	var b [20]byte
	binary.BigEndian.PutUint64(b[12:], c.nextAddr)
	return common.BytesToAddress(b[:])
}

// DeployAdmin creates a proxy admin owned by owner
func (c *Chain) DeployAdmin(owner common.Address) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr := c.newAddress()
	c.admins[addr] = &adminState{owner: owner}
	return addr
}

// DeployImplementation registers implementation logic at a fresh address
func (c *Chain) DeployImplementation(impl *Implementation) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr := c.newAddress()
	c.impls[addr] = impl
	return addr
}

// DeployProxy creates a transparent proxy administered by admin whose
// contract storage is owned by owner
func (c *Chain) DeployProxy(admin, implementation, owner common.Address) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr := c.newAddress()
	st := newStorage()
	st.Owner = owner
	c.proxies[addr] = &proxyState{admin: admin, implementation: implementation, storage: st}
	return addr
}

// DeployVersionRegistry creates a protocol version registry
func (c *Chain) DeployVersionRegistry(initial string) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr := c.newAddress()
	c.registries[addr] = &registryState{version: initial}
	return addr
}

// RegisterArtifact makes impl deployable by artifact name
func (c *Chain) RegisterArtifact(name string, impl *Implementation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts[name] = impl
}

// Deploy deploys a registered artifact
func (c *Chain) Deploy(ctx context.Context, artifact string) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	impl, ok := c.artifacts[artifact]
	if !ok {
		return common.Address{}, fmt.Errorf("artifact %s not found", artifact)
	}
	addr := c.newAddress()
	c.impls[addr] = impl
	return addr, nil
}

// Sender returns the account batches are sent from
func (c *Chain) Sender() common.Address { return c.sender }

// FailNextBatches makes the next ExecuteBatch calls fail with errs, in order,
// without applying anything
func (c *Chain) FailNextBatches(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failBatch = append(c.failBatch, errs...)
}

// FailNextViews makes the next CallView calls fail with errs, in order
func (c *Chain) FailNextViews(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failView = append(c.failView, errs...)
}

// CallView runs a read-only call. State changes made by the call are discarded.
func (c *Chain) CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.failView) > 0 {
		err := c.failView[0]
		c.failView = c.failView[1:]
		return nil, err
	}
	snap := c.snapshot()
	defer c.restore(snap)
	return c.exec(c.sender, to, data)
}

// ExecuteBatch applies calls in order. If any call reverts the chain is
// restored to its state before the batch.
func (c *Chain) ExecuteBatch(ctx context.Context, calls []models.Call) (*models.BatchReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.failBatch) > 0 {
		err := c.failBatch[0]
		c.failBatch = c.failBatch[1:]
		return nil, err
	}

	snap := c.snapshot()
	for i, call := range calls {
		if _, err := c.exec(c.sender, call.To, call.Data); err != nil {
			c.restore(snap)
			return nil, &domain.CallRevertedError{Index: i, Description: call.Description, Reason: err.Error()}
		}
	}

	c.block++
	c.batches = append(c.batches, append([]models.Call(nil), calls...))
	var num [8]byte
	binary.BigEndian.PutUint64(num[:], c.block)
	return &models.BatchReceipt{
		TxHash:      crypto.Keccak256Hash(num[:]),
		BlockNumber: c.block,
		GasUsed:     uint64(21000 * len(calls)),
	}, nil
}

// Batches returns every successfully applied batch
func (c *Chain) Batches() [][]models.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]models.Call, len(c.batches))
	copy(out, c.batches)
	return out
}

// ImplementationOf returns the current implementation of proxy
func (c *Chain) ImplementationOf(proxy common.Address) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.proxies[proxy]; ok {
		return p.implementation
	}
	return common.Address{}
}

// StorageOf returns a copy of the storage behind proxy
func (c *Chain) StorageOf(proxy common.Address) *Storage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.proxies[proxy]; ok {
		return p.storage.clone()
	}
	return nil
}

// UpdateStorage mutates the storage behind proxy directly
func (c *Chain) UpdateStorage(proxy common.Address, fn func(*Storage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.proxies[proxy]; ok {
		fn(p.storage)
	}
}

// ProtocolVersion returns the version recorded by a registry
func (c *Chain) ProtocolVersion(registry common.Address) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.registries[registry]; ok {
		return r.version
	}
	return ""
}

type snapshot struct {
	admins     map[common.Address]adminState
	proxies    map[common.Address]proxyState
	registries map[common.Address]registryState
}

func (c *Chain) snapshot() snapshot {
	s := snapshot{
		admins:     make(map[common.Address]adminState, len(c.admins)),
		proxies:    make(map[common.Address]proxyState, len(c.proxies)),
		registries: make(map[common.Address]registryState, len(c.registries)),
	}
	for a, st := range c.admins {
		s.admins[a] = *st
	}
	for a, st := range c.proxies {
		cp := *st
		cp.storage = st.storage.clone()
		s.proxies[a] = cp
	}
	for a, st := range c.registries {
		s.registries[a] = *st
	}
	return s
}

func (c *Chain) restore(s snapshot) {
	for a, st := range s.admins {
		c.admins[a] = &st
	}
	for a, st := range s.proxies {
		c.proxies[a] = &st
	}
	for a, st := range s.registries {
		c.registries[a] = &st
	}
}

func (c *Chain) exec(caller, to common.Address, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, revert("no function selector")
	}
	switch {
	case c.admins[to] != nil:
		return c.execAdmin(caller, to, data)
	case c.proxies[to] != nil:
		p := c.proxies[to]
		impl, ok := c.impls[p.implementation]
		if !ok {
			return nil, revert("proxy %s points at %s which has no code", to.Hex(), p.implementation.Hex())
		}
		return impl.exec(env{caller: caller, self: to}, p.storage, data)
	case c.registries[to] != nil:
		return c.execRegistry(to, data)
	default:
		return nil, revert("no code at %s", to.Hex())
	}
}
