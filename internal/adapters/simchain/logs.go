package simchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// Log is a simulated event log
type Log struct {
	Address     common.Address
	Topics      []common.Hash
	BlockNumber uint64
}

// EmitLog records an event whose indexed arguments are addresses
func (c *Chain) EmitLog(emitter common.Address, signature string, indexed ...common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	topics := []common.Hash{crypto.Keccak256Hash([]byte(signature))}
	for _, a := range indexed {
		topics = append(topics, common.BytesToHash(a.Bytes()))
	}
	c.block++
	c.logs = append(c.logs, Log{Address: emitter, Topics: topics, BlockNumber: c.block})
}

// IndexedAddresses returns the indexed address argument of every matching log
func (c *Chain) IndexedAddresses(ctx context.Context, q models.LogQuery) ([]common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q.Topic < 1 || q.Topic > 3 {
		return nil, fmt.Errorf("topic index %d out of range", q.Topic)
	}
	topic0 := crypto.Keccak256Hash([]byte(q.Signature))

	var out []common.Address
	for _, l := range c.logs {
		if l.Address != q.Address || l.BlockNumber < q.FromBlock || len(l.Topics) <= q.Topic || l.Topics[0] != topic0 {
			continue
		}
		out = append(out, common.BytesToAddress(l.Topics[q.Topic].Bytes()))
	}
	return out, nil
}
