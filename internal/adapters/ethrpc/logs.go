package ethrpc

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultLogBlockRange is the block span of a single eth_getLogs request
	DefaultLogBlockRange = 10_000
	// DefaultLogConcurrency bounds concurrent eth_getLogs requests
	DefaultLogConcurrency = 4
)

// LogQuery scans event logs in block ranges concurrently
type LogQuery struct {
	client      *Client
	blockRange  uint64
	concurrency int
	log         *slog.Logger
}

// NewLogQuery creates a new log query adapter
func NewLogQuery(client *Client, cfg *config.RuntimeConfig, log *slog.Logger) *LogQuery {
	q := &LogQuery{
		client:      client,
		blockRange:  DefaultLogBlockRange,
		concurrency: DefaultLogConcurrency,
		log:         log.With("component", "ethrpc.LogQuery"),
	}
	if cfg.LogBlockRange > 0 {
		q.blockRange = cfg.LogBlockRange
	}
	if cfg.LogConcurrency > 0 {
		q.concurrency = cfg.LogConcurrency
	}
	return q
}

type blockRange struct{ from, to uint64 }

func splitRange(from, to, span uint64) []blockRange {
	var out []blockRange
	for start := from; start <= to; start += span {
		end := min(start+span-1, to)
		out = append(out, blockRange{start, end})
		if end == to {
			break
		}
	}
	return out
}

// IndexedAddresses returns the indexed address argument at q.Topic of every
// matching log, in chain order
func (q *LogQuery) IndexedAddresses(ctx context.Context, query models.LogQuery) ([]common.Address, error) {
	if query.Topic < 1 || query.Topic > 3 {
		return nil, fmt.Errorf("%s: topic index %d out of range", query.Signature, query.Topic)
	}
	latest, err := q.client.eth.BlockNumber(ctx)
	if err != nil {
		return nil, classify("eth_blockNumber", err)
	}
	if query.FromBlock > latest {
		return nil, nil
	}

	topic0 := crypto.Keccak256Hash([]byte(query.Signature))
	ranges := splitRange(query.FromBlock, latest, q.blockRange)
	results := make([][]types.Log, len(ranges))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(q.concurrency)
	for i, r := range ranges {
		g.Go(func() error {
			logs, err := q.client.eth.FilterLogs(ctx, ethereum.FilterQuery{
				FromBlock: new(big.Int).SetUint64(r.from),
				ToBlock:   new(big.Int).SetUint64(r.to),
				Addresses: []common.Address{query.Address},
				Topics:    [][]common.Hash{{topic0}},
			})
			if err != nil {
				return classify("eth_getLogs", err)
			}
			results[i] = logs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []common.Address
	for _, l := range lo.Flatten(results) {
		if len(l.Topics) <= query.Topic {
			continue
		}
		out = append(out, common.BytesToAddress(l.Topics[query.Topic].Bytes()))
	}
	q.log.Debug("scanned logs", "signature", query.Signature, "ranges", len(ranges), "matches", len(out))
	return out, nil
}

var _ usecase.EventLogQuery = (*LogQuery)(nil)
