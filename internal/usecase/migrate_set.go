package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/retry"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the number of keys sent per upgradeChunk call
const DefaultChunkSize = 10

// ChunkedSetStrategy migrates enumerable set storage whose encoding changed
// between versions. The proxy is pointed at an upgrader implementation, keys
// discovered from event logs are migrated in bounded chunks, and the proxy is
// then pointed at the target implementation. Progress is persisted after every
// chunk so an interrupted run resumes where it stopped.
type ChunkedSetStrategy struct {
	swapper  *implementationSwapper
	upgrader SetUpgrader
	deployer ImplementationDeployer
	keys     *keyDiscovery
	progress MigrationProgressStore
	reader   UpgraderStorageReader
	sink     ProgressSink
	cfg      *config.RuntimeConfig
	log      *slog.Logger
}

// NewChunkedSetStrategy creates the chunked set migration strategy
func NewChunkedSetStrategy(
	backend ChainBackend,
	admin ProxyAdmin,
	upgrader SetUpgrader,
	deployer ImplementationDeployer,
	logs EventLogQuery,
	progress MigrationProgressStore,
	reader UpgraderStorageReader,
	exec *retry.Executor,
	sink ProgressSink,
	cfg *config.RuntimeConfig,
	log *slog.Logger,
) *ChunkedSetStrategy {
	log = log.With("component", "ChunkedSetStrategy")
	return &ChunkedSetStrategy{
		swapper:  &implementationSwapper{backend: backend, admin: admin, retry: exec, log: log},
		upgrader: upgrader,
		deployer: deployer,
		keys:     &keyDiscovery{logs: logs, retry: exec, fromBlock: cfg.FromBlock},
		progress: progress,
		reader:   reader,
		sink:     sink,
		cfg:      cfg,
		log:      log,
	}
}

func (s *ChunkedSetStrategy) Kind() models.StrategyKind { return models.StrategyChunkedSet }

// chunkSize prefers the runtime override over the plan entry
func (s *ChunkedSetStrategy) chunkSize(spec models.StrategySpec) int {
	switch {
	case s.cfg.ChunkSize > 0:
		return s.cfg.ChunkSize
	case spec.ChunkSize > 0:
		return spec.ChunkSize
	default:
		return DefaultChunkSize
	}
}

func (s *ChunkedSetStrategy) Migrate(ctx context.Context, job *MigrationJob) (*MigrationSummary, error) {
	record := job.Record
	id := record.ID
	if job.Spec.Upgrader == "" {
		return nil, fmt.Errorf("%s: chunked-set strategy requires an upgrader artifact", id)
	}
	if s.reader.Mode() != models.ReaderModeUpgrader {
		return nil, fmt.Errorf("%s: live migration requires an upgrader storage reader, got %s", id, s.reader.Mode())
	}

	progress, err := s.progress.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := &MigrationSummary{Strategy: models.StrategyChunkedSet, Resumed: progress != nil}

	if progress == nil {
		owner, err := s.swapper.owner(ctx, record.Proxy)
		if err != nil {
			return nil, &domain.FatalMigrationError{ContractID: string(id), Step: "read owner", Err: err}
		}
		progress = &models.MigrationProgress{
			ContractID: id,
			Phase:      models.PhaseStarted,
			ChunkSize:  s.chunkSize(job.Spec),
			Owner:      owner,
			Target:     job.Target,
			Processed:  []common.Address{},
		}
	} else if progress.Target != job.Target {
		return nil, &domain.StateMismatchError{
			ContractID: string(id),
			Reason:     fmt.Errorf("resumed migration targets a different implementation"),
			Expected:   progress.Target.Hex(),
			Actual:     job.Target.Hex(),
		}
	}

	if progress.Upgrader == (common.Address{}) {
		upgrader, err := s.deployer.Deploy(ctx, job.Spec.Upgrader)
		if err != nil {
			return nil, fmt.Errorf("%s: deploy upgrader %s: %w", id, job.Spec.Upgrader, err)
		}
		progress.Upgrader = upgrader
		if err := s.progress.Save(ctx, progress); err != nil {
			return nil, err
		}
		s.log.Info("deployed upgrader", "id", id, "artifact", job.Spec.Upgrader, "address", upgrader)
	}
	job.Run.ProxyAdmin = record.ProxyAdmin
	job.Run.Upgrader = progress.Upgrader

	keys, err := s.keys.discover(ctx, record.Proxy, job.Spec.KeyEvents)
	if err != nil {
		return nil, fmt.Errorf("%s: discover migration keys: %w", id, err)
	}
	summary.Keys = len(keys)
	s.log.Info("discovered migration keys", "id", id, "keys", len(keys), "resumed", summary.Resumed)

	if progress.Phase == models.PhaseStarted {
		if err := s.swapper.swap(ctx, record, progress.Upgrader, nil, progress.Owner, "switch to upgrader"); err != nil {
			return nil, err
		}
		progress.Phase = models.PhaseUpgraderActive
		if err := s.progress.Save(ctx, progress); err != nil {
			return nil, err
		}
	}

	if progress.Phase == models.PhaseUpgraderActive {
		chunks, err := s.runChunks(ctx, record, progress, keys)
		summary.Chunks = chunks
		if err != nil {
			return summary, err
		}

		sets, err := compareSets(ctx, s.reader, job.Run, record.Proxy, job.Spec.Sets, keys)
		summary.Sets = sets
		if err != nil {
			return summary, &domain.FatalMigrationError{ContractID: string(id), Step: "verify migrated sets", Err: err}
		}
		if mismatched := failedSets(sets); len(mismatched) > 0 {
			return summary, &domain.FatalMigrationError{
				ContractID: string(id),
				Step:       "verify migrated sets",
				Err:        fmt.Errorf("migrated membership differs for %v", mismatched),
			}
		}

		call, err := s.upgrader.EncodeUpgradeFinished(record.Proxy)
		if err != nil {
			return summary, err
		}
		if err := s.send(ctx, id, call, "upgradeFinished"); err != nil {
			return summary, err
		}
		progress.Phase = models.PhaseChunksDone
		if err := s.progress.Save(ctx, progress); err != nil {
			return summary, err
		}
	}

	if err := s.swapper.swap(ctx, record, job.Target, job.CallData, progress.Owner, "switch to target"); err != nil {
		return summary, err
	}

	progress.Completed = true
	if err := s.progress.Delete(ctx, id); err != nil {
		return summary, err
	}
	s.log.Info("set migration complete", "id", id, "keys", summary.Keys, "chunks", summary.Chunks)
	return summary, nil
}

func (s *ChunkedSetStrategy) runChunks(ctx context.Context, record models.ProxyRecord, progress *models.MigrationProgress, keys []common.Address) (int, error) {
	processed := progress.ProcessedSet()
	remaining := lo.Filter(keys, func(k common.Address, _ int) bool {
		_, done := processed[k]
		return !done
	})

	chunkSize := progress.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunks := lo.Chunk(remaining, chunkSize)
	total := len(progress.Processed) + len(remaining)

	for i, chunk := range chunks {
		call, err := s.upgrader.EncodeUpgradeChunk(record.Proxy, chunk)
		if err != nil {
			return i, err
		}
		if err := s.send(ctx, record.ID, call, fmt.Sprintf("upgradeChunk %d/%d", i+1, len(chunks))); err != nil {
			return i, err
		}

		progress.Processed = append(progress.Processed, chunk...)
		if err := s.progress.Save(ctx, progress); err != nil {
			return i + 1, err
		}
		s.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "Migrating",
			Current: len(progress.Processed),
			Total:   total,
			Message: fmt.Sprintf("%s: migrated %d/%d keys", record.ID, len(progress.Processed), total),
			Spinner: true,
		})
	}
	return len(chunks), nil
}

func (s *ChunkedSetStrategy) send(ctx context.Context, id models.ContractID, call models.Call, step string) error {
	call.ContractID = id
	if call.Description == "" {
		call.Description = step
	}
	_, err := retry.Do(ctx, s.swapper.retry, step, func(ctx context.Context) (*models.BatchReceipt, error) {
		return s.swapper.backend.ExecuteBatch(ctx, []models.Call{call})
	})
	if err != nil {
		return fmt.Errorf("%s: %s: %w", id, step, err)
	}
	s.log.Debug("sent", "id", id, "step", step)
	return nil
}

// keyDiscovery collects migration keys from historical events
type keyDiscovery struct {
	logs      EventLogQuery
	retry     *retry.Executor
	fromBlock uint64
}

// discover scans every key event concurrently and returns the union of
// indexed addresses in event order, without duplicates.
func (d *keyDiscovery) discover(ctx context.Context, proxy common.Address, events []models.KeyEvent) ([]common.Address, error) {
	results := make([][]common.Address, len(events))

	g, ctx := errgroup.WithContext(ctx)
	for i, ev := range events {
		emitter := proxy
		if ev.Emitter != nil {
			emitter = *ev.Emitter
		}
		query := models.LogQuery{Address: emitter, Signature: ev.Signature, Topic: ev.Topic, FromBlock: d.fromBlock}
		g.Go(func() error {
			addrs, err := retry.Do(ctx, d.retry, "getLogs "+ev.Signature, func(ctx context.Context) ([]common.Address, error) {
				return d.logs.IndexedAddresses(ctx, query)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", ev.Signature, err)
			}
			results[i] = addrs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Uniq(lo.Flatten(results)), nil
}

// SetComparison is the membership of one set under both encodings
type SetComparison struct {
	Label    string
	Slot     common.Hash
	Legacy   []common.Address
	Current  []common.Address
	Missing  []common.Address
	Extra    []common.Address
	Verified bool
}

// setLocations expands per-key sets into one location per key
func setLocations(spec models.SetSpec, keys []common.Address) []models.SetLocation {
	if !spec.PerKey {
		return []models.SetLocation{spec.Location}
	}
	locs := make([]models.SetLocation, 0, len(keys))
	for _, k := range keys {
		key := common.BytesToHash(k.Bytes())
		locs = append(locs, models.SetLocation{Slot: spec.Location.Slot, MappingKey: &key})
	}
	return locs
}

// readSets reads the members of every declared set under one encoding. Reads
// are side-effect free and run concurrently.
func readSets(ctx context.Context, reader RawStorageReader, run *models.RunContext, target common.Address, specs []models.SetSpec, keys []common.Address, enc models.SetEncoding) (map[common.Hash][]common.Address, error) {
	var (
		mu  sync.Mutex
		out = make(map[common.Hash][]common.Address)
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, spec := range specs {
		for _, loc := range setLocations(spec, keys) {
			g.Go(func() error {
				members, err := reader.Members(ctx, run, target, loc, enc)
				if err != nil {
					return fmt.Errorf("read %s (%s) at %s: %w", spec.Label, enc, loc.StorageSlot().Hex(), err)
				}
				mu.Lock()
				out[loc.StorageSlot()] = members
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// compareSets reads each declared set under both encodings and checks the
// current encoding holds exactly the legacy members
func compareSets(ctx context.Context, reader RawStorageReader, run *models.RunContext, target common.Address, specs []models.SetSpec, keys []common.Address) ([]SetComparison, error) {
	legacy, err := readSets(ctx, reader, run, target, specs, keys, models.SetEncodingLegacy)
	if err != nil {
		return nil, err
	}
	current, err := readSets(ctx, reader, run, target, specs, keys, models.SetEncodingCurrent)
	if err != nil {
		return nil, err
	}
	return diffSets(ctx, reader, run, target, specs, keys, legacy, current)
}

func diffSets(ctx context.Context, reader RawStorageReader, run *models.RunContext, target common.Address, specs []models.SetSpec, keys []common.Address, before, after map[common.Hash][]common.Address) ([]SetComparison, error) {
	var out []SetComparison
	for _, spec := range specs {
		for _, loc := range setLocations(spec, keys) {
			slot := loc.StorageSlot()
			cmp := SetComparison{Label: spec.Label, Slot: slot, Legacy: before[slot], Current: after[slot]}
			cmp.Missing, cmp.Extra = lo.Difference(cmp.Legacy, cmp.Current)

			for _, m := range cmp.Legacy {
				if slices.Contains(cmp.Missing, m) {
					continue
				}
				ok, err := reader.Contains(ctx, run, target, loc, models.SetEncodingCurrent, m)
				if err != nil {
					return nil, fmt.Errorf("contains %s in %s: %w", m.Hex(), spec.Label, err)
				}
				if !ok {
					cmp.Missing = append(cmp.Missing, m)
				}
			}
			cmp.Verified = len(cmp.Missing) == 0 && len(cmp.Extra) == 0
			out = append(out, cmp)
		}
	}
	return out, nil
}

func failedSets(sets []SetComparison) []string {
	var out []string
	for _, s := range sets {
		if !s.Verified {
			out = append(out, fmt.Sprintf("%s@%s", s.Label, s.Slot.Hex()))
		}
	}
	return out
}
