package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/layout"
)

// CheckLayout compares archived storage layouts with freshly compiled ones
type CheckLayout struct {
	archive  LayoutArchive
	compiled CompiledLayoutSource
	book     AddressBookRepository
	log      *slog.Logger
}

// NewCheckLayout creates a new check layout use case
func NewCheckLayout(archive LayoutArchive, compiled CompiledLayoutSource, book AddressBookRepository, log *slog.Logger) *CheckLayout {
	return &CheckLayout{
		archive:  archive,
		compiled: compiled,
		book:     book,
		log:      log.With("component", "CheckLayout"),
	}
}

// LayoutCheckResult is the comparison for one managed contract
type LayoutCheckResult struct {
	ContractID   models.ContractID
	ContractName string
	Report       *models.CompatibilityReport
	Current      *models.StorageLayout
}

// Check compares the given contracts, or every contract in the address book when ids is empty
func (c *CheckLayout) Check(ctx context.Context, ids []models.ContractID) ([]*LayoutCheckResult, error) {
	book, err := c.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		for id := range book {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	results := make([]*LayoutCheckResult, 0, len(ids))
	for _, id := range ids {
		result, err := c.checkOne(ctx, book, id)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *CheckLayout) checkOne(ctx context.Context, book models.AddressBook, id models.ContractID) (*LayoutCheckResult, error) {
	entry, ok := book[id]
	if !ok {
		return nil, fmt.Errorf("%s: not in address book", id)
	}
	old, err := c.archive.Get(ctx, entry.ContractName)
	if err != nil {
		return nil, fmt.Errorf("%s: archived layout for %s: %w", id, entry.ContractName, err)
	}
	current, err := c.compiled.StorageLayout(ctx, entry.ContractName)
	if err != nil {
		return nil, fmt.Errorf("%s: compiled layout for %s: %w", id, entry.ContractName, err)
	}

	report := layout.Compare(old, current)
	c.log.Debug("compared layouts", "id", id, "contract", entry.ContractName, "ok", report.OK, "mismatches", len(report.Mismatches))
	return &LayoutCheckResult{ContractID: id, ContractName: entry.ContractName, Report: report, Current: current}, nil
}

// Snapshot archives the compiled layout of each contract so the next
// upgrade is compared against it
func (c *CheckLayout) Snapshot(ctx context.Context, ids []models.ContractID) ([]string, error) {
	book, err := c.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		for id := range book {
			ids = append(ids, id)
		}
	}

	seen := make(map[string]bool)
	var names []string
	for _, id := range ids {
		entry, ok := book[id]
		if !ok {
			return nil, fmt.Errorf("%s: not in address book", id)
		}
		if seen[entry.ContractName] {
			continue
		}
		seen[entry.ContractName] = true

		current, err := c.compiled.StorageLayout(ctx, entry.ContractName)
		if err != nil {
			return nil, fmt.Errorf("%s: compiled layout for %s: %w", id, entry.ContractName, err)
		}
		if err := c.archive.Put(ctx, current); err != nil {
			return nil, err
		}
		names = append(names, entry.ContractName)
	}
	sort.Strings(names)
	return names, nil
}

// CheckCommit vetoes a batch when any staged upgrade is not storage compatible
func (c *CheckLayout) CheckCommit(ctx context.Context, _ *models.CoordinatorState, changes []*models.PendingChange) error {
	var ids []models.ContractID
	for _, change := range changes {
		if change.HasUpgrade() {
			ids = append(ids, change.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	results, err := c.Check(ctx, ids)
	if err != nil {
		return fmt.Errorf("layout check: %w", err)
	}
	for _, result := range results {
		if err := layout.ReportError(result.ContractID, result.Report); err != nil {
			return err
		}
	}
	return nil
}

var _ CommitGuard = (*CheckLayout)(nil)

// ProvideCommitGuards collects the guards consulted before every commit
func ProvideCommitGuards(check *CheckLayout) []CommitGuard {
	return []CommitGuard{check}
}
