// Package layout compares storage layouts of two implementation versions.
//
// Compare is pure: descriptors come from compiled build metadata or an
// archived snapshot supplied by the caller. A report with OK=false signals a
// possible storage corruption risk and must abort any migration in progress.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// Differ compares layouts using fixed rename and type equivalence tables
type Differ struct {
	tables *tables
}

// Option extends the built-in tables
type Option func(*differOptions)

type differOptions struct {
	renames map[string]string
	types   map[string]string
}

// WithRenames adds label renames (old name to new name)
func WithRenames(r map[string]string) Option {
	return func(o *differOptions) { o.renames = r }
}

// WithTypeEquivalents adds type name equivalences (old name to new name)
func WithTypeEquivalents(t map[string]string) Option {
	return func(o *differOptions) { o.types = t }
}

// NewDiffer creates a differ with the built-in tables plus any extensions
func NewDiffer(opts ...Option) *Differ {
	var o differOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Differ{tables: newTables(o.renames, o.types)}
}

var defaultDiffer = NewDiffer()

// Compare checks that new is storage compatible with old using the built-in tables
func Compare(old, new *models.StorageLayout) *models.CompatibilityReport {
	return defaultDiffer.Compare(old, new)
}

// Compare checks that new is storage compatible with old
func (d *Differ) Compare(old, new *models.StorageLayout) *models.CompatibilityReport {
	oldSlots := withoutGaps(old)
	newSlots := withoutGaps(new)

	report := &models.CompatibilityReport{Mismatches: []models.LayoutMismatch{}}

	for i, o := range oldSlots {
		if i >= len(newSlots) {
			report.Mismatches = append(report.Mismatches, models.LayoutMismatch{
				Index: i,
				Kind:  models.MismatchRemoved,
				Label: o.Label,
				Old:   o.String(),
			})
			continue
		}
		report.Mismatches = append(report.Mismatches, d.comparePair(i, old, o, new, newSlots[i])...)
	}
	if len(newSlots) > len(oldSlots) {
		report.Added = append(report.Added, newSlots[len(oldSlots):]...)
	}

	report.OK = len(report.Mismatches) == 0
	return report
}

func (d *Differ) comparePair(i int, oldLayout *models.StorageLayout, o models.StorageSlot, newLayout *models.StorageLayout, n models.StorageSlot) []models.LayoutMismatch {
	var out []models.LayoutMismatch
	add := func(kind models.MismatchKind, oldVal, newVal string) {
		out = append(out, models.LayoutMismatch{Index: i, Kind: kind, Label: o.Label, Old: oldVal, New: newVal})
	}

	if d.tables.label(o.Label) != d.tables.label(n.Label) {
		add(models.MismatchLabel, o.Label, n.Label)
	}
	if o.Slot != n.Slot {
		add(models.MismatchSlot, o.Slot, n.Slot)
	}
	if o.Offset != n.Offset {
		add(models.MismatchOffset, strconv.Itoa(o.Offset), strconv.Itoa(n.Offset))
	}

	oldType, newType := typeName(oldLayout, o), typeName(newLayout, n)
	if d.tables.typ(oldType) != d.tables.typ(newType) {
		add(models.MismatchType, oldType, newType)
	}
	return out
}

// typeName prefers the human readable label from the type table
func typeName(l *models.StorageLayout, s models.StorageSlot) string {
	if l.Types != nil {
		if t, ok := l.Types[s.Type]; ok && t.Label != "" {
			return t.Label
		}
	}
	return s.Type
}

func withoutGaps(l *models.StorageLayout) []models.StorageSlot {
	if l == nil {
		return nil
	}
	out := make([]models.StorageSlot, 0, len(l.Slots))
	for _, s := range l.Slots {
		if s.IsGap() {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ReportError converts a failing report into a StateMismatchError naming
// every mismatched label. It returns nil for a compatible report.
func ReportError(id models.ContractID, report *models.CompatibilityReport) error {
	if report == nil || report.OK {
		return nil
	}
	details := make([]string, 0, len(report.Mismatches))
	for _, m := range report.Mismatches {
		details = append(details, m.String())
	}
	return &domain.StateMismatchError{
		ContractID: string(id),
		Reason:     fmt.Errorf("%w:\n  %s", domain.ErrLayoutIncompatible, strings.Join(details, "\n  ")),
	}
}
