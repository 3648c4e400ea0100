package models

import (
	"fmt"
	"strings"
)

// StorageSlot is the placement of one storage variable
type StorageSlot struct {
	Label  string `json:"label"`
	Slot   string `json:"slot"`
	Offset int    `json:"offset"`
	Type   string `json:"type"`
}

// GapLabel is the conventional name of reserved padding slots
const GapLabel = "__gap"

// IsGap reports whether the slot is reserved padding, including versioned
// gap names such as __gap_v2
func (s StorageSlot) IsGap() bool {
	return s.Label == GapLabel || strings.HasPrefix(s.Label, GapLabel+"_")
}

func (s StorageSlot) String() string {
	return fmt.Sprintf("%s@%s+%d (%s)", s.Label, s.Slot, s.Offset, s.Type)
}

// StorageLayout is a contract's storage shape at one point in time
type StorageLayout struct {
	ContractName string        `json:"contractName"`
	Slots        []StorageSlot `json:"storage"`
	// Types carries the raw type table from build metadata, keyed by type id
	Types map[string]StorageType `json:"types,omitempty"`
}

// StorageType is an entry of the compiler's storage type table
type StorageType struct {
	Encoding      string `json:"encoding"`
	Label         string `json:"label"`
	NumberOfBytes string `json:"numberOfBytes"`
}

// MismatchKind classifies a layout difference
type MismatchKind string

const (
	MismatchLabel   MismatchKind = "label"
	MismatchSlot    MismatchKind = "slot"
	MismatchOffset  MismatchKind = "offset"
	MismatchType    MismatchKind = "type"
	MismatchRemoved MismatchKind = "removed"
)

// LayoutMismatch is a single incompatibility between two layouts
type LayoutMismatch struct {
	Index int          `json:"index"`
	Kind  MismatchKind `json:"kind"`
	Label string       `json:"label"`
	Old   string       `json:"old"`
	New   string       `json:"new"`
}

func (m LayoutMismatch) String() string {
	return fmt.Sprintf("#%d %s: %s changed from %q to %q", m.Index, m.Label, m.Kind, m.Old, m.New)
}

// CompatibilityReport is the outcome of comparing two layouts
type CompatibilityReport struct {
	OK         bool             `json:"ok"`
	Mismatches []LayoutMismatch `json:"mismatches"`
	// Added lists new variables appended after the last old variable
	Added []StorageSlot `json:"added,omitempty"`
}
