package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// LayoutRenderer renders storage layout compatibility reports
type LayoutRenderer struct {
	out   io.Writer
	color bool
}

// NewLayoutRenderer creates a new layout renderer
func NewLayoutRenderer(out io.Writer, color bool) *LayoutRenderer {
	return &LayoutRenderer{out: out, color: color}
}

func (r *LayoutRenderer) paint(c *color.Color, s string) string {
	if !r.color {
		return s
	}
	return c.Sprint(s)
}

// RenderChecks renders one report per contract and returns the number of
// incompatible contracts
func (r *LayoutRenderer) RenderChecks(results []*usecase.LayoutCheckResult) int {
	if len(results) == 0 {
		fmt.Fprintln(r.out, "No contracts in the address book")
		return 0
	}

	failed := 0
	for _, res := range results {
		if res.Report.OK {
			line := fmt.Sprintf("✅ %s (%s) is compatible", res.ContractID, res.ContractName)
			fmt.Fprintln(r.out, r.paint(okStyle, line))
			for _, added := range res.Report.Added {
				fmt.Fprintln(r.out, r.paint(faintStyle, fmt.Sprintf("     + %s", added)))
			}
			continue
		}

		failed++
		line := fmt.Sprintf("❌ %s (%s) has %d incompatible change(s)", res.ContractID, res.ContractName, len(res.Report.Mismatches))
		fmt.Fprintln(r.out, r.paint(failStyle, line))
		t := newTable(table.Row{"#", "VARIABLE", "CHANGE", "ARCHIVED", "CURRENT"})
		for _, m := range res.Report.Mismatches {
			t.AppendRow(table.Row{m.Index, m.Label, string(m.Kind), m.Old, m.New})
		}
		fmt.Fprintln(r.out, t.Render())
	}

	fmt.Fprintln(r.out)
	if failed == 0 {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("All %d layouts are compatible", len(results))))
	} else {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%d of %d layouts are incompatible", failed, len(results))))
	}
	return failed
}

// RenderSnapshot lists archived layouts
func (r *LayoutRenderer) RenderSnapshot(names []string) error {
	if len(names) == 0 {
		fmt.Fprintln(r.out, "Nothing to archive")
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Archived %d layout(s)", len(names))))
	for _, name := range names {
		fmt.Fprintf(r.out, "   - %s\n", name)
	}
	return nil
}
