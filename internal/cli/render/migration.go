package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MigrationRenderer renders migration and verification summaries
type MigrationRenderer struct {
	out   io.Writer
	color bool
	title cases.Caser
}

// NewMigrationRenderer creates a new migration renderer
func NewMigrationRenderer(out io.Writer, color bool) *MigrationRenderer {
	return &MigrationRenderer{out: out, color: color, title: cases.Title(language.English)}
}

func (r *MigrationRenderer) paint(c *color.Color, s string) string {
	if !r.color {
		return s
	}
	return c.Sprint(s)
}

// RenderMigrate renders a finished migration
func (r *MigrationRenderer) RenderMigrate(result *usecase.MigrateResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Migrated %s", result.ContractID)))
	fmt.Fprintf(r.out, "   From: %s\n", result.Previous.Hex())
	fmt.Fprintf(r.out, "   To:   %s\n", result.Target.Hex())
	r.renderSummary(result.Summary)
	return nil
}

// RenderVerify renders the before and after membership of every set
func (r *MigrationRenderer) RenderVerify(result *usecase.VerifySetResult) error {
	failed := 0
	t := newTable(table.Row{"SET", "SLOT", "LEGACY", "CURRENT", "STATUS"})
	for _, set := range result.Sets {
		status := r.paint(okStyle, "preserved")
		if !set.Verified {
			failed++
			status = r.paint(failStyle, fmt.Sprintf("%d missing, %d extra", len(set.Missing), len(set.Extra)))
		}
		t.AppendRow(table.Row{set.Label, shortHash(set.Slot.Hex()), len(set.Legacy), len(set.Current), status})
	}

	fmt.Fprintln(r.out, r.paint(headerStyle, fmt.Sprintf("Set membership of %s on fork (%d keys)", result.ContractID, result.Keys)))
	if len(result.Sets) > 0 {
		fmt.Fprintln(r.out, t.Render())
	}
	r.renderSummary(result.Summary)
	fmt.Fprintln(r.out)

	if failed > 0 {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%d of %d sets lost or gained members", failed, len(result.Sets))))
		for _, set := range result.Sets {
			for _, m := range set.Missing {
				fmt.Fprintf(r.out, "   - %s missing %s\n", set.Label, m.Hex())
			}
			for _, e := range set.Extra {
				fmt.Fprintf(r.out, "   + %s unexpected %s\n", set.Label, e.Hex())
			}
		}
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("All %d sets kept their members", len(result.Sets))))
	return nil
}

func (r *MigrationRenderer) renderSummary(summary *usecase.MigrationSummary) {
	if summary == nil {
		return
	}
	strategy := r.title.String(strings.ReplaceAll(string(summary.Strategy), "-", " "))
	fmt.Fprintf(r.out, "   Strategy: %s\n", strategy)
	if summary.Keys > 0 || summary.Chunks > 0 {
		fmt.Fprintf(r.out, "   Keys: %d in %d chunk(s)\n", summary.Keys, summary.Chunks)
	}
	if summary.Resumed {
		fmt.Fprintln(r.out, r.paint(pendingStyle, "   Resumed an interrupted run"))
	}
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "..." + h[len(h)-4:]
}
