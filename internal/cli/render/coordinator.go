package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// CoordinatorRenderer renders the coordinator registry and batch results
type CoordinatorRenderer struct {
	out   io.Writer
	color bool
}

// NewCoordinatorRenderer creates a new coordinator renderer
func NewCoordinatorRenderer(out io.Writer, color bool) *CoordinatorRenderer {
	return &CoordinatorRenderer{out: out, color: color}
}

func (r *CoordinatorRenderer) paint(c *color.Color, s string) string {
	if !r.color {
		return s
	}
	return c.Sprint(s)
}

// RenderStatus renders adopted proxies and the pending batch
func (r *CoordinatorRenderer) RenderStatus(result *usecase.StatusResult) error {
	state := result.State
	fmt.Fprintln(r.out, r.paint(headerStyle, "Coordinator"))
	fmt.Fprintf(r.out, "  Address:  %s\n", state.Address.Hex())
	fmt.Fprintf(r.out, "  Owner:    %s\n", state.Owner.Hex())
	fmt.Fprintf(r.out, "  Nonce:    %d\n", state.Nonce)
	version := state.ProtocolVersion
	if version == "" {
		version = "-"
	}
	fmt.Fprintf(r.out, "  Version:  %s\n", version)
	if len(state.Proposers) > 0 {
		fmt.Fprintln(r.out, "  Proposers:")
		for _, p := range state.Proposers {
			fmt.Fprintf(r.out, "    - %s\n", p.Hex())
		}
	}
	fmt.Fprintln(r.out)

	if len(result.Adopted) == 0 {
		fmt.Fprintln(r.out, "No adopted contracts")
	} else {
		fmt.Fprintln(r.out, r.paint(headerStyle, fmt.Sprintf("Adopted contracts (%d)", len(result.Adopted))))
		t := newTable(table.Row{"ID", "CONTRACT", "PROXY", "ADMIN", "IMPLEMENTATION"})
		for _, id := range result.Adopted {
			record := state.Proxies[id]
			name := "-"
			if entry, ok := result.Book[id]; ok && entry.ContractName != "" {
				name = entry.ContractName
			}
			t.AppendRow(table.Row{
				r.paint(idStyle, string(id)),
				name,
				r.paint(addressStyle, record.Proxy.Hex()),
				r.paint(faintStyle, shortAddress(record.ProxyAdmin)),
				r.paint(addressStyle, record.Implementation.Hex()),
			})
		}
		fmt.Fprintln(r.out, t.Render())
	}
	fmt.Fprintln(r.out)

	return r.RenderPending(result.Pending)
}

// RenderPending renders staged changes in the order they will be applied
func (r *CoordinatorRenderer) RenderPending(changes []*models.PendingChange) error {
	if len(changes) == 0 {
		fmt.Fprintln(r.out, "No pending changes")
		return nil
	}
	fmt.Fprintln(r.out, r.paint(pendingStyle, fmt.Sprintf("Pending changes (%d)", len(changes))))
	t := newTable(table.Row{"#", "ID", "KIND", "IMPLEMENTATION", "CALL DATA"})
	for i, change := range changes {
		impl := "-"
		if change.HasUpgrade() {
			impl = change.NewImplementation.Hex()
		}
		data := "-"
		if change.HasCall() {
			data = truncate(hexutil.Encode(change.CallData), 42)
		}
		kind := change.Kind()
		if style, ok := kindStyles[kind]; ok {
			kind = r.paint(style, kind)
		}
		t.AppendRow(table.Row{i + 1, r.paint(idStyle, string(change.ID)), kind, impl, data})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderCommit renders a mined batch
func (r *CoordinatorRenderer) RenderCommit(result *usecase.CommitResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Committed %d change(s), coordinator nonce is now %d", len(result.Applied), result.Nonce)))
	for _, id := range result.Applied {
		fmt.Fprintf(r.out, "   - %s\n", id)
	}
	if result.Version != "" {
		fmt.Fprintf(r.out, "   Protocol version: %s\n", result.Version)
	}
	r.renderReceipt(result.Receipt)
	return nil
}

// RenderReceipt renders a single mined transaction
func (r *CoordinatorRenderer) RenderReceipt(message string, receipt *models.BatchReceipt) error {
	fmt.Fprintln(r.out, FormatSuccess(message))
	r.renderReceipt(receipt)
	return nil
}

func (r *CoordinatorRenderer) renderReceipt(receipt *models.BatchReceipt) {
	if receipt == nil {
		return
	}
	fmt.Fprintf(r.out, "   Tx: %s\n", receipt.TxHash.Hex())
	fmt.Fprintln(r.out, r.paint(faintStyle, fmt.Sprintf("   Block %d, gas used %d", receipt.BlockNumber, receipt.GasUsed)))
}

// RenderAdopted renders a newly adopted proxy
func (r *CoordinatorRenderer) RenderAdopted(record *models.ProxyRecord) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Adopted %s", r.paint(idStyle, string(record.ID)))))
	fmt.Fprintf(r.out, "   Proxy:          %s\n", record.Proxy.Hex())
	fmt.Fprintf(r.out, "   Proxy admin:    %s\n", record.ProxyAdmin.Hex())
	fmt.Fprintf(r.out, "   Implementation: %s\n", record.Implementation.Hex())
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
