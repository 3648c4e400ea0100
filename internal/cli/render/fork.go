package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// ForkRenderer renders fork node operations
type ForkRenderer struct {
	out io.Writer
}

// NewForkRenderer creates a new fork renderer
func NewForkRenderer(out io.Writer) *ForkRenderer {
	return &ForkRenderer{out: out}
}

// RenderStarted renders a freshly started fork
func (r *ForkRenderer) RenderStarted(result *usecase.ForkResult) error {
	fmt.Fprintln(r.out, FormatSuccess(result.Message))
	color.New(color.FgBlue).Fprintf(r.out, "🌐 RPC URL: %s\n", result.Node.RPCURL())
	color.New(color.FgYellow).Fprintf(r.out, "📋 Logs: %s\n", result.Node.LogFile)
	fmt.Fprintf(r.out, "\nRehearse against it with --network %s\n", result.Node.RPCURL())
	return nil
}

// RenderStopped renders the outcome of a stop
func (r *ForkRenderer) RenderStopped(result *usecase.ForkResult) error {
	if !result.Stopped {
		fmt.Fprintln(r.out, FormatWarning(result.Message))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(result.Message))
	return nil
}

// RenderStatus renders the observed node state
func (r *ForkRenderer) RenderStatus(result *usecase.ForkResult) error {
	status := result.Status
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "📊 Fork Status ('%s'):\n", result.Node.Name)
	if !status.Running {
		color.New(color.FgRed).Fprintln(r.out, "Status: 🔴 Not running")
		if status.Error != "" {
			color.New(color.FgHiBlack).Fprintln(r.out, status.Error)
		}
		color.New(color.FgHiBlack).Fprintf(r.out, "Log file: %s\n", status.LogFile)
		return nil
	}

	color.New(color.FgGreen).Fprintf(r.out, "Status: 🟢 Running (PID %d)\n", status.PID)
	color.New(color.FgBlue).Fprintf(r.out, "RPC URL: %s\n", status.RPCURL)
	color.New(color.FgYellow).Fprintf(r.out, "Log file: %s\n", status.LogFile)
	switch {
	case status.RPCHealthy:
		color.New(color.FgGreen).Fprintf(r.out, "RPC Health: ✅ %s\n", status.ClientVersion)
	case status.Error != "":
		color.New(color.FgRed).Fprintf(r.out, "RPC Health: ❌ Not responding (%s)\n", status.Error)
	default:
		color.New(color.FgRed).Fprintf(r.out, "RPC Health: ❌ %s is not a dev node\n", status.ClientVersion)
	}
	return nil
}
