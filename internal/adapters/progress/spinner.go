// Package progress renders migration progress on the terminal
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// SpinnerProgressReporter shows a spinner with chunk progress while a
// migration runs
type SpinnerProgressReporter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
	stage   string
	started time.Time
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
func NewSpinnerProgressReporter() *SpinnerProgressReporter {
	return newSpinnerProgressReporter(os.Stderr)
}

func newSpinnerProgressReporter(w io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.HideCursor = false
	return &SpinnerProgressReporter{spinner: s, out: w}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Stage != r.stage {
		r.stage = event.Stage
		r.started = time.Now()
	}
	if !event.Spinner {
		if r.spinner.Active() {
			r.spinner.Stop()
		}
		return
	}
	r.spinner.Suffix = " " + r.suffix(event)
	if !r.spinner.Active() {
		r.spinner.Start()
	}
}

func (r *SpinnerProgressReporter) suffix(event usecase.ProgressEvent) string {
	elapsed := time.Since(r.started).Round(time.Second)
	stage := color.New(color.FgYellow).Sprint(event.Stage)
	if event.Total > 0 {
		return fmt.Sprintf("● %s [%d/%d] %s (%s)", stage, event.Current, event.Total, event.Message, elapsed)
	}
	return fmt.Sprintf("● %s %s (%s)", stage, event.Message, elapsed)
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.print(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.print(color.New(color.FgRed), message)
}

// Stop clears the spinner line
func (r *SpinnerProgressReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

func (r *SpinnerProgressReporter) print(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	_, _ = c.Fprintln(r.out, message)
	if wasActive {
		r.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
