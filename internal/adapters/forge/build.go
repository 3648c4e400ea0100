package forge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
)

// Builder runs forge build
type Builder struct {
	projectRoot string
	log         *slog.Logger
}

// NewBuilder creates a new builder
func NewBuilder(cfg *config.RuntimeConfig, log *slog.Logger) *Builder {
	return &Builder{projectRoot: cfg.ProjectRoot, log: log.With("component", "ForgeBuilder")}
}

// Build compiles the project with the storage layout extra output. Output is
// streamed to w through a pty so forge keeps its colors.
func (b *Builder) Build(ctx context.Context, w io.Writer) error {
	start := time.Now()
	cmd := exec.CommandContext(ctx, "forge", "build", "--extra-output", "storageLayout")
	cmd.Dir = b.projectRoot
	b.log.Debug("running forge build", "dir", b.projectRoot)

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() { _ = ptyFile.Close() }()

	// reading a pty whose child exited returns EIO
	if _, err := io.Copy(w, ptyFile); err != nil && !errors.Is(err, syscall.EIO) {
		b.log.Debug("forge output copy stopped", "error", err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("forge build failed: %w", err)
	}
	b.log.Debug("forge build completed", "duration", time.Since(start))
	return nil
}
