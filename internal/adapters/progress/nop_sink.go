package progress

import (
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// NewNopSink creates a progress sink that discards everything
func NewNopSink() usecase.ProgressSink {
	return usecase.NopProgress{}
}

// ProvideProgressSink picks the spinner for interactive terminals and a
// silent sink for JSON output and non-interactive runs
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.NonInteractive || cfg.JSON {
		return NewNopSink()
	}
	return NewSpinnerProgressReporter()
}
