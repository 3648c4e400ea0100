package app

import (
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/forge"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Backend  usecase.ChainBackend
	Progress usecase.ProgressSink
	Prompter *interactive.Prompter
	Builder  *forge.Builder

	// Use cases
	Coordinator     *usecase.Coordinator
	InitCoordinator *usecase.InitCoordinator
	AdoptContract   *usecase.AdoptContract
	CheckLayout     *usecase.CheckLayout
	MigrateContract *usecase.MigrateContract
	VerifySet       *usecase.VerifySet
	ShowStatus      *usecase.ShowStatus
	ManageFork      *usecase.ManageFork
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	backend usecase.ChainBackend,
	progress usecase.ProgressSink,
	prompter *interactive.Prompter,
	builder *forge.Builder,
	coordinator *usecase.Coordinator,
	initCoordinator *usecase.InitCoordinator,
	adoptContract *usecase.AdoptContract,
	checkLayout *usecase.CheckLayout,
	migrateContract *usecase.MigrateContract,
	verifySet *usecase.VerifySet,
	showStatus *usecase.ShowStatus,
	manageFork *usecase.ManageFork,
) *App {
	return &App{
		Config:          cfg,
		Backend:         backend,
		Progress:        progress,
		Prompter:        prompter,
		Builder:         builder,
		Coordinator:     coordinator,
		InitCoordinator: initCoordinator,
		AdoptContract:   adoptContract,
		CheckLayout:     checkLayout,
		MigrateContract: migrateContract,
		VerifySet:       verifySet,
		ShowStatus:      showStatus,
		ManageFork:      manageFork,
	}
}

// OfflineApp holds the use cases that work from local files only
type OfflineApp struct {
	Config      *config.RuntimeConfig
	Progress    usecase.ProgressSink
	Builder     *forge.Builder
	CheckLayout *usecase.CheckLayout
	ShowStatus  *usecase.ShowStatus
	ManageFork  *usecase.ManageFork
}

// NewOfflineApp creates the offline application container
func NewOfflineApp(
	cfg *config.RuntimeConfig,
	progress usecase.ProgressSink,
	builder *forge.Builder,
	checkLayout *usecase.CheckLayout,
	showStatus *usecase.ShowStatus,
	manageFork *usecase.ManageFork,
) *OfflineApp {
	return &OfflineApp{
		Config:      cfg,
		Progress:    progress,
		Builder:     builder,
		CheckLayout: checkLayout,
		ShowStatus:  showStatus,
		ManageFork:  manageFork,
	}
}
