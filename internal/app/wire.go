//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters"
	"github.com/trebuchet-org/treb-upgrades/internal/config"
	"github.com/trebuchet-org/treb-upgrades/internal/logging"
	"github.com/trebuchet-org/treb-upgrades/internal/retry"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// UseCaseSet provides the coordination and migration use cases
var UseCaseSet = wire.NewSet(
	retry.ProvideExecutor,
	usecase.NewCheckLayout,
	usecase.ProvideCommitGuards,
	usecase.NewCoordinator,
	usecase.NewInitCoordinator,
	usecase.NewAdoptContract,
	usecase.NewRepointStrategy,
	usecase.NewChunkedSetStrategy,
	usecase.NewStrategyRegistry,
	usecase.NewMigrateContract,
	usecase.NewVerifySet,
	usecase.NewShowStatus,
	usecase.NewManageFork,
)

// InitApp creates a fully wired App instance connected to the configured network
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,
		adapters.AllAdapters,
		UseCaseSet,
		NewApp,
	)
	return nil, nil, nil
}

// InitOfflineApp creates the use cases that need no network connection
func InitOfflineApp(v *viper.Viper) (*OfflineApp, error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,
		adapters.OfflineAdapters,
		usecase.NewCheckLayout,
		usecase.NewShowStatus,
		usecase.NewManageFork,
		NewOfflineApp,
	)
	return nil, nil
}
