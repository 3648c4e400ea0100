package config

// Build information, set with -ldflags "-X github.com/trebuchet-org/treb-upgrades/internal/config.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
