package config

// LocalConfig is the per-checkout selection stored in .treb/config.local.json.
// Its keys are read back as viper defaults.
type LocalConfig struct {
	Network     string `json:"network,omitempty"`
	Coordinator string `json:"coordinator,omitempty"`
}
