package config

// FoundryConfig is the subset of foundry.toml the upgrade tooling reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig `toml:"profile"`
	RpcEndpoints map[string]string        `toml:"rpc_endpoints"`
}

// ProfileConfig is a foundry profile
type ProfileConfig struct {
	SrcPath string `toml:"src,omitempty"`
	OutPath string `toml:"out,omitempty"`
}

// OutDir returns the artifact directory of the profile, defaulting to "out"
func (f *FoundryConfig) OutDir(profile string) string {
	if f != nil {
		if p, ok := f.Profile[profile]; ok && p.OutPath != "" {
			return p.OutPath
		}
		if p, ok := f.Profile["default"]; ok && p.OutPath != "" {
			return p.OutPath
		}
	}
	return "out"
}
