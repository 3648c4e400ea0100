package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
)

// envVarPattern matches ${VAR_NAME} references in TOML values
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// GenerateEnvVarName returns the conventional env var for a network's RPC URL.
// Examples: sepolia -> SEPOLIA_RPC_URL, celo-sepolia -> CELO_SEPOLIA_RPC_URL
func GenerateEnvVarName(networkName string) string {
	name := strings.ToUpper(networkName)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_RPC_URL"
}

// ExpandRPCURL expands ${VAR} references, failing on unset variables
func ExpandRPCURL(raw string) (string, error) {
	var missing []string
	expanded := envVarPattern.ReplaceAllStringFunc(raw, func(ref string) string {
		name := envVarPattern.FindStringSubmatch(ref)[1]
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			missing = append(missing, name)
		}
		return val
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable %s is not set (add it to .env)", strings.Join(missing, ", "))
	}
	return expanded, nil
}

// ResolveNetwork maps a [rpc_endpoints] name, or a literal RPC URL, to a network
func ResolveNetwork(foundry *config.FoundryConfig, name string) (*config.Network, error) {
	if isURL(name) {
		return &config.Network{Name: "custom", RPCURL: name}, nil
	}

	var raw string
	var ok bool
	if foundry != nil {
		raw, ok = foundry.RpcEndpoints[name]
	}
	if !ok {
		return nil, fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints] (expected e.g. %s = \"${%s}\")",
			name, name, GenerateEnvVarName(name))
	}
	url, err := ExpandRPCURL(raw)
	if err != nil {
		return nil, err
	}
	return &config.Network{Name: name, RPCURL: url}, nil
}

func isURL(s string) bool {
	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
