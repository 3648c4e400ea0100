package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-upgrades/internal/app"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", name, value)
	}
	return common.HexToAddress(value), nil
}

// parseCallData accepts 0x-prefixed calldata or a bare function signature
// without arguments such as "initialize()"
func parseCallData(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "0x") {
		data, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("invalid call data %q: %w", value, err)
		}
		return data, nil
	}
	if strings.HasSuffix(value, "()") && !strings.ContainsAny(value, " ,") {
		return crypto.Keccak256([]byte(value))[:4], nil
	}
	return nil, fmt.Errorf("invalid call data %q: expected 0x-prefixed hex or a signature without arguments", value)
}

// resolveID checks that id is adopted and suggests close matches otherwise
func resolveID(state *models.CoordinatorState, id string) (models.ContractID, error) {
	if _, ok := state.Proxies[models.ContractID(id)]; ok {
		return models.ContractID(id), nil
	}
	suggestions := interactive.Suggest(id, lo.Keys(state.Proxies), 3)
	if len(suggestions) == 0 {
		return "", fmt.Errorf("contract %q is not adopted", id)
	}
	names := lo.Map(suggestions, func(s models.ContractID, _ int) string { return string(s) })
	return "", fmt.Errorf("contract %q is not adopted, did you mean %s?", id, strings.Join(names, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// contractArg resolves the contract id argument, prompting for one when
// args is empty
func contractArg(cmd *cobra.Command, a *app.App, args []string) (models.ContractID, error) {
	state, err := a.Coordinator.State(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(args) > 0 {
		return resolveID(state, args[0])
	}
	ids := lo.Keys(state.Proxies)
	slices.Sort(ids)
	return a.Prompter.SelectContract(ids, "Select contract")
}

func useColor() bool {
	return !color.NoColor
}
