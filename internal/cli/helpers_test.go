package cli

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

func TestParseCallData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "hex", input: "0x8129fc1c", want: []byte{0x81, 0x29, 0xfc, 0x1c}},
		{name: "signature", input: "initialize()", want: []byte{0x81, 0x29, 0xfc, 0x1c}},
		{name: "signature with arguments", input: "initialize(uint256)", wantErr: true},
		{name: "bad hex", input: "0xzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCallData(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("proxy", "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xaa"), addr)

	_, err = parseAddress("proxy", "aa")
	assert.ErrorContains(t, err, "invalid proxy address")
}

func TestResolveID(t *testing.T) {
	state := models.NewCoordinatorState(common.HexToAddress("0xc0"), common.HexToAddress("0xc0"))
	state.Proxies["MerchantRegistry"] = &models.ProxyRecord{ID: "MerchantRegistry"}
	state.Proxies["RewardVault"] = &models.ProxyRecord{ID: "RewardVault"}

	id, err := resolveID(state, "RewardVault")
	require.NoError(t, err)
	assert.Equal(t, models.ContractID("RewardVault"), id)

	_, err = resolveID(state, "MerchantRegistr")
	assert.ErrorContains(t, err, "did you mean MerchantRegistry?")

	_, err = resolveID(state, "Escrow")
	assert.EqualError(t, err, `contract "Escrow" is not adopted`)
}
