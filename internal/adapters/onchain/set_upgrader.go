package onchain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// SetUpgrader encodes chunk migration calls. Calls are sent to the proxy
// while it points at the upgrader implementation.
type SetUpgrader struct {
	upgrader *bindings.SetUpgrader
}

// NewSetUpgrader creates a new set upgrader adapter
func NewSetUpgrader() *SetUpgrader {
	return &SetUpgrader{upgrader: bindings.NewSetUpgrader()}
}

func (s *SetUpgrader) EncodeUpgradeChunk(proxy common.Address, keys []common.Address) (models.Call, error) {
	data, err := s.upgrader.TryPackUpgradeChunk(keys)
	if err != nil {
		return models.Call{}, err
	}
	return models.Call{To: proxy, Data: data, Description: fmt.Sprintf("upgradeChunk(%d keys)", len(keys))}, nil
}

func (s *SetUpgrader) EncodeUpgradeFinished(proxy common.Address) (models.Call, error) {
	data, err := s.upgrader.TryPackUpgradeFinished()
	if err != nil {
		return models.Call{}, err
	}
	return models.Call{To: proxy, Data: data, Description: "upgradeFinished"}, nil
}

var _ usecase.SetUpgrader = (*SetUpgrader)(nil)
