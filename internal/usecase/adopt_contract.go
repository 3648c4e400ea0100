package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// AdoptContract registers a proxy with the coordinator and records it in the address book
type AdoptContract struct {
	coordinator *Coordinator
	book        AddressBookRepository
}

// NewAdoptContract creates a new adopt contract use case
func NewAdoptContract(coordinator *Coordinator, book AddressBookRepository) *AdoptContract {
	return &AdoptContract{coordinator: coordinator, book: book}
}

// AdoptInput describes the proxy to adopt
type AdoptInput struct {
	ID           models.ContractID
	Proxy        common.Address
	ProxyAdmin   common.Address
	ContractName string
}

// Run adopts the proxy and rewrites the address book entry
func (a *AdoptContract) Run(ctx context.Context, caller common.Address, input AdoptInput) (*models.ProxyRecord, error) {
	record, err := a.coordinator.Adopt(ctx, caller, input.ID, input.Proxy, input.ProxyAdmin)
	if err != nil {
		return nil, err
	}

	name := input.ContractName
	if name == "" {
		name = string(input.ID)
	}
	if err := a.book.Put(ctx, input.ID, models.AddressBookEntry{Proxy: input.Proxy, ContractName: name}); err != nil {
		return nil, fmt.Errorf("adopted %s but failed to update address book: %w", input.ID, err)
	}
	return record, nil
}
