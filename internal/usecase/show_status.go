package usecase

import (
	"context"
	"sort"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// StatusResult is a read-only view of the coordinator registry
type StatusResult struct {
	State   *models.CoordinatorState
	Pending []*models.PendingChange
	// Adopted lists contract ids in name order
	Adopted []models.ContractID
	Book    models.AddressBook
}

// ShowStatus reads the registry without touching the chain
type ShowStatus struct {
	store CoordinatorStore
	book  AddressBookRepository
}

// NewShowStatus creates a new ShowStatus use case
func NewShowStatus(store CoordinatorStore, book AddressBookRepository) *ShowStatus {
	return &ShowStatus{store: store, book: book}
}

// Run executes the show status use case
func (uc *ShowStatus) Run(ctx context.Context) (*StatusResult, error) {
	state, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	book, err := uc.book.Load(ctx)
	if err != nil {
		return nil, err
	}

	adopted := make([]models.ContractID, 0, len(state.Proxies))
	for id := range state.Proxies {
		adopted = append(adopted, id)
	}
	sort.Slice(adopted, func(i, j int) bool { return adopted[i] < adopted[j] })

	return &StatusResult{
		State:   state,
		Pending: orderedChanges(state),
		Adopted: adopted,
		Book:    book,
	}, nil
}
