package fs

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// AddressBook is the per-network contractId to proxy mapping at
// <data>/addresses/<network>.json
type AddressBook struct {
	path string
	mu   sync.Mutex
}

// NewAddressBook creates a new address book adapter
func NewAddressBook(cfg *config.RuntimeConfig) *AddressBook {
	return &AddressBook{path: filepath.Join(cfg.DataDir, "addresses", cfg.NetworkName()+".json")}
}

// Load returns an empty book if the file does not exist
func (b *AddressBook) Load(_ context.Context) (models.AddressBook, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

func (b *AddressBook) load() (models.AddressBook, error) {
	book := models.AddressBook{}
	if _, err := readJSON(b.path, &book); err != nil {
		return nil, err
	}
	return book, nil
}

// Put rewrites the entry for id
func (b *AddressBook) Put(_ context.Context, id models.ContractID, entry models.AddressBookEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	book, err := b.load()
	if err != nil {
		return err
	}
	book[id] = entry
	return writeJSON(b.path, book)
}

var _ usecase.AddressBookRepository = (*AddressBook)(nil)
