package models

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// ContractID is the stable logical name of a managed proxy
type ContractID string

// ProxyRecord is a proxy adopted by the coordinator
type ProxyRecord struct {
	ID             ContractID     `json:"id"`
	Proxy          common.Address `json:"proxy"`
	ProxyAdmin     common.Address `json:"proxyAdmin"`
	Implementation common.Address `json:"implementation"`
}

// PendingChange is a staged mutation that has not been committed yet.
// At least one of NewImplementation and CallData is set.
type PendingChange struct {
	ID                ContractID      `json:"id"`
	NewImplementation *common.Address `json:"newImplementation,omitempty"`
	CallData          []byte          `json:"callData,omitempty"`
}

// HasUpgrade reports whether the change repoints the implementation
func (c *PendingChange) HasUpgrade() bool {
	return c.NewImplementation != nil
}

// HasCall reports whether the change carries call data
func (c *PendingChange) HasCall() bool {
	return len(c.CallData) > 0
}

// Kind returns a short label for display
func (c *PendingChange) Kind() string {
	switch {
	case c.HasUpgrade() && c.HasCall():
		return "upgradeAndCall"
	case c.HasUpgrade():
		return "upgrade"
	default:
		return "call"
	}
}

// CoordinatorState is the persisted registry of the upgrade coordinator
type CoordinatorState struct {
	// Address is the on-chain account that owns the adopted proxy admins and contracts
	Address common.Address `json:"address"`
	Owner   common.Address `json:"owner"`

	Proposers []common.Address `json:"proposers"`

	Proxies      map[ContractID]*ProxyRecord   `json:"proxies"`
	Pending      map[ContractID]*PendingChange `json:"pending"`
	PendingOrder []ContractID                  `json:"pendingOrder"`

	Nonce           uint64          `json:"nonce"`
	ProtocolVersion string          `json:"protocolVersion"`
	VersionRegistry *common.Address `json:"versionRegistry,omitempty"`
}

// NewCoordinatorState creates an empty state owned by owner
func NewCoordinatorState(address, owner common.Address) *CoordinatorState {
	return &CoordinatorState{
		Address:      address,
		Owner:        owner,
		Proposers:    []common.Address{},
		Proxies:      make(map[ContractID]*ProxyRecord),
		Pending:      make(map[ContractID]*PendingChange),
		PendingOrder: []ContractID{},
	}
}

// IsProposer reports whether addr may stage and withdraw changes
func (s *CoordinatorState) IsProposer(addr common.Address) bool {
	return slices.Contains(s.Proposers, addr)
}

// Clone returns a deep copy so callers can mutate without touching the original
func (s *CoordinatorState) Clone() *CoordinatorState {
	out := *s
	out.Proposers = slices.Clone(s.Proposers)
	out.PendingOrder = slices.Clone(s.PendingOrder)
	out.Proxies = make(map[ContractID]*ProxyRecord, len(s.Proxies))
	for id, rec := range s.Proxies {
		r := *rec
		out.Proxies[id] = &r
	}
	out.Pending = make(map[ContractID]*PendingChange, len(s.Pending))
	for id, change := range s.Pending {
		c := *change
		if change.NewImplementation != nil {
			impl := *change.NewImplementation
			c.NewImplementation = &impl
		}
		c.CallData = slices.Clone(change.CallData)
		out.Pending[id] = &c
	}
	if s.VersionRegistry != nil {
		reg := *s.VersionRegistry
		out.VersionRegistry = &reg
	}
	return &out
}
