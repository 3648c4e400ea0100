package models

import "github.com/ethereum/go-ethereum/common"

// AddressBookEntry is one managed contract in a network's address book
type AddressBookEntry struct {
	Proxy        common.Address `json:"proxy"`
	ContractName string         `json:"contractName"`
}

// AddressBook maps contract ids to their proxy and artifact name for one network
type AddressBook map[ContractID]AddressBookEntry
