package models

import "github.com/ethereum/go-ethereum/common"

// Call is a single contract call inside a batch
type Call struct {
	To   common.Address
	Data []byte
	// ContractID names the managed contract the call belongs to, if any
	ContractID ContractID
	// Description is a human readable summary used in logs and errors
	Description string
}

// BatchReceipt describes a mined batch transaction
type BatchReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}
