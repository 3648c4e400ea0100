package models

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLocation_StorageSlot(t *testing.T) {
	slot := common.HexToHash("0x05")
	assert.Equal(t, slot, SetLocation{Slot: slot}.StorageSlot())

	key := common.BytesToHash(common.HexToAddress("0xbeef").Bytes())
	want := crypto.Keccak256Hash(key.Bytes(), slot.Bytes())
	assert.Equal(t, want, SetLocation{Slot: slot, MappingKey: &key}.StorageSlot())
}

func TestNewRunContext(t *testing.T) {
	a, b := NewRunContext("C1"), NewRunContext("C1")
	assert.NotEqual(t, a.ID, b.ID)

	addr := common.HexToAddress("0x7a")
	a.Codes.Put(addr, []byte{0x01})
	_, ok := b.Codes.Get(addr)
	assert.False(t, ok, "runs do not share captured bytecode")

	code, ok := a.Codes.Get(addr)
	require.True(t, ok)
	assert.Equal(t, []byte{0x01}, code)
}

func TestMigrationProgress_ProcessedSet(t *testing.T) {
	a, b := common.HexToAddress("0xa"), common.HexToAddress("0xb")
	p := &MigrationProgress{Processed: []common.Address{a, b}}
	set := p.ProcessedSet()
	assert.Len(t, set, 2)
	assert.Contains(t, set, a)
	assert.Contains(t, set, b)
}
