package simchain

import (
	"context"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// ForkReader reads set storage directly, standing in for bytecode swapping
// on a local fork
type ForkReader struct {
	chain *Chain
}

// ForkReader returns a reader over the chain's raw storage
func (c *Chain) ForkReader() *ForkReader {
	return &ForkReader{chain: c}
}

func (r *ForkReader) Mode() models.ReaderMode { return models.ReaderModeFork }

func (r *ForkReader) CheckFork(context.Context) error { return nil }

func (r *ForkReader) Members(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding) ([]common.Address, error) {
	st := r.chain.StorageOf(target)
	if st == nil {
		return nil, fmt.Errorf("no proxy at %s", target.Hex())
	}
	if enc == models.SetEncodingLegacy {
		return membersOrEmpty(st.Legacy[loc.StorageSlot()]), nil
	}
	return membersOrEmpty(st.Current[loc.StorageSlot()]), nil
}

func (r *ForkReader) Contains(ctx context.Context, run *models.RunContext, target common.Address, loc models.SetLocation, enc models.SetEncoding, member common.Address) (bool, error) {
	members, err := r.Members(ctx, run, target, loc, enc)
	if err != nil {
		return false, err
	}
	return slices.Contains(members, member), nil
}
