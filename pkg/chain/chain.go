package chain

import (
	"fmt"

	"github.com/weberc2/ecsfs/pkg/alloc"
	. "github.com/weberc2/ecsfs/pkg/types"
)

const ChainCycleErr ConstError = "allocation table chain has a cycle"

// BlockForOffset returns the data block holding `offset`, growing the chain
// one block at a time if it is too short. It returns `FATEOC` with
// `OutOfSpaceErr` if allocation fails partway.
func BlockForOffset(
	table alloc.Allocator,
	first DataBlock,
	offset Byte,
) (DataBlock, error) {
	return resolve(table, first, offset, Extend)
}

// Lookup is `BlockForOffset` without allocation.
func Lookup(
	table alloc.Allocator,
	first DataBlock,
	offset Byte,
) (DataBlock, error) {
	return resolve(table, first, offset, ReadOnly)
}

func resolve(
	table alloc.Allocator,
	first DataBlock,
	offset Byte,
	mode Mode,
) (DataBlock, error) {
	extent, _, err := NewIterator(table, first, offset, 1, mode).Next()
	if err != nil {
		return FATEOC, err
	}
	return extent.Block, nil
}

// Walk calls `fn` on each block of the chain starting at `first`, in order.
// An empty chain (`first == FATEOC`) visits nothing. A chain longer than the
// table is reported as a cycle.
func Walk(
	table *alloc.Table,
	first DataBlock,
	fn func(DataBlock) error,
) error {
	var visited int
	for b := first; b != FATEOC; visited++ {
		if visited >= table.Len() {
			return fmt.Errorf(
				"walking chain from block `%d`: %w",
				first,
				ChainCycleErr,
			)
		}
		// Next validates `b` before `fn` sees it.
		next, err := table.Next(b)
		if err != nil {
			return fmt.Errorf("walking chain from block `%d`: %w", first, err)
		}
		if err := fn(b); err != nil {
			return err
		}
		b = next
	}
	return nil
}

// Blocks returns the chain starting at `first` as a slice.
func Blocks(table *alloc.Table, first DataBlock) ([]DataBlock, error) {
	var blocks []DataBlock
	if err := Walk(table, first, func(b DataBlock) error {
		blocks = append(blocks, b)
		return nil
	}); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Len returns the number of blocks in the chain starting at `first`.
func Len(table *alloc.Table, first DataBlock) (int, error) {
	blocks, err := Blocks(table, first)
	return len(blocks), err
}

// Free releases every block in the chain starting at `first` and returns how
// many were freed. The chain is validated in full before anything is
// released, so a corrupt chain leaves the table untouched.
func Free(table *alloc.Table, first DataBlock) (int, error) {
	blocks, err := Blocks(table, first)
	if err != nil {
		return 0, fmt.Errorf("freeing chain: %w", err)
	}
	for _, b := range blocks {
		if err := table.Free(b); err != nil {
			return 0, fmt.Errorf("freeing chain: %w", err)
		}
	}
	return len(blocks), nil
}

// Truncate keeps the first `keep` blocks of the chain starting at `first` and
// frees the rest. It returns the new first block, which is `FATEOC` when
// `keep` is 0.
func Truncate(
	table *alloc.Table,
	first DataBlock,
	keep int,
) (DataBlock, error) {
	blocks, err := Blocks(table, first)
	if err != nil {
		return first, fmt.Errorf("truncating chain: %w", err)
	}
	if keep >= len(blocks) {
		return first, nil
	}
	for _, b := range blocks[keep:] {
		if err := table.Free(b); err != nil {
			return first, fmt.Errorf("truncating chain: %w", err)
		}
	}
	if keep == 0 {
		return FATEOC, nil
	}
	if err := table.Set(blocks[keep-1], FATEOC); err != nil {
		return first, fmt.Errorf("truncating chain: %w", err)
	}
	return first, nil
}
