// Package alloc holds the file allocation table: one entry per data block,
// recording whether the block is free, the last block of its chain, or linked
// to a next block.
package alloc

import (
	"fmt"

	. "github.com/weberc2/ecsfs/pkg/types"
)

const (
	ChainCorruptErr ConstError = "allocation table chain is corrupt"
)

// Table is the resident copy of the allocation table. Entries past
// `DataBlocks` are padding; they are kept so flushing writes the table back
// exactly as it was read.
type Table struct {
	entries []DataBlock
	count   DataBlock
}

// New returns an all-free table for `dataBlocks` data blocks spread over
// `fatBlocks` blocks.
func New(dataBlocks Block, fatBlocks uint8) *Table {
	size := int(fatBlocks) * int(FATEntriesPerBlock)
	if size < int(dataBlocks) {
		size = int(dataBlocks)
	}
	return &Table{
		entries: make([]DataBlock, size),
		count:   DataBlock(dataBlocks),
	}
}

// Len returns the number of data blocks the table tracks.
func (t *Table) Len() int { return int(t.count) }

// Get returns the raw entry for `b`.
func (t *Table) Get(b DataBlock) (DataBlock, error) {
	if err := t.check(b); err != nil {
		return FATFree, err
	}
	return t.entries[b], nil
}

// Set overwrites the entry for `b`. It is meant for formatting and repair;
// chains should be built with `Alloc` and `Link`.
func (t *Table) Set(b DataBlock, value DataBlock) error {
	if err := t.check(b); err != nil {
		return err
	}
	t.entries[b] = value
	return nil
}

// Alloc claims the first free data block and marks it as the end of a chain.
// Data block 0 is never handed out: a next-pointer of 0 reads as "free". On
// failure it returns `FATEOC, false`.
func (t *Table) Alloc() (DataBlock, bool) {
	for b := DataBlock(1); b < t.count; b++ {
		if t.entries[b] == FATFree {
			t.entries[b] = FATEOC
			return b, true
		}
	}
	return FATEOC, false
}

// Next returns the block after `b` in its chain, or `FATEOC` if `b` is the
// last. A free or out-of-range successor is corruption.
func (t *Table) Next(b DataBlock) (DataBlock, error) {
	if err := t.check(b); err != nil {
		return FATEOC, err
	}
	next := t.entries[b]
	if next == FATEOC {
		return FATEOC, nil
	}
	if next == FATFree {
		return FATEOC, fmt.Errorf(
			"following data block `%d`: block is free: %w",
			b,
			ChainCorruptErr,
		)
	}
	if next >= t.count {
		return FATEOC, fmt.Errorf(
			"following data block `%d`: successor `%d` is past the last "+
				"data block `%d`: %w",
			b,
			next,
			t.count-1,
			ChainCorruptErr,
		)
	}
	return next, nil
}

// Link points the tail `prev` at `next`.
func (t *Table) Link(prev, next DataBlock) error {
	if err := t.check(prev); err != nil {
		return err
	}
	if err := t.check(next); err != nil {
		return err
	}
	t.entries[prev] = next
	return nil
}

// Free releases a single block.
func (t *Table) Free(b DataBlock) error {
	if err := t.check(b); err != nil {
		return err
	}
	t.entries[b] = FATFree
	return nil
}

// FreeCount returns the number of blocks `Alloc` could still hand out. Entry 0
// is never counted, whatever it holds.
func (t *Table) FreeCount() int {
	var n int
	for b := DataBlock(1); b < t.count; b++ {
		if t.entries[b] == FATFree {
			n++
		}
	}
	return n
}

func (t *Table) check(b DataBlock) error {
	if b >= t.count {
		return fmt.Errorf(
			"data block `%d` is past the last data block `%d`: %w",
			b,
			int(t.count)-1,
			ChainCorruptErr,
		)
	}
	return nil
}
