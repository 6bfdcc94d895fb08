// Package chain maps byte ranges of a file onto the data blocks of its
// allocation table chain.
package chain

import (
	"fmt"

	"github.com/weberc2/ecsfs/pkg/alloc"
	"github.com/weberc2/ecsfs/pkg/math"
	. "github.com/weberc2/ecsfs/pkg/types"
)

const (
	OutOfSpaceErr    ConstError = "out of free data blocks"
	ChainTooShortErr ConstError = "offset is past the end of the chain"
)

type Mode uint8

const (
	// ReadOnly never modifies the table; a missing block is an error.
	ReadOnly Mode = iota

	// Extend allocates and links blocks onto the tail as needed.
	Extend
)

func (mode Mode) String() string {
	if mode == Extend {
		return "extend"
	}
	return "read-only"
}

// Extent is the part of one data block that a byte range covers.
type Extent struct {
	Block  DataBlock
	Offset Byte
	Length Byte
}

// Iterator yields the extents of `[offset, offset+count)` in order. It is
// single-use: once `Next` reports done or fails, it stays that way.
type Iterator struct {
	table alloc.Allocator
	mode  Mode

	current DataBlock
	index   Byte // position of `current` within the chain
	pos     Byte
	end     Byte
	err     error
}

// NewIterator starts an iteration at `offset` within the chain beginning at
// `first`. The chain is not touched until the first call to `Next`.
func NewIterator(
	table alloc.Allocator,
	first DataBlock,
	offset Byte,
	count Byte,
	mode Mode,
) *Iterator {
	return &Iterator{
		table:   table,
		mode:    mode,
		current: first,
		pos:     offset,
		end:     math.SaturatingAdd(offset, count, ^Byte(0)),
	}
}

// Next returns the next extent. `ok` is false once the range is exhausted or
// an error has occurred.
func (it *Iterator) Next() (extent Extent, ok bool, err error) {
	if it.err != nil {
		return Extent{}, false, it.err
	}
	if it.pos >= it.end {
		return Extent{}, false, nil
	}

	if err := it.seek(it.pos / BlockSize); err != nil {
		it.err = fmt.Errorf(
			"resolving offset `%d` (%s): %w",
			it.pos,
			it.mode,
			err,
		)
		return Extent{}, false, it.err
	}

	offset := it.pos % BlockSize
	extent = Extent{
		Block:  it.current,
		Offset: offset,
		Length: math.Min(BlockSize-offset, it.end-it.pos),
	}
	it.pos += extent.Length
	return extent, true, nil
}

// seek advances `current` to the `target`th block of the chain.
func (it *Iterator) seek(target Byte) error {
	if it.current == FATEOC {
		return fmt.Errorf("empty chain: %w", ChainTooShortErr)
	}
	for it.index < target {
		next, err := it.table.Next(it.current)
		if err != nil {
			return err
		}
		if next == FATEOC {
			if next, err = it.extend(); err != nil {
				return err
			}
		}
		it.current = next
		it.index++
	}
	return nil
}

func (it *Iterator) extend() (DataBlock, error) {
	if it.mode != Extend {
		return FATEOC, fmt.Errorf(
			"chain ends at block `%d` (index `%d`): %w",
			it.current,
			it.index,
			ChainTooShortErr,
		)
	}
	b, ok := it.table.Alloc()
	if !ok {
		return FATEOC, fmt.Errorf(
			"extending chain past block `%d`: %w",
			it.current,
			OutOfSpaceErr,
		)
	}
	if err := it.table.Link(it.current, b); err != nil {
		return FATEOC, fmt.Errorf(
			"linking block `%d` after `%d`: %w",
			b,
			it.current,
			err,
		)
	}
	return b, nil
}
