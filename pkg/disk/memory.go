package disk

import (
	"fmt"

	. "github.com/weberc2/ecsfs/pkg/types"
)

const ClosedErr ConstError = "disk closed"

type Memory struct {
	data   []byte
	closed bool
}

func NewMemory(blocks Block) *Memory {
	return &Memory{data: make([]byte, Byte(blocks)*BlockSize)}
}

// NewMemoryFrom wraps an existing image. Trailing bytes short of a whole
// block are ignored.
func NewMemoryFrom(data []byte) *Memory {
	return &Memory{data: data[:Byte(len(data))/BlockSize*BlockSize]}
}

func (m *Memory) BlockCount() Block { return Block(Byte(len(m.data)) / BlockSize) }

func (m *Memory) ReadBlock(b Block, p *[BlockSize]byte) error {
	if err := m.check("reading", b); err != nil {
		return err
	}
	start := Byte(b) * BlockSize
	copy(p[:], m.data[start:start+BlockSize])
	return nil
}

func (m *Memory) WriteBlock(b Block, p *[BlockSize]byte) error {
	if err := m.check("writing", b); err != nil {
		return err
	}
	start := Byte(b) * BlockSize
	copy(m.data[start:start+BlockSize], p[:])
	return nil
}

func (m *Memory) Close() error {
	if m.closed {
		return fmt.Errorf("closing memory disk: %w", ClosedErr)
	}
	m.closed = true
	return nil
}

// Reopen makes a closed memory disk usable again, the way reopening an image
// file would.
func (m *Memory) Reopen() { m.closed = false }

func (m *Memory) Bytes() []byte { return m.data }

func (m *Memory) check(op string, b Block) error {
	if m.closed {
		return &Error{Op: op, Block: b, Err: ClosedErr}
	}
	return checkRange(op, b, m.BlockCount())
}
