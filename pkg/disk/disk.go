// Package disk provides the fixed-size block devices a volume lives on.
package disk

import (
	"fmt"

	. "github.com/weberc2/ecsfs/pkg/types"
)

// Disk is a device addressed by block index. Every transfer moves exactly one
// block.
type Disk interface {
	ReadBlock(b Block, p *[BlockSize]byte) error
	WriteBlock(b Block, p *[BlockSize]byte) error
	BlockCount() Block
	Close() error
}

var (
	_ Disk = (*File)(nil)
	_ Disk = (*Memory)(nil)
)

// MaxBlocks is the largest device a 16-bit superblock can describe.
const MaxBlocks = 0xFFFF

// Error is a failed block transfer. It matches `IOFailureErr` under
// `errors.Is` and unwraps to the underlying cause.
type Error struct {
	Op    string
	Block Block
	Err   error
}

func (err *Error) Error() string {
	return fmt.Sprintf("%s block `%d`: %v", err.Op, err.Block, err.Err)
}

func (err *Error) Unwrap() error { return err.Err }

func (err *Error) Is(target error) bool { return target == IOFailureErr }

func checkRange(op string, b Block, count Block) error {
	if b >= count {
		cause := fmt.Errorf("device has `%d` blocks: %w", count, OutOfRangeErr)
		return &Error{Op: op, Block: b, Err: cause}
	}
	return nil
}
