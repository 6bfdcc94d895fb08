package alloc

import . "github.com/weberc2/ecsfs/pkg/types"

// Allocator is the slice of the table that chain traversal needs.
type Allocator interface {
	Alloc() (DataBlock, bool)
	Next(DataBlock) (DataBlock, error)
	Link(prev, next DataBlock) error
}

var _ Allocator = (*Table)(nil)
