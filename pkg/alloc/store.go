package alloc

import (
	"fmt"

	"github.com/weberc2/ecsfs/pkg/disk"
	"github.com/weberc2/ecsfs/pkg/encode"
	. "github.com/weberc2/ecsfs/pkg/types"
)

// Load reads the table from the blocks that follow the superblock.
func Load(d disk.Disk, sb *Superblock) (*Table, error) {
	t := New(sb.DataBlocks, sb.FATBlocks)
	var buf [BlockSize]byte
	for i := 0; i < int(sb.FATBlocks); i++ {
		if err := d.ReadBlock(sb.FATBlock(i), &buf); err != nil {
			return nil, fmt.Errorf(
				"loading allocation table block `%d` of `%d`: %w",
				i,
				sb.FATBlocks,
				err,
			)
		}
		encode.DecodeFATBlock(t.block(i), &buf)
	}
	return t, nil
}

// Store writes every table block back to the position it was read from.
func (t *Table) Store(d disk.Disk, sb *Superblock) error {
	var buf [BlockSize]byte
	for i := 0; i < int(sb.FATBlocks); i++ {
		encode.EncodeFATBlock(t.block(i), &buf)
		if err := d.WriteBlock(sb.FATBlock(i), &buf); err != nil {
			return fmt.Errorf(
				"storing allocation table block `%d` of `%d`: %w",
				i,
				sb.FATBlocks,
				err,
			)
		}
	}
	return nil
}

func (t *Table) block(i int) []DataBlock {
	start := i * int(FATEntriesPerBlock)
	end := start + int(FATEntriesPerBlock)
	if end > len(t.entries) {
		end = len(t.entries)
	}
	if start > end {
		start = end
	}
	return t.entries[start:end]
}
