// Package format lays out a fresh volume: superblock, zeroed allocation table
// and an empty root directory.
package format

import (
	"fmt"

	"github.com/weberc2/ecsfs/pkg/alloc"
	"github.com/weberc2/ecsfs/pkg/directory"
	"github.com/weberc2/ecsfs/pkg/disk"
	"github.com/weberc2/ecsfs/pkg/encode"
	. "github.com/weberc2/ecsfs/pkg/types"
)

const (
	// MinBlocks is the superblock, one allocation table block, the root
	// directory and one data block.
	MinBlocks  Block = 4
	MaxBlocks  Block = disk.MaxBlocks
	metaBlocks Block = 2 // superblock and root directory

	BadGeometryErr ConstError = "unsupported volume size"
)

// Geometry returns the superblock for a device of `total` blocks, using the
// fewest allocation table blocks that cover the remaining data blocks.
func Geometry(total int) (Superblock, error) {
	if total < int(MinBlocks) || total > int(MaxBlocks) {
		return Superblock{}, fmt.Errorf(
			"computing geometry for `%d` blocks: want `[%d, %d]`: %w",
			total,
			MinBlocks,
			MaxBlocks,
			BadGeometryErr,
		)
	}

	fatBlocks := 1
	for fatBlocks*int(FATEntriesPerBlock) < total-int(metaBlocks)-fatBlocks {
		fatBlocks++
	}

	sb := Superblock{
		TotalBlocks:  Block(total),
		RootDirBlock: FirstFATBlock + Block(fatBlocks),
		FATBlocks:    uint8(fatBlocks),
	}
	copy(sb.Signature[:], Signature)
	sb.DataStart = sb.RootDirBlock + 1
	sb.DataBlocks = sb.TotalBlocks - sb.DataStart
	return sb, nil
}

// Format writes an empty volume spanning all of `d`. It does not close `d`.
func Format(d disk.Disk) (Superblock, error) {
	sb, err := Geometry(int(d.BlockCount()))
	if err != nil {
		return Superblock{}, fmt.Errorf("formatting volume: %w", err)
	}

	var buf [BlockSize]byte
	encode.EncodeSuperblock(&sb, &buf)
	if err := d.WriteBlock(SuperblockBlock, &buf); err != nil {
		return Superblock{}, fmt.Errorf(
			"formatting volume: writing superblock: %w",
			err,
		)
	}

	table := alloc.New(sb.DataBlocks, sb.FATBlocks)
	if err := table.Set(0, FATEOC); err != nil {
		return Superblock{}, fmt.Errorf(
			"formatting volume: reserving data block 0: %w",
			err,
		)
	}
	if err := table.Store(d, &sb); err != nil {
		return Superblock{}, fmt.Errorf("formatting volume: %w", err)
	}

	var root directory.Root
	if err := root.Store(d, &sb); err != nil {
		return Superblock{}, fmt.Errorf("formatting volume: %w", err)
	}
	return sb, nil
}

// CreateImage creates an image file of `blocks` blocks at `path` and formats
// it.
func CreateImage(path string, blocks int) (Superblock, error) {
	if _, err := Geometry(blocks); err != nil {
		return Superblock{}, fmt.Errorf("creating image `%s`: %w", path, err)
	}
	d, err := disk.Create(path, Block(blocks))
	if err != nil {
		return Superblock{}, err
	}
	sb, err := Format(d)
	if err != nil {
		d.Close()
		return Superblock{}, fmt.Errorf("creating image `%s`: %w", path, err)
	}
	if err := d.Close(); err != nil {
		return Superblock{}, fmt.Errorf("creating image `%s`: %w", path, err)
	}
	return sb, nil
}
