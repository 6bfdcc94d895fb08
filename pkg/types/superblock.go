package types

import "fmt"

const (
	// Signature identifies a formatted volume. It is not NUL-terminated
	// on disk.
	Signature       = "ECS150FS"
	SignatureLength = len(Signature)

	SuperblockBlock Block = 0
	FirstFATBlock   Block = SuperblockBlock + 1
)

type Superblock struct {
	Signature    [SignatureLength]byte
	TotalBlocks  Block
	RootDirBlock Block
	DataStart    Block
	DataBlocks   Block
	FATBlocks    uint8
}

// Physical converts a data-relative block index to a device block index.
func (sb *Superblock) Physical(b DataBlock) Block {
	return sb.DataStart + Block(b)
}

// FATBlock returns the device block that holds the `i`th allocation table
// block.
func (sb *Superblock) FATBlock(i int) Block {
	return FirstFATBlock + Block(i)
}

// Validate checks the superblock against itself and against the number of
// blocks the device reports.
func (sb *Superblock) Validate(deviceBlocks Block) error {
	if string(sb.Signature[:]) != Signature {
		return fmt.Errorf(
			"validating superblock: bad signature `%q`: %w",
			sb.Signature[:],
			InvalidVolumeErr,
		)
	}
	if sb.TotalBlocks != deviceBlocks {
		return fmt.Errorf(
			"validating superblock: superblock declares `%d` blocks; "+
				"device has `%d`: %w",
			sb.TotalBlocks,
			deviceBlocks,
			InvalidVolumeErr,
		)
	}
	if sb.RootDirBlock != Block(sb.FATBlocks)+FirstFATBlock {
		return fmt.Errorf(
			"validating superblock: root directory at block `%d` does not "+
				"follow `%d` allocation table blocks: %w",
			sb.RootDirBlock,
			sb.FATBlocks,
			InvalidVolumeErr,
		)
	}
	if sb.DataStart != sb.RootDirBlock+1 {
		return fmt.Errorf(
			"validating superblock: data region at block `%d` does not "+
				"follow root directory at block `%d`: %w",
			sb.DataStart,
			sb.RootDirBlock,
			InvalidVolumeErr,
		)
	}
	if uint32(sb.DataStart)+uint32(sb.DataBlocks) != uint32(sb.TotalBlocks) {
		return fmt.Errorf(
			"validating superblock: `%d` data blocks from block `%d` do "+
				"not end at block `%d`: %w",
			sb.DataBlocks,
			sb.DataStart,
			sb.TotalBlocks,
			InvalidVolumeErr,
		)
	}
	if want := FATBlocksFor(sb.DataBlocks); want > int(sb.FATBlocks) {
		return fmt.Errorf(
			"validating superblock: `%d` data blocks need `%d` allocation "+
				"table blocks; found only `%d`: %w",
			sb.DataBlocks,
			want,
			sb.FATBlocks,
			InvalidVolumeErr,
		)
	}
	return nil
}

// FATBlocksFor returns how many blocks an allocation table with one entry per
// data block occupies.
func FATBlocksFor(dataBlocks Block) int {
	entries := int(dataBlocks)
	perBlock := int(FATEntriesPerBlock)
	return (entries + perBlock - 1) / perBlock
}
