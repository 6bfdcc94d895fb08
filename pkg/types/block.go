package types

// Block is the absolute index of a block on the device.
type Block uint16

// DataBlock is an index into the data region. It is the unit stored in the
// allocation table, so `DataBlock(0)` is the first data block rather than the
// superblock.
type DataBlock uint16

// Byte is a byte count or offset. File sizes are 32 bits on disk.
type Byte uint32

const (
	BlockSize Byte = 4096

	// FATEOC marks the last block of a chain. It is also the first-block
	// pointer of an empty file.
	FATEOC DataBlock = 0xFFFF

	// FATFree marks an unallocated data block.
	FATFree DataBlock = 0

	// FATEntrySize is the on-disk size of one allocation table entry.
	FATEntrySize       Byte = 2
	FATEntriesPerBlock      = BlockSize / FATEntrySize
)

// ConstError lets sentinel errors be declared as constants.
type ConstError string

func (err ConstError) Error() string { return string(err) }
