package encode

import (
	. "github.com/weberc2/ecsfs/pkg/types"
)

const (
	superblockSignatureStart    Byte = 0
	superblockTotalBlocksStart  Byte = superblockSignatureStart + Byte(SignatureLength)
	superblockRootDirBlockStart Byte = superblockTotalBlocksStart + 2
	superblockDataStartStart    Byte = superblockRootDirBlockStart + 2
	superblockDataBlocksStart   Byte = superblockDataStartStart + 2
	superblockFATBlocksStart    Byte = superblockDataBlocksStart + 2

	// SuperblockUsed is the number of meaningful superblock bytes; the rest
	// of the block is zero.
	SuperblockUsed Byte = superblockFATBlocksStart + 1
)

func EncodeSuperblock(sb *Superblock, p *[BlockSize]byte) {
	zero(p[:])
	copy(p[superblockSignatureStart:superblockTotalBlocksStart], sb.Signature[:])
	putBlock(p[:], superblockTotalBlocksStart, sb.TotalBlocks)
	putBlock(p[:], superblockRootDirBlockStart, sb.RootDirBlock)
	putBlock(p[:], superblockDataStartStart, sb.DataStart)
	putBlock(p[:], superblockDataBlocksStart, sb.DataBlocks)
	putU8(p[:], superblockFATBlocksStart, sb.FATBlocks)
}

func DecodeSuperblock(sb *Superblock, p *[BlockSize]byte) {
	copy(sb.Signature[:], p[superblockSignatureStart:superblockTotalBlocksStart])
	sb.TotalBlocks = getBlock(p[:], superblockTotalBlocksStart)
	sb.RootDirBlock = getBlock(p[:], superblockRootDirBlockStart)
	sb.DataStart = getBlock(p[:], superblockDataStartStart)
	sb.DataBlocks = getBlock(p[:], superblockDataBlocksStart)
	sb.FATBlocks = getU8(p[:], superblockFATBlocksStart)
}
