package encode

import (
	"fmt"

	. "github.com/weberc2/ecsfs/pkg/types"
)

// EncodeFATBlock packs up to `FATEntriesPerBlock` entries into `p`. Any tail
// of the block past `entries` is zeroed.
func EncodeFATBlock(entries []DataBlock, p *[BlockSize]byte) {
	checkFATEntries(len(entries))
	zero(p[:])
	for i, entry := range entries {
		putDataBlock(p[:], Byte(i)*FATEntrySize, entry)
	}
}

// DecodeFATBlock fills `entries` from the leading entries of `p`.
func DecodeFATBlock(entries []DataBlock, p *[BlockSize]byte) {
	checkFATEntries(len(entries))
	for i := range entries {
		entries[i] = getDataBlock(p[:], Byte(i)*FATEntrySize)
	}
}

func checkFATEntries(n int) {
	if n > int(FATEntriesPerBlock) {
		panic(fmt.Sprintf(
			"`%d` allocation table entries do not fit in one block",
			n,
		))
	}
}
