package encode

import (
	"bytes"
	"fmt"

	. "github.com/weberc2/ecsfs/pkg/types"
)

const (
	dirEntryNameStart  Byte = 0
	dirEntrySizeStart  Byte = dirEntryNameStart + FilenameLength
	dirEntryFirstStart Byte = dirEntrySizeStart + 4
)

// EncodeDirEntry writes `entry` into `p`, which must be `DirEntrySize` bytes.
// A name filling the whole name field is written without a NUL, the same way
// `DecodeDirEntry` reads it. Reserved bytes are zeroed.
func EncodeDirEntry(entry *DirEntry, p []byte) {
	if Byte(len(p)) != DirEntrySize {
		panic(fmt.Sprintf(
			"encoding dir entry into `%d` bytes; wanted `%d`",
			len(p),
			DirEntrySize,
		))
	}
	zero(p)
	copy(p[dirEntryNameStart:dirEntrySizeStart], entry.Name)
	putU32(p, dirEntrySizeStart, uint32(entry.Size))
	putDataBlock(p, dirEntryFirstStart, entry.First)
}

// DecodeDirEntry reads an entry from `p`. The name runs up to the first NUL
// in the name buffer.
func DecodeDirEntry(entry *DirEntry, p []byte) {
	name := p[dirEntryNameStart:dirEntrySizeStart]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	entry.Name = string(name)
	entry.Size = Byte(getU32(p, dirEntrySizeStart))
	entry.First = getDataBlock(p, dirEntryFirstStart)
}

func EncodeRootDir(entries *[FileMaxCount]DirEntry, p *[BlockSize]byte) {
	for i := range entries {
		start := Byte(i) * DirEntrySize
		EncodeDirEntry(&entries[i], p[start:start+DirEntrySize])
	}
}

func DecodeRootDir(entries *[FileMaxCount]DirEntry, p *[BlockSize]byte) {
	for i := range entries {
		start := Byte(i) * DirEntrySize
		DecodeDirEntry(&entries[i], p[start:start+DirEntrySize])
	}
}
