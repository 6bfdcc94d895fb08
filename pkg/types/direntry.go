package types

const (
	// FilenameLength is the size of the on-disk name buffer, terminator
	// included.
	FilenameLength = 16
	MaxNameLength  = FilenameLength - 1

	DirEntrySize Byte = 32
	FileMaxCount      = int(BlockSize / DirEntrySize)
	OpenMaxCount      = 32
)

type DirEntry struct {
	Name  string
	Size  Byte
	First DataBlock
}

// Free reports whether the entry is unused. Only the name decides; the other
// fields of a free entry are ignored.
func (entry *DirEntry) Free() bool { return entry.Name == "" }

// Empty reports whether the file owns no data blocks.
func (entry *DirEntry) Empty() bool { return entry.First == FATEOC }
