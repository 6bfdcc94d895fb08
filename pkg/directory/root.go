// Package directory implements the flat root directory: a fixed array of
// entries stored in a single block.
package directory

import (
	"fmt"

	"github.com/weberc2/ecsfs/pkg/disk"
	"github.com/weberc2/ecsfs/pkg/encode"
	. "github.com/weberc2/ecsfs/pkg/types"
)

type Root struct {
	Entries [FileMaxCount]DirEntry
}

type FileInfo struct {
	Index int
	Name  string
	Size  Byte
	First DataBlock
}

func Load(d disk.Disk, sb *Superblock) (*Root, error) {
	var buf [BlockSize]byte
	if err := d.ReadBlock(sb.RootDirBlock, &buf); err != nil {
		return nil, fmt.Errorf(
			"loading root directory from block `%d`: %w",
			sb.RootDirBlock,
			err,
		)
	}
	var root Root
	encode.DecodeRootDir(&root.Entries, &buf)
	return &root, nil
}

func (root *Root) Store(d disk.Disk, sb *Superblock) error {
	var buf [BlockSize]byte
	encode.EncodeRootDir(&root.Entries, &buf)
	if err := d.WriteBlock(sb.RootDirBlock, &buf); err != nil {
		return fmt.Errorf(
			"storing root directory to block `%d`: %w",
			sb.RootDirBlock,
			err,
		)
	}
	return nil
}

// Find returns the index of the entry named `name`.
func (root *Root) Find(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for i := range root.Entries {
		if root.Entries[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// Entry dereferences an index previously returned by `Find` or `Create`.
func (root *Root) Entry(i int) (*DirEntry, error) {
	if i < 0 || i >= len(root.Entries) {
		return nil, fmt.Errorf(
			"fetching dir entry `%d` of `%d`: %w",
			i,
			len(root.Entries),
			OutOfRangeErr,
		)
	}
	if root.Entries[i].Free() {
		return nil, fmt.Errorf("fetching dir entry `%d`: %w", i, NotFoundErr)
	}
	return &root.Entries[i], nil
}

// Create installs an empty file in the first free entry. It never allocates a
// data block.
func (root *Root) Create(name string) (int, error) {
	if err := ValidateName(name); err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	if _, found := root.Find(name); found {
		return 0, fmt.Errorf("creating file `%s`: %w", name, AlreadyExistsErr)
	}
	for i := range root.Entries {
		if root.Entries[i].Free() {
			root.Entries[i] = DirEntry{Name: name, First: FATEOC}
			return i, nil
		}
	}
	return 0, fmt.Errorf("creating file `%s`: %w", name, DirectoryFullErr)
}

// Clear resets entry `i` to the all-zero free state.
func (root *Root) Clear(i int) {
	root.Entries[i] = DirEntry{}
}

func (root *Root) List() []FileInfo {
	var infos []FileInfo
	for i := range root.Entries {
		if entry := &root.Entries[i]; !entry.Free() {
			infos = append(infos, FileInfo{
				Index: i,
				Name:  entry.Name,
				Size:  entry.Size,
				First: entry.First,
			})
		}
	}
	return infos
}

func (root *Root) FreeCount() int {
	var n int
	for i := range root.Entries {
		if root.Entries[i].Free() {
			n++
		}
	}
	return n
}
