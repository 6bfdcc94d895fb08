// Package filesystem ties the superblock, allocation table, root directory and
// open-file table of one mounted volume together behind the operation
// surface: mount, unmount, info, create, delete, list, open, close, stat,
// seek, read and write.
//
// A `*Volume` is not safe for concurrent use.
package filesystem

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/weberc2/ecsfs/pkg/alloc"
	"github.com/weberc2/ecsfs/pkg/directory"
	"github.com/weberc2/ecsfs/pkg/disk"
	"github.com/weberc2/ecsfs/pkg/encode"
	"github.com/weberc2/ecsfs/pkg/file"
	. "github.com/weberc2/ecsfs/pkg/types"
)

// Volume is a mounted file system. Every method fails with `NotMountedErr`
// once `Unmount` has succeeded.
type Volume struct {
	state *mounted
}

type mounted struct {
	disk  disk.Disk
	sb    Superblock
	fat   *alloc.Table
	root  *directory.Root
	files file.Table
}

// Info summarizes the volume geometry and free space.
type Info struct {
	TotalBlocks  Block
	FATBlocks    uint8
	RootDirBlock Block
	DataStart    Block
	DataBlocks   Block
	FATFree      int
	RootDirFree  int
}

// Mount validates the volume on `d` and loads its metadata. The volume takes
// ownership of `d`; it is closed if mounting fails.
func Mount(d disk.Disk) (*Volume, error) {
	state, err := load(d)
	if err != nil {
		if closeErr := d.Close(); closeErr != nil {
			log.Warnf("closing disk after failed mount: %v", closeErr)
		}
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	log.WithFields(log.Fields{
		"blocks":      state.sb.TotalBlocks,
		"data_blocks": state.sb.DataBlocks,
		"fat_blocks":  state.sb.FATBlocks,
	}).Debug("mounted volume")
	return &Volume{state: state}, nil
}

// MountImage opens the image file at `path` and mounts it.
func MountImage(path string) (*Volume, error) {
	d, err := disk.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	return Mount(d)
}

func load(d disk.Disk) (*mounted, error) {
	var buf [BlockSize]byte
	if err := d.ReadBlock(SuperblockBlock, &buf); err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	state := mounted{disk: d}
	encode.DecodeSuperblock(&state.sb, &buf)
	if err := state.sb.Validate(d.BlockCount()); err != nil {
		return nil, err
	}

	fat, err := alloc.Load(d, &state.sb)
	if err != nil {
		return nil, err
	}
	state.fat = fat

	root, err := directory.Load(d, &state.sb)
	if err != nil {
		return nil, err
	}
	state.root = root
	return &state, nil
}

// Unmount writes the superblock, every allocation table block and the root
// directory back and closes the disk. Open handles are discarded. If any
// write fails the volume stays mounted so the caller may retry.
func (v *Volume) Unmount() error {
	m, err := v.mounted()
	if err != nil {
		return fmt.Errorf("unmounting volume: %w", err)
	}

	if err := m.flush(); err != nil {
		return fmt.Errorf("unmounting volume: %w", err)
	}
	if err := m.disk.Close(); err != nil {
		return fmt.Errorf("unmounting volume: %w", err)
	}

	if n := m.files.OpenCount(); n > 0 {
		log.Debugf("unmounting with `%d` open handles", n)
	}
	v.state = nil
	log.Debug("unmounted volume")
	return nil
}

func (m *mounted) flush() error {
	var buf [BlockSize]byte
	encode.EncodeSuperblock(&m.sb, &buf)
	if err := m.disk.WriteBlock(SuperblockBlock, &buf); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	if err := m.fat.Store(m.disk, &m.sb); err != nil {
		return err
	}
	return m.root.Store(m.disk, &m.sb)
}

func (v *Volume) Info() (Info, error) {
	m, err := v.mounted()
	if err != nil {
		return Info{}, fmt.Errorf("fetching volume info: %w", err)
	}
	return Info{
		TotalBlocks:  m.sb.TotalBlocks,
		FATBlocks:    m.sb.FATBlocks,
		RootDirBlock: m.sb.RootDirBlock,
		DataStart:    m.sb.DataStart,
		DataBlocks:   m.sb.DataBlocks,
		FATFree:      m.fat.FreeCount(),
		RootDirFree:  m.root.FreeCount(),
	}, nil
}

func (v *Volume) mounted() (*mounted, error) {
	if v == nil || v.state == nil {
		return nil, NotMountedErr
	}
	return v.state, nil
}
