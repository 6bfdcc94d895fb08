// Package file holds the open-file table. Handles refer to root directory
// entries by index and are never persisted.
package file

import (
	"fmt"

	. "github.com/weberc2/ecsfs/pkg/types"
)

// Handle is the state of one open-file slot. `Entry` indexes the root
// directory.
type Handle struct {
	Open   bool
	Entry  int
	Name   string
	Offset Byte
}

type Table struct {
	slots [OpenMaxCount]Handle
}

// Open binds the first free slot to directory entry `entry` and returns the
// slot index as the handle number.
func (t *Table) Open(entry int, name string) (int, error) {
	for fd := range t.slots {
		if !t.slots[fd].Open {
			t.slots[fd] = Handle{Open: true, Entry: entry, Name: name}
			return fd, nil
		}
	}
	return -1, fmt.Errorf(
		"opening `%s`: all `%d` handles in use: %w",
		name,
		OpenMaxCount,
		TooManyOpenErr,
	)
}

// Get returns the open handle `fd`.
func (t *Table) Get(fd int) (*Handle, error) {
	if fd < 0 || fd >= len(t.slots) {
		return nil, fmt.Errorf(
			"handle `%d` outside `[0, %d)`: %w",
			fd,
			len(t.slots),
			InvalidHandleErr,
		)
	}
	if !t.slots[fd].Open {
		return nil, fmt.Errorf("handle `%d` is closed: %w", fd, InvalidHandleErr)
	}
	return &t.slots[fd], nil
}

func (t *Table) Close(fd int) error {
	if _, err := t.Get(fd); err != nil {
		return fmt.Errorf("closing handle: %w", err)
	}
	t.slots[fd] = Handle{}
	return nil
}

// IsOpen reports whether any handle references directory entry `entry`.
func (t *Table) IsOpen(entry int) bool {
	for i := range t.slots {
		if t.slots[i].Open && t.slots[i].Entry == entry {
			return true
		}
	}
	return false
}

func (t *Table) OpenCount() int {
	var n int
	for i := range t.slots {
		if t.slots[i].Open {
			n++
		}
	}
	return n
}
