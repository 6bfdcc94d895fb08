package filesystem

import (
	"fmt"

	"github.com/weberc2/ecsfs/pkg/directory"
	"github.com/weberc2/ecsfs/pkg/file"
	. "github.com/weberc2/ecsfs/pkg/types"
)

// Open returns a handle positioned at offset 0 of `name`.
func (v *Volume) Open(name string) (int, error) {
	m, err := v.mounted()
	if err != nil {
		return -1, fmt.Errorf("opening file `%s`: %w", name, err)
	}
	if err := directory.ValidateName(name); err != nil {
		return -1, fmt.Errorf("opening file: %w", err)
	}
	i, found := m.root.Find(name)
	if !found {
		return -1, fmt.Errorf("opening file `%s`: %w", name, NotFoundErr)
	}
	return m.files.Open(i, name)
}

func (v *Volume) Close(fd int) error {
	m, err := v.mounted()
	if err != nil {
		return fmt.Errorf("closing handle `%d`: %w", fd, err)
	}
	return m.files.Close(fd)
}

// Stat returns the size of the file behind `fd`.
func (v *Volume) Stat(fd int) (Byte, error) {
	_, _, entry, err := v.handle(fd)
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}
	return entry.Size, nil
}

// Seek moves the offset of `fd`. Seeking to the end of the file is allowed;
// seeking past it is not.
func (v *Volume) Seek(fd int, offset Byte) error {
	_, h, entry, err := v.handle(fd)
	if err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	if offset > entry.Size {
		return fmt.Errorf(
			"seeking handle `%d` to `%d`: file `%s` has `%d` bytes: %w",
			fd,
			offset,
			entry.Name,
			entry.Size,
			OutOfRangeErr,
		)
	}
	h.Offset = offset
	return nil
}

// handle resolves an open handle and the directory entry it refers to.
func (v *Volume) handle(fd int) (*mounted, *file.Handle, *DirEntry, error) {
	m, err := v.mounted()
	if err != nil {
		return nil, nil, nil, err
	}
	h, err := m.files.Get(fd)
	if err != nil {
		return nil, nil, nil, err
	}
	entry, err := m.root.Entry(h.Entry)
	if err != nil {
		return nil, nil, nil, fmt.Errorf(
			"resolving handle `%d`: %w",
			fd,
			err,
		)
	}
	return m, h, entry, nil
}
