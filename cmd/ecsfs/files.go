package main

import (
	"fmt"
	"io"

	"github.com/weberc2/ecsfs/pkg/directory"
	. "github.com/weberc2/ecsfs/pkg/types"
)

const (
	ShortWriteErr ConstError = "volume is full"
	ShortReadErr  ConstError = "file could not be read in full"
)

func addFile(v *Volume, name string, data []byte) error {
	if err := v.Create(name); err != nil {
		return err
	}
	fd, err := v.Open(name)
	if err != nil {
		return err
	}
	n, err := v.Write(fd, data)
	if err != nil {
		v.Close(fd)
		return err
	}
	if err := v.Close(fd); err != nil {
		return err
	}
	if n < Byte(len(data)) {
		return fmt.Errorf(
			"adding `%s`: wrote `%d` of `%d` bytes: %w",
			name,
			n,
			len(data),
			ShortWriteErr,
		)
	}
	return nil
}

func catFile(v *Volume, name string, w io.Writer) error {
	fd, err := v.Open(name)
	if err != nil {
		return err
	}
	defer v.Close(fd)

	size, err := v.Stat(fd)
	if err != nil {
		return err
	}

	var copied Byte
	buf := make([]byte, BlockSize)
	for copied < size {
		n, err := v.Read(fd, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return fmt.Errorf("catting `%s`: %w", name, err)
		}
		copied += n
	}
	if copied < size {
		return fmt.Errorf(
			"catting `%s`: read `%d` of `%d` bytes: %w",
			name,
			copied,
			size,
			ShortReadErr,
		)
	}
	return nil
}

func statFile(v *Volume, name string) (Byte, error) {
	fd, err := v.Open(name)
	if err != nil {
		return 0, err
	}
	defer v.Close(fd)
	return v.Stat(fd)
}

func printList(w io.Writer, files []directory.FileInfo) error {
	if _, err := fmt.Fprintln(w, "FS Ls:"); err != nil {
		return err
	}
	for _, f := range files {
		if _, err := fmt.Fprintf(
			w,
			"file: %s, size: %d, data_blk: %d\n",
			f.Name,
			f.Size,
			f.First,
		); err != nil {
			return err
		}
	}
	return nil
}
