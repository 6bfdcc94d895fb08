package disk

import (
	"fmt"
	"os"

	. "github.com/weberc2/ecsfs/pkg/types"
)

const BadImageSizeErr ConstError = "image size is not a whole number of " +
	"blocks"

// File is a block device backed by an image file.
type File struct {
	file   *os.File
	blocks Block
}

// Open opens an existing image for reading and writing.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening disk image `%s`: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening disk image `%s`: %w", path, err)
	}

	size := info.Size()
	if size%int64(BlockSize) != 0 {
		f.Close()
		return nil, fmt.Errorf(
			"opening disk image `%s` of `%d` bytes: %w",
			path,
			size,
			BadImageSizeErr,
		)
	}
	if blocks := size / int64(BlockSize); blocks > MaxBlocks {
		f.Close()
		return nil, fmt.Errorf(
			"opening disk image `%s`: `%d` blocks exceeds maximum `%d`: %w",
			path,
			blocks,
			MaxBlocks,
			OutOfRangeErr,
		)
	}

	return &File{file: f, blocks: Block(size / int64(BlockSize))}, nil
}

// Create makes a zero-filled image of `blocks` blocks, replacing any existing
// file, and opens it.
func Create(path string, blocks Block) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating disk image `%s`: %w", path, err)
	}
	if err := f.Truncate(int64(blocks) * int64(BlockSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf(
			"creating disk image `%s` of `%d` blocks: %w",
			path,
			blocks,
			err,
		)
	}
	return &File{file: f, blocks: blocks}, nil
}

func (f *File) Name() string { return f.file.Name() }

func (f *File) BlockCount() Block { return f.blocks }

func (f *File) ReadBlock(b Block, p *[BlockSize]byte) error {
	if err := checkRange("reading", b, f.blocks); err != nil {
		return err
	}
	if _, err := f.file.ReadAt(p[:], int64(b)*int64(BlockSize)); err != nil {
		return &Error{
			Op:    "reading",
			Block: b,
			Err:   fmt.Errorf("image `%s`: %w", f.file.Name(), err),
		}
	}
	return nil
}

func (f *File) WriteBlock(b Block, p *[BlockSize]byte) error {
	if err := checkRange("writing", b, f.blocks); err != nil {
		return err
	}
	if _, err := f.file.WriteAt(p[:], int64(b)*int64(BlockSize)); err != nil {
		return &Error{
			Op:    "writing",
			Block: b,
			Err:   fmt.Errorf("image `%s`: %w", f.file.Name(), err),
		}
	}
	return nil
}

func (f *File) Close() error {
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("closing disk image `%s`: %w", f.file.Name(), err)
	}
	return nil
}
