package filesystem

import (
	log "github.com/sirupsen/logrus"
	"github.com/weberc2/ecsfs/pkg/chain"
	"github.com/weberc2/ecsfs/pkg/math"
	. "github.com/weberc2/ecsfs/pkg/types"
)

// Read copies up to `len(p)` bytes from the handle's offset into `p`, never
// past the end of the file, and advances the offset by the number of bytes
// returned. A disk failure partway through ends the read early; it is
// reported as a short count, not an error.
func (v *Volume) Read(fd int, p []byte) (Byte, error) {
	m, h, entry, err := v.handle(fd)
	if err != nil {
		return 0, err
	}
	if h.Offset >= entry.Size || len(p) == 0 {
		return 0, nil
	}

	count := math.Min(Byte(len(p)), entry.Size-h.Offset)
	it := chain.NewIterator(m.fat, entry.First, h.Offset, count, chain.ReadOnly)

	var n Byte
	var buf [BlockSize]byte
	for {
		extent, ok, err := it.Next()
		if err != nil {
			shortTransfer("read", entry, h.Offset, n, count, err)
			break
		}
		if !ok {
			break
		}
		if err := m.disk.ReadBlock(m.sb.Physical(extent.Block), &buf); err != nil {
			shortTransfer("read", entry, h.Offset, n, count, err)
			break
		}
		copy(p[n:n+extent.Length], buf[extent.Offset:])
		n += extent.Length
	}

	h.Offset += n
	return n, nil
}

// Write stores `data` at the handle's offset, growing the chain one block at
// a time as needed, and advances the offset. Running out of space or a disk
// failure ends the write early; the count of bytes actually written is
// returned without an error. Files never shrink on write.
func (v *Volume) Write(fd int, data []byte) (Byte, error) {
	m, h, entry, err := v.handle(fd)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}

	if entry.Empty() {
		b, ok := m.fat.Alloc()
		if !ok {
			log.WithField("file", entry.Name).Debug("write: volume full")
			return 0, nil
		}
		entry.First = b
	}

	count := Byte(len(data))
	it := chain.NewIterator(m.fat, entry.First, h.Offset, count, chain.Extend)

	var n Byte
	var buf [BlockSize]byte
	for {
		extent, ok, err := it.Next()
		if err != nil {
			shortTransfer("write", entry, h.Offset, n, count, err)
			break
		}
		if !ok {
			break
		}
		block := m.sb.Physical(extent.Block)
		if err := m.disk.ReadBlock(block, &buf); err != nil {
			shortTransfer("write", entry, h.Offset, n, count, err)
			break
		}
		copy(buf[extent.Offset:extent.Offset+extent.Length], data[n:])
		if err := m.disk.WriteBlock(block, &buf); err != nil {
			shortTransfer("write", entry, h.Offset, n, count, err)
			break
		}
		n += extent.Length
	}

	h.Offset += n
	if h.Offset > entry.Size {
		entry.Size = h.Offset
	}
	if n < count {
		m.trim(entry)
	}
	return n, nil
}

// trim releases blocks a failed write linked past the end of the file.
func (m *mounted) trim(entry *DirEntry) {
	keep := int(math.DivRoundUp(entry.Size, BlockSize))
	first, err := chain.Truncate(m.fat, entry.First, keep)
	if err != nil {
		log.WithField("file", entry.Name).Warnf("trimming chain: %v", err)
		return
	}
	entry.First = first
}

func shortTransfer(
	op string,
	entry *DirEntry,
	offset Byte,
	done Byte,
	wanted Byte,
	err error,
) {
	log.WithFields(log.Fields{
		"file":   entry.Name,
		"offset": offset,
		"done":   done,
		"wanted": wanted,
	}).Warnf("short %s: %v", op, err)
}
