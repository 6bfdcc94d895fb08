package filesystem

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weberc2/ecsfs/pkg/chain"
	"github.com/weberc2/ecsfs/pkg/directory"
	"github.com/weberc2/ecsfs/pkg/disk"
	"github.com/weberc2/ecsfs/pkg/format"
	. "github.com/weberc2/ecsfs/pkg/types"
)

func formatted(t *testing.T, blocks Block) *disk.Memory {
	t.Helper()
	d := disk.NewMemory(blocks)
	if _, err := format.Format(d); err != nil {
		t.Fatalf("format.Format(): unexpected err: %v", err)
	}
	return d
}

func mount(t *testing.T, d disk.Disk) *Volume {
	t.Helper()
	v, err := Mount(d)
	if err != nil {
		t.Fatalf("Mount(): unexpected err: %v", err)
	}
	return v
}

func unmount(t *testing.T, v *Volume) {
	t.Helper()
	if err := v.Unmount(); err != nil {
		t.Fatalf("Unmount(): unexpected err: %v", err)
	}
}

func mustCreateOpen(t *testing.T, v *Volume, name string) int {
	t.Helper()
	if err := v.Create(name); err != nil {
		t.Fatalf("Create(%q): unexpected err: %v", name, err)
	}
	fd, err := v.Open(name)
	if err != nil {
		t.Fatalf("Open(%q): unexpected err: %v", name, err)
	}
	return fd
}

func mustWrite(t *testing.T, v *Volume, fd int, data []byte) {
	t.Helper()
	n, err := v.Write(fd, data)
	if err != nil {
		t.Fatalf("Write(): unexpected err: %v", err)
	}
	if n != Byte(len(data)) {
		t.Fatalf("Write(): wanted `%d` bytes; found `%d`", len(data), n)
	}
}

func mustSeek(t *testing.T, v *Volume, fd int, offset Byte) {
	t.Helper()
	if err := v.Seek(fd, offset); err != nil {
		t.Fatalf("Seek(%d): unexpected err: %v", offset, err)
	}
}

// pattern returns `n` bytes that differ from block to block.
func pattern(n int, seed byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7+i/int(BlockSize)) ^ seed
	}
	return data
}

func entryOf(t *testing.T, v *Volume, name string) *DirEntry {
	t.Helper()
	i, found := v.state.root.Find(name)
	if !found {
		t.Fatalf("entry `%s` not found", name)
	}
	return &v.state.root.Entries[i]
}

func TestScenario(t *testing.T) {
	v := mount(t, formatted(t, 128))

	if err := v.Create("a.txt"); err != nil {
		t.Fatalf("Create(): unexpected err: %v", err)
	}
	fd, err := v.Open("a.txt")
	if err != nil {
		t.Fatalf("Open(): unexpected err: %v", err)
	}
	if fd != 0 {
		t.Fatalf("Open(): wanted handle `0`; found `%d`", fd)
	}

	mustWrite(t, v, fd, []byte("hello"))
	size, err := v.Stat(fd)
	if err != nil {
		t.Fatalf("Stat(): unexpected err: %v", err)
	}
	if size != 5 {
		t.Fatalf("Stat(): wanted `5`; found `%d`", size)
	}

	mustSeek(t, v, fd, 0)
	buf := make([]byte, 5)
	n, err := v.Read(fd, buf)
	if err != nil {
		t.Fatalf("Read(): unexpected err: %v", err)
	}
	if n != 5 || string(buf) != "hello" {
		t.Fatalf("Read(): wanted `(5, hello)`; found `(%d, %s)`", n, buf)
	}

	if err := v.Close(fd); err != nil {
		t.Fatalf("Close(): unexpected err: %v", err)
	}
	if err := v.Delete("a.txt"); err != nil {
		t.Fatalf("Delete(): unexpected err: %v", err)
	}
	if _, err := v.Open("a.txt"); !errors.Is(err, NotFoundErr) {
		t.Fatalf("Open(): wanted `%v`; found `%v`", NotFoundErr, err)
	}
	unmount(t, v)
}

func TestInfo(t *testing.T) {
	v := mount(t, formatted(t, 128))
	defer unmount(t, v)

	fd := mustCreateOpen(t, v, "a.txt")
	mustWrite(t, v, fd, []byte("hello"))

	info, err := v.Info()
	if err != nil {
		t.Fatalf("Info(): unexpected err: %v", err)
	}
	wanted := Info{
		TotalBlocks:  128,
		FATBlocks:    1,
		RootDirBlock: 2,
		DataStart:    3,
		DataBlocks:   125,
		FATFree:      123,
		RootDirFree:  127,
	}
	if diff := cmp.Diff(wanted, info); diff != "" {
		t.Fatalf("Info(): mismatch (-wanted +found):\n%s", diff)
	}

	files, err := v.List()
	if err != nil {
		t.Fatalf("List(): unexpected err: %v", err)
	}
	wantedFiles := []directory.FileInfo{{Index: 0, Name: "a.txt", Size: 5, First: 1}}
	if diff := cmp.Diff(wantedFiles, files); diff != "" {
		t.Fatalf("List(): mismatch (-wanted +found):\n%s", diff)
	}
}

// metadata returns the superblock, allocation table and root directory
// blocks of a memory disk.
func metadata(d *disk.Memory, sb Superblock) []byte {
	return append([]byte(nil), d.Bytes()[:Byte(sb.DataStart)*BlockSize]...)
}

func TestCreateDeleteRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		size int
	}{
		{name: "empty", size: 0},
		{name: "one-byte", size: 1},
		{name: "multi-block", size: 3*int(BlockSize) + 17},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := disk.NewMemory(64)
			sb, err := format.Format(d)
			if err != nil {
				t.Fatalf("format.Format(): unexpected err: %v", err)
			}
			before := metadata(d, sb)

			v := mount(t, d)
			fd := mustCreateOpen(t, v, "round.trip")
			mustWrite(t, v, fd, pattern(tc.size, 1))
			if err := v.Close(fd); err != nil {
				t.Fatalf("Close(): unexpected err: %v", err)
			}
			if err := v.Delete("round.trip"); err != nil {
				t.Fatalf("Delete(): unexpected err: %v", err)
			}
			unmount(t, v)

			if !bytes.Equal(before, metadata(d, sb)) {
				t.Fatal("metadata changed across create/write/delete")
			}
		})
	}
}

func TestWriteReadBack(t *testing.T) {
	for _, tc := range []struct {
		name   string
		prefix int
		length int
	}{
		{name: "start-small", prefix: 0, length: 10},
		{name: "exact-block", prefix: 0, length: int(BlockSize)},
		{name: "unaligned-span", prefix: 4000, length: 200},
		{name: "aligned-offset", prefix: int(BlockSize), length: int(BlockSize) + 1},
		{name: "append-after-blocks", prefix: 3 * int(BlockSize), length: 10},
		{name: "large", prefix: 123, length: 5*int(BlockSize) + 77},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := mount(t, formatted(t, 128))
			defer unmount(t, v)

			fd := mustCreateOpen(t, v, "f")
			mustWrite(t, v, fd, pattern(tc.prefix, 0xFF))

			offset := Byte(tc.prefix)
			data := pattern(tc.length, 0x5A)
			mustSeek(t, v, fd, offset)
			mustWrite(t, v, fd, data)

			if size, _ := v.Stat(fd); size != offset+Byte(tc.length) {
				t.Fatalf(
					"Stat(): wanted `%d`; found `%d`",
					offset+Byte(tc.length),
					size,
				)
			}

			mustSeek(t, v, fd, offset)
			found := make([]byte, tc.length)
			n, err := v.Read(fd, found)
			if err != nil {
				t.Fatalf("Read(): unexpected err: %v", err)
			}
			if n != Byte(tc.length) {
				t.Fatalf("Read(): wanted `%d` bytes; found `%d`", tc.length, n)
			}
			if !bytes.Equal(data, found) {
				t.Fatal("Read(): data mismatch")
			}

			// the prefix survives the second write
			mustSeek(t, v, fd, 0)
			prefix := make([]byte, tc.prefix)
			if _, err := v.Read(fd, prefix); err != nil {
				t.Fatalf("Read(): unexpected err: %v", err)
			}
			if !bytes.Equal(pattern(tc.prefix, 0xFF), prefix) {
				t.Fatal("Read(): prefix mismatch")
			}
		})
	}
}

func TestOverwriteDoesNotShrink(t *testing.T) {
	v := mount(t, formatted(t, 32))
	defer unmount(t, v)

	fd := mustCreateOpen(t, v, "f")
	mustWrite(t, v, fd, []byte("hello world"))
	mustSeek(t, v, fd, 0)
	mustWrite(t, v, fd, []byte("HELLO"))

	mustSeek(t, v, fd, 0)
	buf := make([]byte, 64)
	n, err := v.Read(fd, buf)
	if err != nil {
		t.Fatalf("Read(): unexpected err: %v", err)
	}
	if found := string(buf[:n]); found != "HELLO world" {
		t.Fatalf("Read(): wanted `HELLO world`; found `%s`", found)
	}
}

func TestChainLength(t *testing.T) {
	for _, size := range []int{
		1,
		int(BlockSize) - 1,
		int(BlockSize),
		int(BlockSize) + 1,
		int(BlockSize) * 5 / 2,
		3 * int(BlockSize),
	} {
		v := mount(t, formatted(t, 128))
		before, _ := v.Info()

		fd := mustCreateOpen(t, v, "f")
		mustWrite(t, v, fd, pattern(size, 3))

		entry := entryOf(t, v, "f")
		if entry.Size != Byte(size) {
			t.Fatalf("size: wanted `%d`; found `%d`", size, entry.Size)
		}
		blocks, err := chain.Blocks(v.state.fat, entry.First)
		if err != nil {
			t.Fatalf("chain.Blocks(): unexpected err: %v", err)
		}
		wanted := (size + int(BlockSize) - 1) / int(BlockSize)
		if len(blocks) != wanted {
			t.Fatalf(
				"%d bytes: wanted `%d` blocks; found `%d`",
				size,
				wanted,
				len(blocks),
			)
		}

		seen := map[DataBlock]bool{}
		for _, b := range blocks {
			if seen[b] {
				t.Fatalf("%d bytes: block `%d` visited twice", size, b)
			}
			seen[b] = true
		}

		after, _ := v.Info()
		if before.FATFree-after.FATFree != wanted {
			t.Fatalf(
				"%d bytes: wanted `%d` blocks consumed; found `%d`",
				size,
				wanted,
				before.FATFree-after.FATFree,
			)
		}
		unmount(t, v)
	}
}

func TestDeleteOpenFile(t *testing.T) {
	v := mount(t, formatted(t, 64))
	defer unmount(t, v)

	fd := mustCreateOpen(t, v, "busy")
	mustWrite(t, v, fd, pattern(2*int(BlockSize), 9))
	entry := *entryOf(t, v, "busy")
	blocks, _ := chain.Blocks(v.state.fat, entry.First)

	if err := v.Delete("busy"); !errors.Is(err, FileOpenErr) {
		t.Fatalf("Delete(): wanted `%v`; found `%v`", FileOpenErr, err)
	}

	if diff := cmp.Diff(entry, *entryOf(t, v, "busy")); diff != "" {
		t.Fatalf("entry changed (-wanted +found):\n%s", diff)
	}
	found, err := chain.Blocks(v.state.fat, entry.First)
	if err != nil {
		t.Fatalf("chain.Blocks(): unexpected err: %v", err)
	}
	if diff := cmp.Diff(blocks, found); diff != "" {
		t.Fatalf("chain changed (-wanted +found):\n%s", diff)
	}

	if err := v.Close(fd); err != nil {
		t.Fatalf("Close(): unexpected err: %v", err)
	}
	if err := v.Delete("busy"); err != nil {
		t.Fatalf("Delete() after Close(): unexpected err: %v", err)
	}
}

func TestDeleteErrors(t *testing.T) {
	v := mount(t, formatted(t, 16))
	defer unmount(t, v)

	if err := v.Delete("missing"); !errors.Is(err, NotFoundErr) {
		t.Fatalf("Delete(): wanted `%v`; found `%v`", NotFoundErr, err)
	}
	if err := v.Delete(""); !errors.Is(err, InvalidNameErr) {
		t.Fatalf("Delete(): wanted `%v`; found `%v`", InvalidNameErr, err)
	}
	if err := v.Delete("sixteen-chars-xx"); !errors.Is(err, InvalidNameErr) {
		t.Fatalf("Delete(): wanted `%v`; found `%v`", InvalidNameErr, err)
	}
}

func TestSeek(t *testing.T) {
	v := mount(t, formatted(t, 16))
	defer unmount(t, v)

	fd := mustCreateOpen(t, v, "f")
	mustWrite(t, v, fd, []byte("0123456789"))

	if err := v.Seek(fd, 11); !errors.Is(err, OutOfRangeErr) {
		t.Fatalf("Seek(11): wanted `%v`; found `%v`", OutOfRangeErr, err)
	}
	mustSeek(t, v, fd, 10)
	n, err := v.Read(fd, make([]byte, 4))
	if err != nil {
		t.Fatalf("Read(): unexpected err: %v", err)
	}
	if n != 0 {
		t.Fatalf("Read() at end: wanted `0`; found `%d`", n)
	}

	// reads are clamped to the file size
	mustSeek(t, v, fd, 6)
	buf := make([]byte, 100)
	n, err = v.Read(fd, buf)
	if err != nil {
		t.Fatalf("Read(): unexpected err: %v", err)
	}
	if found := string(buf[:n]); found != "6789" {
		t.Fatalf("Read(): wanted `6789`; found `%s`", found)
	}
	if n := v.state.files.OpenCount(); n != 1 {
		t.Fatalf("OpenCount(): wanted `1`; found `%d`", n)
	}
}

func TestHandlesIndependent(t *testing.T) {
	v := mount(t, formatted(t, 16))
	defer unmount(t, v)

	w := mustCreateOpen(t, v, "f")
	r, err := v.Open("f")
	if err != nil {
		t.Fatalf("Open(): unexpected err: %v", err)
	}
	mustWrite(t, v, w, []byte("abcdef"))

	buf := make([]byte, 3)
	if _, err := v.Read(r, buf); err != nil || string(buf) != "abc" {
		t.Fatalf("Read(): wanted `abc`; found `%s` (%v)", buf, err)
	}
	if _, err := v.Read(r, buf); err != nil || string(buf) != "def" {
		t.Fatalf("Read(): wanted `def`; found `%s` (%v)", buf, err)
	}
}

func TestTooManyOpen(t *testing.T) {
	v := mount(t, formatted(t, 16))
	defer unmount(t, v)

	if err := v.Create("f"); err != nil {
		t.Fatalf("Create(): unexpected err: %v", err)
	}
	for i := 0; i < OpenMaxCount; i++ {
		if _, err := v.Open("f"); err != nil {
			t.Fatalf("Open() #%d: unexpected err: %v", i, err)
		}
	}
	if _, err := v.Open("f"); !errors.Is(err, TooManyOpenErr) {
		t.Fatalf("Open(): wanted `%v`; found `%v`", TooManyOpenErr, err)
	}
	if err := v.Close(13); err != nil {
		t.Fatalf("Close(): unexpected err: %v", err)
	}
	if fd, err := v.Open("f"); err != nil || fd != 13 {
		t.Fatalf("Open(): wanted `(13, nil)`; found `(%d, %v)`", fd, err)
	}
}

func TestInvalidHandle(t *testing.T) {
	v := mount(t, formatted(t, 16))
	defer unmount(t, v)

	fd := mustCreateOpen(t, v, "f")
	if err := v.Close(fd); err != nil {
		t.Fatalf("Close(): unexpected err: %v", err)
	}

	for _, fd := range []int{fd, -1, OpenMaxCount} {
		if _, err := v.Stat(fd); !errors.Is(err, InvalidHandleErr) {
			t.Fatalf("Stat(%d): wanted `%v`; found `%v`", fd, InvalidHandleErr, err)
		}
		if err := v.Seek(fd, 0); !errors.Is(err, InvalidHandleErr) {
			t.Fatalf("Seek(%d): wanted `%v`; found `%v`", fd, InvalidHandleErr, err)
		}
		if _, err := v.Read(fd, make([]byte, 1)); !errors.Is(err, InvalidHandleErr) {
			t.Fatalf("Read(%d): wanted `%v`; found `%v`", fd, InvalidHandleErr, err)
		}
		if _, err := v.Write(fd, []byte("x")); !errors.Is(err, InvalidHandleErr) {
			t.Fatalf("Write(%d): wanted `%v`; found `%v`", fd, InvalidHandleErr, err)
		}
		if err := v.Close(fd); !errors.Is(err, InvalidHandleErr) {
			t.Fatalf("Close(%d): wanted `%v`; found `%v`", fd, InvalidHandleErr, err)
		}
	}
}

func TestNotMounted(t *testing.T) {
	d := formatted(t, 16)
	v := mount(t, d)
	fd := mustCreateOpen(t, v, "f")
	unmount(t, v)

	var nilVolume *Volume
	for _, v := range []*Volume{v, nilVolume} {
		checks := map[string]error{
			"Unmount": v.Unmount(),
			"Create":  v.Create("g"),
			"Delete":  v.Delete("f"),
			"Close":   v.Close(fd),
			"Seek":    v.Seek(fd, 0),
		}
		_, checks["Info"] = v.Info()
		_, checks["List"] = v.List()
		_, checks["Open"] = v.Open("f")
		_, checks["Stat"] = v.Stat(fd)
		_, checks["Read"] = v.Read(fd, make([]byte, 1))
		_, checks["Write"] = v.Write(fd, []byte("x"))

		for op, err := range checks {
			if !errors.Is(err, NotMountedErr) {
				t.Fatalf("%s(): wanted `%v`; found `%v`", op, NotMountedErr, err)
			}
		}
	}
}

func TestMountInvalidVolume(t *testing.T) {
	t.Run("unformatted", func(t *testing.T) {
		d := disk.NewMemory(16)
		if _, err := Mount(d); !errors.Is(err, InvalidVolumeErr) {
			t.Fatalf("Mount(): wanted `%v`; found `%v`", InvalidVolumeErr, err)
		}
		if err := d.Close(); !errors.Is(err, disk.ClosedErr) {
			t.Fatalf("Mount(): wanted disk closed after failure; found `%v`", err)
		}
	})

	t.Run("block-count-mismatch", func(t *testing.T) {
		image := formatted(t, 16).Bytes()
		grown := append(append([]byte(nil), image...), make([]byte, BlockSize)...)
		if _, err := Mount(disk.NewMemoryFrom(grown)); !errors.Is(err, InvalidVolumeErr) {
			t.Fatalf("Mount(): wanted `%v`; found `%v`", InvalidVolumeErr, err)
		}
	})

	t.Run("superblock-unreadable", func(t *testing.T) {
		d := disk.NewFaulty(formatted(t, 16))
		d.ReadFaults[SuperblockBlock] = true
		if _, err := Mount(d); !errors.Is(err, IOFailureErr) {
			t.Fatalf("Mount(): wanted `%v`; found `%v`", IOFailureErr, err)
		}
	})
}

func TestPersistence(t *testing.T) {
	d := formatted(t, 64)
	v := mount(t, d)
	fd := mustCreateOpen(t, v, "keep.bin")
	data := pattern(2*int(BlockSize)+100, 0x33)
	mustWrite(t, v, fd, data)
	unmount(t, v)

	d.Reopen()
	v = mount(t, d)
	defer unmount(t, v)

	fd, err := v.Open("keep.bin")
	if err != nil {
		t.Fatalf("Open(): unexpected err: %v", err)
	}
	found := make([]byte, len(data))
	n, err := v.Read(fd, found)
	if err != nil {
		t.Fatalf("Read(): unexpected err: %v", err)
	}
	if n != Byte(len(data)) || !bytes.Equal(data, found) {
		t.Fatalf("Read(): wanted `%d` matching bytes; found `%d`", len(data), n)
	}
}

func TestOutOfSpace(t *testing.T) {
	// 5 data blocks, one of which is reserved
	v := mount(t, formatted(t, 8))
	defer unmount(t, v)

	fd := mustCreateOpen(t, v, "big")
	n, err := v.Write(fd, pattern(5*int(BlockSize), 1))
	if err != nil {
		t.Fatalf("Write(): unexpected err: %v", err)
	}
	if n != 4*BlockSize {
		t.Fatalf("Write(): wanted `%d`; found `%d`", 4*BlockSize, n)
	}
	if size, _ := v.Stat(fd); size != 4*BlockSize {
		t.Fatalf("Stat(): wanted `%d`; found `%d`", 4*BlockSize, size)
	}

	other := mustCreateOpen(t, v, "small")
	if n, err := v.Write(other, []byte("x")); err != nil || n != 0 {
		t.Fatalf("Write(): wanted `(0, nil)`; found `(%d, %v)`", n, err)
	}
	if entry := entryOf(t, v, "small"); !entry.Empty() || entry.Size != 0 {
		t.Fatalf("entry: wanted empty; found `%+v`", *entry)
	}
}

func TestShortWriteOnDiskFailure(t *testing.T) {
	d := disk.NewFaulty(formatted(t, 32))
	v := mount(t, d)
	defer unmount(t, v)

	before, _ := v.Info()
	// the second block of the first file is data block 2
	d.WriteFaults[v.state.sb.Physical(2)] = true

	fd := mustCreateOpen(t, v, "f")
	n, err := v.Write(fd, pattern(3*int(BlockSize), 7))
	if err != nil {
		t.Fatalf("Write(): unexpected err: %v", err)
	}
	if n != BlockSize {
		t.Fatalf("Write(): wanted `%d`; found `%d`", BlockSize, n)
	}

	entry := entryOf(t, v, "f")
	if entry.Size != BlockSize {
		t.Fatalf("size: wanted `%d`; found `%d`", BlockSize, entry.Size)
	}
	if length, err := chain.Len(v.state.fat, entry.First); err != nil || length != 1 {
		t.Fatalf("chain.Len(): wanted `(1, nil)`; found `(%d, %v)`", length, err)
	}
	if after, _ := v.Info(); before.FATFree-after.FATFree != 1 {
		t.Fatalf(
			"wanted `1` block consumed; found `%d`",
			before.FATFree-after.FATFree,
		)
	}
}

func TestShortReadOnDiskFailure(t *testing.T) {
	d := disk.NewFaulty(formatted(t, 32))
	v := mount(t, d)
	defer unmount(t, v)

	fd := mustCreateOpen(t, v, "f")
	data := pattern(2*int(BlockSize), 4)
	mustWrite(t, v, fd, data)
	d.ReadFaults[v.state.sb.Physical(2)] = true

	mustSeek(t, v, fd, 0)
	found := make([]byte, len(data))
	n, err := v.Read(fd, found)
	if err != nil {
		t.Fatalf("Read(): unexpected err: %v", err)
	}
	if n != BlockSize {
		t.Fatalf("Read(): wanted `%d`; found `%d`", BlockSize, n)
	}
	if !bytes.Equal(data[:n], found[:n]) {
		t.Fatal("Read(): data mismatch")
	}
	if h, _ := v.state.files.Get(fd); h.Offset != BlockSize {
		t.Fatalf("offset: wanted `%d`; found `%d`", BlockSize, h.Offset)
	}
}

func TestUnmountFailureKeepsVolumeMounted(t *testing.T) {
	d := disk.NewFaulty(formatted(t, 16))
	v := mount(t, d)

	d.WriteFaults[v.state.sb.RootDirBlock] = true
	if err := v.Unmount(); !errors.Is(err, IOFailureErr) {
		t.Fatalf("Unmount(): wanted `%v`; found `%v`", IOFailureErr, err)
	}
	if _, err := v.Info(); err != nil {
		t.Fatalf("Info(): wanted volume still mounted; found `%v`", err)
	}

	delete(d.WriteFaults, v.state.sb.RootDirBlock)
	unmount(t, v)
}
