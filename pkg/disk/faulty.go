package disk

import (
	. "github.com/weberc2/ecsfs/pkg/types"
)

const InjectedFaultErr ConstError = "injected fault"

// Faulty wraps a disk and fails reads or writes of selected blocks. It exists
// to exercise error paths.
type Faulty struct {
	Disk
	ReadFaults  map[Block]bool
	WriteFaults map[Block]bool
}

func NewFaulty(inner Disk) *Faulty {
	return &Faulty{
		Disk:        inner,
		ReadFaults:  map[Block]bool{},
		WriteFaults: map[Block]bool{},
	}
}

func (f *Faulty) ReadBlock(b Block, p *[BlockSize]byte) error {
	if f.ReadFaults[b] {
		return &Error{Op: "reading", Block: b, Err: InjectedFaultErr}
	}
	return f.Disk.ReadBlock(b, p)
}

func (f *Faulty) WriteBlock(b Block, p *[BlockSize]byte) error {
	if f.WriteFaults[b] {
		return &Error{Op: "writing", Block: b, Err: InjectedFaultErr}
	}
	return f.Disk.WriteBlock(b, p)
}
