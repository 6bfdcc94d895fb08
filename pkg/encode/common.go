// Package encode converts the on-disk metadata structures to and from their
// little-endian block images.
package encode

import (
	"encoding/binary"

	. "github.com/weberc2/ecsfs/pkg/types"
)

func putBlock(b []byte, start Byte, u Block) {
	putU16(b, start, uint16(u))
}

func getBlock(b []byte, start Byte) Block {
	return Block(getU16(b, start))
}

func putDataBlock(b []byte, start Byte, u DataBlock) {
	putU16(b, start, uint16(u))
}

func getDataBlock(b []byte, start Byte) DataBlock {
	return DataBlock(getU16(b, start))
}

func putU32(b []byte, start Byte, u uint32) {
	binary.LittleEndian.PutUint32(b[start:start+4], u)
}

func getU32(b []byte, start Byte) uint32 {
	return binary.LittleEndian.Uint32(b[start : start+4])
}

func putU16(b []byte, start Byte, u uint16) {
	binary.LittleEndian.PutUint16(b[start:start+2], u)
}

func getU16(b []byte, start Byte) uint16 {
	return binary.LittleEndian.Uint16(b[start : start+2])
}

func putU8(b []byte, start Byte, u uint8) {
	b[start] = u
}

func getU8(b []byte, start Byte) uint8 {
	return b[start]
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
