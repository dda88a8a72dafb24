// Package inode holds the on-disk inode format and the in-core inode cache.
//
// An on-disk inode is a fixed 64-byte record; INODEBLK of them pack into each
// inode-table block starting at INODESTART. All integers are little-endian:
//
//	off  size  field
//	0    4     Size
//	4    2     Owner
//	6    1     Perm
//	7    1     Kind (flags)
//	8    1     Nlink
//	9    2*16  Blks, 0 = unused
//	41   23    zero padding
package inode

import (
	"encoding/binary"
	"fmt"

	"github.com/mit-pdos/simfs/common"
)

const (
	sizeOff  uint64 = 0
	ownerOff uint64 = sizeOff + 4
	permOff  uint64 = ownerOff + 2
	kindOff  uint64 = permOff + 1
	nlinkOff uint64 = kindOff + 1
	blksOff  uint64 = nlinkOff + 1
	bnumSz   uint64 = 2

	encodedSz uint64 = blksOff + common.NDIRECT*bnumSz
)

const maxBnum common.Bnum = 1<<(8*bnumSz) - 1

type Inode struct {
	// in-memory info:
	Inum common.Inum
	ref  uint64

	// the on-disk inode:
	Size  uint32
	Owner uint16
	Perm  uint8
	Kind  common.Kind
	Nlink uint8
	// Stored in 16 bits; Encode keeps only the low bits and Persist
	// rejects larger values.
	Blks [common.NDIRECT]common.Bnum
}

func (ip *Inode) String() string {
	return fmt.Sprintf("# %d ref %d k %v n %d sz %d %v", ip.Inum, ip.ref,
		ip.Kind, ip.Nlink, ip.Size, ip.Blks)
}

// Ref is the number of holders of an in-core inode; 0 means the cache slot
// is free.
func (ip *Inode) Ref() uint64 {
	return ip.ref
}

// Encode packs the on-disk fields into blk[off:off+INODESZ]. Block numbers
// are stored in 16 bits.
func (ip *Inode) Encode(blk []byte, off uint64) {
	b := blk[off : off+common.INODESZ]
	binary.LittleEndian.PutUint32(b[sizeOff:], ip.Size)
	binary.LittleEndian.PutUint16(b[ownerOff:], ip.Owner)
	b[permOff] = ip.Perm
	b[kindOff] = byte(ip.Kind)
	b[nlinkOff] = ip.Nlink
	for i, bn := range ip.Blks {
		binary.LittleEndian.PutUint16(b[blksOff+uint64(i)*bnumSz:], uint16(bn))
	}
	for i := encodedSz; i < common.INODESZ; i++ {
		b[i] = 0
	}
}

// Decode unpacks the record at blk[off:]. Any bit pattern decodes; whether
// the result makes sense (e.g. a known Kind) is up to the caller.
func Decode(blk []byte, off uint64) Inode {
	b := blk[off : off+common.INODESZ]
	ip := Inode{}
	ip.Size = binary.LittleEndian.Uint32(b[sizeOff:])
	ip.Owner = binary.LittleEndian.Uint16(b[ownerOff:])
	ip.Perm = b[permOff]
	ip.Kind = common.Kind(b[kindOff])
	ip.Nlink = b[nlinkOff]
	for i := range ip.Blks {
		ip.Blks[i] = common.Bnum(binary.LittleEndian.Uint16(b[blksOff+uint64(i)*bnumSz:]))
	}
	return ip
}
