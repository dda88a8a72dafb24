package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	NBITBLOCK uint64 = disk.BlockSize * 8

	NBLOCKS uint64 = 1024 // default image size

	SUPERBLK    Bnum = 0
	INODEBITMAP Bnum = 1
	DATABITMAP  Bnum = 2
	INODESTART  Bnum = 3

	INODESZ   uint64 = 64 // on-disk size
	INODEBLK  uint64 = disk.BlockSize / INODESZ
	NINODEBLK uint64 = 4
	NINODE    uint64 = NINODEBLK * INODEBLK

	// Data-bitmap indices that cover metadata: the superblock, both
	// bitmaps and the inode table.
	NRESERVED uint64 = uint64(INODESTART) + NINODEBLK

	NDIRECT uint64 = 16

	DIRENTSZ uint64 = 32
	NAMELEN  uint64 = 16

	NINCORE uint64 = 64 // default inode cache capacity
)

type Inum uint64
type Bnum = uint64

const (
	ROOTINUM Inum = 0
	NULLBNUM Bnum = 0
)

// Kind is the inode's flags byte. Only a few values are ever written, so it
// is an enumeration rather than a set of bits.
type Kind uint8

const (
	KindUnset Kind = 0
	KindFile  Kind = 1
	KindDir   Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	}
	return "unknown"
}
