// Package super describes the geometry of a simfs image and stores it in
// block 0.
package super

import (
	"github.com/pkg/errors"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/simfs/addr"
	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/disk"
)

const MAGIC uint64 = 0x73696d6673 // "simfs"

// Block pointers are 16 bits on disk.
const MAXBLOCKS uint64 = 1 << 16

var ErrBadSuper = errors.New("super: not a simfs image")

type FsSuper struct {
	Disk      disk.Disk
	NBlock    uint64
	NInodeBlk uint64
}

// MkFsSuper returns the reference geometry for d.
func MkFsSuper(d disk.Disk) (*FsSuper, error) {
	sz, err := d.Size()
	if err != nil {
		return nil, err
	}
	if sz <= common.NRESERVED {
		return nil, errors.Errorf("super: disk of %d blocks is too small", sz)
	}
	if sz > MAXBLOCKS {
		return nil, errors.Errorf("super: disk of %d blocks is too large", sz)
	}
	return &FsSuper{
		Disk:      d,
		NBlock:    sz,
		NInodeBlk: common.NINODEBLK,
	}, nil
}

func (fs *FsSuper) NInode() uint64 {
	return fs.NInodeBlk * common.INODEBLK
}

// DataStart is the first block past the inode table.
func (fs *FsSuper) DataStart() common.Bnum {
	return common.INODESTART + fs.NInodeBlk
}

func (fs *FsSuper) Inum2Addr(inum common.Inum) addr.Addr {
	return addr.MkAddr(common.INODESTART+uint64(inum)/common.INODEBLK,
		(uint64(inum)%common.INODEBLK)*common.INODESZ*8)
}

func (fs *FsSuper) Encode() []byte {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt(MAGIC)
	enc.PutInt(fs.NBlock)
	enc.PutInt(fs.NInodeBlk)
	blk := make(disk.Block, disk.BlockSize)
	copy(blk, enc.Finish())
	return blk
}

// Write stores the superblock in block 0.
func (fs *FsSuper) Write() error {
	return fs.Disk.Write(common.SUPERBLK, fs.Encode())
}

func isZero(blk []byte) bool {
	for _, b := range blk {
		if b != 0 {
			return false
		}
	}
	return true
}

// Load reads and validates the superblock of d. An all-zero block 0 is an
// image in the reference layout, which has no superblock; it gets the
// reference geometry for the disk's size.
func Load(d disk.Disk) (*FsSuper, error) {
	blk, err := d.Read(common.SUPERBLK)
	if err != nil {
		return nil, err
	}
	if isZero(blk) {
		return MkFsSuper(d)
	}
	dec := marshal.NewDec(blk)
	if dec.GetInt() != MAGIC {
		return nil, ErrBadSuper
	}
	fs := &FsSuper{Disk: d}
	fs.NBlock = dec.GetInt()
	fs.NInodeBlk = dec.GetInt()
	sz, err := d.Size()
	if err != nil {
		return nil, err
	}
	if fs.NBlock != sz || fs.NBlock > MAXBLOCKS || fs.NInodeBlk == 0 ||
		fs.NInodeBlk*common.INODEBLK > common.NBITBLOCK ||
		uint64(fs.DataStart()) >= fs.NBlock {
		return nil, errors.Wrapf(ErrBadSuper, "geometry %d blocks, %d inode blocks",
			fs.NBlock, fs.NInodeBlk)
	}
	return fs, nil
}
