package alloc

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/mit-pdos/simfs/addr"
	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/disk"
	"github.com/mit-pdos/simfs/util"
)

var (
	ErrNoSpace  = errors.New("alloc: no free bit")
	ErrBitRange = errors.New("alloc: bit out of range")
)

// FindFree returns the lowest clear bit of bitmap. Bit i lives in byte i/8 at
// position i%8, least significant first.
func FindFree(bitmap []byte) (uint64, bool) {
	for i, b := range bitmap {
		if b != 0xff {
			return uint64(i)*8 + uint64(bits.TrailingZeros8(^b)), true
		}
	}
	return 0, false
}

// SetFree sets (allocated) or clears bit n of bitmap.
func SetFree(bitmap []byte, n uint64, allocated bool) error {
	if n >= uint64(len(bitmap))*8 {
		return errors.Wrapf(ErrBitRange, "bit %d", n)
	}
	bit := byte(1) << (n % 8)
	if allocated {
		bitmap[n/8] |= bit
	} else {
		bitmap[n/8] &^= bit
	}
	return nil
}

func IsSet(bitmap []byte, n uint64) bool {
	if n >= uint64(len(bitmap))*8 {
		return false
	}
	return bitmap[n/8]&(1<<(n%8)) != 0
}

func popCnt(b byte) uint64 {
	return uint64(bits.OnesCount8(b))
}

// Alloc hands out numbers [0, max) from a one-block bitmap on disk. Every
// call rereads the bitmap; nothing is cached.
//
// Not safe for concurrent use: AllocNum is a read-modify-write of the bitmap
// block and callers sharing an image must serialize around it.
type Alloc struct {
	d     disk.Disk
	start common.Bnum // bitmap block
	max   uint64
}

func MkAlloc(d disk.Disk, start common.Bnum, max uint64) *Alloc {
	if max > common.NBITBLOCK {
		max = common.NBITBLOCK
	}
	return &Alloc{
		d:     d,
		start: start,
		max:   max,
	}
}

// MkInodeAlloc allocates inode numbers from the inode bitmap.
func MkInodeAlloc(d disk.Disk, ninode uint64) *Alloc {
	return MkAlloc(d, common.INODEBITMAP, ninode)
}

// MkBlockAlloc allocates block numbers from the data bitmap.
func MkBlockAlloc(d disk.Disk, nblock uint64) *Alloc {
	return MkAlloc(d, common.DATABITMAP, nblock)
}

func (a *Alloc) Max() uint64 {
	return a.max
}

func (a *Alloc) readBitmap(n uint64) (addr.Addr, disk.Block, error) {
	ad := addr.MkBitAddr(a.start, n)
	blk, err := a.d.Read(ad.Blkno)
	return ad, blk, err
}

// AllocNum marks the lowest free number used and returns it.
func (a *Alloc) AllocNum() (uint64, error) {
	_, blk, err := a.readBitmap(0)
	if err != nil {
		return 0, err
	}
	n, ok := FindFree(blk)
	if !ok || n >= a.max {
		util.DPrintf(5, "AllocNum %d: full\n", a.start)
		return 0, ErrNoSpace
	}
	if err := SetFree(blk, n, true); err != nil {
		return 0, err
	}
	if err := a.d.Write(a.start, blk); err != nil {
		return 0, err
	}
	util.DPrintf(5, "AllocNum %d -> %d\n", a.start, n)
	return n, nil
}

func (a *Alloc) update(n uint64, allocated bool) error {
	if n >= a.max {
		return errors.Wrapf(ErrBitRange, "bit %d of %d", n, a.max)
	}
	ad, blk, err := a.readBitmap(n)
	if err != nil {
		return err
	}
	if err := SetFree(blk, ad.Off, allocated); err != nil {
		return err
	}
	return a.d.Write(ad.Blkno, blk)
}

func (a *Alloc) FreeNum(n uint64) error {
	util.DPrintf(5, "FreeNum %d: %d\n", a.start, n)
	return a.update(n, false)
}

func (a *Alloc) MarkUsed(n uint64) error {
	return a.update(n, true)
}

func (a *Alloc) IsUsed(n uint64) (bool, error) {
	if n >= a.max {
		return false, errors.Wrapf(ErrBitRange, "bit %d of %d", n, a.max)
	}
	ad, blk, err := a.readBitmap(n)
	if err != nil {
		return false, err
	}
	return IsSet(blk, ad.Off), nil
}

func (a *Alloc) NumFree() (uint64, error) {
	_, blk, err := a.readBitmap(0)
	if err != nil {
		return 0, err
	}
	var used uint64
	for i := uint64(0); i < a.max/8; i++ {
		used += popCnt(blk[i])
	}
	for n := a.max / 8 * 8; n < a.max; n++ {
		if IsSet(blk, n) {
			used++
		}
	}
	return a.max - used, nil
}
