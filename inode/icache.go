package inode

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/simfs/alloc"
	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/disk"
	"github.com/mit-pdos/simfs/super"
	"github.com/mit-pdos/simfs/util"
)

var (
	ErrNoCapacity = errors.New("inode: cache exhausted")
	ErrBadInum    = errors.New("inode: inode number out of range")
	ErrResident   = errors.New("inode: free inode number is in use in-core")
	ErrBadPointer = errors.New("inode: block pointer does not fit 16 bits")
)

// Icache is the table of in-core inodes of one mounted image. At most one
// occupied slot represents a given inode number, so holders of the same
// number share one *Inode. Changes reach the disk when the last holder
// releases it, or on Persist.
//
// Icache does no locking; see fs.Fs.Lock.
type Icache struct {
	sup    *super.FsSuper
	ialloc *alloc.Alloc
	slots  []Inode
}

func MkIcache(sup *super.FsSuper, ialloc *alloc.Alloc, nslot uint64) *Icache {
	return &Icache{
		sup:    sup,
		ialloc: ialloc,
		slots:  make([]Inode, nslot),
	}
}

// Disk is the block store behind the cache's inode table.
func (ic *Icache) Disk() disk.Disk {
	return ic.sup.Disk
}

func (ic *Icache) Cap() uint64 {
	return uint64(len(ic.slots))
}

// FindOccupied returns the in-core inode for inum, or nil if it is not
// resident.
func (ic *Icache) FindOccupied(inum common.Inum) *Inode {
	for i := range ic.slots {
		ip := &ic.slots[i]
		if ip.ref != 0 && ip.Inum == inum {
			return ip
		}
	}
	return nil
}

// FindFreeSlot returns the lowest free slot, or nil if the cache is full.
func (ic *Icache) FindFreeSlot() *Inode {
	for i := range ic.slots {
		if ic.slots[i].ref == 0 {
			return &ic.slots[i]
		}
	}
	return nil
}

func (ic *Icache) checkInum(inum common.Inum) error {
	if uint64(inum) >= ic.sup.NInode() {
		return errors.Wrapf(ErrBadInum, "inode %d of %d", inum, ic.sup.NInode())
	}
	return nil
}

func (ic *Icache) readInode(ip *Inode, inum common.Inum) error {
	a := ic.sup.Inum2Addr(inum)
	blk, err := ic.sup.Disk.Read(a.Blkno)
	if err != nil {
		return err
	}
	*ip = Decode(blk, a.ByteOff())
	ip.Inum = inum
	return nil
}

// Acquire returns the in-core inode for inum with one more reference. A
// resident inode is returned as is; otherwise it is read into a free slot.
func (ic *Icache) Acquire(inum common.Inum) (*Inode, error) {
	if err := ic.checkInum(inum); err != nil {
		return nil, err
	}
	ip := ic.FindOccupied(inum)
	if ip != nil {
		ip.ref++
		util.DPrintf(5, "Acquire # %d: resident, ref %d\n", inum, ip.ref)
		return ip, nil
	}
	ip = ic.FindFreeSlot()
	if ip == nil {
		util.DPrintf(1, "Acquire # %d: cache full\n", inum)
		return nil, ErrNoCapacity
	}
	if err := ic.readInode(ip, inum); err != nil {
		return nil, err
	}
	ip.ref = 1
	util.DPrintf(5, "Acquire # %d: read %v\n", inum, ip)
	return ip, nil
}

// Allocate takes the lowest free inode number from the inode bitmap and
// returns a zeroed in-core inode for it with one reference. The zeroed
// fields are written back on the final Release. If the number is already
// resident the cache and bitmap disagree; the bit is cleared again and
// ErrResident returned without touching the resident inode.
func (ic *Icache) Allocate() (*Inode, error) {
	n, err := ic.ialloc.AllocNum()
	if err != nil {
		return nil, err
	}
	inum := common.Inum(n)
	if err := ic.checkInum(inum); err != nil {
		return nil, err
	}
	if ic.FindOccupied(inum) != nil {
		// someone holds an inode the bitmap calls free; leave it alone
		if err := ic.ialloc.FreeNum(n); err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(ErrResident, "inode %d", inum)
	}
	ip := ic.FindFreeSlot()
	if ip == nil {
		// give the number back; nothing holds it
		if err := ic.ialloc.FreeNum(n); err != nil {
			return nil, err
		}
		return nil, ErrNoCapacity
	}
	*ip = Inode{Inum: inum, ref: 1}
	util.DPrintf(1, "Allocate -> # %d\n", inum)
	return ip, nil
}

// Release drops one reference to ip. Dropping the last one writes ip back;
// if that write fails ip keeps its reference and the error is returned.
// Releasing an inode with no references does nothing.
func (ic *Icache) Release(ip *Inode) error {
	if ip.ref == 0 {
		return nil
	}
	ip.ref--
	if ip.ref == 0 {
		if err := ic.Persist(ip); err != nil {
			ip.ref = 1
			return err
		}
		util.DPrintf(5, "Release # %d: written back\n", ip.Inum)
	}
	return nil
}

// Persist writes ip to its on-disk slot regardless of its references.
func (ic *Icache) Persist(ip *Inode) error {
	if err := ic.checkInum(ip.Inum); err != nil {
		return err
	}
	for i, bn := range ip.Blks {
		if bn > maxBnum {
			return errors.Wrapf(ErrBadPointer, "inode %d Blks[%d] = %d", ip.Inum, i, bn)
		}
	}
	a := ic.sup.Inum2Addr(ip.Inum)
	blk, err := ic.sup.Disk.Read(a.Blkno)
	if err != nil {
		return err
	}
	ip.Encode(blk, a.ByteOff())
	util.DPrintf(10, "Persist %v\n", ip)
	return ic.sup.Disk.Write(a.Blkno, blk)
}

// Flush persists every resident inode.
func (ic *Icache) Flush() error {
	for i := range ic.slots {
		ip := &ic.slots[i]
		if ip.ref == 0 {
			continue
		}
		if err := ic.Persist(ip); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll frees every slot without writing anything back. Unflushed changes
// are lost.
func (ic *Icache) ClearAll() {
	for i := range ic.slots {
		ic.slots[i] = Inode{}
	}
}
