// Package fs builds, mounts and lists simfs images.
package fs

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mit-pdos/simfs/alloc"
	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/dir"
	"github.com/mit-pdos/simfs/disk"
	"github.com/mit-pdos/simfs/inode"
	"github.com/mit-pdos/simfs/lockmap"
	"github.com/mit-pdos/simfs/super"
	"github.com/mit-pdos/simfs/util"
)

const maxDirEnts = common.NDIRECT * disk.BlockSize / common.DIRENTSZ

// one coarse lock per image, shared by every Fs in the process
var imageLocks = lockmap.MkLockMap()

func imageKey(d disk.Disk) interface{} {
	if id, ok := d.(disk.Identifier); ok {
		return id.Ident()
	}
	return d
}

// Fs is a mounted image. Its inode cache lives and dies with the mount.
type Fs struct {
	Disk   disk.Disk
	Super  *super.FsSuper
	Ialloc *alloc.Alloc
	Balloc *alloc.Alloc
	Icache *inode.Icache
	key    interface{}
}

// Mkfs lays out an empty filesystem on d: every block zeroed, the
// superblock written, the metadata blocks marked used in the data bitmap,
// and a root directory at inode 0 whose "." and ".." both name itself.
func Mkfs(d disk.Disk) error {
	sup, err := super.MkFsSuper(d)
	if err != nil {
		return err
	}
	zero := make(disk.Block, disk.BlockSize)
	for bn := uint64(0); bn < sup.NBlock; bn++ {
		if err := d.Write(bn, zero); err != nil {
			return errors.Wrapf(err, "zeroing block %d", bn)
		}
	}

	balloc := alloc.MkBlockAlloc(d, sup.NBlock)
	for i := uint64(0); i < uint64(sup.DataStart()); i++ {
		if _, err := balloc.AllocNum(); err != nil {
			return errors.Wrap(err, "reserving metadata blocks")
		}
	}
	if err := sup.Write(); err != nil {
		return errors.Wrap(err, "writing superblock")
	}

	ic := inode.MkIcache(sup, alloc.MkInodeAlloc(d, sup.NInode()), 1)
	root, err := ic.Allocate()
	if err != nil {
		return errors.Wrap(err, "allocating root inode")
	}
	if root.Inum != common.ROOTINUM {
		return errors.Errorf("root allocated at inode %d", root.Inum)
	}
	bn, err := balloc.AllocNum()
	if err != nil {
		return errors.Wrap(err, "allocating root block")
	}
	blk, err := dir.MkDirBlock(common.ROOTINUM, common.ROOTINUM)
	if err != nil {
		return err
	}
	if err := d.Write(bn, blk); err != nil {
		return errors.Wrap(err, "writing root directory")
	}
	root.Kind = common.KindDir
	root.Nlink = 2
	root.Blks[0] = bn
	root.Size = uint32(2 * common.DIRENTSZ)
	if err := ic.Release(root); err != nil {
		return errors.Wrap(err, "writing root inode")
	}
	util.DPrintf(1, "Mkfs: %d blocks, root block %d\n", sup.NBlock, bn)
	return d.Barrier()
}

// Mount opens the filesystem on d with an empty inode cache of nslot
// slots.
func Mount(d disk.Disk, nslot uint64) (*Fs, error) {
	sup, err := super.Load(d)
	if err != nil {
		return nil, err
	}
	if nslot == 0 {
		return nil, errors.New("fs: inode cache needs at least one slot")
	}
	ialloc := alloc.MkInodeAlloc(d, sup.NInode())
	fs := &Fs{
		Disk:   d,
		Super:  sup,
		Ialloc: ialloc,
		Balloc: alloc.MkBlockAlloc(d, sup.NBlock),
		Icache: inode.MkIcache(sup, ialloc, nslot),
		key:    imageKey(d),
	}
	util.DPrintf(1, "Mount: %d blocks, %d inodes\n", sup.NBlock, sup.NInode())
	return fs, nil
}

// Unmount writes back every resident inode and empties the cache. The disk
// stays open; closing it is up to the caller.
func (fs *Fs) Unmount() error {
	if err := fs.Icache.Flush(); err != nil {
		return err
	}
	fs.Icache.ClearAll()
	return fs.Disk.Barrier()
}

// Lock takes the image's coarse lock. Hosts that share an image between
// goroutines hold it around each allocate/acquire/release sequence.
func (fs *Fs) Lock() {
	imageLocks.Acquire(fs.key)
}

func (fs *Fs) Unlock() {
	imageLocks.Release(fs.key)
}

// ReadDir returns every entry of directory inum in on-disk order.
func (fs *Fs) ReadDir(inum common.Inum) ([]dir.Entry, error) {
	d, err := dir.Open(fs.Icache, inum)
	if err != nil {
		return nil, err
	}
	n := util.RoundUp(uint64(d.Inode().Size), common.DIRENTSZ)
	if n > maxDirEnts {
		n = maxDirEnts
	}
	ents := make([]dir.Entry, 0, n)
	for {
		e, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if cerr := d.Close(); cerr != nil {
				util.DPrintf(1, "ReadDir # %d: close: %v\n", inum, cerr)
				return nil, errors.Wrapf(err, "close failed too (%v)", cerr)
			}
			return nil, err
		}
		ents = append(ents, e)
	}
	if err := d.Close(); err != nil {
		return nil, err
	}
	return ents, nil
}
