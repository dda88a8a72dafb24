package disk

import (
	"sync"
	"sync/atomic"
)

var _ Disk = (*memDisk)(nil)

// memory disks get Dev = memDev and a fresh Ino each
const memDev uint64 = ^uint64(0)

var nextMemIno uint64

func newMemIdent() Ident {
	return Ident{Dev: memDev, Ino: atomic.AddUint64(&nextMemIno, 1)}
}

type memDisk struct {
	l      *sync.RWMutex
	blocks [][BlockSize]byte
	ident  Ident
}

func NewMemDisk(numBlocks uint64) *memDisk {
	blocks := make([][BlockSize]byte, numBlocks)
	return &memDisk{l: new(sync.RWMutex), blocks: blocks, ident: newMemIdent()}
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	if err := checkBlock(buf); err != nil {
		return err
	}
	d.l.RLock()
	defer d.l.RUnlock()
	if err := checkRange(a, uint64(len(d.blocks))); err != nil {
		return err
	}
	copy(buf, d.blocks[a][:])
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *memDisk) Write(a uint64, v Block) error {
	if err := checkBlock(v); err != nil {
		return err
	}
	d.l.Lock()
	defer d.l.Unlock()
	if err := checkRange(a, uint64(len(d.blocks))); err != nil {
		return err
	}
	copy(d.blocks[a][:], v)
	return nil
}

func (d *memDisk) Size() (uint64, error) {
	// this never changes so we assume it's safe to run lock-free
	return uint64(len(d.blocks)), nil
}

func (d *memDisk) Barrier() error { return nil }

func (d *memDisk) Close() error { return nil }

func (d *memDisk) Ident() Ident {
	return d.ident
}
