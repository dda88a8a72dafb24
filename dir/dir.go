// Package dir reads directories. A directory is an ordinary inode whose
// data is a packed array of 32-byte entries: a little-endian u16 inode
// number at offset 0 and a 16-byte NUL-padded name at offset 2.
package dir

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/disk"
	"github.com/mit-pdos/simfs/inode"
	"github.com/mit-pdos/simfs/util"
)

const (
	inumOff uint64 = 0
	nameOff uint64 = 2
)

var (
	ErrClosed      = errors.New("dir: directory is closed")
	ErrCorrupt     = errors.New("dir: offset not backed by a block")
	ErrNameTooLong = errors.New("dir: name too long")
	ErrBadEntry    = errors.New("dir: inode number does not fit an entry")
)

type Entry struct {
	Inum common.Inum
	Name string
}

// EncodeEntry writes e at blk[off:off+DIRENTSZ]. A name shorter than
// NAMELEN is NUL-terminated; one of exactly NAMELEN bytes fills the field.
func EncodeEntry(blk []byte, off uint64, e Entry) error {
	if uint64(len(e.Name)) > common.NAMELEN {
		return errors.Wrapf(ErrNameTooLong, "%q", e.Name)
	}
	if e.Inum > 0xffff {
		return errors.Wrapf(ErrBadEntry, "inode %d", e.Inum)
	}
	b := blk[off : off+common.DIRENTSZ]
	for i := range b {
		b[i] = 0
	}
	binary.LittleEndian.PutUint16(b[inumOff:], uint16(e.Inum))
	copy(b[nameOff:nameOff+common.NAMELEN], e.Name)
	return nil
}

func DecodeEntry(blk []byte, off uint64) Entry {
	b := blk[off : off+common.DIRENTSZ]
	name := b[nameOff : nameOff+common.NAMELEN]
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return Entry{
		Inum: common.Inum(binary.LittleEndian.Uint16(b[inumOff:])),
		Name: string(name[:n]),
	}
}

// MkDirBlock returns the first data block of a new directory: "." naming
// self and ".." naming parent.
func MkDirBlock(self common.Inum, parent common.Inum) (disk.Block, error) {
	blk := make(disk.Block, disk.BlockSize)
	if err := EncodeEntry(blk, 0, Entry{Inum: self, Name: "."}); err != nil {
		return nil, err
	}
	if err := EncodeEntry(blk, common.DIRENTSZ, Entry{Inum: parent, Name: ".."}); err != nil {
		return nil, err
	}
	return blk, nil
}

// Dir is a read cursor over a directory. It holds one reference to the
// directory's in-core inode from Open until Close.
type Dir struct {
	ic  *inode.Icache
	ip  *inode.Inode
	off uint64
}

// Open acquires inum and positions the cursor at the first entry.
func Open(ic *inode.Icache, inum common.Inum) (*Dir, error) {
	ip, err := ic.Acquire(inum)
	if err != nil {
		return nil, err
	}
	util.DPrintf(5, "dir.Open # %d size %d\n", inum, ip.Size)
	return &Dir{ic: ic, ip: ip, off: 0}, nil
}

func (d *Dir) Inode() *inode.Inode {
	return d.ip
}

func (d *Dir) Offset() uint64 {
	return d.off
}

// Next returns the entry at the cursor and advances past it. At the end of
// the directory it returns io.EOF and the cursor stays put.
func (d *Dir) Next() (Entry, error) {
	if d.ip == nil {
		return Entry{}, ErrClosed
	}
	if d.off >= uint64(d.ip.Size) {
		return Entry{}, io.EOF
	}
	bn := d.off / disk.BlockSize
	if bn >= common.NDIRECT || d.ip.Blks[bn] == common.NULLBNUM {
		return Entry{}, errors.Wrapf(ErrCorrupt, "inode %d offset %d", d.ip.Inum, d.off)
	}
	blk, err := d.ic.Disk().Read(d.ip.Blks[bn])
	if err != nil {
		return Entry{}, err
	}
	e := DecodeEntry(blk, d.off%disk.BlockSize)
	d.off += common.DIRENTSZ
	return e, nil
}

// Close releases the directory's inode. The cursor is unusable afterwards
// unless the release failed, in which case Close may be retried.
func (d *Dir) Close() error {
	if d.ip == nil {
		return ErrClosed
	}
	if err := d.ic.Release(d.ip); err != nil {
		return err
	}
	d.ip = nil
	return nil
}
