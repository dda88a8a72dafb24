// Package disk is the block store underneath simfs: fixed-size block reads
// and writes against a backing image.
package disk

import (
	"github.com/pkg/errors"
	gdisk "github.com/tchajed/goose/machine/disk"
)

// Block is a BlockSize-byte buffer
type Block = []byte

const BlockSize uint64 = gdisk.BlockSize

var (
	ErrOutOfRange = errors.New("disk: block number out of range")
	ErrBadBlock   = errors.New("disk: buffer is not block-sized")
)

// Disk provides access to a logical block-based disk
type Disk interface {
	// Read reads a disk block by address
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a and stores the result in b
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks
	Size() (uint64, error)

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}

// Ident names the image behind a disk. Two disks with equal Idents refer to
// the same backing storage.
type Ident struct {
	Dev uint64
	Ino uint64
}

// Identifier is implemented by disks that can name their backing image.
type Identifier interface {
	Ident() Ident
}

func checkBlock(v Block) error {
	if uint64(len(v)) != BlockSize {
		return errors.Wrapf(ErrBadBlock, "%d bytes", len(v))
	}
	return nil
}

func checkRange(a uint64, numBlocks uint64) error {
	if a >= numBlocks {
		return errors.Wrapf(ErrOutOfRange, "block %d of %d", a, numBlocks)
	}
	return nil
}
