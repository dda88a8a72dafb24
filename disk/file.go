package disk

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/simfs/util"
)

var _ Disk = (*fileDisk)(nil)

type fileDisk struct {
	fd        int
	numBlocks uint64
	ident     Ident
}

// NewFileDisk opens (creating if needed) the image at path and sizes it to
// numBlocks blocks. With truncate set any previous contents are discarded.
func NewFileDisk(path string, numBlocks uint64, truncate bool) (*fileDisk, error) {
	flags := unix.O_RDWR | unix.O_CREAT
	if truncate {
		flags |= unix.O_TRUNC
	}
	fd, err := unix.Open(path, flags, 0600)
	if err != nil {
		return nil, err
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if (stat.Mode&unix.S_IFMT) == unix.S_IFREG && uint64(stat.Size) != numBlocks*BlockSize {
		err = unix.Ftruncate(fd, int64(numBlocks*BlockSize))
		if err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	util.DPrintf(1, "NewFileDisk %s: %d blocks\n", path, numBlocks)
	d := &fileDisk{
		fd:        fd,
		numBlocks: numBlocks,
		ident:     Ident{Dev: uint64(stat.Dev), Ino: uint64(stat.Ino)},
	}
	return d, nil
}

// OpenFileDisk opens the existing image at path without creating or
// resizing it; its size in blocks comes from the file's length.
func OpenFileDisk(path string) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if uint64(stat.Size)%BlockSize != 0 {
		unix.Close(fd)
		return nil, errors.Errorf("disk: %s is %d bytes, not a whole number of blocks",
			path, stat.Size)
	}
	numBlocks := uint64(stat.Size) / BlockSize
	util.DPrintf(1, "OpenFileDisk %s: %d blocks\n", path, numBlocks)
	d := &fileDisk{
		fd:        fd,
		numBlocks: numBlocks,
		ident:     Ident{Dev: uint64(stat.Dev), Ino: uint64(stat.Ino)},
	}
	return d, nil
}

func (d *fileDisk) ReadTo(a uint64, buf Block) error {
	if err := checkBlock(buf); err != nil {
		return err
	}
	if err := checkRange(a, d.numBlocks); err != nil {
		return err
	}
	n, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		return err
	}
	if uint64(n) != BlockSize {
		return errors.Errorf("disk: short read at %d (%d bytes)", a, n)
	}
	util.DPrintf(20, "read: %d\n", a)
	return nil
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	buf := make([]byte, BlockSize)
	err := d.ReadTo(a, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *fileDisk) Write(a uint64, v Block) error {
	if err := checkBlock(v); err != nil {
		return err
	}
	if err := checkRange(a, d.numBlocks); err != nil {
		return err
	}
	n, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		return err
	}
	if uint64(n) != BlockSize {
		return errors.Errorf("disk: short write at %d (%d bytes)", a, n)
	}
	util.DPrintf(20, "write: %d\n", a)
	return nil
}

func (d *fileDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *fileDisk) Barrier() error {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; the correct replacement is fcntl with F_FULLFSYNC.
	return unix.Fsync(d.fd)
}

func (d *fileDisk) Close() error {
	return unix.Close(d.fd)
}

func (d *fileDisk) Ident() Ident {
	return d.ident
}
