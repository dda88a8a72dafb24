package super

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/disk"
)

func TestGeometry(t *testing.T) {
	assert := assert.New(t)
	fs, err := MkFsSuper(disk.NewMemDisk(common.NBLOCKS))
	require.NoError(t, err)
	assert.Equal(common.NINODE, fs.NInode())
	assert.Equal(common.Bnum(common.NRESERVED), fs.DataStart())
	assert.Equal(uint64(7), common.NRESERVED)

	a := fs.Inum2Addr(1)
	assert.Equal(common.INODESTART, a.Blkno)
	assert.Equal(common.INODESZ, a.ByteOff())

	a = fs.Inum2Addr(common.Inum(common.INODEBLK + 2))
	assert.Equal(common.INODESTART+1, a.Blkno)
	assert.Equal(2*common.INODESZ, a.ByteOff())
}

func TestTooSmall(t *testing.T) {
	_, err := MkFsSuper(disk.NewMemDisk(common.NRESERVED))
	assert.Error(t, err)
}

func TestWriteLoad(t *testing.T) {
	d := disk.NewMemDisk(common.NBLOCKS)
	fs, err := MkFsSuper(d)
	require.NoError(t, err)
	require.NoError(t, fs.Write())

	fs2, err := Load(d)
	require.NoError(t, err)
	assert.Equal(t, fs.NBlock, fs2.NBlock)
	assert.Equal(t, fs.NInodeBlk, fs2.NInodeBlk)
}

func TestLoadSizeMismatch(t *testing.T) {
	fs, err := MkFsSuper(disk.NewMemDisk(common.NBLOCKS))
	require.NoError(t, err)
	small := disk.NewMemDisk(64)
	require.NoError(t, small.Write(common.SUPERBLK, fs.Encode()))
	_, err = Load(small)
	assert.True(t, errors.Is(err, ErrBadSuper))
}


func TestLoadReferenceLayout(t *testing.T) {
	assert := assert.New(t)
	fs, err := Load(disk.NewMemDisk(common.NBLOCKS))
	require.NoError(t, err, "zero block 0 means no superblock")
	assert.Equal(common.NBLOCKS, fs.NBlock)
	assert.Equal(common.NINODEBLK, fs.NInodeBlk)
	assert.Equal(common.Bnum(common.NRESERVED), fs.DataStart())
}

func TestLoadGarbage(t *testing.T) {
	d := disk.NewMemDisk(common.NBLOCKS)
	blk := make(disk.Block, disk.BlockSize)
	blk[100] = 1
	require.NoError(t, d.Write(common.SUPERBLK, blk))
	_, err := Load(d)
	assert.True(t, errors.Is(err, ErrBadSuper), "non-zero block 0 must carry the magic")
}
