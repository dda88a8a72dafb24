package inode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/disk"
)

func TestLayoutConstants(t *testing.T) {
	assert.Equal(t, uint64(41), encodedSz)
	assert.True(t, encodedSz <= common.INODESZ)
	assert.Equal(t, uint64(9), blksOff)
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)
	blk := make([]byte, disk.BlockSize)
	ip := &Inode{Size: 15, Owner: 4, Perm: 3, Kind: common.KindDir, Nlink: 1}
	ip.Blks[1] = 4
	ip.Encode(blk, common.INODESZ)

	got := Decode(blk, common.INODESZ)
	assert.Equal(uint32(15), got.Size)
	assert.Equal(uint16(4), got.Owner)
	assert.Equal(uint8(3), got.Perm)
	assert.Equal(common.KindDir, got.Kind)
	assert.Equal(uint8(1), got.Nlink)
	assert.Equal(common.Bnum(4), got.Blks[1])
	assert.Equal(common.Bnum(0), got.Blks[0])

	for _, b := range blk[:common.INODESZ] {
		assert.Equal(byte(0), b, "neighboring record untouched")
	}
}

func TestDecodeByteLayout(t *testing.T) {
	assert := assert.New(t)
	blk := make([]byte, disk.BlockSize)
	off := uint64(64)
	binary.LittleEndian.PutUint32(blk[off+0:], 0x01020304)
	binary.LittleEndian.PutUint16(blk[off+4:], 0xbeef)
	blk[off+6] = 7
	blk[off+7] = 1
	blk[off+8] = 3
	binary.LittleEndian.PutUint16(blk[off+9+2*15:], 1023)

	ip := Decode(blk, off)
	assert.Equal(uint32(0x01020304), ip.Size)
	assert.Equal(uint16(0xbeef), ip.Owner)
	assert.Equal(uint8(7), ip.Perm)
	assert.Equal(common.KindFile, ip.Kind)
	assert.Equal(uint8(3), ip.Nlink)
	assert.Equal(common.Bnum(1023), ip.Blks[15])
}

func TestDecodeUnknownKind(t *testing.T) {
	blk := make([]byte, common.INODESZ)
	blk[kindOff] = 9
	ip := Decode(blk, 0)
	assert.Equal(t, common.Kind(9), ip.Kind)
	assert.Equal(t, "unknown", ip.Kind.String())
}

func TestEncodeClearsPadding(t *testing.T) {
	blk := make([]byte, common.INODESZ)
	for i := range blk {
		blk[i] = 0xaa
	}
	ip := &Inode{}
	ip.Encode(blk, 0)
	assert.Equal(t, make([]byte, common.INODESZ), blk)
}
