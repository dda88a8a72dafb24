package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/simfs/common"
)

func TestMkBitAddr(t *testing.T) {
	assert := assert.New(t)
	a := MkBitAddr(common.DATABITMAP, 3)
	assert.Equal(common.DATABITMAP, a.Blkno)
	assert.Equal(uint64(3), a.Off)

	a = MkBitAddr(common.DATABITMAP, common.NBITBLOCK+5)
	assert.Equal(common.DATABITMAP+1, a.Blkno, "bit spills into next block")
	assert.Equal(uint64(5), a.Off)
}

func TestByteOff(t *testing.T) {
	a := MkAddr(common.INODESTART, 2*common.INODESZ*8)
	assert.Equal(t, 2*common.INODESZ, a.ByteOff())
	assert.Equal(t, uint64(common.INODESTART)*common.NBITBLOCK+a.Off, a.Flatid())
}
