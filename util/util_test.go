package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(4), RoundUp(10, 3))
	assert.Equal(uint64(3), RoundUp(9, 3), "exact division")
	assert.Equal(uint64(0), RoundUp(0, 3))
	assert.Equal(uint64(5), RoundUp(4096*4+4095, 4096))
	assert.Equal(uint64(5), RoundUp(4096*4+1, 4096), "round up by sz-1")
}

func TestSetDebug(t *testing.T) {
	old := Debug
	defer func() { Debug = old }()
	SetDebug(3)
	assert.Equal(t, uint64(3), Debug)
	// must not panic at any level
	DPrintf(1, "level %d", 1)
	DPrintf(5, "level %d", 5)
}
