package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/simfs/disk"
)

func TestMkfsThenLs(t *testing.T) {
	img := filepath.Join(t.TempDir(), "test_image")
	var out bytes.Buffer

	require.NoError(t, newApp(&out).Run([]string{"simfs", "--image", img, "mkfs"}))
	fi, err := os.Stat(img)
	require.NoError(t, err)
	assert.Equal(t, int64(1024*4096), fi.Size())

	require.NoError(t, newApp(&out).Run([]string{"simfs", "--image", img, "ls"}))
	assert.Equal(t, "0 .\n0 ..\n", out.String())
}

func TestLsMissingImage(t *testing.T) {
	img := filepath.Join(t.TempDir(), "missing")
	app := newApp(&bytes.Buffer{})
	assert.Error(t, app.Run([]string{"simfs", "--image", img, "ls"}))
	_, err := os.Stat(img)
	assert.True(t, os.IsNotExist(err), "ls must not create the image")
}

func TestLsKeepsLargerImage(t *testing.T) {
	img := filepath.Join(t.TempDir(), "big")
	require.NoError(t, newApp(&bytes.Buffer{}).Run(
		[]string{"simfs", "--image", img, "--blocks", "2048", "mkfs"}))

	d, err := disk.OpenFileDisk(img)
	require.NoError(t, err)
	blk := make(disk.Block, disk.BlockSize)
	copy(blk, "precious")
	require.NoError(t, d.Write(2047, blk))
	require.NoError(t, d.Close())

	// default --blocks is 1024; ls must go by the file itself
	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run([]string{"simfs", "--image", img, "ls"}))
	assert.Equal(t, "0 .\n0 ..\n", out.String())

	fi, err := os.Stat(img)
	require.NoError(t, err)
	assert.Equal(t, int64(2048*4096), fi.Size(), "image not resized")
	d, err = disk.OpenFileDisk(img)
	require.NoError(t, err)
	defer d.Close()
	got, err := d.Read(2047)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(got[:8]))
}

func TestConfigFromEnv(t *testing.T) {
	os.Setenv("SIMFS_IMAGE", "env.img")
	os.Setenv("SIMFS_BLOCKS", "64")
	defer os.Unsetenv("SIMFS_IMAGE")
	defer os.Unsetenv("SIMFS_BLOCKS")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "env.img", c.Image)
	assert.Equal(t, uint64(64), c.Blocks)
	assert.Equal(t, uint64(64), c.Cache, "default")
	assert.NoError(t, c.Validate())
}

func TestConfigValidate(t *testing.T) {
	c := &Config{Image: "x", Blocks: 7, Cache: 1}
	assert.Error(t, c.Validate(), "too few blocks")
	c.Blocks = 1024
	c.Cache = 0
	assert.Error(t, c.Validate())
	c.Cache = 1
	c.Image = ""
	assert.Error(t, c.Validate())
}
