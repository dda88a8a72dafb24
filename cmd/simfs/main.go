// Command simfs formats and lists simfs disk images.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/disk"
	"github.com/mit-pdos/simfs/fs"
	"github.com/mit-pdos/simfs/util"
)

func loadConfig(ctx *cli.Context) (*Config, error) {
	c, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	c.override(ctx)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	util.SetDebug(c.Debug)
	return c, nil
}

func mkfs(c *Config) error {
	d, err := disk.NewFileDisk(c.Image, c.Blocks, true)
	if err != nil {
		return errors.Wrapf(err, "opening %s", c.Image)
	}
	defer d.Close()
	if err := fs.Mkfs(d); err != nil {
		return errors.Wrapf(err, "formatting %s", c.Image)
	}
	logrus.Infof("formatted %s: %d blocks", c.Image, c.Blocks)
	return nil
}

func ls(c *Config, w io.Writer) error {
	d, err := disk.OpenFileDisk(c.Image)
	if err != nil {
		return errors.Wrapf(err, "opening %s", c.Image)
	}
	defer d.Close()
	fsys, err := fs.Mount(d, c.Cache)
	if err != nil {
		return errors.Wrapf(err, "mounting %s", c.Image)
	}
	ents, err := fsys.ReadDir(common.ROOTINUM)
	if err != nil {
		return err
	}
	for _, e := range ents {
		fmt.Fprintf(w, "%d %s\n", e.Inum, e.Name)
	}
	return fsys.Unmount()
}

func newApp(w io.Writer) *cli.App {
	return &cli.App{
		Name:  "simfs",
		Usage: "format and inspect simfs disk images",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "path to the disk image"},
			&cli.Uint64Flag{Name: "blocks", Usage: "image size in blocks"},
			&cli.Uint64Flag{Name: "cache", Usage: "in-core inode slots"},
			&cli.Uint64Flag{Name: "debug", Usage: "debug trace level"},
		},
		Commands: []*cli.Command{
			{
				Name:  "mkfs",
				Usage: "create an empty filesystem, discarding the image's contents",
				Action: func(ctx *cli.Context) error {
					c, err := loadConfig(ctx)
					if err != nil {
						return err
					}
					return mkfs(c)
				},
			},
			{
				Name:  "ls",
				Usage: "list the root directory",
				Action: func(ctx *cli.Context) error {
					c, err := loadConfig(ctx)
					if err != nil {
						return err
					}
					return ls(c, w)
				},
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
