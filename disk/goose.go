package disk

import (
	"github.com/pkg/errors"
	gdisk "github.com/tchajed/goose/machine/disk"
)

var _ Disk = (*gooseDisk)(nil)

// gooseDisk turns the panics of a goose disk into errors.
type gooseDisk struct {
	d     gdisk.Disk
	ident Ident
}

// FromGoose adapts a goose disk, which reports failure by panicking.
func FromGoose(d gdisk.Disk) *gooseDisk {
	return &gooseDisk{d: d, ident: newMemIdent()}
}

func catch(err *error) {
	if r := recover(); r != nil {
		*err = errors.Errorf("disk: %v", r)
	}
}

func (g *gooseDisk) Read(a uint64) (blk Block, err error) {
	defer catch(&err)
	if err := checkRange(a, g.d.Size()); err != nil {
		return nil, err
	}
	return g.d.Read(a), nil
}

func (g *gooseDisk) ReadTo(a uint64, b Block) error {
	if err := checkBlock(b); err != nil {
		return err
	}
	blk, err := g.Read(a)
	if err != nil {
		return err
	}
	copy(b, blk)
	return nil
}

func (g *gooseDisk) Write(a uint64, v Block) (err error) {
	defer catch(&err)
	if err := checkBlock(v); err != nil {
		return err
	}
	if err := checkRange(a, g.d.Size()); err != nil {
		return err
	}
	g.d.Write(a, v)
	return nil
}

func (g *gooseDisk) Size() (n uint64, err error) {
	defer catch(&err)
	return g.d.Size(), nil
}

func (g *gooseDisk) Barrier() (err error) {
	defer catch(&err)
	g.d.Barrier()
	return nil
}

func (g *gooseDisk) Close() (err error) {
	defer catch(&err)
	g.d.Close()
	return nil
}

func (g *gooseDisk) Ident() Ident {
	return g.ident
}
