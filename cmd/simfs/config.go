package main

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/simfs/common"
	"github.com/mit-pdos/simfs/super"
)

const envVarPrefix = "SIMFS"

type Config struct {
	Image  string `envconfig:"IMAGE"  default:"simfs.img"`
	Blocks uint64 `envconfig:"BLOCKS" default:"1024"`
	Cache  uint64 `envconfig:"CACHE"  default:"64"`
	Debug  uint64 `envconfig:"DEBUG"  default:"0"`
}

func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, errors.Wrap(err, "parsing environment variables")
	}
	return &c, nil
}

// override applies the command-line flags that were given.
func (c *Config) override(ctx *cli.Context) {
	if ctx.IsSet("image") {
		c.Image = ctx.String("image")
	}
	if ctx.IsSet("blocks") {
		c.Blocks = ctx.Uint64("blocks")
	}
	if ctx.IsSet("cache") {
		c.Cache = ctx.Uint64("cache")
	}
	if ctx.IsSet("debug") {
		c.Debug = ctx.Uint64("debug")
	}
}

func (c *Config) Validate() error {
	if c.Image == "" {
		return errors.New("missing required config: image (SIMFS_IMAGE)")
	}
	if c.Blocks <= common.NRESERVED || c.Blocks > super.MAXBLOCKS {
		return errors.Errorf("blocks must be in (%d, %d], got %d",
			common.NRESERVED, super.MAXBLOCKS, c.Blocks)
	}
	if c.Cache == 0 {
		return errors.New("cache must have at least one slot")
	}
	return nil
}
