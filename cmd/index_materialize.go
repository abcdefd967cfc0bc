package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/core"
)

func IndexMaterialize(logger hclog.Logger, cfg *config.Config) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &indexMaterialize{
			logger: logger,
			cfg:    cfg,
		}, nil
	}
}

type indexMaterialize struct {
	logger hclog.Logger
	cfg    *config.Config
}

func (c *indexMaterialize) Synopsis() string {
	return "Copies the kept images of an index into a date layout"
}

func (c *indexMaterialize) Help() string {
	return `
Copies without duplicates every indexed image that is not tagged for
deletion into <rootPath>/YYYY/MM, or <rootPath>/undated when no date is
known. Files without any metadata are left out.

picmeta index materialize <indexName> <rootPath>

indexName: Name of index to use
rootPath:  Path of the root folder to target`
}

func (c *indexMaterialize) Run(args []string) int {
	if len(args) != 2 {
		return cli.RunResultHelp
	}
	indexName := args[0]
	rootPath := args[1]
	if err := core.Materialize(c.logger, c.cfg.DBPath, indexName, rootPath); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
