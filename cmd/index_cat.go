package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/core"
)

func IndexCat(logger hclog.Logger, cfg *config.Config) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &indexCat{
			logger: logger,
			cfg:    cfg,
		}, nil
	}
}

type indexCat struct {
	logger hclog.Logger
	cfg    *config.Config
}

func (c *indexCat) Synopsis() string {
	return "Lists files and their metadata in an index"
}

func (c *indexCat) Help() string {
	return `
picmeta index cat <indexName>

indexName: Name of index to use`
}

func (c *indexCat) Run(args []string) int {
	if len(args) != 1 {
		return cli.RunResultHelp
	}
	indexName := args[0]
	if err := core.IndexCat(c.logger, c.cfg.DBPath, indexName); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
