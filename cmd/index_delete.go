package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/core"
)

func IndexDelete(logger hclog.Logger, cfg *config.Config) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &indexDelete{
			logger: logger,
			cfg:    cfg,
		}, nil
	}
}

type indexDelete struct {
	logger hclog.Logger
	cfg    *config.Config
}

func (c *indexDelete) Synopsis() string {
	return "Deletes an index"
}

func (c *indexDelete) Help() string {
	return `
picmeta index rm <indexName>

indexName: Name of index to delete`
}

func (c *indexDelete) Run(args []string) int {
	if len(args) != 1 {
		return cli.RunResultHelp
	}
	indexName := args[0]
	if err := core.IndexDelete(c.logger, c.cfg.DBPath, indexName); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
