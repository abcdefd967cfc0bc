package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/core"
)

func IndexStats(logger hclog.Logger, cfg *config.Config) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &indexStats{
			logger: logger,
			cfg:    cfg,
		}, nil
	}
}

type indexStats struct {
	logger hclog.Logger
	cfg    *config.Config
}

func (c *indexStats) Synopsis() string {
	return "Shows outcome and orientation counts for an index"
}

func (c *indexStats) Help() string {
	return `
picmeta index stats <indexName>

indexName: Name of index to use`
}

func (c *indexStats) Run(args []string) int {
	if len(args) != 1 {
		return cli.RunResultHelp
	}
	indexName := args[0]
	if err := core.IndexStats(c.logger, c.cfg.DBPath, indexName); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
