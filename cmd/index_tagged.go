package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/core"
)

func IndexTagged(logger hclog.Logger, cfg *config.Config) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &indexTagged{
			logger: logger,
			cfg:    cfg,
		}, nil
	}
}

type indexTagged struct {
	logger hclog.Logger
	cfg    *config.Config
}

func (c *indexTagged) Synopsis() string {
	return "Lists files tagged for deletion"
}

func (c *indexTagged) Help() string {
	return `
Prints one path per line for every file whose IPTC keywords include
"delete", in any letter case.

picmeta index tagged <indexName>

indexName: Name of index to use`
}

func (c *indexTagged) Run(args []string) int {
	if len(args) != 1 {
		return cli.RunResultHelp
	}
	indexName := args[0]
	if err := core.IndexTagged(c.logger, c.cfg.DBPath, indexName); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
