package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/core"
)

func IndexAdd(logger hclog.Logger, cfg *config.Config) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &indexAdd{
			logger: logger,
			cfg:    cfg,
		}, nil
	}
}

type indexAdd struct {
	logger hclog.Logger
	cfg    *config.Config
}

func (c *indexAdd) Synopsis() string {
	return "Resolves image metadata for a folder tree"
}

func (c *indexAdd) Help() string {
	return `
Recursively scans all of the files in a folder tree, resolves their image
metadata and records it in an index keyed by content hash. The index will
be created if it doesn't exist, or if it does exist then new files will be
added to it.

Files are resolved by PICMETA_WORKERS workers, and any file taking longer
than PICMETA_FILE_TIMEOUT_SEC is recorded without metadata.

picmeta index add <indexName> <rootPath>

indexName: Name of index to use
rootPath:  Path of the root folder to scan`
}

func (c *indexAdd) Run(args []string) int {
	if len(args) != 2 {
		return cli.RunResultHelp
	}
	indexName := args[0]
	rootPath := args[1]
	if err := core.IndexAdd(c.logger, c.cfg, indexName, rootPath); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
