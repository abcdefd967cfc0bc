package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/core"
)

func Inspect(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &inspect{
			logger: logger,
		}, nil
	}
}

type inspect struct {
	logger hclog.Logger
}

func (c *inspect) Synopsis() string {
	return "Shows the metadata resolved for one file"
}

func (c *inspect) Help() string {
	return `
Resolves a single file and prints its outcome (resolved, degraded or
absent) along with orientation, dimensions, date taken, delete tag and
unique ID. No database is needed.

picmeta inspect <path>

path: Path of the image file`
}

func (c *inspect) Run(args []string) int {
	if len(args) != 1 {
		return cli.RunResultHelp
	}
	if err := core.Inspect(c.logger, args[0]); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
