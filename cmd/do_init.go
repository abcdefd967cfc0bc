package cmd

import (
	"fmt"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/core"
)

// DoInit returns a CommandFactory for creating the picmeta database.
func DoInit(logger hclog.Logger, cfg *config.Config) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &doInit{
			logger: logger,
			cfg:    cfg,
		}, nil
	}
}

type doInit struct {
	logger hclog.Logger
	cfg    *config.Config
}

func (c *doInit) Synopsis() string {
	return "Create an empty picmeta database"
}

func (c *doInit) Help() string {
	return `Usage: picmeta init

Create the database that holds the image indexes. The location is taken
from PICMETA_DB and defaults to picmeta.db in the current directory.

If a database already exists, this command will fail.
`
}

func (c *doInit) Run(args []string) int {
	if len(args) != 0 {
		c.logger.Error("init command takes no arguments")
		return cli.RunResultHelp
	}

	if err := core.CreateDB(c.logger, c.cfg.DBPath); err != nil {
		c.logger.Error("failed to initialize database", "error", err)
		return 1
	}

	fmt.Println("picmeta database initialized successfully")
	return 0
}
