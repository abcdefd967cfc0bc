package main

import (
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	picmetacmd "github.com/slackpad/picmeta/cmd"
	"github.com/slackpad/picmeta/config"
)

var appName = "picmeta"
var appVersion = "0.0.1"

func main() {
	cfg := config.Load()
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  appName,
		Level: hclog.LevelFromString(cfg.LogLevel),
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"init":              picmetacmd.DoInit(logger, cfg),
		"inspect":           picmetacmd.Inspect(logger),
		"index add":         picmetacmd.IndexAdd(logger, cfg),
		"index cat":         picmetacmd.IndexCat(logger, cfg),
		"index ls":          picmetacmd.IndexList(logger, cfg),
		"index materialize": picmetacmd.IndexMaterialize(logger, cfg),
		"index rm":          picmetacmd.IndexDelete(logger, cfg),
		"index stats":       picmetacmd.IndexStats(logger, cfg),
		"index tagged":      picmetacmd.IndexTagged(logger, cfg),
	}

	exitStatus, err := c.Run()
	if err != nil {
		logger.Error(err.Error())
	}

	os.Exit(exitStatus)
}
