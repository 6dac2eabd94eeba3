package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/rohits-web03/modvault/internal/cli"
	"github.com/rohits-web03/modvault/internal/config"
	"github.com/rohits-web03/modvault/internal/logger"
)

func main() {
	logger.Init(config.Load().Environment)
	defer logger.Sync()
	cli.Execute()
}
