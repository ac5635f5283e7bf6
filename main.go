// Package main is the entry point for the playctl application.
package main

import (
	"github.com/playctl/playctl/cmd"
	"github.com/playctl/playctl/config"
	"github.com/playctl/playctl/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
