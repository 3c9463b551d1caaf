// Package main is the entry point for the playspan application.
package main

import (
	"github.com/playspan/playspan/cmd"
	"github.com/playspan/playspan/config"
	"github.com/playspan/playspan/internal/cache"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage(where.Temp(), cache.TempTTL)

	cmd.Execute()
}
