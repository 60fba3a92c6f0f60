package main

import (
	"fmt"
	"os"

	"github.com/cillian-osullivan/globenew/conf"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/logic/lconsensus"
)

func main() {
	opts, err := conf.InitArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse args failed: %v\n", err)
		os.Exit(1)
	}

	config := conf.InitConfig("")
	conf.ApplyArgs(config, opts)

	log.Init(conf.DataPath("logs"), config.Log.Level)
	log.Info("starting, api version %d, %s", lconsensus.Version(), opts.String())

	appInitMain(config, opts)

	log.Info("initialization complete")
}
