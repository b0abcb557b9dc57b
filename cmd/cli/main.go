package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/metakeeper/internal/client/cli"
	"github.com/dmitrijs2005/metakeeper/internal/client/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}

}
