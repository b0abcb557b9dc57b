package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/metakeeper/internal/server"
	"github.com/dmitrijs2005/metakeeper/internal/server/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := server.IssueToken(os.Stdout, os.Args[2:], cfg); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
