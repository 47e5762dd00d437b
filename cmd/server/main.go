package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/dreamtracer/internal/buildinfo"
	"github.com/dmitrijs2005/dreamtracer/internal/server"
	"github.com/dmitrijs2005/dreamtracer/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
