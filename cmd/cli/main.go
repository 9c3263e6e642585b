package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/medigenie/internal/bootstrap"
	"github.com/dmitrijs2005/medigenie/internal/buildinfo"
	"github.com/dmitrijs2005/medigenie/internal/client/cli"
	"github.com/dmitrijs2005/medigenie/internal/config"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogBackend, cfg.LogLevel, cfg.LogFormat)

	if err := cli.EnsureAPIKey(cfg, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

	svc, closeFn, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeFn()

	cli.NewApp(cfg, svc, os.Stdin, os.Stdout, logger).Run(ctx)

}
