package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/indelible-labs/indelibled/internal/config"
	httpservice "github.com/indelible-labs/indelibled/internal/interface/http"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Version will be set during build time
var Version string

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "indelibled"
	app.Usage = "serve an on-chain generative art collection"
	app.Flags = config.Flags
	app.Action = startAction
	app.Commands = []*cli.Command{
		allowlistCommand,
		signCommand,
		versionCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func startAction(c *cli.Context) error {
	cfg, err := config.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	svcConfig := httpservice.Config{
		Port:              cfg.Port,
		CORSAllowOrigins:  cfg.CORSAllowOrigins,
		EnableMetrics:     cfg.EnableMetrics,
		EnableDevLedger:   cfg.EnableDevLedger,
		HeartbeatInterval: cfg.HeartbeatInterval,
	}

	svc, err := httpservice.NewService(Version, svcConfig, cfg)
	if err != nil {
		return err
	}

	log.Infof("indelibled config: %s", cfg)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return err
	}

	log.RegisterExitHandler(svc.Stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)

	return nil
}
