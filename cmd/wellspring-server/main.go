// Command wellspring-server serves daily water-table estimates over a JSON
// HTTP API. It opens one data source at startup and answers discovery,
// neighbor and estimation queries against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hydrosense/wellspring/internal/config"
	"github.com/hydrosense/wellspring/internal/log"
	"github.com/hydrosense/wellspring/internal/server"
	"github.com/hydrosense/wellspring/internal/source"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		dataPath   = flag.String("data", "", "Data file (CSV, Excel or SQLite); overrides the config file")
		listenAddr = flag.String("listen", "", "HTTP listen address; overrides the config file")
		logFile    = flag.String("log-file", "", "Rotating log file; overrides the config file")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *dataPath != "" {
		cfg.Source.Path = *dataPath
		cfg.Source.Postgres = ""
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *logFile != "" {
		cfg.Server.LogFile = *logFile
	}
	if cfg.Source.Path == "" && cfg.Source.Postgres == "" {
		fmt.Fprintln(os.Stderr, "Error: no data source given (use -data or -config)")
		os.Exit(2)
	}

	var err error
	if cfg.Server.LogFile != "" {
		err = log.InitWithFile(*debug, cfg.Server.LogFile)
	} else {
		err = log.Init(*debug)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	src, err := cfg.OpenSource(logger)
	if err != nil {
		logger.Fatalf("error opening data source: %v", err)
	}
	defer src.Close()

	logger.Infof("data source ready: schema %+v, date strategy %s",
		src.Schema(), src.DateStrategy())
	if src.DateStrategy() == source.DateSynthetic {
		logger.Warn("dates in this source could not be interpreted; all timelines are synthetic")
	}

	ctrl, err := server.NewController(cfg.Server.ListenAddr, src, logger)
	if err != nil {
		logger.Fatalf("error building API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Run(ctx); err != nil {
		logger.Fatalf("server error: %v", err)
	}
	logger.Info("shutdown complete")
}
