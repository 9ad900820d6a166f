package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/blastfield/internal/config"
	"github.com/zeusync/blastfield/internal/injector"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPath), "path to a YAML config file")
	listenAddr := flag.String("listen", "", "override server.listen_addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := injector.InitializeServer(cfg)
	if err = srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error running server:", err)
		os.Exit(1)
	}
}
