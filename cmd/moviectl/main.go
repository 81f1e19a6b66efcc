package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moviehub/app"
	"moviehub/cli"
	"moviehub/pkg/config"
	"moviehub/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(openSession)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.Message(err))
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

// openSession builds the single local session of the terminal user. Its
// storage keys are not namespaced, so favorites and the login persist
// between runs.
func openSession(ctx context.Context, opts *cli.RootOptions) (*app.Session, func() error, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	} else if level == "info" {
		level = "warn"
	}
	log := logger.New(logger.Options{Level: level, File: cfg.LogFile})

	storage, closeFn, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.NewFactory(cfg, storage, log).New(ctx, ""), closeFn, nil
}
