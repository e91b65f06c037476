package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"levelbook/pkg/config"
	"levelbook/pkg/console"
	"levelbook/pkg/feed"
	"levelbook/pkg/obs"
	"levelbook/pkg/registry"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json or toml)")
	feedPath := flag.String("feed", "", "quote file loaded in the background, overrides feed.path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *feedPath != "" {
		cfg.Feed.Path = *feedPath
	}
	if cfg.Feed.Path == "-" {
		fmt.Fprintln(os.Stderr, "feed cannot read stdin while the console does")
		os.Exit(1)
	}
	// The menu owns stdout unless logs go to a file.
	if cfg.Log.File == "" {
		cfg.Log.Level = "error"
	}

	logs, err := obs.New(obs.Config{Level: cfg.Log.Level, Production: cfg.Log.Production, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logs.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	books := registry.New(logs, nil)

	if cfg.Feed.Path != "" {
		ingester := feed.NewIngester(books, logs, nil, feed.WithStopOnError(cfg.Feed.StopOnError))
		go func() {
			stats, err := ingester.RunFile(ctx, cfg.Feed.Path)
			if err != nil {
				logs.LogAlert(ctx, "feed load aborted: path=%s lines=%d err=%v", cfg.Feed.Path, stats.Lines, err)
				return
			}
			logs.LogNotice(ctx, "feed load done: path=%s applied=%d rejected=%d", cfg.Feed.Path, stats.Applied, stats.Rejected)
		}()
	}

	if err := console.New(books, os.Stdin, os.Stdout, logs).Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "console stopped: %v\n", err)
		os.Exit(1)
	}
}
