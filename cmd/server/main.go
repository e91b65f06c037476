package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"levelbook/pkg/api"
	"levelbook/pkg/config"
	"levelbook/pkg/feed"
	"levelbook/pkg/handlers"
	"levelbook/pkg/obs"
	"levelbook/pkg/registry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json or toml)")
	port := flag.Int("port", 0, "port for the HTTP server, overrides server.port")
	flag.IntVar(port, "p", 0, "shorthand for --port")
	feedPath := flag.String("feed", "", "quote file replayed at startup, overrides feed.path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *feedPath != "" {
		cfg.Feed.Path = *feedPath
	}

	logs, err := obs.New(obs.Config{Level: cfg.Log.Level, Production: cfg.Log.Production, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logs.Sync()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(promReg)

	books := registry.New(logs, metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			if strings.Contains(err.Error(), "panic") {
				return c.Status(code).SendString("Internal Server Error")
			}

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			return c.Status(code).SendString(err.Error())
		},
		DisableStartupMessage: cfg.Log.Production,
	})
	app.Use(cors.New())

	handler := handlers.New(logs, metrics, books)

	var router fiber.Router = app

	api.New(router, handler, logs, promReg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Feed.Path != "" {
		ingester := feed.NewIngester(books, logs, metrics, feed.WithStopOnError(cfg.Feed.StopOnError))
		g.Go(func() error {
			stats, err := ingester.RunFile(gctx, cfg.Feed.Path)
			if err != nil {
				logs.LogAlert(gctx, "feed replay aborted: path=%s lines=%d err=%v", cfg.Feed.Path, stats.Lines, err)
				return err
			}
			logs.LogNotice(gctx, "feed replay done: path=%s lines=%d applied=%d rejected=%d", cfg.Feed.Path, stats.Lines, stats.Applied, stats.Rejected)
			return nil
		})
	}

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logs.LogNotice(gctx, "server listening on %s", addr)
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		logs.LogNotice(gctx, "shutting down gracefully")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			logs.LogAlert(gctx, "error shutting down gracefully: %v", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logs.LogAlert(context.Background(), "server stopped: %v", err)
		os.Exit(1)
	}

	logs.LogNotice(context.Background(), "server shut down")
}
