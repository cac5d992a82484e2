package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"schedarr/internal/config"
	appLog "schedarr/internal/log"
	"schedarr/internal/schedule"
	"schedarr/internal/sportarr"
	"schedarr/internal/store"
	"schedarr/internal/web"
)

const version = "0.1.0"

// refreshTimeout bounds a single upstream refresh cycle.
const refreshTimeout = 2 * time.Minute

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	appLog.Info("schedarr starting", "version", version)

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides the config file listen address if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	} else {
		appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	}

	// The display timezone is load-bearing for every schedule computation;
	// refuse to start with an invalid one rather than fall back silently.
	loc, err := schedule.ResolveLocation(conf.Timezone)
	if err != nil {
		appLog.Error("invalid display timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"upstream", conf.Upstream.URL,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	cacheDir := conf.CacheDir
	if cacheDir == "" {
		cacheDir = "/var/lib/schedarr/cache"
		if flags.debug {
			cacheDir = "./cache/upstream"
		}
	}

	client := sportarr.NewClient(conf.Upstream.URL, conf.Upstream.APIKey, cacheDir)
	st := store.New()
	refresher := &store.Refresher{
		Client:      client,
		Store:       st,
		Loc:         loc,
		HorizonDays: conf.HorizonDays,
	}

	// Initial refresh. Before the first success the store is empty, which
	// is the correct representation of "not yet loaded".
	if err := runRefresh(ctx, refresher); err != nil {
		appLog.Error("initial refresh failed; serving empty schedule until retry", err)
		if flags.once {
			os.Exit(1)
		}
	}

	if flags.once {
		appLog.Info("single-shot refresh complete, exiting")
		return
	}

	// Periodic refresh on the configured cron schedule.
	cr := cron.New()
	if _, err := cr.AddFunc(conf.RefreshCron, func() {
		if err := runRefresh(ctx, refresher); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	cr.Start()
	defer cr.Stop()

	srv := web.NewServer(web.Options{
		Config:    conf,
		Store:     st,
		Refresher: refresher,
		Commander: client,
		Location:  loc,
		Debug:     flags.debug,
	})

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("HTTP server shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("schedarr exiting")
}

func runRefresh(parent context.Context, r *store.Refresher) error {
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()
	return r.Refresh(ctx)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/schedarr/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one upstream refresh and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and relative cache paths")

	flag.Parse()

	return cfg
}
