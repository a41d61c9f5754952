package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"hubpanel/internal/app"
	"hubpanel/internal/config"
	appLog "hubpanel/internal/log"
)

const version = "0.4.0"

type flagConfig struct {
	configPath string
	backend    string
	listen     string
	logLevel   string
	dump       string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override the file.
	if flags.backend != "" {
		conf.Display.Backend = flags.backend
	}
	if flags.listen != "" {
		conf.Diag.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("hubpanel starting", "version", version)
	appLog.Info("effective config",
		"backend", conf.Display.Backend,
		"width", conf.Display.Width,
		"height", conf.Display.Height,
		"max_partials", conf.Refresh.MaxPartials,
		"max_interval", conf.Refresh.MaxInterval,
		"batch_window", conf.Refresh.BatchWindow,
		"ics_count", len(conf.Agenda.Sources),
		"demo", conf.Demo,
		"diag", conf.Diag.Listen,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, conf, app.Options{Version: version, DumpPath: flags.dump}); err != nil {
		appLog.Error("hubpanel stopped", err)
		os.Exit(1)
	}
	appLog.Info("hubpanel exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/hubpanel/config.yaml", "Path to config file")
	flag.StringVar(&cfg.backend, "backend", "", "Panel backend: sim, spi or uc8151 (overrides config)")
	flag.StringVar(&cfg.listen, "listen", "", "Diagnostics listen address (overrides config)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flag.StringVar(&cfg.dump, "dump", "", "Write a PNG of every refreshed frame to this path")

	flag.Parse()

	return cfg
}
