package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/kojaberamokhe/pkm-system/internal/config"
	"github.com/kojaberamokhe/pkm-system/internal/domain"
	"github.com/kojaberamokhe/pkm-system/internal/importer"
	"github.com/kojaberamokhe/pkm-system/internal/review"
	"github.com/kojaberamokhe/pkm-system/internal/storage"
	"github.com/kojaberamokhe/pkm-system/internal/web"
)

func main() {
	flags := pflag.NewFlagSet("pkm", pflag.ExitOnError)
	configPath := flags.String("config", "pkm.yaml", "Path to the YAML config file")
	flags.String("db", "pkm.db", "Path to the SQLite database file")
	flags.String("addr", ":8484", "HTTP listen address")
	flags.String("repos", "repos", "Directory for git source clones")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	addSource := flags.String("add-source", "", "Register a note source (path or git URL) and exit")
	syncOnly := flags.Bool("sync", false, "Sync all sources and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fatal("parse flags", err)
	}

	cfg, err := config.Load(*configPath, flags.Changed("config"), flags)
	if err != nil {
		fatal("load config", err)
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		fatal("open database", err)
	}
	defer db.Close()
	log.Info("database opened", "path", cfg.DB)

	imp := importer.New(db, cfg.Repos, log)

	switch {
	case *addSource != "":
		kind := domain.KindForPath(*addSource)
		id, err := db.InsertSource(ctx, *addSource, kind)
		if err != nil {
			fatal("add source", err)
		}
		log.Info("source registered", "id", id, "kind", kind, "path", *addSource)

	case *syncOnly:
		if err := imp.Run(ctx); err != nil {
			fatal("sync", err)
		}

	default:
		reviews := review.New(db, log, nil)
		server, err := web.NewServer(db, reviews, imp, log)
		if err != nil {
			fatal("init server", err)
		}
		log.Info("listening", "addr", cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, server); err != nil {
			fatal("serve", err)
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "pkm: %s: %v\n", what, err)
	os.Exit(1)
}
