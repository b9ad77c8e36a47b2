package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/timmy/themeboard/internal/config"
	"github.com/timmy/themeboard/internal/logger"
	"github.com/timmy/themeboard/internal/repository"
	"github.com/timmy/themeboard/internal/service"
	"github.com/timmy/themeboard/internal/storage"
)

const usage = `Usage: themes [flags] <command>

Commands:
  seed         insert the bootstrap corpus when the store is empty
  reclassify   cluster, project and label every comment
  export       print the latest exported theme map snapshot

Flags:
`

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "themeboard-cli",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	clusters := flag.Int("k", 0, "Override the number of themes")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *clusters > 0 {
		cfg.Pipeline.Clusters = *clusters
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(appLogger.WithContext(context.Background()))
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		appLogger.Info("Received shutdown signal, cancelling...")
		cancel()
	}()

	switch command {
	case "seed":
		err = runSeed(ctx, cfg)
	case "reclassify":
		err = runReclassify(ctx, cfg)
	case "export":
		err = runExport(ctx, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		appLogger.WithError(err).WithField("command", command).Fatal("Command failed")
	}
}

func runSeed(ctx context.Context, cfg *config.Config) error {
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return err
	}
	n, err := repository.SeedIfEmpty(ctx, repository.NewCommentRepository(db))
	if err != nil {
		return err
	}
	logger.With(logger.Fields{logger.FieldCount: n}).Info(ctx, "Seed complete")
	return nil
}

func runReclassify(ctx context.Context, cfg *config.Config) error {
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return err
	}

	var snapshots service.SnapshotExporter
	if cfg.Snapshot.Enabled {
		objectStorage, err := storage.NewStorage(ctx, &cfg.Snapshot)
		if err != nil {
			return err
		}
		snapshots = storage.NewSnapshotWriter(objectStorage, cfg.Snapshot.Prefix)
	}

	svc := service.NewThemeService(
		repository.NewCommentRepository(db),
		service.NewLabelerFromConfig(&cfg.LLM, &cfg.Retry),
		snapshots,
		service.PipelineConfigFrom(&cfg.Pipeline),
	)
	summary, err := svc.ReclassifyAll(ctx)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func runExport(ctx context.Context, cfg *config.Config) error {
	objectStorage, err := storage.NewStorage(ctx, &cfg.Snapshot)
	if err != nil {
		return err
	}
	snap, err := storage.NewSnapshotWriter(objectStorage, cfg.Snapshot.Prefix).Latest(ctx)
	if err != nil {
		return err
	}
	return printJSON(snap)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
