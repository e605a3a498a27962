package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/core"
	"github.com/mhoran/mailsweep/internal/di"
	"github.com/mhoran/mailsweep/internal/logging"
)

var targetFolder = flag.String("folder", core.RootFolderToken,
	`folder to process, backslash-delimited (e.g. Inbox\Inbox1), or ROOT for the archive root`)

func main() {
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	audit *logging.AuditLog,
	store core.MailStore,
	resolver *core.AddressResolver,
	runner *core.BatchRunner,
	cacheStore core.CacheStore,
) error {
	defer logger.Sync()
	defer audit.Sync()

	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close mail store", zap.Error(err))
		}
		if closer, ok := cacheStore.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close cache store", zap.Error(err))
			}
		}
	}()

	// Stop between items on SIGINT/SIGTERM; in-flight actions complete.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := resolver.LoadCache(ctx); err != nil {
		return fmt.Errorf("load address cache: %w", err)
	}

	stats, err := runner.Run(ctx, *targetFolder)
	if errors.Is(err, context.Canceled) {
		logger.Warn("run interrupted", zap.Int("processed", stats.Processed))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Processing complete. Processed: %d items.\n", stats.Processed)
	return nil
}
