// heaplru exercises the heap-backed LRU cache.
//
// Usage:
//
//	heaplru demo   [flags]   Walk through eviction and recency scenarios
//	heaplru replay [flags]   Replay a synthetic trace and print miss rates
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"heaplru/internal/config"
)

func main() {
	// Signal-aware context is the root of ownership for long-running replays.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg config.Config
	log logr.Logger
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          app
		flush      func() error
	)

	root := &cobra.Command{
		Use:           "heaplru",
		Short:         "Exercise the heap-backed LRU cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, os.Environ(), cmd.Flags())
			if err != nil {
				return err
			}

			log, sync, err := newLogger(cfg)
			if err != nil {
				return err
			}

			a.cfg, a.log, flush = cfg, log, sync
			a.log.V(1).Info("configuration loaded", "config", configPath, "capacity", cfg.Capacity)

			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if flush == nil {
				return nil
			}

			_ = flush()

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON (with comments) config file")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(newDemoCmd(&a), newReplayCmd(&a))

	return root
}
