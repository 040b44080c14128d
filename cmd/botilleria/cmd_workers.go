package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elchascon/botilleria/config"
	"github.com/elchascon/botilleria/internal/server"
	"github.com/elchascon/botilleria/pkg/queue"
)

var queueWorkersFlag int

// botilleria queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Publish queued events to the broker until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Queue worker started (%d workers, driver %s). Press Ctrl+C to stop.\n", workers, config.QueueDriver())
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Fprintln(cmd.OutOrStdout(), "Queue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers (default QUEUE_WORKERS)")
}
