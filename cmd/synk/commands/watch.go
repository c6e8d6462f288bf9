package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/synk/client/internal/application/sync"
	"github.com/synk/client/internal/infrastructure/metrics"
	"github.com/synk/client/internal/infrastructure/realtime"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Mirror shared state and follow live updates",
		Long:  "Load the couple's shared state, keep it current over the realtime channel, and print changes as they arrive. Runs until interrupted.",
		Run: func(cmd *cobra.Command, args []string) {
			runWatch()
		},
	}
	return watchCmd
}

func runWatch() {
	a := newApp()
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := realtime.NewChannel(a.cfg.Realtime, a.session, a.logger, a.metrics)
	synchronizer := sync.New(a.api, channel, a.session, a.cfg.Sync, a.logger, a.metrics)

	loadCtx, loadCancel := context.WithTimeout(ctx, commandTimeout)
	err := synchronizer.LoadAll(loadCtx)
	loadCancel()
	if err != nil {
		// Partial loads are fine; only a fully failed mirror is fatal
		a.logger.Warnw("Initial load incomplete", "error", err)
	}

	synchronizer.Bind()
	if err := channel.Connect(ctx); err != nil {
		a.logger.Warnw("Realtime channel unavailable, relying on polling", "error", err)
	}
	synchronizer.Start(ctx)
	defer synchronizer.Close()

	var srv *metrics.Server
	if a.cfg.Metrics.Enabled {
		srv = metrics.NewServer(a.metrics, func() map[string]interface{} {
			return map[string]interface{}{
				"realtime": channel.State().String(),
			}
		}, a.logger)

		go func() {
			if err := srv.Start(a.cfg.Metrics.Port); err != nil {
				a.logger.Warnw("Metrics server stopped", "error", err)
			}
		}()
	}

	fmt.Printf("Watching: %d tasks, %d milestones, %d memories, %d inbox items\n",
		synchronizer.Tasks.Len(),
		synchronizer.Milestones.Len(),
		synchronizer.Memories.Len(),
		synchronizer.Inbox.Len(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("Shutting down")
	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
