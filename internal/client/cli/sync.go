package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NikhilKartha5/ai-journal/internal/client/api"
	"github.com/NikhilKartha5/ai-journal/internal/client/config"
	"github.com/NikhilKartha5/ai-journal/internal/client/connectivity"
	"github.com/NikhilKartha5/ai-journal/internal/client/journal"
	"github.com/NikhilKartha5/ai-journal/internal/logging"
	"github.com/spf13/cobra"
)

func init() {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Flush queued mutations now",
		Run:   runSync,
	}
	status := &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and queue state",
		Run:   runStatus,
	}
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing in the background until interrupted",
		Run:   runWatch,
	}
	RootCmd.AddCommand(syncCmd, status, watch)
}

func runSync(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	if err := app.service.Sync(ctx, token); err != nil {
		exitErr("sync", err)
	}

	if conflicts := app.engine.Conflicts(ctx); len(conflicts) > 0 {
		fmt.Printf("%d edit(s) conflicted; run 'journal conflicts' to resolve\n", len(conflicts))
	}
	n, err := app.engine.QueueLength(ctx)
	if err != nil {
		exitErr("sync", err)
	}
	if n == 0 {
		fmt.Println("Everything is synced")
	} else {
		fmt.Printf("%d mutation(s) still queued\n", n)
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	if app.monitor.IsOnline() {
		fmt.Println("online:", app.client.BaseURL())
	} else {
		fmt.Println("offline")
	}

	n, err := app.engine.QueueLength(ctx)
	if err != nil {
		exitErr("status", err)
	}
	fmt.Printf("queued mutations: %d\n", n)

	if app.token(ctx) == "" {
		fmt.Println("not signed in")
	}
}

// runWatch runs the background machinery of the desktop app: a connectivity
// prober plus the sweeper that flushes on reconnect and on a fallback tick.
func runWatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var prober *connectivity.Prober
	app, err := newAppWith(ctx, func(ctx context.Context, client *api.Client, cfg *config.Config, logger logging.Logger) connectivity.Monitor {
		prober = connectivity.NewProber(client, cfg.OnlineCheckInterval, logger)
		return prober
	})
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	app.requireToken(ctx)

	prober.OnChange(func(online bool) {
		if online {
			fmt.Fprintln(os.Stderr, "connection restored, syncing")
		} else {
			fmt.Fprintln(os.Stderr, "connection lost, capturing locally")
		}
	})

	sweeper := journal.NewSweeper(app.service, func() string { return app.token(ctx) }, app.config.SyncInterval)

	go prober.Run(ctx)
	go sweeper.Run(ctx)

	fmt.Fprintln(os.Stderr, "watching; Ctrl-C to stop")
	<-ctx.Done()
}
