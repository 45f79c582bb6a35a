package cli

import (
	"errors"
	"fmt"

	"github.com/NikhilKartha5/ai-journal/internal/client/sync"
	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/spf13/cobra"
)

func init() {
	conflicts := &cobra.Command{
		Use:   "conflicts",
		Short: "List and resolve conflicting edits",
		Long:  "List edits that were rejected because the entry changed on the server. Resolve each by keeping your version or the server's.",
		Run:   runConflicts,
	}
	conflicts.Flags().String("keep-mine", "", "Overwrite the server with the queued edit (conflict key)")
	conflicts.Flags().String("keep-server", "", "Discard the queued edit and take the server's version (conflict key)")
	RootCmd.AddCommand(conflicts)
}

func runConflicts(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	// Conflicts are discovered by flushing; do that first so the listing is
	// current.
	if err := app.service.Sync(ctx, token); err != nil {
		exitErr("sync", err)
	}

	keepMine, _ := cmd.Flags().GetString("keep-mine")
	keepServer, _ := cmd.Flags().GetString("keep-server")

	switch {
	case keepMine != "":
		err = app.engine.ResolveConflict(ctx, token, keepMine, sync.ResolveOverwrite)
		if errors.Is(err, common.ErrVersionConflict) {
			fmt.Println("The entry changed again on the server; review and retry")
			return
		}
		if err != nil {
			exitErr("resolve", err)
		}
		fmt.Println("Kept your version")
		return

	case keepServer != "":
		if err := app.engine.ResolveConflict(ctx, token, keepServer, sync.ResolveDiscard); err != nil {
			exitErr("resolve", err)
		}
		fmt.Println("Kept the server's version")
		return
	}

	list := app.engine.Conflicts(ctx)
	if len(list) == 0 {
		fmt.Println("No conflicts")
		return
	}
	for _, c := range list {
		fmt.Printf("%s\n  server: %s\n", c.Item.Key, firstLine(c.Server.Content))
	}
	fmt.Println("\nResolve with --keep-mine <key> or --keep-server <key>")
}
