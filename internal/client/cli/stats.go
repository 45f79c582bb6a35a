package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show mood insights over your entries",
		Run:   runStats,
	}
	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	stats, err := app.service.Stats(ctx)
	if err != nil {
		exitErr("stats", err)
	}

	fmt.Printf("entries: %d", stats.Entries)
	if stats.Pending > 0 {
		fmt.Printf(" (%d awaiting sync)", stats.Pending)
	}
	fmt.Println()
	if stats.Entries == 0 {
		return
	}

	fmt.Printf("average mood: %.1f/10\n", stats.AverageSentiment)
	if stats.WeeklyDelta != 0 {
		fmt.Printf("week over week: %+.1f\n", stats.WeeklyDelta)
	}
	fmt.Printf("from %s to %s\n", stats.First[:10], stats.Last[:10])
	for _, e := range stats.Emotions {
		fmt.Printf("  %-12s %d\n", e.Emotion, e.Count)
	}
	if len(stats.Trend) > 1 {
		fmt.Println("daily mood:")
		for _, d := range stats.Trend {
			fmt.Printf("  %s  %.1f (%d)\n", d.Day, d.Average, d.Entries)
		}
	}
}
