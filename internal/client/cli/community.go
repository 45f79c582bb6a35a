package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	feed := &cobra.Command{
		Use:   "feed",
		Short: "Read the community feed",
		Long:  "Read anonymized posts shared by other users. The last fetched feed is cached for offline reading.",
		Run:   runFeed,
	}
	publish := &cobra.Command{
		Use:   "publish <text>",
		Short: "Share a post to the community feed",
		Args:  cobra.MinimumNArgs(1),
		Run:   runPublish,
	}
	RootCmd.AddCommand(feed, publish)
}

func runFeed(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	posts, storedAt, err := app.service.Feed(ctx, token)
	if err != nil {
		exitErr("feed", err)
	}
	if !storedAt.IsZero() {
		fmt.Printf("(offline; feed cached %s)\n\n", storedAt.Format("2006-01-02 15:04"))
	}
	if len(posts) == 0 {
		fmt.Println("Nothing shared yet")
		return
	}
	for _, post := range posts {
		fmt.Printf("%s · %d ♥\n%s\n\n", post.Author, post.Likes, post.Content)
	}
}

func runPublish(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	post, err := app.service.Publish(ctx, token, strings.Join(args, " "))
	if err != nil {
		exitErr("publish", err)
	}
	fmt.Printf("Shared as %s\n", post.Author)
}
