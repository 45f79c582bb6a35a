package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/spf13/cobra"
)

func init() {
	add := &cobra.Command{
		Use:   "add [text]",
		Short: "Write a new entry",
		Long:  "Write a new entry. Text can be a positional arg, piped via stdin, or entered interactively.",
		Run:   runAdd,
	}
	add.Flags().StringP("title", "T", "", "Optional title")
	add.Flags().StringP("tags", "t", "", "Comma-separated tags")

	list := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Run:   runList,
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry with its analysis",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an entry",
		Run:   runEdit,
	}
	edit.Flags().String("text", "", "Replacement text")
	edit.Flags().StringP("title", "T", "", "Replacement title")
	edit.Flags().StringP("tags", "t", "", "Replacement comma-separated tags")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		Run:   runDelete,
	}

	deleteAll := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every entry, locally and on the server",
		Run:   runDeleteAll,
	}
	deleteAll.Flags().Bool("yes", false, "Skip the confirmation prompt")

	RootCmd.AddCommand(add, list, show, edit, del, deleteAll)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// parseEntryID accepts the prefixed key form ("t:7"/"s:abc") as well as the
// raw id shown in listings: all-digit means a temp id, anything else a
// server id.
func parseEntryID(arg string) models.EntryID {
	if id, err := models.ParseKey(arg); err == nil {
		return id
	}
	if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return models.TempID(n)
	}
	return models.ServerID(arg)
}

func runAdd(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			text = strings.TrimSpace(string(b))
		} else {
			text, err = GetMultiline(bufio.NewReader(os.Stdin), "How was your day?", os.Stderr)
			if err != nil {
				exitErr("add", err)
			}
		}
	}

	title, _ := cmd.Flags().GetString("title")
	tags, _ := cmd.Flags().GetString("tags")

	entry, err := app.service.Create(ctx, token, text, title, splitTags(tags))
	if err != nil {
		exitErr("add", err)
	}

	if entry.Pending {
		fmt.Printf("Saved locally (%s); will sync when a connection is available\n", entry.ID)
	} else {
		fmt.Printf("Saved and synced (%s)\n", entry.ID)
	}
	fmt.Printf("Mood %.0f/10 · %s\n", entry.Analysis.SentimentScore, strings.Join(entry.Analysis.Emotions, ", "))
}

func runList(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	entries, err := app.service.List(ctx)
	if err != nil {
		exitErr("list", err)
	}
	if len(entries) == 0 {
		fmt.Println("No entries yet")
		return
	}

	for _, entry := range entries {
		marker := " "
		if entry.Pending {
			marker = "*"
		}
		title := entry.Title
		if title == "" {
			title = firstLine(entry.Text)
		}
		fmt.Printf("%s %-24s %-10s %s\n", marker, entry.ID, entry.Timestamp[:10], title)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}

func runShow(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	entry, err := app.service.Get(ctx, parseEntryID(args[0]))
	if err != nil {
		exitErr("show", err)
	}

	if entry.Title != "" {
		fmt.Println(entry.Title)
	}
	fmt.Println(entry.Timestamp)
	if len(entry.Tags) > 0 {
		fmt.Println("tags:", strings.Join(entry.Tags, ", "))
	}
	fmt.Println()
	fmt.Println(entry.Text)
	fmt.Println()
	fmt.Printf("Mood %.0f/10 · %s\n", entry.Analysis.SentimentScore, strings.Join(entry.Analysis.Emotions, ", "))
	if entry.Analysis.Summary != "" {
		fmt.Println(entry.Analysis.Summary)
	}
	for _, s := range entry.Analysis.Suggestions {
		fmt.Println("-", s)
	}
	if entry.Pending {
		fmt.Println("\n(not yet synced)")
	}
}

func runEdit(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	if len(args) == 0 {
		exitErr("edit", fmt.Errorf("entry id required"))
	}
	id := parseEntryID(args[0])

	entry, err := app.service.Get(ctx, id)
	if err != nil {
		exitErr("edit", err)
	}

	var changes models.EntryChanges
	if cmd.Flags().Changed("text") {
		text, _ := cmd.Flags().GetString("text")
		changes.Text = &text
	}
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		changes.Title = &title
	}
	if cmd.Flags().Changed("tags") {
		raw, _ := cmd.Flags().GetString("tags")
		tags := splitTags(raw)
		changes.Tags = &tags
	}
	if changes.Text == nil && changes.Title == nil && changes.Tags == nil {
		exitErr("edit", fmt.Errorf("nothing to change; pass --text, --title, or --tags"))
	}

	updated, err := app.service.Update(ctx, token, id, changes, entry.UpdatedAt)
	if err != nil {
		exitErr("edit", err)
	}
	if updated.Pending {
		fmt.Println("Edited locally; will sync when a connection is available")
	} else {
		fmt.Println("Edited and synced")
	}
}

func runDelete(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	if err := app.service.Delete(ctx, token, parseEntryID(args[0])); err != nil {
		exitErr("delete", err)
	}
	fmt.Println("Deleted")
}

func runDeleteAll(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()
	token := app.requireToken(ctx)

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		answer, err := GetSimpleText(bufio.NewReader(os.Stdin), "Delete ALL entries? This cannot be undone. Type 'yes' to confirm", os.Stderr)
		if err != nil || answer != "yes" {
			fmt.Println("Aborted")
			return
		}
	}

	if err := app.service.DeleteAll(ctx, token); err != nil {
		exitErr("delete-all", err)
	}
	fmt.Println("All entries deleted")
}
