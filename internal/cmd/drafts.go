package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell-sh/inkwell/internal/config"
	"github.com/inkwell-sh/inkwell/internal/preview"
	"github.com/inkwell-sh/inkwell/internal/storage"
)

var (
	draftsListTitle string
	draftsListLimit int
	historyLimit    int
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Manage stored drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts",
	RunE:  runDraftsList,
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <draft-id>",
	Short: "Print a draft's text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsShow,
}

var draftsRmCmd = &cobra.Command{
	Use:   "rm <draft-id>",
	Short: "Delete a draft and its revisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsRm,
}

var draftsRenameCmd = &cobra.Command{
	Use:   "rename <draft-id> <title>",
	Short: "Retitle a draft",
	Args:  cobra.ExactArgs(2),
	RunE:  runDraftsRename,
}

var draftsHistoryCmd = &cobra.Command{
	Use:   "history <draft-id>",
	Short: "List a draft's revision snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsHistory,
}

var draftsDiffCmd = &cobra.Command{
	Use:   "diff <draft-id> <seq> [seq]",
	Short: "Diff two revisions, or a revision against the current text",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runDraftsDiff,
}

func init() {
	draftsListCmd.Flags().StringVar(&draftsListTitle, "title", "", "filter by title substring")
	draftsListCmd.Flags().IntVar(&draftsListLimit, "limit", 50, "maximum drafts to list")
	draftsHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum revisions to list")

	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsShowCmd)
	draftsCmd.AddCommand(draftsRmCmd)
	draftsCmd.AddCommand(draftsRenameCmd)
	draftsCmd.AddCommand(draftsHistoryCmd)
	draftsCmd.AddCommand(draftsDiffCmd)
}

// openStore loads config and opens the draft database for a one-shot
// subcommand.
func openStore() (*config.Config, *storage.SQLiteStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("failed to create directories: %w", err)
	}
	store, err := storage.NewSQLiteStore(databasePath(cfg, paths))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open draft database: %w", err)
	}
	return cfg, store, nil
}

func runDraftsList(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	drafts, err := store.ListDrafts(cmd.Context(), storage.DraftQuery{
		TitleSubstring: draftsListTitle,
		Limit:          draftsListLimit,
	})
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		fmt.Println("No drafts yet. Start one with 'inkwell edit'.")
		return nil
	}

	fmt.Printf("%s%-10s %-40s %6s  %s%s\n", colorBold, "ID", "TITLE", "WORDS", "UPDATED", colorReset)
	for _, d := range drafts {
		title := d.Title
		if title == "" {
			title = colorDim + "(untitled)" + colorReset
		}
		fmt.Printf("%-10s %-40s %6d  %s\n",
			shortID(d.DraftID), title, d.WordCount, formatAge(d.UpdatedAtUnixMs))
	}
	return nil
}

func runDraftsShow(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.GetDraftByPrefix(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if d.Title != "" {
		fmt.Printf("%s%s%s\n\n", colorBold, d.Title, colorReset)
	}
	fmt.Println(d.Text)
	return nil
}

func runDraftsRm(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.GetDraftByPrefix(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteDraft(cmd.Context(), d.DraftID); err != nil {
		return err
	}
	fmt.Printf("Deleted draft %s\n", shortID(d.DraftID))
	return nil
}

func runDraftsRename(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.GetDraftByPrefix(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := store.RenameDraft(cmd.Context(), d.DraftID, args[1]); err != nil {
		return err
	}
	fmt.Printf("Renamed draft %s to %q\n", shortID(d.DraftID), args[1])
	return nil
}

func runDraftsHistory(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.GetDraftByPrefix(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	revs, err := store.ListRevisions(cmd.Context(), d.DraftID, historyLimit)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Println("No revisions yet. Save with ctrl+s inside the editor.")
		return nil
	}

	fmt.Printf("%s%4s  %-8s %6s  %s%s\n", colorBold, "SEQ", "ORIGIN", "WORDS", "CREATED", colorReset)
	for _, r := range revs {
		fmt.Printf("%4d  %-8s %6d  %s\n",
			r.Seq, r.Origin, r.WordCount, formatAge(r.CreatedAtUnixMs))
	}
	return nil
}

func runDraftsDiff(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	d, err := store.GetDraftByPrefix(ctx, args[0])
	if err != nil {
		return err
	}

	from, err := loadRevisionText(ctx, store, d.DraftID, args[1])
	if err != nil {
		return err
	}
	to := d.Text
	if len(args) == 3 {
		to, err = loadRevisionText(ctx, store, d.DraftID, args[2])
		if err != nil {
			return err
		}
	}

	diff := preview.Unified(from, to)
	if diff == "" {
		fmt.Println("No differences.")
		return nil
	}
	fmt.Print(diff)
	return nil
}

func loadRevisionText(ctx context.Context, store storage.Store, draftID, seqArg string) (string, error) {
	seq, err := strconv.ParseInt(seqArg, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid revision number %q", seqArg)
	}
	r, err := store.GetRevision(ctx, draftID, seq)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

// shortID returns the display prefix of a draft ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatAge renders a Unix-millisecond timestamp as a relative age.
func formatAge(unixMs int64) string {
	t := time.UnixMilli(unixMs)
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age < 14*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
