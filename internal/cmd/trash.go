package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
)

var trashExpiredOnly bool

var trashCmd = &cobra.Command{
	Use:     "trash",
	Short:   "Inspect or empty the trash",
	GroupID: groupLibrary,
	Long: `Deleted and evicted commands wait in the trash for
store.trash_retention_days before they are purged.

Use 'cmdvault restore <id>' to bring one back.`,
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List commands in the trash",
	Args:  cobra.NoArgs,
	RunE:  runTrashList,
}

var trashEmptyCmd = &cobra.Command{
	Use:   "empty",
	Short: "Permanently delete commands in the trash",
	Args:  cobra.NoArgs,
	RunE:  runTrashEmpty,
}

var trashStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show trash size and age",
	Args:  cobra.NoArgs,
	RunE:  runTrashStats,
}

func init() {
	trashEmptyCmd.Flags().BoolVar(&trashExpiredOnly, "expired", false, "Only purge commands past the retention period")

	trashCmd.AddCommand(trashListCmd, trashEmptyCmd, trashStatsCmd)
	rootCmd.AddCommand(trashCmd)
}

func runTrashList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := a.library.GetDeletedCommands(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "Trash is empty.")
		return nil
	}

	policy := a.library.Policy()
	now := time.Now()
	for i := range recs {
		rec := &recs[i]
		expires := time.UnixMilli(policy.ExpiresAt(rec))
		left := int(math.Ceil(expires.Sub(now).Hours() / 24))
		if left < 0 {
			left = 0
		}
		fmt.Fprintf(out, "%s  %s  %s\n",
			styleID.Render(shortID(rec.ID)),
			styleDim.Render(fmt.Sprintf("deleted %-9s %3dd left", formatAge(*rec.DeletedAtUnixMs, now), left)),
			fitWidth(rec.Command, terminalWidth()-shortIDLen-34),
		)
	}
	return nil
}

func runTrashEmpty(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	var n int
	if trashExpiredOnly {
		n, err = a.library.EmptyExpiredTrash(ctx)
	} else {
		n, err = a.library.EmptyTrash(ctx)
	}
	if err != nil {
		return err
	}
	if n > 0 {
		if err := a.db.Checkpoint(ctx); err != nil {
			a.logger.Warn("wal checkpoint failed", "error", err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d command(s).\n", n)
	return nil
}

func runTrashStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.library.GetTrashStats(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d\n", styleBold.Render("commands:"), stats.Count)
	if stats.Count > 0 {
		fmt.Fprintf(out, "%s %d day(s)\n", styleBold.Render("oldest:  "), stats.OldestAgeDays)
	}
	fmt.Fprintf(out, "%s %d day(s)\n", styleBold.Render("retention:"), a.library.Policy().TrashRetentionDays)
	return nil
}
