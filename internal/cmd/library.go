package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/cmdvault/internal/category"
	"github.com/runger/cmdvault/internal/cmdutil"
	"github.com/runger/cmdvault/internal/commandstore"
	"github.com/runger/cmdvault/internal/sanitize"
	"github.com/runger/cmdvault/internal/storage"
)

var (
	saveName     string
	saveCategory string
	saveForce    bool

	listCategory  string
	listMostUsed  bool
	listRecent    bool
	listFavorites bool
	listLimit     int

	rmPermanent bool
)

var saveCmd = &cobra.Command{
	Use:     "save <command...>",
	Short:   "Save a command to the library",
	GroupID: groupLibrary,
	Long: `Save a command to the library as typed (no prompt cleaning).

The category is picked automatically unless --category is given.

Examples:
  cmdvault save 'kubectl get pods -A'
  cmdvault save --name deploy --category cloud 'terraform apply -auto-approve'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSave,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved commands",
	GroupID: groupLibrary,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show every field of a command",
	GroupID: groupLibrary,
	Args:    cobra.ExactArgs(1),
	RunE:    runShow,
}

var useCmd = &cobra.Command{
	Use:     "use <id>",
	Short:   "Print a command and count it as used",
	GroupID: groupLibrary,
	Long: `Print a command to standard output and record the use.

Usage counts and last-used times protect commands from eviction.
Destructive commands come with a warning on standard error.

Example:
  eval "$(cmdvault use 3f2a9c1b)"`,
	Args: cobra.ExactArgs(1),
	RunE: runUse,
}

var favCmd = &cobra.Command{
	Use:     "fav <id>",
	Short:   "Toggle a command's favorite flag",
	GroupID: groupLibrary,
	Args:    cobra.ExactArgs(1),
	RunE:    runFav,
}

var renameCmd = &cobra.Command{
	Use:     "rename <id> [name]",
	Short:   "Set or clear a command's display name",
	GroupID: groupLibrary,
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runRename,
}

var recategorizeCmd = &cobra.Command{
	Use:     "recategorize <id> [category]",
	Short:   "Set a command's category, or re-run classification",
	GroupID: groupLibrary,
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runRecategorize,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Short:   "Move commands to the trash",
	GroupID: groupLibrary,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRm,
}

var restoreCmd = &cobra.Command{
	Use:     "restore <id>...",
	Short:   "Bring commands back from the trash",
	GroupID: groupLibrary,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRestore,
}

func init() {
	saveCmd.Flags().StringVar(&saveName, "name", "", "Display name")
	saveCmd.Flags().StringVar(&saveCategory, "category", "", "Category (default: classified)")
	saveCmd.Flags().BoolVar(&saveForce, "force", false, "Save even if the command is already in the library")

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only this category")
	listCmd.Flags().BoolVar(&listMostUsed, "most-used", false, "Only commands used at least store.most_used_threshold times")
	listCmd.Flags().BoolVar(&listRecent, "recent", false, "Only commands used within store.recent_days")
	listCmd.Flags().BoolVar(&listFavorites, "favorites", false, "Only favorites")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of commands to show (0 = all)")
	listCmd.MarkFlagsMutuallyExclusive("category", "most-used", "recent")

	rmCmd.Flags().BoolVar(&rmPermanent, "permanent", false, "Delete immediately instead of moving to the trash")

	rootCmd.AddCommand(saveCmd, listCmd, showCmd, useCmd, favCmd, renameCmd, recategorizeCmd, rmCmd, restoreCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	text := strings.Join(args, " ")
	if !saveForce {
		exists, err := a.library.CommandExists(ctx, text)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("already saved: %s (use --force to save a copy)", cmdutil.TrimCommand(text))
		}
	}

	cat := saveCategory
	if cat == "" {
		cat = string(category.Default().TagOrUncategorized(text))
	}
	rec, err := a.library.Save(ctx, text, cat, saveName, storage.SourceManual)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", styleOK.Render("saved"), styleID.Render(shortID(rec.ID)), styleCategory.Render(cat))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	var recs []storage.CommandRecord
	switch {
	case listCategory != "":
		recs, err = a.library.GetCommandsByCategory(ctx, listCategory)
	case listMostUsed:
		recs, err = a.library.GetMostUsedCommands(ctx)
	case listRecent:
		recs, err = a.library.GetRecentCommands(ctx)
	default:
		recs, err = a.library.GetAllCommands(ctx)
	}
	if err != nil {
		return err
	}

	if listFavorites {
		favs := recs[:0]
		for _, r := range recs {
			if r.IsFavorite {
				favs = append(favs, r)
			}
		}
		recs = favs
	}
	if listLimit > 0 && len(recs) > listLimit {
		recs = recs[:listLimit]
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No commands found.")
		return nil
	}
	printRecords(out, recs)

	total, err := a.library.GetCommandCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("Showing %d of %d command(s), limit %d", len(recs), total, a.library.Policy().MaxCommands)))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.resolveRecord(ctx, args[0])
	if err != nil {
		return err
	}
	printRecordDetail(cmd.OutOrStdout(), rec, a.library.Policy(), time.Now())
	return nil
}

func runUse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.resolveRecord(ctx, args[0])
	if err != nil {
		return err
	}
	if rec.IsDeleted() {
		return fmt.Errorf("%s is in the trash; restore it first", shortID(rec.ID))
	}
	if _, err := a.library.RecordUsage(ctx, rec.ID); err != nil {
		return err
	}
	if level, reason := sanitize.Assess(rec.Command); level == sanitize.RiskDestructive {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s destructive command (%s)\n", styleWarn.Render("warning:"), reason)
	}
	fmt.Fprintln(cmd.OutOrStdout(), rec.Command)
	return nil
}

func runFav(cmd *cobra.Command, args []string) error {
	return updateOne(cmd, args[0], func(a *app, id string) (*storage.CommandRecord, error) {
		return a.library.ToggleFavorite(cmd.Context(), id)
	}, func(rec *storage.CommandRecord) string {
		if rec.IsFavorite {
			return styleFavorite.Render("★ favorite")
		}
		return "no longer a favorite"
	})
}

func runRename(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	return updateOne(cmd, args[0], func(a *app, id string) (*storage.CommandRecord, error) {
		return a.library.UpdateCommand(cmd.Context(), id, commandstore.RecordUpdate{Name: &name})
	}, func(rec *storage.CommandRecord) string {
		if rec.Name == nil {
			return "name cleared"
		}
		return "renamed to " + *rec.Name
	})
}

func runRecategorize(cmd *cobra.Command, args []string) error {
	return updateOne(cmd, args[0], func(a *app, id string) (*storage.CommandRecord, error) {
		cat := ""
		if len(args) > 1 {
			cat = args[1]
		} else {
			rec, err := a.library.GetCommand(cmd.Context(), id)
			if err != nil || rec == nil {
				return rec, err
			}
			cat = string(category.Default().TagOrUncategorized(rec.Command))
		}
		return a.library.UpdateCommand(cmd.Context(), id, commandstore.RecordUpdate{Category: &cat})
	}, func(rec *storage.CommandRecord) string {
		return "category " + styleCategory.Render(deref(rec.Category))
	})
}

// updateOne resolves ref, applies fn and prints describe(result).
func updateOne(cmd *cobra.Command, ref string, fn func(*app, string) (*storage.CommandRecord, error), describe func(*storage.CommandRecord) string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.resolveRecord(ctx, ref)
	if err != nil {
		return err
	}
	updated, err := fn(a, rec.ID)
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("no command with id %s", ref)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleID.Render(shortID(updated.ID)), describe(updated))
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	return forEachRecord(cmd, args, func(a *app, rec *storage.CommandRecord) (string, error) {
		if rmPermanent {
			ok, err := a.library.DeletePermanently(cmd.Context(), rec.ID)
			if err != nil {
				return "", err
			}
			if !ok {
				return "already deleted", nil
			}
			return "deleted", nil
		}
		ok, err := a.library.SoftDelete(cmd.Context(), rec.ID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "already in the trash", nil
		}
		return fmt.Sprintf("moved to the trash (kept %d days)", a.library.Policy().TrashRetentionDays), nil
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	return forEachRecord(cmd, args, func(a *app, rec *storage.CommandRecord) (string, error) {
		ok, err := a.library.Restore(cmd.Context(), rec.ID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "not in the trash", nil
		}
		return "restored", nil
	})
}

// forEachRecord resolves every ref and applies fn, continuing past
// unknown ids. It fails if any ref could not be handled.
func forEachRecord(cmd *cobra.Command, refs []string, fn func(*app, *storage.CommandRecord) (string, error)) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	var errs []error
	for _, ref := range refs {
		rec, err := a.resolveRecord(ctx, ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		msg, err := fn(a, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", styleID.Render(shortID(rec.ID)), msg)
	}
	return errors.Join(errs...)
}
