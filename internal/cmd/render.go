package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/runger/cmdvault/internal/prompt"
	"github.com/runger/cmdvault/internal/retention"
	"github.com/runger/cmdvault/internal/sanitize"
	"github.com/runger/cmdvault/internal/storage"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// fitWidth makes s exactly width display columns, truncating with an
// ellipsis or padding with spaces. Escape sequences are removed first so a
// stored command cannot repaint the terminal.
func fitWidth(s string, width int) string {
	s = strings.ReplaceAll(prompt.StripANSI(s), "\n", " ")
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func formatAge(ms int64, now time.Time) string {
	d := now.Sub(time.UnixMilli(ms))
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// printRecords writes one line per record: id, favorite mark, category,
// usage count and the command truncated to the terminal width.
func printRecords(w io.Writer, recs []storage.CommandRecord) {
	const (
		catWidth   = 16
		usesWidth  = 5
		fixedWidth = shortIDLen + 2 + 2 + catWidth + 1 + usesWidth + 2
	)
	cmdWidth := terminalWidth() - fixedWidth
	if cmdWidth < 20 {
		cmdWidth = 20
	}

	for i := range recs {
		rec := &recs[i]
		fav := "  "
		if rec.IsFavorite {
			fav = styleFavorite.Render("★") + " "
		}
		label := deref(rec.Name)
		text := rec.Command
		if label != "" {
			text = label + ": " + text
		}
		fmt.Fprintf(w, "%s  %s%s %s  %s\n",
			styleID.Render(shortID(rec.ID)),
			fav,
			styleCategory.Render(fitWidth(deref(rec.Category), catWidth)),
			styleDim.Render(fmt.Sprintf("%*d", usesWidth, rec.UsageCount)),
			strings.TrimRight(fitWidth(text, cmdWidth), " "),
		)
	}
}

// printRecordDetail writes every field of rec.
func printRecordDetail(w io.Writer, rec *storage.CommandRecord, policy retention.Policy, now time.Time) {
	row := func(k, v string) {
		fmt.Fprintf(w, "%s %s\n", styleBold.Render(fmt.Sprintf("%-10s", k)), v)
	}

	row("id:", styleID.Render(rec.ID))
	row("command:", prompt.StripANSI(rec.Command))
	if rec.Name != nil {
		row("name:", *rec.Name)
	}
	category := deref(rec.Category)
	if category == "" {
		category = styleDim.Render("(none)")
	}
	row("category:", category)
	row("source:", string(rec.Source))
	row("uses:", fmt.Sprintf("%d", rec.UsageCount))
	if rec.LastUsedUnixMs != nil {
		row("last used:", formatAge(*rec.LastUsedUnixMs, now))
	}
	row("favorite:", fmt.Sprintf("%t", rec.IsFavorite))
	if level, reason := sanitize.Assess(rec.Command); level == sanitize.RiskDestructive {
		row("risk:", styleWarn.Render(string(level)+" ("+reason+")"))
	}
	row("created:", time.UnixMilli(rec.CreatedAtUnixMs).Format(time.RFC3339))
	row("modified:", time.UnixMilli(rec.UpdatedAtUnixMs).Format(time.RFC3339))
	if rec.DeletedAtUnixMs != nil {
		row("deleted:", formatAge(*rec.DeletedAtUnixMs, now))
		row("expires:", time.UnixMilli(policy.ExpiresAt(rec)).Format(time.RFC3339))
	}
}
