package commandstore

import (
	"context"

	"github.com/runger/cmdvault/internal/cmdutil"
	"github.com/runger/cmdvault/internal/storage"
)

// ImportItem is one command offered for bulk import.
type ImportItem struct {
	Command         string
	Category        string
	CreatedAtUnixMs int64 // 0 means now
}

// ImportResult counts what Import did with its input.
type ImportResult struct {
	Imported   int
	Duplicates int
	Empty      int
}

// Import saves items with the given source, skipping blanks and anything
// already active (or repeated within items). Capacity is enforced as for
// Save.
func (s *Store) Import(ctx context.Context, items []ImportItem, source storage.Source) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ImportResult{}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		text := cmdutil.TrimCommand(item.Command)
		if text == "" {
			result.Empty++
			continue
		}
		if _, dup := seen[text]; dup {
			result.Duplicates++
			continue
		}
		seen[text] = struct{}{}

		exists, err := s.db.ActiveCommandExists(ctx, text)
		if err != nil {
			return result, err
		}
		if exists {
			result.Duplicates++
			continue
		}
		if _, err := s.saveLocked(ctx, text, item.Category, "", source, item.CreatedAtUnixMs); err != nil {
			return result, err
		}
		result.Imported++
	}

	if result.Imported > 0 {
		s.logger.Info("commands imported",
			"source", string(source),
			"imported", result.Imported,
			"duplicates", result.Duplicates,
		)
	}
	return result, nil
}
