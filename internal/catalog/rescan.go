package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// RescanResult summarizes one reconciliation sweep.
type RescanResult struct {
	Registered int // files upserted
	Removed    int // catalog rows whose file no longer exists
}

// Rescan walks the recorder output directory and reconciles the catalog with
// it: every artifact on disk is upserted (size and mtime refreshed, metadata
// columns preserved for rows the completion monitor already filled in via
// the path key), and rows whose file has vanished are deleted.
func (s *Store) Rescan(ctx context.Context, outputDir string) (*RescanResult, error) {
	result := &RescanResult{}

	seen := make(map[string]bool)

	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == outputDir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".mp3") {
			return nil
		}

		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		existing, getErr := s.Get(ctx, rel)
		entry := &Entry{
			FilePath:     rel,
			FileName:     d.Name(),
			FileSize:     info.Size(),
			FileModified: info.ModTime().UTC(),
		}
		if getErr == nil {
			// Keep what the completion monitor already knows.
			entry.ProgramID = existing.ProgramID
			entry.ProgramTitle = existing.ProgramTitle
			entry.StationID = existing.StationID
			entry.StationName = existing.StationName
			entry.BroadcastDate = existing.BroadcastDate
			entry.StartTime = existing.StartTime
			entry.EndTime = existing.EndTime
			entry.FolderID = existing.FolderID
		}

		if err := s.Upsert(ctx, entry); err != nil {
			log.Warn().Err(err).Str("path", rel).Msg("Rescan upsert failed")
			return nil
		}
		seen[rel] = true
		result.Registered++
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths, err := s.Paths(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if seen[p] {
			continue
		}
		if _, statErr := os.Stat(filepath.Join(outputDir, p)); statErr == nil {
			continue
		}
		if err := s.Delete(ctx, p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Rescan delete failed")
			continue
		}
		result.Removed++
	}

	log.Info().
		Int("registered", result.Registered).
		Int("removed", result.Removed).
		Msg("Catalog rescan complete")

	return result, nil
}
