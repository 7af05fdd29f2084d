package catalog

import (
	"fmt"
	"path/filepath"
)

// The recorder derives its output filename from the program title, feed
// identifier and the date portion of the start timestamp. This function is
// the orchestrator's side of that contract and must match the recorder
// exactly; it is versioned so a naming change in the recorder becomes an
// explicit code change here, not silent catalog drift.

// PathDerivationVersion identifies the filename convention implemented by
// ArtifactRelPath.
const PathDerivationVersion = 1

// ArtifactRelPath returns the artifact path relative to the recorder output
// directory: <feed>/<title>(YYYY.MM.DD).mp3, with the date taken from the
// first eight digits of the start timestamp.
func ArtifactRelPath(title, feed, start string) (string, error) {
	if len(start) < 8 {
		return "", fmt.Errorf("start timestamp %q too short for date derivation", start)
	}
	date := fmt.Sprintf("%s.%s.%s", start[0:4], start[4:6], start[6:8])
	return filepath.Join(feed, fmt.Sprintf("%s(%s).mp3", title, date)), nil
}

// ArtifactPath returns the absolute artifact path under outputDir.
func ArtifactPath(outputDir, title, feed, start string) (string, error) {
	rel, err := ArtifactRelPath(title, feed, start)
	if err != nil {
		return "", err
	}
	return filepath.Join(outputDir, rel), nil
}

// BroadcastDate extracts the YYYY-MM-DD broadcast date from a recorder start
// timestamp.
func BroadcastDate(start string) string {
	if len(start) < 8 {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", start[0:4], start[4:6], start[6:8])
}

// ListingTime converts a recorder start timestamp (YYYYMMDDHHMM, optionally
// with seconds) to the ISO form program listings are keyed by.
func ListingTime(start string) string {
	if len(start) < 12 {
		return ""
	}
	sec := "00"
	if len(start) >= 14 {
		sec = start[12:14]
	}
	return fmt.Sprintf("%s-%s-%sT%s:%s:%s",
		start[0:4], start[4:6], start[6:8], start[8:10], start[10:12], sec)
}
