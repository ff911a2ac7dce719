// Package sweep applies one cleanup stage to every record file in a corpus
// directory. A failure on one file never aborts the sweep; every failure
// mode degrades to "skip this one item, report it, continue".
package sweep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/refsweep/refsweep/internal/record"
)

// ErrInsufficientContent signals that a record's cleaned body fell below the
// minimum-substance threshold and the file should be deleted rather than
// rewritten.
var ErrInsufficientContent = errors.New("insufficient content")

// ErrSkip signals that a stage chose not to touch the record; the file is
// left as is and counted as skipped.
var ErrSkip = errors.New("skip record")

// Stage transforms one parsed record. The incoming header metadata must be
// preserved in the returned record.
type Stage func(rec record.Record) (record.Record, error)

// DefaultPattern matches the HTML/link-derived records in a corpus directory.
const DefaultPattern = "web_*.txt"

// Options controls a single sweep.
type Options struct {
	// Pattern is the filename glob within Dir. Empty means DefaultPattern.
	Pattern string
	// BackupDir, when set, receives a copy of each file before it is
	// mutated.
	BackupDir string
}

// Report aggregates one sweep's outcome. TotalBytes is the corpus size of
// the matching files after the sweep.
type Report struct {
	Kept       int
	Deleted    int
	Skipped    int
	Failed     int
	TotalBytes int64
}

// Run applies stage to every matching file in dir. Per-file errors are
// logged and counted, never fatal.
func Run(dir string, stage Stage, opts Options) (Report, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return Report{}, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(files)

	if opts.BackupDir != "" {
		if err := os.MkdirAll(opts.BackupDir, 0o755); err != nil {
			return Report{}, fmt.Errorf("create backup dir: %w", err)
		}
	}

	var rep Report
	for _, path := range files {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("read failed; skipping")
			rep.Failed++
			continue
		}
		if opts.BackupDir != "" {
			if err := os.WriteFile(filepath.Join(opts.BackupDir, name), data, 0o644); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("backup failed")
			}
		}

		rec := record.Parse(string(data))
		out, err := stage(rec)
		switch {
		case errors.Is(err, ErrInsufficientContent):
			if err := os.Remove(path); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("delete failed")
				rep.Failed++
				continue
			}
			log.Info().Str("file", name).Msg("deleted: minimal content")
			rep.Deleted++
		case errors.Is(err, ErrSkip):
			rep.Skipped++
		case err != nil:
			log.Warn().Err(err).Str("file", name).Msg("stage failed; skipping")
			rep.Failed++
		default:
			// The header travels through the stage untouched.
			out.SourceURL = rec.SourceURL
			out.FinalURL = rec.FinalURL
			if err := out.WriteFile(path); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("write failed")
				rep.Failed++
				continue
			}
			rep.Kept++
		}
	}

	rep.TotalBytes = corpusSize(dir, pattern)
	log.Info().
		Int("kept", rep.Kept).
		Int("deleted", rep.Deleted).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Int64("bytes", rep.TotalBytes).
		Msg("sweep complete")
	return rep, nil
}

func corpusSize(dir, pattern string) int64 {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0
	}
	var total int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			total += info.Size()
		}
	}
	return total
}
