package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"realty-assistant/internal/contextutil"
)

// DirReport summarizes a LoadDir run.
type DirReport struct {
	Loaded     int               `json:"loaded"`
	Duplicates int               `json:"duplicates"`
	Failed     int               `json:"failed"`
	Failures   map[string]string `json:"failures,omitempty"` // relative path -> error
}

// LoadDir loads every supported file below dir. Hidden files and
// directories are skipped. Per-file failures are logged and counted in the
// report; the returned error is reserved for walk failures and cancellation.
func (p *Pipeline) LoadDir(ctx context.Context, dir string) (*DirReport, error) {
	logger := contextutil.LoggerFromContext(ctx)
	report := &DirReport{Failures: map[string]string{}}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !p.extractor.Supported(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		content, err := os.ReadFile(path)
		if err != nil {
			report.Failed++
			report.Failures[relPath] = err.Error()
			logger.WarnContext(ctx, "failed to read file", "path", relPath, "error", err)
			return nil
		}

		result, err := p.Load(ctx, d.Name(), content)
		switch {
		case err != nil:
			report.Failed++
			report.Failures[relPath] = err.Error()
		case result.Duplicate:
			report.Duplicates++
		default:
			report.Loaded++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	logger.InfoContext(ctx, "directory scan complete",
		"dir", dir,
		"loaded", report.Loaded,
		"duplicates", report.Duplicates,
		"failed", report.Failed,
	)
	return report, nil
}
