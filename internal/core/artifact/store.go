package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// filePrefix bounds every path the store creates or sweeps, so unrelated
// files in a shared temp directory are never touched.
const filePrefix = "gifforge_"

// Store manages the temporary input/output files owned by jobs. Paths are
// deterministic per job id; ownership is exclusive, so no locking is needed
// beyond filesystem create/delete atomicity.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Store{dir: dir}
}

// ReserveInput returns the path for a job's uploaded source file. The
// original name is sanitized but kept so ffmpeg sees the real extension.
func (s *Store) ReserveInput(jobID, originalName string) string {
	name := fmt.Sprintf("%sinput_%s_%s", filePrefix, jobID, sanitizeName(originalName))
	return filepath.Join(s.dir, name)
}

// ReserveOutput returns the path where a job's GIF will be written.
func (s *Store) ReserveOutput(jobID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%soutput_%s.gif", filePrefix, jobID))
}

// Save writes src to path.
func (s *Store) Save(path string, src io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Delete removes an artifact. A missing file is not an error.
func (s *Store) Delete(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to delete artifact")
	}
}

// Sweep deletes store-owned files whose last modification is older than
// maxAge, reclaiming artifacts of jobs that were never downloaded. Returns
// the number of files removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"))
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		log.Info().Int("count", removed).Msg("swept expired artifacts")
	}
	return removed
}

// sanitizeName reduces an uploaded filename to a safe basename: path
// separators are stripped and anything outside [A-Za-z0-9._-] becomes '_'.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
