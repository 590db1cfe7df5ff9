package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"signal-trading-bot/internal/logger"
)

// Store is the durable set of fingerprints of posts already acted on.
// It is owned and mutated exclusively by the orchestration loop, so no
// internal locking is needed.
type Store struct {
	path string
	seen map[string]struct{}
}

// Fingerprint derives the canonical dedup key for a post: SHA-256 of
// the trimmed text, hex-encoded. Used for equality only.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// Load reads the persisted fingerprint set. A missing or corrupt file
// yields an empty store with a warning; startup never fails on it.
func Load(ctx context.Context, path string) *Store {
	s := &Store{path: path, seen: make(map[string]struct{})}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info(ctx, "Dedup file not found, starting empty", "path", path)
		} else {
			logger.Warn(ctx, "Failed to read dedup file, starting empty", "path", path, "error", err)
		}
		return s
	}

	var fps []string
	if err := json.Unmarshal(b, &fps); err != nil {
		logger.Warn(ctx, "Dedup file corrupt, starting empty", "path", path, "error", err)
		return s
	}

	for _, fp := range fps {
		s.seen[fp] = struct{}{}
	}
	logger.Info(ctx, "Dedup store loaded", "path", path, "fingerprints", len(s.seen))
	return s
}

// Contains reports whether fp has already been committed.
func (s *Store) Contains(fp string) bool {
	_, ok := s.seen[fp]
	return ok
}

// Len returns the number of committed fingerprints.
func (s *Store) Len() int {
	return len(s.seen)
}

// Commit adds fp to the set and rewrites the whole file. The rewrite
// goes through a temp file and rename, so a crash mid-commit loses at
// most this fingerprint and can never leave a duplicated entry.
func (s *Store) Commit(fp string) error {
	s.seen[fp] = struct{}{}

	fps := make([]string, 0, len(s.seen))
	for k := range s.seen {
		fps = append(fps, k)
	}
	sort.Strings(fps)

	b, err := json.MarshalIndent(fps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dedup set: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dedup dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write dedup temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace dedup file: %w", err)
	}
	return nil
}
