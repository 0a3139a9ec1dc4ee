package content

import (
	"fmt"
	"os"
	"path/filepath"
)

// renameFunc is the final tmp->path rename. Swapped out by tests to simulate
// a crash at the commit point.
type renameFunc func(oldpath, newpath string) error

// WriteFileAtomic writes bytes to path with crash-consistency against the
// file's previous contents. After a successful call path holds exactly data;
// after a failed call path holds either its previous contents or no file at
// all if none existed before.
//
// Sequence: write <path>.tmp, move any existing file to <path>.bak, rename
// the tmp over path, then drop the backup. A failed commit rename restores
// the backup and removes the tmp.
func WriteFileAtomic(path string, data []byte) error {
	return writeFileAtomicWith(path, data, os.Rename)
}

func writeFileAtomicWith(path string, data []byte, commit renameFunc) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomic write %s: create parent dir: %w", path, err)
	}

	tmpPath := path + ".tmp"
	bakPath := path + ".bak"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("atomic write %s: write temp: %w", path, err)
	}

	hadPrevious := false
	if _, err := os.Stat(path); err == nil {
		hadPrevious = true
		// A stale .bak from an earlier interrupted write must not block the
		// backup rename.
		if err := os.Remove(bakPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("atomic write %s: remove stale backup: %w", path, err)
		}
		if err := os.Rename(path, bakPath); err != nil {
			return fmt.Errorf("atomic write %s: backup previous: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("atomic write %s: stat target: %w", path, err)
	}

	if err := commit(tmpPath, path); err != nil {
		rollbackErr := rollbackAtomicWrite(path, tmpPath, bakPath, hadPrevious)
		if rollbackErr != nil {
			return fmt.Errorf("atomic write %s: commit rename failed (%w); rollback also failed: %v",
				path, err, rollbackErr)
		}
		return fmt.Errorf("atomic write %s: commit rename failed, previous contents restored: %w", path, err)
	}

	if hadPrevious {
		if err := os.Remove(bakPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("atomic write %s: remove backup after commit: %w", path, err)
		}
	}
	return nil
}

func rollbackAtomicWrite(path, tmpPath, bakPath string, hadPrevious bool) error {
	var firstErr error
	if hadPrevious {
		if err := os.Rename(bakPath, path); err != nil {
			firstErr = fmt.Errorf("restore backup: %w", err)
		}
	}
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) && firstErr == nil {
		firstErr = fmt.Errorf("remove temp: %w", err)
	}
	return firstErr
}
