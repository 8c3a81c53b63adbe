package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rl1809/inventory/internal/core/domain"
)

const filePerm = 0o644

// writeFileAtomic writes data next to path and renames it into place, so
// readers see either the previous or the new content. The temp file is removed
// on every failure path. beforeRename, when set, runs after the temp file is
// durable and before the rename; an error from it aborts the write.
func writeFileAtomic(path string, data []byte, beforeRename func(tmp string) error) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return storageError("create temp file in", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return storageError("write", tmpName, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return storageError("chmod", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return storageError("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return storageError("close", tmpName, err)
	}

	if beforeRename != nil {
		if err := beforeRename(tmpName); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return storageError("replace", path, err)
	}
	committed = true

	// The replace already happened; a failed dir sync is not reported.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// storageError wraps err with domain.ErrStorage while keeping err itself
// reachable for errors.Is checks such as fs.ErrPermission.
func storageError(op, target string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorage, op, target, err)
}
