package fileops

import (
	"io"
	"os"
	"path/filepath"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// WriteAtomic writes content to path by writing a sibling temp file, fsyncing
// it, renaming it over path, and fsyncing the parent directory so the
// replacement survives a crash (spec §4.2's atomicity invariant). perm is
// applied to the temp file before rename so the final file's mode matches.
func WriteAtomic(path string, content []byte, perm os.FileMode) error {
	const op = "write_atomic"
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return core.Wrap(core.KindIOFailure, op, path, err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return core.Wrap(core.KindIOFailure, op, path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return core.Wrap(core.KindIOFailure, op, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return core.Wrap(core.KindIOFailure, op, path, err)
	}
	if err := tmp.Close(); err != nil {
		return core.Wrap(core.KindIOFailure, op, path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return core.Wrap(core.KindIOFailure, op, path, err)
	}
	cleanup = false

	if dirFile, err := os.Open(dir); err == nil {
		dirFile.Sync()
		dirFile.Close()
	}

	return nil
}

// ReadCapped reads path, rejecting anything over maxBytes without loading
// the full file into memory first (spec §4.2's read-size guard).
func ReadCapped(path string, maxBytes int64) ([]byte, error) {
	const op = "read_capped"
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewTarget(core.KindNotFound, op, path, "file does not exist")
		}
		return nil, core.Wrap(core.KindIOFailure, op, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, core.Wrap(core.KindIOFailure, op, path, err)
	}
	if info.Size() > maxBytes {
		return nil, core.NewTarget(core.KindInvalidInput, op, path, "file exceeds the maximum readable size")
	}

	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, core.Wrap(core.KindIOFailure, op, path, err)
	}
	return buf, nil
}

// Remove deletes path, reporting NotFound rather than a bare IO failure when
// it is already absent (spec §7 taxonomy).
func Remove(path string) error {
	const op = "remove_file"
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return core.NewTarget(core.KindNotFound, op, path, "file does not exist")
		}
		return core.Wrap(core.KindIOFailure, op, path, err)
	}
	return nil
}
