package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"blog-summarizer/internal/domain/entity"
)

// FileStore reads documents from and writes them back to the file system.
type FileStore struct {
	// Atomic writes through a temporary file in the same directory followed by
	// a rename, so a crash never leaves a half-written document.
	Atomic bool
}

// Read loads the document at path.
func (s *FileStore) Read(ctx context.Context, path string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 -- path comes from listing the configured input directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError("read", path, err)
	}

	return &entity.Document{
		Path:  path,
		Name:  filepath.Base(path),
		Lines: entity.SplitLines(string(data)),
	}, nil
}

// Write replaces the content of the document at path, keeping its file mode.
func (s *FileStore) Write(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	var err error
	if s.Atomic {
		err = writeAtomic(path, []byte(content), mode)
	} else {
		err = os.WriteFile(path, []byte(content), mode)
	}
	if err != nil {
		return newIOError("write", path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte, mode os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// newIOError drops a *fs.PathError wrapper naming the same path, so the
// message does not repeat it.
func newIOError(op, path string, err error) *entity.IOError {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Path == path {
		err = pathErr.Err
	}
	return &entity.IOError{Op: op, Path: path, Err: err}
}
