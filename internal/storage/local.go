package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

const filePerms = 0o644

// localStorage serves keys as files below a root directory.
// Put writes to a temporary file in the same directory and renames it over the target,
// so a failed write never leaves a half-written spreadsheet behind.
type localStorage struct {
	root string
}

// NewLocal creates a filesystem-backed Storage rooted at root. The directory must exist.
func NewLocal(root string) (Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat storage root: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("storage root %q is not a directory", root)
	}
	return &localStorage{root: root}, nil
}

func (l *localStorage) path(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, ObjectInfo{}, notFound(key, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	return f, infoOf(key, st), nil
}

func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, _ PutObjectOptions) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	p := l.path(key)
	if err := atomic.WriteFile(p, r); err != nil {
		return ObjectInfo{}, fmt.Errorf("write %s: %w", key, err)
	}
	// atomic.WriteFile keeps the mode of an existing file but creates new ones as 0600
	if err := os.Chmod(p, filePerms); err != nil {
		return ObjectInfo{}, fmt.Errorf("chmod %s: %w", key, err)
	}
	return l.Stat(ctx, key)
}

func (l *localStorage) Append(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path(key), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerms)
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", key, err)
	}
	return f.Close()
}

func (l *localStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	st, err := os.Stat(l.path(key))
	if err != nil {
		return ObjectInfo{}, notFound(key, err)
	}
	return infoOf(key, st), nil
}

func infoOf(key string, st fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		LastModified: st.ModTime(),
	}
}

func notFound(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return err
}
