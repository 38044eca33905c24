package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local 本地目录存储.
type Local struct {
	root string
}

// NewLocal 创建本地存储，根目录不存在时创建.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create uploads root: %w", err)
	}

	return &Local{root: abs}, nil
}

// Root 返回根目录的绝对路径.
func (l *Local) Root() string { return l.root }

func (l *Local) Backend() string { return "local" }

func (l *Local) Ping(_ context.Context) error {
	fi, err := os.Stat(l.root)
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		return fmt.Errorf("uploads root %s is not a directory", l.root)
	}

	return nil
}

// Resolve 把相对路径解析为根目录下的绝对路径.
func (l *Local) Resolve(rel string) (string, error) {
	cleaned, err := CleanRel(rel)
	if err != nil {
		return "", err
	}

	full := filepath.Join(l.root, filepath.FromSlash(cleaned))

	r, err := filepath.Rel(l.root, full)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}

	return full, nil
}

func (l *Local) Save(_ context.Context, rel string, r io.Reader, _ int64) error {
	full, err := l.Resolve(rel)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)

		return fmt.Errorf("write upload file: %w", err)
	}

	return f.Close()
}

func (l *Local) Open(_ context.Context, rel string) (io.ReadCloser, int64, error) {
	full, err := l.Resolve(rel)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(full) //nolint:gosec
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, ErrNotFound
		}

		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, 0, ErrNotFound
	}

	return f, info.Size(), nil
}

func (l *Local) Remove(_ context.Context, rel string) error {
	full, err := l.Resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
