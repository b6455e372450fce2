// Package filesystem provides the product image store on a local directory.
// Writes are atomic (temp file and rename), etags are SHA-256 hex digests
// and content types are detected from the stored bytes.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/amww/loja"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// tmpPrefix marks in-flight writes; List skips them.
const tmpPrefix = ".t"

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewStore creates a Store on the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Open opens dir, creating it if needed, and returns a Store on it
// together with a function that closes the root.
func Open(dir string) (*Store, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("open image store: %w", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open image store: %w", err)
	}

	return NewStore(root), root.Close, nil
}

func checkPath(p string) error {
	if !loja.IsValidPath(p) {
		return fmt.Errorf("%w: invalid object path %q", loja.ErrInvalidInput, p)
	}
	return nil
}

// Get opens an object for reading. Returns loja.ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := checkPath(p); err != nil {
		return nil, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, loja.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, loja.ErrNotFound
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically replaces the object at p using a temp file and rename.
// Intermediate directories are created as needed. The returned SaveResult
// holds the byte count and the SHA-256 etag of the content.
func (s *Store) Write(ctx context.Context, p string, content io.Reader) (loja.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return loja.SaveResult{}, ctxErr
	}

	if err := checkPath(p); err != nil {
		return loja.SaveResult{}, err
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return loja.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	size, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return loja.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return loja.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if destDir := path.Dir(p); destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return loja.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, p); renameErr != nil {
		return loja.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true

	return loja.SaveResult{BytesWritten: size, Etag: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes an object. Returns loja.ErrNotFound if it does not exist.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := checkPath(p); err != nil {
		return err
	}

	if err := s.root.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return loja.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List returns every object whose path starts with prefix, with its size,
// etag and detected content type. An empty prefix lists everything.
func (s *Store) List(ctx context.Context, prefix string) ([]loja.ImageObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := "."
	if i := strings.LastIndex(prefix, "/"); i > 0 {
		dir = prefix[:i]
	}

	objects := []loja.ImageObject{}

	err := s.walkDir(ctx, dir, func(obj loja.ImageObject) {
		if strings.HasPrefix(obj.Path, prefix) {
			objects = append(objects, obj)
		}
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return objects, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return objects, nil
}

func (s *Store) walkDir(ctx context.Context, dir string, visit func(loja.ImageObject)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		entryPath := path.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := s.walkDir(ctx, entryPath, visit); err != nil {
				return err
			}
			continue
		}

		obj, err := s.describe(entryPath)
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}
		visit(obj)
	}

	return nil
}

func (s *Store) describe(p string) (loja.ImageObject, error) {
	f, err := s.root.Open(p)
	if err != nil {
		return loja.ImageObject{}, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", p, "err", closeErr)
		}
	}()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return loja.ImageObject{}, fmt.Errorf("detect content type: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return loja.ImageObject{}, err
	}

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return loja.ImageObject{}, err
	}

	return loja.ImageObject{
		Path:        p,
		Size:        size,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		ContentType: mtype.String(),
	}, nil
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}
