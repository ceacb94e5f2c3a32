package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrExists is returned by Put when the destination path is already taken.
var ErrExists = errors.New("media object already exists")

// Object describes one stored file.
type Object struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Store holds media files addressed by slash separated paths such as "uploads/a.png".
type Store interface {
	// Put writes r to p and fails with ErrExists instead of overwriting.
	Put(ctx context.Context, p string, r io.Reader, contentType string) error
	// Delete removes p. A missing object is not an error.
	Delete(ctx context.Context, p string) error
	Exists(ctx context.Context, p string) (bool, error)
	// List returns every object whose path starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}

const tmpPrefix = ".tmp-"

// LocalStore keeps media under a directory on the local filesystem.
type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid media root '%s': %w", basePath, err)
	}
	if err := os.MkdirAll(filepath.Join(absBasePath, strings.TrimSuffix(UploadPrefix, "/")), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory under '%s': %w", absBasePath, err)
	}

	log.Info().Str("root", absBasePath).Msg("media: local store ready")
	return &LocalStore{basePath: absBasePath}, nil
}

// Root is the absolute directory the store writes to.
func (ls *LocalStore) Root() string {
	return ls.basePath
}

// FullPath resolves p inside the root and refuses anything that escapes it.
func (ls *LocalStore) FullPath(p string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid path: access denied for '%s'", p)
	}
	full := filepath.Join(ls.basePath, clean)
	if !strings.HasPrefix(full, ls.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path: access denied for '%s'", p)
	}
	return full, nil
}

// Put writes to a temp file next to the destination and hard-links it into place,
// so a concurrent writer of the same name gets ErrExists instead of a clobbered file.
func (ls *LocalStore) Put(ctx context.Context, p string, r io.Reader, _ string) error {
	full, err := ls.FullPath(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in '%s': %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data to '%s': %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush '%s': %w", p, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on '%s': %w", p, err)
	}

	if err := os.Link(tmp.Name(), full); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", p, ErrExists)
		}
		return fmt.Errorf("failed to place '%s': %w", p, err)
	}

	log.Debug().Str("path", p).Msg("media: stored")
	return nil
}

func (ls *LocalStore) Delete(_ context.Context, p string) error {
	full, err := ls.FullPath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete asset '%s': %w", p, err)
	}
	return nil
}

func (ls *LocalStore) Exists(_ context.Context, p string) (bool, error) {
	full, err := ls.FullPath(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (ls *LocalStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := filepath.WalkDir(ls.basePath, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tmpPrefix) {
			return nil
		}
		rel, err := filepath.Rel(ls.basePath, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, Object{Path: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list media under '%s': %w", prefix, err)
	}
	return out, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
