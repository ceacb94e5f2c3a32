package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Staged is a validated upload copied to the staging directory, waiting for its final path.
type Staged struct {
	Path        string
	ContentType string
	Size        int64
	tmpFile     string
}

// ReferenceChecker reports whether any database row still points at a media path.
type ReferenceChecker func(ctx context.Context, p string) (bool, error)

// Batch collects the file side effects of one write operation. Uploads are staged first,
// promoted into the store at the end of the database transaction and undone on rollback.
// Files the operation replaces are only removed by Finalize, after commit.
type Batch struct {
	store      Store
	alloc      *Allocator
	stagingDir string
	logger     zerolog.Logger

	staged     []*Staged
	promoted   []string
	superseded []string
	reserved   map[string]bool
	renamed    map[string]string
}

func NewBatch(store Store, alloc *Allocator, stagingDir string) *Batch {
	return &Batch{
		store:      store,
		alloc:      alloc,
		stagingDir: stagingDir,
		logger:     log.With().Str("serviceName", "media.batch").Logger(),
		reserved:   make(map[string]bool),
	}
}

// Stage copies c into the staging directory under a name derived from hint.
func (b *Batch) Stage(ctx context.Context, c Checked, hint, fallback string) (*Staged, error) {
	p, err := b.allocate(ctx, hint, fallback, c.Ext())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory '%s': %w", b.stagingDir, err)
	}
	tmpFile := filepath.Join(b.stagingDir, uuid.NewString())

	src, err := c.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload '%s': %w", c.Filename, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	n, err := io.Copy(dst, readerWithContext(ctx, src))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpFile)
		return nil, fmt.Errorf("failed to stage '%s': %w", c.Filename, err)
	}

	s := &Staged{Path: p, ContentType: c.MimeType, Size: n, tmpFile: tmpFile}
	b.staged = append(b.staged, s)
	b.reserved[p] = true
	return s, nil
}

func (b *Batch) allocate(ctx context.Context, hint, fallback, ext string) (string, error) {
	for i := 0; i < maxAllocRetries; i++ {
		p, err := b.alloc.Allocate(ctx, b.store, hint, fallback, ext)
		if err != nil {
			return "", err
		}
		if !b.reserved[p] {
			return p, nil
		}
	}
	return "", fmt.Errorf("no free file name for %q", hint)
}

// Supersede schedules p for deletion once the operation has committed.
func (b *Batch) Supersede(p string) {
	if p == "" {
		return
	}
	for _, existing := range b.superseded {
		if existing == p {
			return
		}
	}
	b.superseded = append(b.superseded, p)
}

// Superseded lists the paths scheduled for deletion.
func (b *Batch) Superseded() []string {
	return b.superseded
}

// StagedCount reports how many uploads are waiting to be promoted.
func (b *Batch) StagedCount() int {
	return len(b.staged) - len(b.promoted)
}

// Promote writes every staged file to its final path. It stops at the first failure;
// files already written stay recorded so Rollback can remove them. A path taken by
// another writer since staging gets a fresh suffix; Renamed reports those moves.
func (b *Batch) Promote(ctx context.Context) error {
	for _, s := range b.staged[len(b.promoted):] {
		if err := b.putFresh(ctx, s); err != nil {
			return err
		}
		b.promoted = append(b.promoted, s.Path)
	}
	return nil
}

// Renamed maps staged paths to the paths Promote actually wrote, for the files that moved.
func (b *Batch) Renamed() map[string]string {
	return b.renamed
}

func (b *Batch) putFresh(ctx context.Context, s *Staged) error {
	original := s.Path
	for i := 0; ; i++ {
		err := b.put(ctx, s)
		if err == nil || !errors.Is(err, ErrExists) || i+1 >= maxAllocRetries {
			return err
		}

		next, err := b.suffixed(original)
		if err != nil {
			return err
		}
		b.logger.Warn().Str("path", s.Path).Str("next", next).Msg("media path taken during promote, retrying")
		delete(b.reserved, s.Path)
		b.reserved[next] = true
		s.Path = next
		if b.renamed == nil {
			b.renamed = make(map[string]string)
		}
		b.renamed[original] = next
	}
}

// suffixed appends a random suffix to p's base name, skipping names this batch holds.
func (b *Batch) suffixed(p string) (string, error) {
	ext := path.Ext(p)
	base := strings.TrimSuffix(p, ext)
	for i := 0; i < maxAllocRetries; i++ {
		extra, err := b.alloc.randomHex()
		if err != nil {
			return "", err
		}
		if candidate := base + "_" + extra + ext; !b.reserved[candidate] {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for '%s'", p)
}

func (b *Batch) put(ctx context.Context, s *Staged) error {
	f, err := os.Open(s.tmpFile)
	if err != nil {
		return fmt.Errorf("failed to reopen staged file for '%s': %w", s.Path, err)
	}
	defer f.Close()
	if err := b.store.Put(ctx, s.Path, f, s.ContentType); err != nil {
		return fmt.Errorf("failed to store '%s': %w", s.Path, err)
	}
	return nil
}

// Rollback removes promoted files from the store and discards the staging area.
// It uses a fresh context so a cancelled request still gets cleaned up.
func (b *Batch) Rollback() {
	ctx := context.Background()
	for _, p := range b.promoted {
		if err := b.store.Delete(ctx, p); err != nil {
			b.logger.Warn().Err(err).Str("path", p).Msg("could not remove promoted file during rollback")
		}
	}
	b.promoted = nil
	b.discardStaging()
}

// Finalize runs after commit: it drops the staging area and deletes superseded files
// that no row references any more. Failures are logged and otherwise ignored.
func (b *Batch) Finalize(ctx context.Context, referenced ReferenceChecker) []string {
	b.discardStaging()

	var deleted []string
	for _, p := range b.superseded {
		if b.reserved[p] {
			continue
		}
		if referenced != nil {
			inUse, err := referenced(ctx, p)
			if err != nil {
				b.logger.Warn().Err(err).Str("path", p).Msg("could not check references, keeping file")
				continue
			}
			if inUse {
				continue
			}
		}
		if err := b.store.Delete(ctx, p); err != nil {
			b.logger.Warn().Err(err).Str("path", p).Msg("could not delete superseded file")
			continue
		}
		deleted = append(deleted, p)
	}
	return deleted
}

func (b *Batch) discardStaging() {
	for _, s := range b.staged {
		if err := os.Remove(s.tmpFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.logger.Warn().Err(err).Str("tmp", s.tmpFile).Msg("could not remove staging file")
		}
	}
	b.staged = nil
}
