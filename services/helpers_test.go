package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	webmHeader = []byte("\x1a\x45\xdf\xa3\x9f\x42\x86\x81\x01\x42\xf7\x81\x01\x42\xf2\x81\x04webm")
)

func pngUpload(field, name string) media.Upload {
	data := append(bytes.Clone(pngHeader), bytes.Repeat([]byte{0}, 64)...)
	return media.UploadFromBytes(field, name, "image/png", data)
}

func webmUpload(field, name string) media.Upload {
	return media.UploadFromBytes(field, name, "video/webm", webmHeader)
}

func spoofedUpload(field string) media.Upload {
	return media.UploadFromBytes(field, "shell.png", "image/png", []byte("<?php system($_GET['c']); ?>"))
}

// switchableStore fails Put calls while failPuts is set, and reports the next
// collisions writes as already taken.
type switchableStore struct {
	*media.LocalStore
	failPuts   bool
	collisions int
	puts       int
}

func (s *switchableStore) Put(ctx context.Context, p string, r io.Reader, ct string) error {
	s.puts++
	if s.failPuts {
		return errors.New("simulated disk failure")
	}
	if s.collisions > 0 {
		s.collisions--
		return fmt.Errorf("%s: %w", p, media.ErrExists)
	}
	return s.LocalStore.Put(ctx, p, r, ct)
}

type fixture struct {
	db      database.Database
	store   *switchableStore
	staging string
	svc     *ProjectService
	web     int64
	game    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "portfolio.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(gdb, false))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	local, err := media.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		db:      database.New(gdb),
		store:   &switchableStore{LocalStore: local},
		staging: t.TempDir(),
	}
	f.svc = NewProjectService(f.db, f.store, f.staging)

	ctx := context.Background()
	web := models.Category{Name: "Web"}
	game := models.Category{Name: "Game"}
	require.NoError(t, f.db.CategoryRepo().Add(ctx, &web))
	require.NoError(t, f.db.CategoryRepo().Add(ctx, &game))
	f.web, f.game = web.ID, game.ID
	return f
}

func (f *fixture) addTag(t *testing.T, name string) int64 {
	t.Helper()
	tag := models.Tag{Name: name, Category: "language"}
	require.NoError(t, f.db.TagRepo().Add(context.Background(), &tag))
	return tag.ID
}

func (f *fixture) project(t *testing.T, id int64) *models.Project {
	t.Helper()
	p, err := f.db.ProjectRepo().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) exists(t *testing.T, p string) bool {
	t.Helper()
	ok, err := f.store.Exists(context.Background(), p)
	require.NoError(t, err)
	return ok
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()
	objects, err := f.store.List(context.Background(), media.UploadPrefix)
	require.NoError(t, err)
	paths := make([]string, 0, len(objects))
	for _, o := range objects {
		paths = append(paths, o.Path)
	}
	return paths
}

func (f *fixture) stagingEmpty(t *testing.T) bool {
	t.Helper()
	entries, err := os.ReadDir(f.staging)
	require.NoError(t, err)
	return len(entries) == 0
}

func (f *fixture) baseInput() ProjectInput {
	return ProjectInput{
		Title:       "Portfolio Site",
		CategoryID:  f.web,
		Description: "A site about my work",
		ProjectLink: "https://example.com",
		GithubLink:  "https://github.com/example/site",
		SortOrder:   1,
		IsPublished: true,
	}
}

// createWithCover creates a project with a PNG hero and returns it.
func (f *fixture) createWithCover(t *testing.T, in ProjectInput) *models.Project {
	t.Helper()
	in.Hero = pngUpload("hero_media", "cover.png")
	res := f.svc.Create(context.Background(), in)
	require.True(t, res.OK(), res.Message)
	return f.project(t, res.ProjectID)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
