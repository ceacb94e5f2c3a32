package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) Database {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "portfolio.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db, false))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db)
}

func strPtr(s string) *string { return &s }

func addCategory(t *testing.T, d Database, name string) int64 {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, d.CategoryRepo().Add(context.Background(), &c))
	return c.ID
}

func addProject(t *testing.T, d Database, categoryID int64, title string, sortOrder int, published bool) *models.Project {
	t.Helper()
	p := &models.Project{
		CategoryID:    categoryID,
		Title:         title,
		Description:   title + " description",
		CoverImageURL: strPtr("uploads/" + title + ".png"),
		SortOrder:     sortOrder,
		IsPublished:   published,
	}
	require.NoError(t, d.ProjectRepo().Add(context.Background(), p))
	return p
}

func TestListPublishedOrdering(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	web := addCategory(t, d, "Web")

	addProject(t, d, web, "third", 3, true)
	addProject(t, d, web, "first", 1, true)
	addProject(t, d, web, "second", 2, true)
	addProject(t, d, web, "hidden", 0, false)

	list, err := d.ProjectQueries().ListPublished(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	titles := []string{list[0].Title, list[1].Title, list[2].Title}
	assert.Equal(t, []string{"first", "second", "third"}, titles)
	require.NotNil(t, list[0].CategoryName)
	assert.Equal(t, "Web", *list[0].CategoryName)
	require.NotNil(t, list[0].PreviewMediaURL)
	assert.Equal(t, "uploads/first.png", *list[0].PreviewMediaURL, "preview falls back to the cover")
}

func TestListPublishedTieBreaksNewestFirst(t *testing.T) {
	d := openTestDB(t)
	web := addCategory(t, d, "Web")
	older := addProject(t, d, web, "older", 1, true)
	newer := addProject(t, d, web, "newer", 1, true)

	list, err := d.ProjectQueries().ListPublished(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestListPublishedFilters(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	web := addCategory(t, d, "Web")
	game := addCategory(t, d, "Game")
	addProject(t, d, web, "site", 1, true)
	g := addProject(t, d, game, "platformer", 2, true)
	g.PreviewMediaURL = strPtr("uploads/platformer.webm")
	require.NoError(t, d.ProjectRepo().Update(ctx, g))

	byID, err := d.ProjectQueries().ListPublished(ctx, ListFilter{CategoryID: game})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "uploads/platformer.webm", *byID[0].PreviewMediaURL)

	byName, err := d.ProjectQueries().ListPublished(ctx, ListFilter{CategoryName: "Web"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "site", byName[0].Title)

	none, err := d.ProjectQueries().ListPublished(ctx, ListFilter{CategoryName: "Nope"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	paged, err := d.ProjectQueries().ListPublished(ctx, ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "platformer", paged[0].Title)
}

func TestListFilterNormalized(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ListFilter{}.Normalized().Limit)
	assert.Equal(t, MaxListLimit, ListFilter{Limit: 1000}.Normalized().Limit)
	assert.Equal(t, 0, ListFilter{Offset: -4}.Normalized().Offset)
}

func TestPublishedDetail(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	web := addCategory(t, d, "Web")
	p := addProject(t, d, web, "portfolio", 1, true)
	hidden := addProject(t, d, web, "draft", 2, false)

	goTag := models.Tag{Name: "Go", Category: "language"}
	chiTag := models.Tag{Name: "chi", Category: "framework"}
	require.NoError(t, d.TagRepo().Add(ctx, &goTag))
	require.NoError(t, d.TagRepo().Add(ctx, &chiTag))
	require.NoError(t, d.ProjectTagRepo().Replace(ctx, p.ID, []int64{goTag.ID, chiTag.ID}))

	for _, g := range []models.GalleryImage{
		{ProjectID: p.ID, ImageURL: "uploads/b.png", SortOrder: 2},
		{ProjectID: p.ID, ImageURL: "uploads/a.png", SortOrder: 1},
	} {
		g := g
		require.NoError(t, d.GalleryRepo().Add(ctx, &g))
	}

	detail, err := d.ProjectQueries().PublishedDetail(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "portfolio", detail.Title)
	assert.Equal(t, "Web", *detail.CategoryName)
	require.Len(t, detail.Tags, 2)
	assert.Equal(t, "chi", detail.Tags[0].Name, "framework sorts before language")
	require.Len(t, detail.Gallery, 2)
	assert.Equal(t, "uploads/a.png", detail.Gallery[0].ImageURL)

	_, err = d.ProjectQueries().PublishedDetail(ctx, hidden.ID)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, 404, errs.StatusOf(err))

	_, err = d.ProjectQueries().PublishedDetail(ctx, 9999)
	assert.True(t, errs.IsNotFound(err))
}

func TestAdminListIncludesDrafts(t *testing.T) {
	d := openTestDB(t)
	web := addCategory(t, d, "Web")
	addProject(t, d, web, "live", 1, true)
	addProject(t, d, web, "draft", 0, false)

	rows, err := d.ProjectQueries().AdminList(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "draft", rows[0].Title)
	assert.False(t, rows[0].IsPublished)
}

func TestTagRepoFilterExisting(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	a := models.Tag{Name: "Go"}
	b := models.Tag{Name: "SQL"}
	require.NoError(t, d.TagRepo().Add(ctx, &a))
	require.NoError(t, d.TagRepo().Add(ctx, &b))

	ids, err := d.TagRepo().FilterExisting(ctx, []int64{b.ID, 999, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids)

	ids, err = d.TagRepo().FilterExisting(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGalleryUpdateMetaScopedToProject(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	web := addCategory(t, d, "Web")
	mine := addProject(t, d, web, "mine", 1, true)
	theirs := addProject(t, d, web, "theirs", 2, true)

	foreign := models.GalleryImage{ProjectID: theirs.ID, ImageURL: "uploads/x.png", Caption: "keep"}
	require.NoError(t, d.GalleryRepo().Add(ctx, &foreign))

	n, err := d.GalleryRepo().UpdateMeta(ctx, mine.ID, foreign.ID, "hijack", 9)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := d.GalleryRepo().FindForProject(ctx, foreign.ID, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Caption)

	_, err = d.GalleryRepo().FindForProject(ctx, foreign.ID, mine.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestMediaReferences(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	web := addCategory(t, d, "Web")
	p := addProject(t, d, web, "cover", 1, true)
	require.NoError(t, d.GalleryRepo().Add(ctx, &models.GalleryImage{ProjectID: p.ID, ImageURL: "uploads/g.png"}))

	for path, want := range map[string]bool{
		"uploads/cover.png": true,
		"uploads/g.png":     true,
		"uploads/other.png": false,
	} {
		got, err := d.MediaReferenced(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	refs, err := d.ReferencedMediaPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"uploads/cover.png": true, "uploads/g.png": true}, refs)
}

func TestRepointMedia(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	web := addCategory(t, d, "Web")
	p := addProject(t, d, web, "shared", 1, true)
	other := addProject(t, d, web, "other", 2, true)
	require.NoError(t, d.GalleryRepo().Add(ctx, &models.GalleryImage{ProjectID: p.ID, ImageURL: "uploads/shared.png"}))

	require.NoError(t, d.RepointMedia(ctx, "uploads/shared.png", "uploads/shared_ab12cd34.png"))

	refs, err := d.ReferencedMediaPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"uploads/shared_ab12cd34.png": true, "uploads/other.png": true}, refs)

	got, err := d.ProjectRepo().FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/other.png", *got.CoverImageURL)
}

func TestTransactionRollsBack(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	web := addCategory(t, d, "Web")

	boom := errs.NewInternalError("boom")
	err := d.Transaction(ctx, func(tx Database) error {
		addProject(t, tx, web, "doomed", 1, true)
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := d.ProjectQueries().AdminList(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
