package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// gorm rebinds '?' for the active dialect
var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ProjectSummary is one card of the public project list. PreviewMediaURL falls back to the cover.
type ProjectSummary struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	PreviewMediaURL *string `json:"preview_media_url"`
	CategoryName    *string `json:"category_name"`
}

// ProjectDetail is a published project with everything the detail page shows.
type ProjectDetail struct {
	ID              int64                 `json:"id"`
	CategoryID      int64                 `json:"category_id"`
	CategoryName    *string               `json:"category_name"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	CoverImageURL   *string               `json:"cover_image_url"`
	PreviewMediaURL *string               `json:"preview_media_url"`
	ProjectLink     *string               `json:"project_link"`
	GithubLink      *string               `json:"github_link"`
	SortOrder       int                   `json:"sort_order"`
	IsPublished     bool                  `json:"is_published"`
	CreatedAt       time.Time             `json:"created_at"`
	Tags            []models.Tag          `json:"tags" gorm:"-"`
	Gallery         []models.GalleryImage `json:"gallery" gorm:"-"`
}

// AdminProjectRow is one line of the back office project table.
type AdminProjectRow struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	SortOrder     int     `json:"sort_order"`
	IsPublished   bool    `json:"is_published"`
	CoverImageURL *string `json:"cover_image_url"`
	GithubLink    *string `json:"github_link"`
	CategoryName  *string `json:"category_name"`
}

// ListFilter narrows the public list. CategoryID wins over CategoryName when both are set.
type ListFilter struct {
	CategoryID   int64
	CategoryName string
	Limit        int
	Offset       int
}

// Normalized applies the default limit and clamps limit and offset into range.
func (f ListFilter) Normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ProjectQueries holds the read side. It never writes.
type ProjectQueries struct {
	db *gorm.DB
}

func NewProjectQueries(db *gorm.DB) *ProjectQueries {
	return &ProjectQueries{db}
}

func (q *ProjectQueries) reader(ctx context.Context) *gorm.DB {
	return q.db.WithContext(ctx).Clauses(dbresolver.Read)
}

func (q *ProjectQueries) raw(ctx context.Context, builder sq.Sqlizer, dest any, what string) error {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return errs.NewInternalErrorWithCause(fmt.Sprintf("failed to build SQL for %s", what), err)
	}
	if err := q.reader(ctx).Raw(sqlStr, args...).Scan(dest).Error; err != nil {
		return errs.NewDatabaseError("query", what, err)
	}
	return nil
}

// ListPublished returns published projects ordered by sort order, newest first within a tie.
func (q *ProjectQueries) ListPublished(ctx context.Context, filter ListFilter) ([]ProjectSummary, error) {
	filter = filter.Normalized()

	builder := qb.Select(
		"p.id", "p.title",
		"COALESCE(NULLIF(p.preview_media_url, ''), p.cover_image_url) AS preview_media_url",
		"c.name AS category_name",
	).
		From("projects p").
		LeftJoin("categories c ON c.id = p.category_id").
		Where(sq.Eq{"p.is_published": true}).
		OrderBy("p.sort_order ASC", "p.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	switch {
	case filter.CategoryID > 0:
		builder = builder.Where(sq.Eq{"p.category_id": filter.CategoryID})
	case filter.CategoryName != "":
		builder = builder.Where(sq.Eq{"c.name": filter.CategoryName})
	}

	projects := []ProjectSummary{}
	if err := q.raw(ctx, builder, &projects, "project list"); err != nil {
		return nil, err
	}
	return projects, nil
}

// PublishedDetail loads one published project with its tags and gallery.
// Unknown and unpublished ids both yield a not-found error.
func (q *ProjectQueries) PublishedDetail(ctx context.Context, id int64) (*ProjectDetail, error) {
	builder := qb.Select(
		"p.id", "p.category_id", "c.name AS category_name", "p.title", "p.description",
		"p.cover_image_url", "p.preview_media_url", "p.project_link", "p.github_link",
		"p.sort_order", "p.is_published", "p.created_at",
	).
		From("projects p").
		LeftJoin("categories c ON c.id = p.category_id").
		Where(sq.Eq{"p.id": id, "p.is_published": true}).
		Limit(1)

	var rows []ProjectDetail
	if err := q.raw(ctx, builder, &rows, "project"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NewNotFound("project")
	}
	detail := rows[0]

	tags, err := q.ProjectTags(ctx, id)
	if err != nil {
		return nil, err
	}
	gallery, err := q.Gallery(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Tags = tags
	detail.Gallery = gallery
	return &detail, nil
}

// ProjectTags lists the tags of a project by tag category, then name.
func (q *ProjectQueries) ProjectTags(ctx context.Context, projectID int64) ([]models.Tag, error) {
	builder := qb.Select("t.id", "t.name", "t.category").
		From("tags t").
		Join("project_tag_map ptm ON ptm.tag_id = t.id").
		Where(sq.Eq{"ptm.project_id": projectID}).
		OrderBy("t.category ASC", "t.name ASC")

	tags := []models.Tag{}
	if err := q.raw(ctx, builder, &tags, "project tags"); err != nil {
		return nil, err
	}
	return tags, nil
}

func (q *ProjectQueries) Gallery(ctx context.Context, projectID int64) ([]models.GalleryImage, error) {
	builder := qb.Select("id", "project_id", "image_url", "caption", "sort_order").
		From("project_galleries").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("sort_order ASC", "id ASC")

	gallery := []models.GalleryImage{}
	if err := q.raw(ctx, builder, &gallery, "gallery"); err != nil {
		return nil, err
	}
	return gallery, nil
}

// AdminList returns every project, published or not, for the back office.
func (q *ProjectQueries) AdminList(ctx context.Context) ([]AdminProjectRow, error) {
	builder := qb.Select(
		"p.id", "p.title", "p.sort_order", "p.is_published", "p.cover_image_url",
		"p.github_link", "c.name AS category_name",
	).
		From("projects p").
		LeftJoin("categories c ON c.id = p.category_id").
		OrderBy("p.sort_order ASC", "p.id DESC")

	rows := []AdminProjectRow{}
	if err := q.raw(ctx, builder, &rows, "admin project list"); err != nil {
		return nil, err
	}
	return rows, nil
}
