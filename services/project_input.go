package services

import (
	"strings"
	"unicode/utf8"

	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
)

const maxCaptionRunes = 255

// ProjectInput carries one submitted project form.
type ProjectInput struct {
	ID          int64  `form:"id"`
	Title       string `form:"title" validate:"required,max=255"`
	CategoryID  int64  `form:"category_id" validate:"gt=0"`
	Description string `form:"description" validate:"required,max=5000"`
	ProjectLink string `form:"project_link" validate:"omitempty,url,max=512"`
	GithubLink  string `form:"github_link" validate:"omitempty,url,max=512"`
	SortOrder   int    `form:"sort_order"`
	IsPublished bool   `form:"is_published"`

	// Tags is whatever the client sent; see NormalizeTagIDs.
	Tags any `form:"-"`

	Hero    media.Upload `form:"-"`
	Cover   media.Upload `form:"-"`
	Preview media.Upload `form:"-"`
	Gallery []GalleryUpload `form:"-"`

	// Update only.
	OldCover    string        `form:"-"`
	OldPreview  string        `form:"-"`
	GalleryMeta []GalleryMeta `form:"-"`
}

// GalleryUpload is a new gallery file with its caption and position.
type GalleryUpload struct {
	File      media.Upload
	Caption   string
	SortOrder int
}

// GalleryMeta edits an existing gallery row.
type GalleryMeta struct {
	ID        int64
	Caption   string
	SortOrder int
}

func (in ProjectInput) normalized() ProjectInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ProjectLink = strings.TrimSpace(in.ProjectLink)
	in.GithubLink = strings.TrimSpace(in.GithubLink)
	in.OldCover = strings.TrimSpace(in.OldCover)
	in.OldPreview = strings.TrimSpace(in.OldPreview)
	return in
}

// hasAnyMedia reports whether the form attached a hero, cover, preview or gallery file.
func (in ProjectInput) hasAnyMedia() bool {
	if in.Hero.Present() || in.Cover.Present() || in.Preview.Present() {
		return true
	}
	for _, g := range in.Gallery {
		if g.File.Present() {
			return true
		}
	}
	return false
}

// apply copies the scalar form fields onto p, leaving media and id alone.
func (in ProjectInput) apply(p *models.Project) {
	p.CategoryID = in.CategoryID
	p.Title = in.Title
	p.Description = in.Description
	p.ProjectLink = optional(in.ProjectLink)
	p.GithubLink = optional(in.GithubLink)
	p.SortOrder = in.SortOrder
	p.IsPublished = in.IsPublished
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// cleanCaption trims and cuts a caption to the column width.
func cleanCaption(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxCaptionRunes {
		s = strings.TrimSpace(string([]rune(s)[:maxCaptionRunes]))
	}
	return s
}
