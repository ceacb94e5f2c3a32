package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ActionCreate             = "create"
	ActionUpdate             = "update"
	ActionDelete             = "delete"
	ActionDeleteGalleryImage = "delete_gallery_image"
)

// UploadLimits overrides the default per-slot size limits. Zero keeps a default.
type UploadLimits struct {
	Cover   int64
	Preview int64
	Gallery int64
	Hero    int64
}

type uploadRules struct {
	cover, preview, gallery, hero media.Rules
}

func (l UploadLimits) rules() uploadRules {
	return uploadRules{
		cover:   media.CoverRules.WithMaxSize(l.Cover),
		preview: media.PreviewRules.WithMaxSize(l.Preview),
		gallery: media.GalleryRules.WithMaxSize(l.Gallery),
		hero:    media.HeroRules.WithMaxSize(l.Hero),
	}
}

// ProjectService runs the admin write actions. Each action commits its database
// changes and its file changes together or not at all.
type ProjectService struct {
	db         database.Database
	store      media.Store
	alloc      *media.Allocator
	stagingDir string
	rules      uploadRules
	validate   *validator.Validate
	logger     zerolog.Logger
}

type Option func(*ProjectService)

func WithAllocator(alloc *media.Allocator) Option {
	return func(s *ProjectService) {
		s.alloc = alloc
	}
}

func WithUploadLimits(limits UploadLimits) Option {
	return func(s *ProjectService) {
		s.rules = limits.rules()
	}
}

func NewProjectService(db database.Database, store media.Store, stagingDir string, opts ...Option) *ProjectService {
	s := &ProjectService{
		db:         db,
		store:      store,
		alloc:      media.NewAllocator(),
		stagingDir: stagingDir,
		rules:      UploadLimits{}.rules(),
		validate:   newValidator(),
		logger:     log.With().Str("serviceName", "projectService").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts a project together with its tags, gallery and media files.
//
// Parameters:
//   - in: the submitted form. A hero file (or the legacy cover/preview slots) or at least
//     one gallery file is required.
//
// Returns:
//   - Result: success redirects to the new project's edit page. Failures redirect back to
//     the empty form and leave neither rows nor files behind.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) Result {
	in = in.normalized()
	res := s.create(ctx, in)
	return s.finish(ctx, ActionCreate, res, map[string]any{"title": in.Title})
}

func (s *ProjectService) create(ctx context.Context, in ProjectInput) Result {
	if err := s.validateFields(ctx, in); err != nil {
		return failure(err, editTarget(0), 0)
	}
	if !in.hasAnyMedia() {
		err := errs.NewValidationError("hero_media", "a cover image, preview media or at least one gallery image is required")
		return failure(err, editTarget(0), 0)
	}

	cover, preview, err := s.resolveHero(in)
	if err != nil {
		return failure(err, editTarget(0), 0)
	}

	batch := media.NewBatch(s.store, s.alloc, s.stagingDir)
	project := models.Project{}
	in.apply(&project)

	if project.CoverImageURL, err = s.stageOptional(ctx, batch, cover, in.Title, "cover"); err != nil {
		batch.Rollback()
		return failure(err, editTarget(0), 0)
	}
	if project.PreviewMediaURL, err = s.stageOptional(ctx, batch, preview, in.Title, "preview"); err != nil {
		batch.Rollback()
		return failure(err, editTarget(0), 0)
	}
	gallery, skipped, err := s.stageGallery(ctx, batch, in.Title, in.Gallery)
	if err != nil {
		batch.Rollback()
		return failure(err, editTarget(0), 0)
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.ProjectRepo().Add(ctx, &project); err != nil {
			return err
		}
		if err := s.replaceTags(ctx, tx, project.ID, in.Tags); err != nil {
			return err
		}
		if err := insertGallery(ctx, tx, project.ID, gallery); err != nil {
			return err
		}
		if err := backfillCover(ctx, tx, &project); err != nil {
			return err
		}
		if len(project.MediaPaths()) == 0 {
			return errs.NewValidationError("hero_media", "project needs a cover image or preview media")
		}
		return promote(ctx, tx, batch)
	})
	err = txError("create", err)
	if err != nil {
		batch.Rollback()
		return failure(err, editTarget(0), 0)
	}
	batch.Finalize(ctx, s.db.MediaReferenced)

	return success(withSkipped("Project created", skipped), editTarget(project.ID), project.ID)
}

// Update replaces a project's fields, tags and media, edits gallery captions and order,
// and appends new gallery files. Replaced files are deleted only after commit.
func (s *ProjectService) Update(ctx context.Context, in ProjectInput) Result {
	in = in.normalized()
	res := s.update(ctx, in)
	return s.finish(ctx, ActionUpdate, res, map[string]any{"title": in.Title})
}

func (s *ProjectService) update(ctx context.Context, in ProjectInput) Result {
	if in.ID <= 0 {
		return failure(errs.NewInvalidFieldError("id", "must be a positive integer"), adminIndexTarget, 0)
	}
	target := editTarget(in.ID)
	if err := s.validateFields(ctx, in); err != nil {
		return failure(err, target, in.ID)
	}

	existing, err := s.db.ProjectRepo().FindByID(ctx, in.ID)
	if err != nil {
		return failure(err, target, in.ID)
	}

	newCover, newPreview, err := s.resolveHero(in)
	if err != nil {
		return failure(err, target, in.ID)
	}

	batch := media.NewBatch(s.store, s.alloc, s.stagingDir)
	fail := func(err error) Result {
		batch.Rollback()
		return failure(err, target, in.ID)
	}

	project := *existing
	in.apply(&project)

	if project.CoverImageURL, err = s.resolveRole(ctx, batch, existing.CoverImageURL, in.OldCover, "old_cover_image", newCover, in.Title, "cover"); err != nil {
		return fail(err)
	}
	if project.PreviewMediaURL, err = s.resolveRole(ctx, batch, existing.PreviewMediaURL, in.OldPreview, "old_preview_media", newPreview, in.Title, "preview"); err != nil {
		return fail(err)
	}
	gallery, skipped, err := s.stageGallery(ctx, batch, in.Title, in.Gallery)
	if err != nil {
		return fail(err)
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.ProjectRepo().Update(ctx, &project); err != nil {
			return err
		}
		if err := s.replaceTags(ctx, tx, project.ID, in.Tags); err != nil {
			return err
		}
		for _, meta := range in.GalleryMeta {
			if meta.ID <= 0 {
				continue
			}
			if _, err := tx.GalleryRepo().UpdateMeta(ctx, project.ID, meta.ID, cleanCaption(meta.Caption), meta.SortOrder); err != nil {
				return err
			}
		}
		if err := insertGallery(ctx, tx, project.ID, gallery); err != nil {
			return err
		}
		if err := backfillCover(ctx, tx, &project); err != nil {
			return err
		}
		return promote(ctx, tx, batch)
	})
	err = txError("update", err)
	if err != nil {
		return fail(err)
	}

	deleted := batch.Finalize(ctx, s.db.MediaReferenced)
	s.logger.Debug().Int64("projectID", project.ID).Strs("deleted", deleted).Msg("superseded media removed")

	return success(withSkipped("Project updated", skipped), target, project.ID)
}

// Delete removes a project with its tag links, gallery rows and media files.
func (s *ProjectService) Delete(ctx context.Context, id int64) Result {
	res := s.delete(ctx, id)
	return s.finish(ctx, ActionDelete, res, nil)
}

func (s *ProjectService) delete(ctx context.Context, id int64) Result {
	if id <= 0 {
		return failure(errs.NewInvalidFieldError("id", "must be a positive integer"), adminIndexTarget, 0)
	}

	batch := media.NewBatch(s.store, s.alloc, s.stagingDir)
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		project, err := tx.ProjectRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		gallery, err := tx.GalleryRepo().FindByProject(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range project.MediaPaths() {
			batch.Supersede(p)
		}
		for _, g := range gallery {
			batch.Supersede(g.ImageURL)
		}

		if err := tx.ProjectTagRepo().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := tx.GalleryRepo().DeleteByProject(ctx, id); err != nil {
			return err
		}
		return tx.ProjectRepo().Delete(ctx, id)
	})
	err = txError("delete", err)
	if err != nil {
		return failure(err, adminIndexTarget, id)
	}

	deleted := batch.Finalize(ctx, s.db.MediaReferenced)
	s.logger.Debug().Int64("projectID", id).Strs("deleted", deleted).Msg("project media removed")
	return success("Project deleted", adminIndexTarget, id)
}

// DeleteGalleryImage removes one gallery row of projectID. Its file is kept while another
// row still uses it, for instance as the project cover.
func (s *ProjectService) DeleteGalleryImage(ctx context.Context, id, projectID int64) Result {
	res := s.deleteGalleryImage(ctx, id, projectID)
	return s.finish(ctx, ActionDeleteGalleryImage, res, map[string]any{"gallery_id": id})
}

func (s *ProjectService) deleteGalleryImage(ctx context.Context, id, projectID int64) Result {
	if projectID <= 0 {
		return failure(errs.NewInvalidFieldError("project_id", "must be a positive integer"), adminIndexTarget, 0)
	}
	target := editTarget(projectID)
	if id <= 0 {
		return failure(errs.NewInvalidFieldError("id", "must be a positive integer"), target, projectID)
	}

	batch := media.NewBatch(s.store, s.alloc, s.stagingDir)
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		image, err := tx.GalleryRepo().FindForProject(ctx, id, projectID)
		if err != nil {
			return err
		}
		batch.Supersede(image.ImageURL)
		return tx.GalleryRepo().Delete(ctx, image.ID)
	})
	err = txError("delete gallery image", err)
	if err != nil {
		return failure(err, target, projectID)
	}

	batch.Finalize(ctx, s.db.MediaReferenced)
	return success("Gallery image deleted", target, projectID)
}

func (s *ProjectService) validateFields(ctx context.Context, in ProjectInput) error {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return validationError(err)
	}
	exists, err := s.db.CategoryRepo().Exists(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NewInvalidFieldError("category_id", fmt.Sprintf("category %d does not exist", in.CategoryID))
	}
	return nil
}

// resolveHero validates the uploaded cover and preview files. A hero file goes to the
// preview slot when it is a video and to the cover slot otherwise; without a hero the
// legacy cover_image and preview_media slots are used.
func (s *ProjectService) resolveHero(in ProjectInput) (cover, preview *media.Checked, err error) {
	if in.Hero.Present() {
		checked, err := media.Validate(in.Hero, s.rules.hero)
		if err != nil {
			return nil, nil, err
		}
		rules := s.rules.cover
		if checked.IsVideo() {
			rules = s.rules.preview
		}
		if checked, err = media.Validate(in.Hero, rules); err != nil {
			return nil, nil, err
		}
		if checked.IsVideo() {
			return nil, &checked, nil
		}
		return &checked, nil, nil
	}

	if in.Cover.Present() {
		checked, err := media.Validate(in.Cover, s.rules.cover)
		if err != nil {
			return nil, nil, err
		}
		cover = &checked
	}
	if in.Preview.Present() {
		checked, err := media.Validate(in.Preview, s.rules.preview)
		if err != nil {
			return nil, nil, err
		}
		preview = &checked
	}
	return cover, preview, nil
}

func (s *ProjectService) stageOptional(ctx context.Context, batch *media.Batch, c *media.Checked, hint, fallback string) (*string, error) {
	if c == nil {
		return nil, nil
	}
	staged, err := batch.Stage(ctx, *c, hint, fallback)
	if err != nil {
		return nil, errs.NewStorageError("stage", c.Filename, err)
	}
	return &staged.Path, nil
}

// resolveRole decides the new value of one media column during an update.
// A fresh upload replaces the stored file. Otherwise the form's old value must still match
// the stored path; an empty old value clears the column.
func (s *ProjectService) resolveRole(ctx context.Context, batch *media.Batch, stored *string, old, oldField string, upload *media.Checked, hint, fallback string) (*string, error) {
	current := ""
	if stored != nil {
		current = *stored
	}

	if upload != nil {
		p, err := s.stageOptional(ctx, batch, upload, hint, fallback)
		if err != nil {
			return nil, err
		}
		batch.Supersede(current)
		return p, nil
	}

	if old == "" {
		batch.Supersede(current)
		return nil, nil
	}
	if old != current {
		return nil, errs.NewInvalidFieldError(oldField, "the form is out of date, reload the page and try again")
	}
	return stored, nil
}

type stagedGallery struct {
	path      string
	caption   string
	sortOrder int
}

// stageGallery stages every valid gallery file. Invalid files are skipped and counted.
func (s *ProjectService) stageGallery(ctx context.Context, batch *media.Batch, title string, uploads []GalleryUpload) ([]stagedGallery, int, error) {
	var out []stagedGallery
	skipped := 0
	for _, g := range uploads {
		if !g.File.Present() {
			continue
		}
		checked, err := media.Validate(g.File, s.rules.gallery)
		if err != nil {
			s.logger.Info().Err(err).Str("file", g.File.Filename).Msg("skipping invalid gallery file")
			skipped++
			continue
		}
		staged, err := batch.Stage(ctx, checked, title+"_gallery", "gallery")
		if err != nil {
			return nil, skipped, errs.NewStorageError("stage", g.File.Filename, err)
		}
		out = append(out, stagedGallery{path: staged.Path, caption: cleanCaption(g.Caption), sortOrder: g.SortOrder})
	}
	return out, skipped, nil
}

func insertGallery(ctx context.Context, tx database.Database, projectID int64, gallery []stagedGallery) error {
	for _, g := range gallery {
		row := models.GalleryImage{ProjectID: projectID, ImageURL: g.path, Caption: g.caption, SortOrder: g.sortOrder}
		if err := tx.GalleryRepo().Add(ctx, &row); err != nil {
			return err
		}
	}
	return nil
}

// backfillCover gives a project without cover the first gallery image as cover.
func backfillCover(ctx context.Context, tx database.Database, project *models.Project) error {
	if project.CoverImageURL != nil && *project.CoverImageURL != "" {
		return nil
	}
	first, err := tx.GalleryRepo().First(ctx, project.ID)
	if err != nil || first == nil {
		return err
	}
	if err := tx.ProjectRepo().SetCover(ctx, project.ID, first.ImageURL); err != nil {
		return err
	}
	project.CoverImageURL = &first.ImageURL
	return nil
}

func (s *ProjectService) replaceTags(ctx context.Context, tx database.Database, projectID int64, raw any) error {
	ids, err := tx.TagRepo().FilterExisting(ctx, NormalizeTagIDs(raw))
	if err != nil {
		return err
	}
	return tx.ProjectTagRepo().Replace(ctx, projectID, ids)
}

// txError marks failures that came from the database driver itself, such as a failed commit.
func txError(op string, err error) error {
	var apiErr *errs.ApiErr
	var vErr *media.ValidationError
	if err == nil || errors.As(err, &apiErr) || errors.As(err, &vErr) {
		return err
	}
	return errs.NewTransactionFailedError(op, err)
}

// promote writes the staged files and points rows at any path Promote had to rename.
func promote(ctx context.Context, tx database.Database, batch *media.Batch) error {
	if err := batch.Promote(ctx); err != nil {
		return errs.NewStorageError("promote", "uploaded media", err)
	}
	for from, to := range batch.Renamed() {
		if err := tx.RepointMedia(ctx, from, to); err != nil {
			return err
		}
	}
	return nil
}

func withSkipped(message string, skipped int) string {
	if skipped == 0 {
		return message
	}
	return fmt.Sprintf("%s (%d gallery file(s) skipped: invalid type or size)", message, skipped)
}
