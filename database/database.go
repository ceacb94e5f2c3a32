package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"gorm.io/gorm"
)

type Database struct {
	db             *gorm.DB
	projectRepo    *ProjectRepo
	projectTagRepo *ProjectTagRepo
	tagRepo        *TagRepo
	categoryRepo   *CategoryRepo
	galleryRepo    *GalleryRepo
	actionLogRepo  *ActionLogRepo
	projectQueries *ProjectQueries
}

// New initializes a new Database struct with each repository using a shared GORM database instance.
// Passing a transaction handle yields repositories bound to that transaction.
func New(db *gorm.DB) Database {
	return Database{
		db:             db,
		projectRepo:    NewProjectRepo(db),
		projectTagRepo: NewProjectTagRepo(db),
		tagRepo:        NewTagRepo(db),
		categoryRepo:   NewCategoryRepo(db),
		galleryRepo:    NewGalleryRepo(db),
		actionLogRepo:  NewActionLogRepo(db),
		projectQueries: NewProjectQueries(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ProjectTagRepo() *ProjectTagRepo {
	return d.projectTagRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) GalleryRepo() *GalleryRepo {
	return d.galleryRepo
}

func (d Database) ActionLogRepo() *ActionLogRepo {
	return d.actionLogRepo
}

func (d Database) ProjectQueries() *ProjectQueries {
	return d.projectQueries
}

// DB exposes the underlying handle for migrations and code generation.
func (d Database) DB() *gorm.DB {
	return d.db
}

// Transaction runs fn with repositories bound to a single transaction. Returning an error
// from fn rolls everything back; the error is returned unchanged.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return errs.NewDatabaseError("open", "connection", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errs.NewDatabaseError("ping", "database", err)
	}
	return nil
}
