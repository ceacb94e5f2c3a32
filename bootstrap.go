package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/media"
)

// openDatabase connects according to DB_TYPE and registers a read replica when DB_REPLICA_DSN is set.
func openDatabase(c map[string]string) (*gorm.DB, error) {
	dbType := strings.ToLower(config.GetString(c, "DB_TYPE", "sqlite"))
	log.Info().Str("dbType", dbType).Msg("connecting to database")

	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	}

	var (
		dialector gorm.Dialector
		replica   func(dsn string) gorm.Dialector
	)
	switch dbType {
	case "supa":
		connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
		dialector = postgresDialector(connStr)
		replica = postgresDialector
	case "postgres":
		dsn := config.GetString(c, "DATABASE_URL", "")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for DB_TYPE=postgres")
		}
		dialector = postgresDialector(dsn)
		replica = postgresDialector
	case "mysql":
		dsn := config.GetString(c, "MYSQL_DSN", "")
		if dsn == "" {
			return nil, fmt.Errorf("MYSQL_DSN is required for DB_TYPE=mysql")
		}
		dialector = mysql.Open(dsn)
		replica = mysql.Open
	case "sqlite":
		path := config.GetString(c, "SQLITE_PATH", "portfolio.db")
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(path + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if dsn := config.GetString(c, "DB_REPLICA_DSN", ""); dsn != "" {
		if replica == nil {
			log.Warn().Str("dbType", dbType).Msg("DB_REPLICA_DSN ignored for this database type")
		} else if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{replica(dsn)},
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("registering read replica: %w", err)
		}
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("testing database connection: %w", err)
	}
	return db, nil
}

func postgresDialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}

// openMediaStore picks the media backend from MEDIA_BACKEND.
func openMediaStore(ctx context.Context, c map[string]string) (media.Store, error) {
	switch backend := strings.ToLower(config.GetString(c, "MEDIA_BACKEND", "local")); backend {
	case "local":
		return media.NewLocalStore(config.GetString(c, "MEDIA_ROOT", "./public"))
	case "s3":
		return media.NewS3Store(ctx, media.S3Options{
			Bucket:    config.GetString(c, "S3_BUCKET", ""),
			Region:    config.GetString(c, "S3_REGION", "us-east-1"),
			Endpoint:  config.GetString(c, "S3_ENDPOINT", ""),
			KeyPrefix: config.GetString(c, "S3_KEY_PREFIX", ""),
		})
	default:
		return nil, fmt.Errorf("unsupported MEDIA_BACKEND %q", backend)
	}
}
