package models

import (
	"fmt"
	"log"
	"os"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Category{},
		&Tag{},
		&Project{},
		&ProjectTagMap{},
		&GalleryImage{},
		&AdminActionLog{},
	}
}

// Migrate creates or alters every table. With verbose set the SQL is echoed to stdout.
func Migrate(db *gorm.DB, verbose bool) error {
	session := &gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	}
	if verbose {
		session.Logger = logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             0,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: false,
				Colorful:                  true,
			},
		)
	}
	if err := db.Session(session).AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedCategories inserts DefaultCategories when the table is empty and reports how many rows it wrote.
func SeedCategories(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&Category{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	rows := make([]Category, 0, len(DefaultCategories))
	for _, name := range DefaultCategories {
		rows = append(rows, Category{Name: name})
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// GenerateModels migrates the schema and writes typed gorm/gen query code to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	if err := Migrate(db, true); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()

	drift, err := ColumnDrift(db)
	if err != nil {
		return err
	}
	PrintColumnDrift(drift)
	return nil
}

// ColumnDrift returns, per table, the database columns no model field maps to.
// Tables that do not exist yet are skipped.
func ColumnDrift(db *gorm.DB) (map[string][]string, error) {
	out := make(map[string][]string)
	migrator := db.Migrator()
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table
		if !migrator.HasTable(table) {
			continue
		}

		columns, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}

		known := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			known[name] = true
		}

		var unmapped []string
		for _, col := range columns {
			if !known[col.Name()] {
				unmapped = append(unmapped, col.Name())
			}
		}
		sort.Strings(unmapped)
		out[table] = unmapped
	}
	return out, nil
}

func PrintColumnDrift(drift map[string][]string) {
	tables := make([]string, 0, len(drift))
	for table := range drift {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	total := 0
	fmt.Println("=== COLUMN DRIFT REPORT ===")
	for _, table := range tables {
		fmt.Printf("\n--- Table: %s ---\n", table)
		if len(drift[table]) == 0 {
			fmt.Println("All columns are accounted for in the model.")
			continue
		}
		fmt.Printf("Found %d columns not accounted for in model:\n", len(drift[table]))
		for _, col := range drift[table] {
			fmt.Printf("  - %s\n", col)
		}
		total += len(drift[table])
	}
	fmt.Printf("\n=== SUMMARY ===\nTotal unmapped columns across all tables: %d\n", total)
}
