package migrate

import (
	"fmt"

	"github.com/photofolio/internal/db"
	"github.com/photofolio/internal/logger"
	"gorm.io/gorm"
)

// Legacy caption columns written before captionPlacement/captionItalic existed.
const (
	legacyPlacementColumn = "placement"
	legacyItalicColumn    = "italic"
)

// Steps returns the built-in migrations in order.
func Steps() []Step {
	return []Step{
		{Version: "0001", Name: "create_tables", Up: createTables},
		{Version: "0002", Name: "add_missing_columns", Up: addMissingColumns},
		{Version: "0003", Name: "backfill_project_kind", Up: backfillProjectKind},
		{Version: "0004", Name: "backfill_caption_fields", Up: backfillCaptionFields},
		{Version: "0005", Name: "drop_legacy_caption_columns", Up: dropLegacyCaptionColumns},
		{Version: "0006", Name: "backfill_project_tags", Up: backfillProjectTags},
	}
}

func models() []interface{} {
	return []interface{}{&db.Project{}, &db.ContentBlock{}, &db.SiteSetting{}}
}

func createTables(tx *gorm.DB, log *logger.Logger) error {
	m := tx.Migrator()
	for _, model := range models() {
		if m.HasTable(model) {
			continue
		}
		if err := m.CreateTable(model); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
		log.Info("Created table", "model", fmt.Sprintf("%T", model))
	}
	return nil
}

// addMissingColumns brings tables created by older releases up to the current models.
func addMissingColumns(tx *gorm.DB, log *logger.Logger) error {
	m := tx.Migrator()
	for _, model := range models() {
		stmt := &gorm.Statement{DB: tx}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse %T: %w", model, err)
		}
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || field.IgnoreMigration || m.HasColumn(model, field.DBName) {
				continue
			}
			if err := m.AddColumn(model, field.Name); err != nil {
				return fmt.Errorf("add column %s.%s: %w", stmt.Schema.Table, field.DBName, err)
			}
			log.Info("Added column", "table", stmt.Schema.Table, "column", field.DBName)
		}
		for _, idx := range stmt.Schema.ParseIndexes() {
			if m.HasIndex(model, idx.Name) {
				continue
			}
			if err := m.CreateIndex(model, idx.Name); err != nil {
				return fmt.Errorf("create index %s: %w", idx.Name, err)
			}
		}
	}
	return nil
}

func backfillProjectKind(tx *gorm.DB, log *logger.Logger) error {
	res := tx.Model(&db.Project{}).
		Where("kind IS NULL OR kind = ''").
		UpdateColumn("kind", "project")
	if res.Error != nil {
		return fmt.Errorf("backfill kind: %w", res.Error)
	}
	log.Info("Backfilled project kind", "rows", res.RowsAffected)
	return nil
}

// backfillCaptionFields copies legacy caption columns into the current ones.
// Current values win; rows that already have them are left alone.
func backfillCaptionFields(tx *gorm.DB, log *logger.Logger) error {
	m := tx.Migrator()
	if m.HasColumn(&db.ContentBlock{}, legacyPlacementColumn) {
		res := tx.Exec(`UPDATE content_blocks SET caption_placement = placement
			WHERE (caption_placement IS NULL OR caption_placement = '')
			AND placement IS NOT NULL AND placement <> ''`)
		if res.Error != nil {
			return fmt.Errorf("backfill caption_placement: %w", res.Error)
		}
		log.Info("Backfilled caption placement", "rows", res.RowsAffected)
	} else {
		log.Debug("No legacy placement column")
	}

	if m.HasColumn(&db.ContentBlock{}, legacyItalicColumn) {
		res := tx.Exec(`UPDATE content_blocks SET caption_italic = italic
			WHERE caption_italic IS NULL AND italic IS NOT NULL`)
		if res.Error != nil {
			return fmt.Errorf("backfill caption_italic: %w", res.Error)
		}
		log.Info("Backfilled caption italic", "rows", res.RowsAffected)
	} else {
		log.Debug("No legacy italic column")
	}
	return nil
}

func dropLegacyCaptionColumns(tx *gorm.DB, log *logger.Logger) error {
	m := tx.Migrator()
	for _, column := range []string{legacyPlacementColumn, legacyItalicColumn} {
		if !m.HasColumn(&db.ContentBlock{}, column) {
			continue
		}
		if err := m.DropColumn(&db.ContentBlock{}, column); err != nil {
			return fmt.Errorf("drop content_blocks.%s: %w", column, err)
		}
		log.Info("Dropped legacy column", "column", column)
	}
	return nil
}

func backfillProjectTags(tx *gorm.DB, log *logger.Logger) error {
	res := tx.Model(&db.Project{}).
		Where("tags IS NULL").
		UpdateColumn("tags", gorm.Expr("'[]'"))
	if res.Error != nil {
		return fmt.Errorf("backfill tags: %w", res.Error)
	}
	log.Info("Backfilled project tags", "rows", res.RowsAffected)
	return nil
}
