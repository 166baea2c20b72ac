// Package migrate applies ordered schema migrations and records them in
// schema_migrations. Each step runs in its own transaction.
package migrate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/photofolio/internal/db"
	"github.com/photofolio/internal/logger"
	"gorm.io/gorm"
)

// Step is one migration. Versions sort lexically, so they are zero padded.
type Step struct {
	Version string
	Name    string
	Up      func(tx *gorm.DB, log *logger.Logger) error
}

// Runner applies pending steps in version order.
type Runner struct {
	db    *gorm.DB
	log   *logger.Logger
	steps []Step
}

// New returns a Runner over the built-in steps.
func New(gdb *gorm.DB, log *logger.Logger) *Runner {
	return NewWithSteps(gdb, log, Steps())
}

// NewWithSteps returns a Runner over custom steps.
func NewWithSteps(gdb *gorm.DB, log *logger.Logger, steps []Step) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	sorted := append([]Step(nil), steps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return &Runner{db: gdb, log: log.With("service", "Migrate"), steps: sorted}
}

// Pending lists steps that have not been applied yet.
func (r *Runner) Pending(ctx context.Context) ([]Step, error) {
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]Step, 0, len(r.steps))
	for _, step := range r.steps {
		if _, ok := applied[step.Version]; !ok {
			pending = append(pending, step)
		}
	}
	return pending, nil
}

// Up applies every pending step and returns the versions it applied.
// It stops at the first failing step; earlier steps stay applied.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}

	done := make([]string, 0, len(pending))
	for _, step := range pending {
		started := time.Now()
		log := r.log.With("version", step.Version, "name", step.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx, log); err != nil {
				return err
			}
			return tx.Create(&db.SchemaMigration{
				Version:   step.Version,
				Name:      step.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			log.Error("Migration failed", "error", err)
			return done, fmt.Errorf("migration %s %s: %w", step.Version, step.Name, err)
		}
		log.Info("Migration applied", "duration_ms", time.Since(started).Milliseconds())
		done = append(done, step.Version)
	}
	return done, nil
}

func (r *Runner) applied(ctx context.Context) (map[string]struct{}, error) {
	gdb := r.db.WithContext(ctx)
	if !gdb.Migrator().HasTable(&db.SchemaMigration{}) {
		if err := gdb.Migrator().CreateTable(&db.SchemaMigration{}); err != nil {
			return nil, fmt.Errorf("create schema_migrations: %w", err)
		}
	}
	var versions []string
	if err := gdb.Model(&db.SchemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	set := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		set[v] = struct{}{}
	}
	return set, nil
}
