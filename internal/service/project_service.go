package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/db"
	"github.com/photofolio/internal/logger"
	"github.com/photofolio/internal/ordering"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrSlugConflict     = errors.New("slug is already used by another project")
	ErrDuplicateBlockID = errors.New("block ids must be unique within a project")
)

// ProjectService reads and writes projects together with their ordered blocks.
// It performs no validation; callers that need it go through the authoring editor.
type ProjectService struct {
	db        *gorm.DB
	log       *logger.Logger
	kindKnown atomic.Bool
}

// ProjectInput holds the metadata of a new project.
type ProjectInput struct {
	ID            string
	Title         string
	Slug          string
	Description   string
	Location      string
	FeaturedImage string
	Kind          content.Kind
	Published     bool
	Tags          []string
}

// ProjectPatch lists metadata fields to change. Nil fields are left untouched.
type ProjectPatch struct {
	Title         *string
	Slug          *string
	Description   *string
	Location      *string
	FeaturedImage *string
	Kind          *content.Kind
	Published     *bool
	Tags          *[]string
}

// ListFilter narrows ListProjects. A zero filter lists everything.
type ListFilter struct {
	PublishedOnly bool
	Kind          content.Kind
}

// NewProjectService creates a ProjectService instance.
func NewProjectService(gdb *gorm.DB, log *logger.Logger) *ProjectService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProjectService{db: gdb, log: log.With("service", "ProjectService")}
}

// InputFromProject converts a decoded project into creation input.
func InputFromProject(p content.Project) ProjectInput {
	return ProjectInput{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		Location:      p.Location,
		FeaturedImage: p.FeaturedImage,
		Kind:          p.Kind,
		Published:     p.Published,
		Tags:          p.Tags,
	}
}

// CreateProject inserts a project without blocks. Kind defaults to project.
func (s *ProjectService) CreateProject(ctx context.Context, input ProjectInput) (*content.Project, error) {
	return s.CreateProjectWithBlocks(ctx, input, nil)
}

// CreateProjectWithBlocks inserts the project row and its blocks in one transaction.
func (s *ProjectService) CreateProjectWithBlocks(ctx context.Context, input ProjectInput, blocks []content.Block) (*content.Project, error) {
	row := db.Project{
		ID:            strings.TrimSpace(input.ID),
		Title:         input.Title,
		Slug:          input.Slug,
		Description:   input.Description,
		Location:      input.Location,
		FeaturedImage: input.FeaturedImage,
		Kind:          string(content.NormalizeKind(string(input.Kind))),
		Published:     input.Published,
		Tags:          normalizeTags(input.Tags),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	var stored content.BlockList
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return mapWriteError(err)
		}
		var err error
		stored, err = insertBlocks(tx, row.ID, blocks)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	project := toDomainProject(row)
	project.ContentBlocks = stored
	s.log.Info("project created", "project_id", project.ID, "kind", project.Kind, "blocks", len(stored))
	return &project, nil
}

// GetProject returns project metadata, or nil when no project has that id.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*content.Project, error) {
	row, err := s.findProject(s.db.WithContext(ctx), "id = ?", id)
	if err != nil || row == nil {
		return nil, err
	}
	project := toDomainProject(*row)
	return &project, nil
}

// GetProjectBySlug returns the project with blocks whose slug matches, falling
// back to an id match. Nil means not found.
func (s *ProjectService) GetProjectBySlug(ctx context.Context, slug string) (*content.Project, error) {
	gdb := s.db.WithContext(ctx)
	row, err := s.findProject(gdb, "slug = ?", slug)
	if err != nil {
		return nil, err
	}
	if row == nil {
		if row, err = s.findProject(gdb, "id = ?", slug); err != nil || row == nil {
			return nil, err
		}
	}
	return s.withBlocks(gdb, *row)
}

// GetProjectWithBlocks returns metadata plus the ordered block list, or nil when missing.
func (s *ProjectService) GetProjectWithBlocks(ctx context.Context, id string) (*content.Project, error) {
	gdb := s.db.WithContext(ctx)
	row, err := s.findProject(gdb, "id = ?", id)
	if err != nil || row == nil {
		return nil, err
	}
	return s.withBlocks(gdb, *row)
}

// ListProjects returns projects newest first. The kind filter is skipped when
// the kind column has not been migrated yet.
func (s *ProjectService) ListProjects(ctx context.Context, filter ListFilter) ([]content.Project, error) {
	query := s.db.WithContext(ctx).Model(&db.Project{})
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if filter.Kind != "" {
		if s.hasKindColumn() {
			if filter.Kind == content.KindProject {
				query = query.Where("kind = ? OR kind IS NULL OR kind = ''", content.KindProject)
			} else {
				query = query.Where("kind = ?", filter.Kind)
			}
		} else {
			s.log.Warn("kind column missing, listing without kind filter", "kind", filter.Kind)
		}
	}

	var rows []db.Project
	if err := query.Order("created_at desc").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]content.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, toDomainProject(row))
	}
	return projects, nil
}

// UpdateProjectMeta writes only the fields set in patch and refreshes updated_at.
func (s *ProjectService) UpdateProjectMeta(ctx context.Context, id string, patch ProjectPatch) (*content.Project, error) {
	return s.UpdateProject(ctx, id, patch, nil)
}

// UpdateProject applies a metadata patch and, when blocks is non-nil, replaces the
// whole block list. Both happen in one transaction.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, patch ProjectPatch, blocks *[]content.Block) (*content.Project, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Project{}).Where("id = ?", id).Updates(patchColumns(patch))
		if result.Error != nil {
			return mapWriteError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		if blocks != nil {
			return replaceBlocksTx(tx, id, *blocks)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}

	project, err := s.GetProjectWithBlocks(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// DeleteProject removes a project and its blocks.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&db.ContentBlock{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&db.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return err
		}
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	s.log.Info("project deleted", "project_id", id)
	return nil
}

// ReplaceBlocks deletes every block of the project and inserts blocks, reindexed,
// in one transaction.
func (s *ProjectService) ReplaceBlocks(ctx context.Context, projectID string, blocks []content.Block) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProjectNotFound
		}
		if err := replaceBlocksTx(tx, projectID, blocks); err != nil {
			return err
		}
		return tx.Model(&db.Project{}).Where("id = ?", projectID).Update("updated_at", time.Now().UTC()).Error
	})
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return err
		}
		return fmt.Errorf("replace blocks of %s: %w", projectID, err)
	}
	return nil
}

func (s *ProjectService) findProject(gdb *gorm.DB, query string, arg interface{}) (*db.Project, error) {
	var row db.Project
	if err := gdb.Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return &row, nil
}

func (s *ProjectService) withBlocks(gdb *gorm.DB, row db.Project) (*content.Project, error) {
	blocks, err := loadBlocks(gdb, row.ID)
	if err != nil {
		return nil, err
	}
	project := toDomainProject(row)
	project.ContentBlocks = blocks
	return &project, nil
}

func (s *ProjectService) hasKindColumn() bool {
	if s.kindKnown.Load() {
		return true
	}
	if s.db.Migrator().HasColumn(&db.Project{}, "kind") {
		s.kindKnown.Store(true)
		return true
	}
	return false
}

func loadBlocks(gdb *gorm.DB, projectID string) (content.BlockList, error) {
	var rows []db.ContentBlock
	if err := gdb.Where("project_id = ?", projectID).Order("order_index asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load blocks of %s: %w", projectID, err)
	}
	return db.BlocksFromRows(rows)
}

func replaceBlocksTx(tx *gorm.DB, projectID string, blocks []content.Block) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&db.ContentBlock{}).Error; err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	_, err := insertBlocks(tx, projectID, blocks)
	return err
}

func insertBlocks(tx *gorm.DB, projectID string, blocks []content.Block) (content.BlockList, error) {
	if len(blocks) == 0 {
		return content.BlockList{}, nil
	}
	indexed, err := withBlockIDs(ordering.Reindex(blocks))
	if err != nil {
		return nil, err
	}
	rows, err := db.RowsFromBlocks(projectID, indexed)
	if err != nil {
		return nil, err
	}
	if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateBlockID
		}
		return nil, fmt.Errorf("insert blocks: %w", err)
	}
	return content.BlockList(indexed), nil
}

// withBlockIDs gives blank ids a fresh one and rejects ids used twice.
func withBlockIDs(blocks []content.Block) ([]content.Block, error) {
	seen := make(map[string]struct{}, len(blocks))
	for i, b := range blocks {
		base := b.Base()
		base.ID = strings.TrimSpace(base.ID)
		if base.ID == "" {
			base.ID = content.NewBlockID()
		}
		if _, dup := seen[base.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBlockID, base.ID)
		}
		seen[base.ID] = struct{}{}
		blocks[i] = b.WithBase(base)
	}
	return blocks, nil
}

func patchColumns(patch ProjectPatch) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Slug != nil {
		updates["slug"] = *patch.Slug
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Location != nil {
		updates["location"] = *patch.Location
	}
	if patch.FeaturedImage != nil {
		updates["featured_image"] = *patch.FeaturedImage
	}
	if patch.Kind != nil {
		updates["kind"] = string(content.NormalizeKind(string(*patch.Kind)))
	}
	if patch.Published != nil {
		updates["published"] = *patch.Published
	}
	if patch.Tags != nil {
		updates["tags"] = normalizeTags(*patch.Tags)
	}
	return updates
}

func mapWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugConflict
	}
	return err
}

func normalizeTags(tags []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return datatypes.JSONSlice[string](out)
}

func toDomainProject(row db.Project) content.Project {
	tags := []string(row.Tags)
	if tags == nil {
		tags = []string{}
	}
	return content.Project{
		ID:            row.ID,
		Title:         row.Title,
		Slug:          row.Slug,
		Description:   row.Description,
		Location:      row.Location,
		FeaturedImage: row.FeaturedImage,
		Kind:          content.NormalizeKind(row.Kind),
		Published:     row.Published,
		Tags:          tags,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
