package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupProjectTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Project{}, &db.ContentBlock{}, &db.SiteSetting{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func titleAndImage() []content.Block {
	return []content.Block{
		content.TitleBlock{BlockBase: content.BlockBase{ID: "title", Type: content.TypeTitle}, Text: "Faroe Islands", FontSize: "large"},
		content.StoryImageBlock{BlockBase: content.BlockBase{ID: "cliff", Type: content.TypeStoryImage}, Src: "/static/uploads/p/cliff.jpg", Size: content.PixelSize(420)},
	}
}

func TestCreateProjectDefaults(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, ProjectInput{Title: "Faroe", Slug: "faroe", Tags: []string{"islands", " ", "islands"}})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	if project.ID == "" {
		t.Fatalf("expected id to be generated")
	}
	if project.Kind != content.KindProject {
		t.Fatalf("expected kind to default to project, got %s", project.Kind)
	}
	if project.Published {
		t.Fatalf("expected project to be unpublished by default")
	}
	if len(project.Tags) != 1 || project.Tags[0] != "islands" {
		t.Fatalf("expected tags to be cleaned, got %v", project.Tags)
	}

	stored, err := svc.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("failed to load project: %v", err)
	}
	if stored == nil || stored.Slug != "faroe" {
		t.Fatalf("unexpected stored project %+v", stored)
	}
}

func TestGetProjectMissingReturnsNil(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)

	project, err := svc.GetProject(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected no error for missing project, got %v", err)
	}
	if project != nil {
		t.Fatalf("expected nil project")
	}

	withBlocks, err := svc.GetProjectWithBlocks(context.Background(), "nope")
	if err != nil || withBlocks != nil {
		t.Fatalf("expected nil, nil for missing project, got %v, %v", withBlocks, err)
	}
}

func TestCreateProjectWithBlocksReindexes(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	blocks := titleAndImage()
	blocks[0] = blocks[0].WithOrder(5)
	blocks[1] = blocks[1].WithOrder(9)

	created, err := svc.CreateProjectWithBlocks(ctx, ProjectInput{Title: "Faroe", Slug: "faroe", Kind: content.KindStory}, blocks)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	loaded, err := svc.GetProjectWithBlocks(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to load project: %v", err)
	}
	if len(loaded.ContentBlocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(loaded.ContentBlocks))
	}
	for i, b := range loaded.ContentBlocks {
		if b.Base().Order != i {
			t.Fatalf("expected block %d to have order %d, got %d", i, i, b.Base().Order)
		}
	}
	story, ok := loaded.ContentBlocks[1].(content.StoryImageBlock)
	if !ok {
		t.Fatalf("expected story image block, got %T", loaded.ContentBlocks[1])
	}
	if px, _ := story.Size.Pixels(); px != 420 {
		t.Fatalf("expected size 420, got %q", story.Size)
	}
}

func TestCreateProjectDuplicateSlug(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, ProjectInput{Title: "A", Slug: "same"}); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	_, err := svc.CreateProject(ctx, ProjectInput{Title: "B", Slug: "same"})
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected slug conflict, got %v", err)
	}
}

func TestListProjectsFilters(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	inputs := []ProjectInput{
		{Title: "Draft story", Slug: "draft-story", Kind: content.KindStory},
		{Title: "Live story", Slug: "live-story", Kind: content.KindStory, Published: true},
		{Title: "Live project", Slug: "live-project", Published: true},
		{Title: "Draft project", Slug: "draft-project"},
	}
	for _, input := range inputs {
		if _, err := svc.CreateProject(ctx, input); err != nil {
			t.Fatalf("failed to create %s: %v", input.Slug, err)
		}
	}

	all, err := svc.ListProjects(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 projects, got %d", len(all))
	}
	if all[0].Slug != "draft-project" {
		t.Fatalf("expected newest first, got %s", all[0].Slug)
	}

	published, err := svc.ListProjects(ctx, ListFilter{PublishedOnly: true})
	if err != nil {
		t.Fatalf("failed to list published: %v", err)
	}
	for _, p := range published {
		if !p.Published {
			t.Fatalf("published listing returned draft %s", p.Slug)
		}
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published projects, got %d", len(published))
	}

	stories, err := svc.ListProjects(ctx, ListFilter{PublishedOnly: true, Kind: content.KindStory})
	if err != nil {
		t.Fatalf("failed to list stories: %v", err)
	}
	if len(stories) != 1 || stories[0].Slug != "live-story" {
		t.Fatalf("unexpected stories %+v", stories)
	}
}

func TestListProjectsWithoutKindColumn(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, ProjectInput{Title: "Old", Slug: "old", Published: true}); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	if err := gdb.Migrator().DropColumn(&db.Project{}, "kind"); err != nil {
		t.Fatalf("failed to drop kind column: %v", err)
	}

	fresh := NewProjectService(gdb, nil)
	projects, err := fresh.ListProjects(ctx, ListFilter{Kind: content.KindStory})
	if err != nil {
		t.Fatalf("expected kind filter to be skipped, got %v", err)
	}
	if len(projects) != 1 || projects[0].Kind != content.KindProject {
		t.Fatalf("expected legacy row read as project, got %+v", projects)
	}
}

func TestUpdateProjectMetaPatchesOnlyPresentFields(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, ProjectInput{Title: "Faroe", Slug: "faroe", Location: "Vágar", Description: "Cliffs"})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	published := true
	location := ""
	updated, err := svc.UpdateProjectMeta(ctx, created.ID, ProjectPatch{Published: &published, Location: &location})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if !updated.Published {
		t.Fatalf("expected project to be published")
	}
	if updated.Location != "" {
		t.Fatalf("expected location to be cleared, got %q", updated.Location)
	}
	if updated.Title != "Faroe" || updated.Description != "Cliffs" {
		t.Fatalf("expected untouched fields to be preserved, got %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to be refreshed")
	}

	if _, err := svc.UpdateProjectMeta(ctx, "missing", ProjectPatch{}); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProjectReplacesBlocksAtomically(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	created, err := svc.CreateProjectWithBlocks(ctx, ProjectInput{Title: "Faroe", Slug: "faroe"}, titleAndImage())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	// The same block id twice violates the primary key, so the whole update rolls back.
	dup := content.SpacerBlock{BlockBase: content.BlockBase{ID: "dup", Type: content.TypeSpacer}, Height: 10}
	title := "Renamed"
	bad := []content.Block{dup, dup}
	if _, err := svc.UpdateProject(ctx, created.ID, ProjectPatch{Title: &title}, &bad); err == nil {
		t.Fatalf("expected duplicate block ids to fail")
	}

	after, err := svc.GetProjectWithBlocks(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if after.Title != "Faroe" {
		t.Fatalf("expected title rollback, got %q", after.Title)
	}
	if len(after.ContentBlocks) != 2 {
		t.Fatalf("expected original blocks to survive, got %d", len(after.ContentBlocks))
	}

	good := []content.Block{dup}
	updated, err := svc.UpdateProject(ctx, created.ID, ProjectPatch{Title: &title}, &good)
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if updated.Title != "Renamed" || len(updated.ContentBlocks) != 1 {
		t.Fatalf("unexpected updated project %+v", updated)
	}
}

func TestReplaceBlocks(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	created, err := svc.CreateProjectWithBlocks(ctx, ProjectInput{Title: "Faroe", Slug: "faroe"}, titleAndImage())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	if err := svc.ReplaceBlocks(ctx, created.ID, nil); err != nil {
		t.Fatalf("failed to clear blocks: %v", err)
	}
	loaded, _ := svc.GetProjectWithBlocks(ctx, created.ID)
	if len(loaded.ContentBlocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(loaded.ContentBlocks))
	}

	if err := svc.ReplaceBlocks(ctx, "missing", titleAndImage()); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteProjectRemovesBlocks(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	created, err := svc.CreateProjectWithBlocks(ctx, ProjectInput{Title: "Faroe", Slug: "faroe"}, titleAndImage())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	if err := svc.DeleteProject(ctx, created.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	var count int64
	gdb.Model(&db.ContentBlock{}).Where("project_id = ?", created.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected blocks to be removed, got %d", count)
	}
	if err := svc.DeleteProject(ctx, created.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGetProjectBySlugFallsBackToID(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	created, err := svc.CreateProjectWithBlocks(ctx, ProjectInput{ID: "p-42", Title: "Faroe", Slug: "faroe"}, titleAndImage())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	bySlug, err := svc.GetProjectBySlug(ctx, "faroe")
	if err != nil || bySlug == nil || len(bySlug.ContentBlocks) != 2 {
		t.Fatalf("unexpected slug lookup %+v %v", bySlug, err)
	}
	byID, err := svc.GetProjectBySlug(ctx, created.ID)
	if err != nil || byID == nil || byID.Slug != "faroe" {
		t.Fatalf("unexpected id fallback %+v %v", byID, err)
	}
	missing, err := svc.GetProjectBySlug(ctx, "nowhere")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing slug, got %+v %v", missing, err)
	}
}

func TestFindProjectsReferencingImage(t *testing.T) {
	gdb := setupProjectTestDB(t)
	svc := NewProjectService(gdb, nil)
	ctx := context.Background()

	shared := "https://cdn.example.com/gallery/iceland/aurora.jpg?w=1200&q=80"

	featured, _ := svc.CreateProject(ctx, ProjectInput{Title: "Cover", Slug: "cover", FeaturedImage: shared})
	single, _ := svc.CreateProjectWithBlocks(ctx, ProjectInput{Title: "Single", Slug: "single"}, []content.Block{
		content.ImageBlock{BlockBase: content.BlockBase{ID: "i", Type: content.TypeImage}, Src: shared, Alt: "aurora"},
	})
	gallery, _ := svc.CreateProjectWithBlocks(ctx, ProjectInput{Title: "Gallery", Slug: "gallery"}, []content.Block{
		content.ImageGalleryBlock{BlockBase: content.BlockBase{ID: "g", Type: content.TypeImageGallery}, Images: []content.GalleryImage{
			{Src: "https://cdn.example.com/other.jpg", Alt: "other"},
			{Src: shared, Alt: "aurora"},
		}},
	})
	// A longer URL that contains the shared one must not count.
	if _, err := svc.CreateProjectWithBlocks(ctx, ProjectInput{Title: "Near miss", Slug: "near-miss"}, []content.Block{
		content.ImageGalleryBlock{BlockBase: content.BlockBase{ID: "g", Type: content.TypeImageGallery}, Images: []content.GalleryImage{
			{Src: shared + "&dpr=2", Alt: "aurora"},
		}},
	}); err != nil {
		t.Fatalf("failed to create near miss: %v", err)
	}
	if featured == nil || single == nil || gallery == nil {
		t.Fatalf("failed to create fixtures")
	}

	refs, err := svc.FindProjectsReferencingImage(ctx, shared)
	if err != nil {
		t.Fatalf("failed to find references: %v", err)
	}
	got := map[string]bool{}
	for _, p := range refs {
		got[p.ID] = true
	}
	if len(refs) != 3 || !got[featured.ID] || !got[single.ID] || !got[gallery.ID] {
		t.Fatalf("unexpected references %+v", refs)
	}

	none, err := svc.FindProjectsReferencingImage(ctx, "https://cdn.example.com/unused.jpg")
	if err != nil {
		t.Fatalf("failed to find references: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no references, got %d", len(none))
	}
}
