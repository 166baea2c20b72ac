package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/service"
)

// Store persists a draft. ProjectService implements it.
type Store interface {
	CreateProjectWithBlocks(ctx context.Context, input service.ProjectInput, blocks []content.Block) (*content.Project, error)
	UpdateProject(ctx context.Context, id string, patch service.ProjectPatch, blocks *[]content.Block) (*content.Project, error)
}

// ValidationError lists every problem found in a draft.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid draft: " + strings.Join(e.Problems, "; ")
}

type draftRules struct {
	Title     string         `validate:"required"`
	Slug      string         `validate:"required,max=200"`
	Images    []imageRules   `validate:"dive"`
	Galleries []galleryRules `validate:"dive"`
}

type imageRules struct {
	Order int
	Src   string `validate:"required"`
	Alt   string `validate:"required"`
}

type galleryRules struct {
	Order  int
	Images []content.GalleryImage `validate:"min=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the draft before it is submitted. Incremental saves skip it.
func (e *Editor) Validate() error {
	rules := draftRules{
		Title: strings.TrimSpace(e.project.Title),
		Slug:  strings.TrimSpace(e.project.Slug),
	}
	for _, b := range e.blocks {
		switch v := b.(type) {
		case content.ImageBlock:
			rules.Images = append(rules.Images, imageRules{Order: v.Order, Src: strings.TrimSpace(v.Src), Alt: strings.TrimSpace(v.Alt)})
		case content.ImageGalleryBlock:
			rules.Galleries = append(rules.Galleries, galleryRules{Order: v.Order, Images: v.Images})
		}
	}

	err := validate.Struct(rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(rules, fe))
	}
	return &ValidationError{Problems: problems}
}

func describe(rules draftRules, fe validator.FieldError) string {
	ns := fe.StructNamespace()
	switch {
	case ns == "draftRules.Title":
		return "title is required"
	case ns == "draftRules.Slug" && fe.Tag() == "required":
		return "slug is required"
	case ns == "draftRules.Slug":
		return "slug is too long"
	case strings.HasPrefix(ns, "draftRules.Images["):
		return fmt.Sprintf("image block %d: %s is required", blockPosition(ns, rules), strings.ToLower(fe.Field()))
	case strings.HasPrefix(ns, "draftRules.Galleries["):
		return fmt.Sprintf("gallery block %d needs at least one image", blockPosition(ns, rules))
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// blockPosition maps a namespace like draftRules.Images[2].Src back to the block order.
func blockPosition(ns string, rules draftRules) int {
	var idx int
	if strings.HasPrefix(ns, "draftRules.Images[") {
		fmt.Sscanf(strings.TrimPrefix(ns, "draftRules.Images["), "%d", &idx)
		if idx < len(rules.Images) {
			return rules.Images[idx].Order
		}
		return idx
	}
	fmt.Sscanf(strings.TrimPrefix(ns, "draftRules.Galleries["), "%d", &idx)
	if idx < len(rules.Galleries) {
		return rules.Galleries[idx].Order
	}
	return idx
}

// Submit validates the draft and stores it together with its blocks in one write.
func (e *Editor) Submit(ctx context.Context, store Store) (*content.Project, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e.save(ctx, store)
}

// SaveBlocks stores the current block list of an existing project without validating it.
func (e *Editor) SaveBlocks(ctx context.Context, store Store) (*content.Project, error) {
	if e.isNew {
		return nil, errors.New("draft has not been created yet")
	}
	blocks := e.Blocks()
	saved, err := store.UpdateProject(ctx, e.project.ID, service.ProjectPatch{}, &blocks)
	if err != nil {
		return nil, err
	}
	e.reset(*saved)
	return saved, nil
}

func (e *Editor) save(ctx context.Context, store Store) (*content.Project, error) {
	blocks := e.Blocks()
	if e.isNew {
		created, err := store.CreateProjectWithBlocks(ctx, service.InputFromProject(e.project), blocks)
		if err != nil {
			return nil, err
		}
		e.reset(*created)
		return created, nil
	}

	p := e.project
	kind := p.Kind
	tags := append([]string(nil), p.Tags...)
	patch := service.ProjectPatch{
		Title:         &p.Title,
		Slug:          &p.Slug,
		Description:   &p.Description,
		Location:      &p.Location,
		FeaturedImage: &p.FeaturedImage,
		Kind:          &kind,
		Published:     &p.Published,
		Tags:          &tags,
	}
	updated, err := store.UpdateProject(ctx, p.ID, patch, &blocks)
	if err != nil {
		return nil, err
	}
	e.reset(*updated)
	return updated, nil
}

func (e *Editor) reset(saved content.Project) {
	active := e.active
	*e = *EditProject(saved)
	if _, ok := e.Block(active); ok {
		e.active = active
	}
}
