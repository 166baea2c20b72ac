// Package authoring holds the admin editing state for a project or story.
//
// An Editor owns a draft project and its ordered block list. Every structural
// change goes through the ordering helpers and reindexes the list, so the
// block orders are always 0..n-1. Nothing is persisted until Submit.
package authoring

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/ordering"
)

var (
	ErrBlockNotFound = errors.New("block not found")
	ErrNotAGallery   = errors.New("block is not an image gallery")
	ErrImageIndex    = errors.New("gallery image index out of range")
)

// Editor is not safe for concurrent use.
type Editor struct {
	project content.Project
	blocks  []content.Block
	active  string
	isNew   bool
}

// Meta carries editable project fields. Nil fields are left unchanged.
type Meta struct {
	Title         *string
	Slug          *string
	Description   *string
	Location      *string
	FeaturedImage *string
	Published     *bool
	Tags          *[]string
}

// NewEditor starts a draft of the given kind.
func NewEditor(kind content.Kind) *Editor {
	return &Editor{
		project: content.Project{Kind: content.NormalizeKind(string(kind)), Tags: []string{}},
		blocks:  []content.Block{},
		isNew:   true,
	}
}

// EditProject starts editing an existing project.
func EditProject(p content.Project) *Editor {
	blocks := ordering.Reindex([]content.Block(p.ContentBlocks))
	p.ContentBlocks = nil
	return &Editor{project: p, blocks: blocks}
}

// ActiveID returns the id of the block being edited, or "".
func (e *Editor) ActiveID() string { return e.active }

// Blocks returns a copy of the ordered block list.
func (e *Editor) Blocks() []content.Block {
	out := make([]content.Block, len(e.blocks))
	copy(out, e.blocks)
	return out
}

// Block returns the block with id.
func (e *Editor) Block(id string) (content.Block, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return e.blocks[i], true
}

// Project returns the draft including its blocks.
func (e *Editor) Project() content.Project {
	p := e.project
	p.Tags = append([]string(nil), e.project.Tags...)
	p.ContentBlocks = content.BlockList(e.Blocks())
	return p
}

// SetMeta applies metadata changes. A draft without a slug gets one derived from its title.
func (e *Editor) SetMeta(m Meta) {
	if m.Title != nil {
		e.project.Title = *m.Title
	}
	if m.Slug != nil {
		e.project.Slug = *m.Slug
	}
	if m.Description != nil {
		e.project.Description = *m.Description
	}
	if m.Location != nil {
		e.project.Location = *m.Location
	}
	if m.FeaturedImage != nil {
		e.project.FeaturedImage = *m.FeaturedImage
	}
	if m.Published != nil {
		e.project.Published = *m.Published
	}
	if m.Tags != nil {
		e.project.Tags = append([]string(nil), (*m.Tags)...)
	}
	if strings.TrimSpace(e.project.Slug) == "" && m.Slug == nil {
		e.project.Slug = Slugify(e.project.Title)
	}
}

// AddBlock inserts a default block of type t at position at and makes it active.
// A negative position appends.
func (e *Editor) AddBlock(t content.BlockType, at int) content.Block {
	if at < 0 || at > len(e.blocks) {
		at = len(e.blocks)
	}
	block := content.NewBlock(t, at)
	e.blocks = ordering.Reindex(ordering.Insert(e.blocks, at, block))
	e.active = block.Base().ID
	return e.blocks[at]
}

// UpdateBlock merges a same-type JSON patch into the block.
func (e *Editor) UpdateBlock(id string, patch []byte) (content.Block, error) {
	i := e.indexOf(id)
	if i < 0 {
		return nil, ErrBlockNotFound
	}
	updated, err := content.ApplyPatch(e.blocks[i], patch)
	if err != nil {
		return nil, err
	}
	e.blocks = replaceAt(e.blocks, i, updated)
	return updated, nil
}

// RemoveBlock deletes the block and clears the active block if it was the one removed.
func (e *Editor) RemoveBlock(id string) error {
	i := e.indexOf(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	e.blocks = ordering.Reindex(ordering.RemoveAt(e.blocks, i))
	if e.active == id {
		e.active = ""
	}
	return nil
}

// MoveBlockUp swaps the block with its predecessor. The first block stays put.
func (e *Editor) MoveBlockUp(id string) error {
	i := e.indexOf(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	e.blocks = ordering.Reindex(ordering.MoveUp(e.blocks, i))
	return nil
}

// MoveBlockDown swaps the block with its successor. The last block stays put.
func (e *Editor) MoveBlockDown(id string) error {
	i := e.indexOf(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	e.blocks = ordering.Reindex(ordering.MoveDown(e.blocks, i))
	return nil
}

// MoveBlock drags the block to position to.
func (e *Editor) MoveBlock(id string, to int) error {
	i := e.indexOf(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	e.blocks = ordering.Reindex(ordering.Move(e.blocks, i, to))
	return nil
}

// AddGalleryImage appends an image to a gallery block.
func (e *Editor) AddGalleryImage(blockID string, img content.GalleryImage) error {
	return e.editGallery(blockID, func(images []content.GalleryImage) ([]content.GalleryImage, error) {
		return ordering.Insert(images, len(images), img), nil
	})
}

// RemoveGalleryImage drops the image at index.
func (e *Editor) RemoveGalleryImage(blockID string, index int) error {
	return e.editGallery(blockID, func(images []content.GalleryImage) ([]content.GalleryImage, error) {
		if index < 0 || index >= len(images) {
			return nil, ErrImageIndex
		}
		return ordering.RemoveAt(images, index), nil
	})
}

// MoveGalleryImage reorders one gallery image.
func (e *Editor) MoveGalleryImage(blockID string, from, to int) error {
	return e.editGallery(blockID, func(images []content.GalleryImage) ([]content.GalleryImage, error) {
		if from < 0 || from >= len(images) {
			return nil, ErrImageIndex
		}
		return ordering.Move(images, from, to), nil
	})
}

func (e *Editor) editGallery(blockID string, edit func([]content.GalleryImage) ([]content.GalleryImage, error)) error {
	i := e.indexOf(blockID)
	if i < 0 {
		return ErrBlockNotFound
	}
	gallery, ok := e.blocks[i].(content.ImageGalleryBlock)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAGallery, e.blocks[i].Base().Type)
	}
	images, err := edit(gallery.Images)
	if err != nil {
		return err
	}
	gallery.Images = images
	e.blocks = replaceAt(e.blocks, i, gallery)
	return nil
}

func (e *Editor) indexOf(id string) int {
	return ordering.IndexFunc(e.blocks, func(b content.Block) bool { return b.Base().ID == id })
}

func replaceAt(blocks []content.Block, i int, b content.Block) []content.Block {
	out := make([]content.Block, len(blocks))
	copy(out, blocks)
	out[i] = b
	return out
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-"), "-")
}
