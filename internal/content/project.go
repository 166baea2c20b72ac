package content

import (
	"strings"
	"time"
)

// Kind selects the authoring flow and the public route family of a project.
type Kind string

const (
	KindProject Kind = "project"
	KindStory   Kind = "story"
)

// NormalizeKind maps stored values to a Kind. Empty and unrecognized values are
// treated as projects so rows written before kinds existed keep working.
func NormalizeKind(raw string) Kind {
	if Kind(strings.ToLower(strings.TrimSpace(raw))) == KindStory {
		return KindStory
	}
	return KindProject
}

// ParseKind is like NormalizeKind but reports whether raw named a kind at all.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindProject:
		return KindProject, true
	case KindStory:
		return KindStory, true
	}
	return "", false
}

// Project is an authored unit of content with its ordered blocks.
type Project struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	Kind          Kind      `json:"kind"`
	Published     bool      `json:"published"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ContentBlocks BlockList `json:"contentBlocks"`
}

// PathKey returns the slug used in public URLs, falling back to the id.
func (p Project) PathKey() string {
	if slug := strings.TrimSpace(p.Slug); slug != "" {
		return slug
	}
	return p.ID
}

// PublicPath is the page URL of p, under /stories/ or /projects/ by kind.
func (p Project) PublicPath() string {
	if NormalizeKind(string(p.Kind)) == KindStory {
		return "/stories/" + p.PathKey()
	}
	return "/projects/" + p.PathKey()
}

// ImageSources returns the featured image and every block image of p.
func (p Project) ImageSources() []string {
	var srcs []string
	if p.FeaturedImage != "" {
		srcs = append(srcs, p.FeaturedImage)
	}
	for _, b := range p.ContentBlocks {
		srcs = append(srcs, ImageSources(b)...)
	}
	return srcs
}

// References reports whether p points at url through its featured image or any block.
func (p Project) References(url string) bool {
	if url == "" {
		return false
	}
	for _, src := range p.ImageSources() {
		if src == url {
			return true
		}
	}
	return false
}
