// Package render turns stored projects into what the public site shows:
// the lightbox sequence, story sections, and full HTML pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/photofolio/internal/content"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	textSanitizer        = bluemonday.UGCPolicy()
	descriptionSanitizer = buildDescriptionSanitizer()
)

var embedSrcPattern = regexp.MustCompile(
	`^https://(?:www\.)?(?:youtube\.com/embed/|youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`,
)

func buildDescriptionSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "style").OnElements("div", "span", "p")
	policy.AllowStyles("text-align", "font-style", "font-weight").Globally()
	policy.AllowAttrs("src").Matching(embedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "width", "height", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy").OnElements("iframe")
	return policy
}

// NarrowWidth is the CSS width of a narrow story image.
const NarrowWidth = "720px"

// Slide is one lightbox frame.
type Slide struct {
	Index   int    `json:"index"`
	BlockID string `json:"blockId"`
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

// Section is one rendered block of a story or project page.
type Section struct {
	Block content.Block
	Type  content.BlockType
	// HTML is set for text and description blocks.
	HTML template.HTML
	// Width is the CSS width of a story image.
	Width string
	// AspectRatio is set when a story image locks its ratio.
	AspectRatio string
	// Style is the inline CSS built from Width and AspectRatio.
	Style template.CSS
	// Slides are the lightbox frames contributed by this block.
	Slides []Slide
}

// StoryView is the render model of a project or story page.
type StoryView struct {
	Project  content.Project
	Sections []Section
	Slides   []Slide
}

// Lightbox returns every block image in order. The featured image is not part of it.
func Lightbox(p content.Project) []Slide {
	slides := []Slide{}
	for _, b := range p.ContentBlocks {
		slides = appendSlides(slides, b)
	}
	return slides
}

func appendSlides(slides []Slide, b content.Block) []Slide {
	add := func(src, alt, caption string) {
		if strings.TrimSpace(src) == "" {
			return
		}
		slides = append(slides, Slide{Index: len(slides), BlockID: b.Base().ID, Src: src, Alt: alt, Caption: caption})
	}
	switch v := b.(type) {
	case content.ImageBlock:
		add(v.Src, v.Alt, v.Caption)
	case content.StoryImageBlock:
		add(v.Src, v.Alt, v.Caption)
	case content.ImageGalleryBlock:
		for _, img := range v.Images {
			add(img.Src, img.Alt, img.Caption)
		}
	}
	return slides
}

// Story builds one section per block. Unknown blocks are kept with no markup so
// templates can skip them.
func Story(p content.Project) StoryView {
	view := StoryView{Project: p, Sections: make([]Section, 0, len(p.ContentBlocks)), Slides: []Slide{}}
	for _, b := range p.ContentBlocks {
		first := len(view.Slides)
		view.Slides = appendSlides(view.Slides, b)

		section := Section{Block: b, Type: b.Base().Type, Slides: view.Slides[first:]}
		switch v := b.(type) {
		case content.TextBlock:
			section.HTML = Markdown(v.Content)
		case content.DescriptionBlock:
			section.HTML = template.HTML(descriptionSanitizer.Sanitize(v.Content))
		case content.StoryImageBlock:
			section.Width = StoryWidth(v.Size)
			if v.AspectRatioLock && strings.TrimSpace(v.AspectRatio) != "" {
				section.AspectRatio = cssAspectRatio(v.AspectRatio)
			}
			section.Style = imageStyle(section.Width, section.AspectRatio)
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}

// Markdown renders sanitized HTML from markdown source.
func Markdown(source string) template.HTML {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(textSanitizer.SanitizeBytes(buf.Bytes()))
}

// StoryWidth maps a story image size to a CSS width. Absent sizes are full width.
func StoryWidth(size content.StorySize) string {
	if px, ok := size.Pixels(); ok {
		return fmt.Sprintf("%dpx", px)
	}
	if size == content.SizeNarrow {
		return NarrowWidth
	}
	return "100%"
}

var aspectRatioPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*(?:[:/]\s*(\d+(?:\.\d+)?))?\s*$`)

// cssAspectRatio accepts "16:9", "16/9" or a plain number. Anything else is dropped.
func cssAspectRatio(ratio string) string {
	m := aspectRatioPattern.FindStringSubmatch(ratio)
	if m == nil {
		return ""
	}
	if m[2] == "" {
		return m[1]
	}
	return m[1] + " / " + m[2]
}

func imageStyle(width, aspectRatio string) template.CSS {
	style := "width: " + width + "; max-width: 100%;"
	if aspectRatio != "" {
		style += " aspect-ratio: " + aspectRatio + "; object-fit: cover;"
	}
	return template.CSS(style)
}
