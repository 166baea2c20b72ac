// Package content defines the typed content blocks that make up a project or story.
//
// Blocks form a closed sum type: every variant embeds BlockBase and is a plain
// value, so editing a block always yields a new value instead of mutating the
// caller's copy. Zero-valued optional fields mean "not set".
package content

// BlockType discriminates block variants.
type BlockType string

const (
	TypeText         BlockType = "text"
	TypeImage        BlockType = "image"
	TypeImageGallery BlockType = "image-gallery"
	TypeQuote        BlockType = "quote"
	TypeSpacer       BlockType = "spacer"
	TypeTitle        BlockType = "title"
	TypeDescription  BlockType = "description"
	TypeStoryImage   BlockType = "story-image"
	TypeDivider      BlockType = "divider"
	TypeFooter       BlockType = "footer"
)

// KnownTypes lists every block type with a dedicated variant, in editor menu order.
var KnownTypes = []BlockType{
	TypeTitle,
	TypeDescription,
	TypeText,
	TypeImage,
	TypeImageGallery,
	TypeStoryImage,
	TypeQuote,
	TypeSpacer,
	TypeDivider,
	TypeFooter,
}

// IsKnown reports whether t has a dedicated variant.
func (t BlockType) IsKnown() bool {
	for _, known := range KnownTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BlockBase holds the fields shared by every variant.
type BlockBase struct {
	ID    string    `json:"id"`
	Type  BlockType `json:"type"`
	Order int       `json:"order"`
}

// Base returns the shared fields.
func (b BlockBase) Base() BlockBase { return b }

func (BlockBase) isBlock() {}

// Block is implemented by every variant in this package.
type Block interface {
	Base() BlockBase
	WithBase(base BlockBase) Block
	WithOrder(order int) Block
	isBlock()
}

type TextBlock struct {
	BlockBase
	Content    string `json:"content,omitempty"`
	TextAlign  string `json:"textAlign,omitempty"`
	FontSize   string `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
}

type ImageBlock struct {
	BlockBase
	Src         string `json:"src"`
	Alt         string `json:"alt"`
	Caption     string `json:"caption,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Alignment   string `json:"alignment,omitempty"`
}

// GalleryImage is one entry of an image-gallery block.
type GalleryImage struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

type ImageGalleryBlock struct {
	BlockBase
	Images  []GalleryImage `json:"images"`
	Layout  string         `json:"layout,omitempty"`
	Columns int            `json:"columns,omitempty"`
}

type QuoteBlock struct {
	BlockBase
	Text      string `json:"text,omitempty"`
	Author    string `json:"author,omitempty"`
	Alignment string `json:"alignment,omitempty"`
	Style     string `json:"style,omitempty"`
}

type SpacerBlock struct {
	BlockBase
	Height int `json:"height,omitempty"`
}

type TitleBlock struct {
	BlockBase
	Text      string `json:"text,omitempty"`
	Subtitle  string `json:"subtitle,omitempty"`
	FontSize  string `json:"fontSize,omitempty"`
	Alignment string `json:"alignment,omitempty"`
}

// DescriptionBlock carries raw markup that is rendered unescaped after sanitizing.
type DescriptionBlock struct {
	BlockBase
	Content    string `json:"content,omitempty"`
	LineHeight string `json:"lineHeight,omitempty"`
	MaxWidth   string `json:"maxWidth,omitempty"`
}

// CaptionPlacement positions a story image caption.
type CaptionPlacement string

const (
	CaptionBelow   CaptionPlacement = "below"
	CaptionOverlay CaptionPlacement = "overlay"
)

type StoryImageBlock struct {
	BlockBase
	Src              string           `json:"src,omitempty"`
	Alt              string           `json:"alt,omitempty"`
	Size             StorySize        `json:"size,omitempty"`
	AspectRatioLock  bool             `json:"aspectRatioLock,omitempty"`
	AspectRatio      string           `json:"aspectRatio,omitempty"`
	Caption          string           `json:"caption,omitempty"`
	CaptionPlacement CaptionPlacement `json:"captionPlacement,omitempty"`
	CaptionItalic    bool             `json:"captionItalic,omitempty"`
}

// DividerBlock spacing values are pixels.
type DividerBlock struct {
	BlockBase
	SpacingTop    int `json:"spacingTop,omitempty"`
	SpacingBottom int `json:"spacingBottom,omitempty"`
}

type FooterBlock struct {
	BlockBase
	Text      string `json:"text,omitempty"`
	Date      string `json:"date,omitempty"`
	Credits   string `json:"credits,omitempty"`
	PageWidth string `json:"pageWidth,omitempty"`
}

// UnknownBlock keeps the shared fields of a block whose type has no variant.
type UnknownBlock struct {
	BlockBase
}

func (b TextBlock) WithBase(base BlockBase) Block         { b.BlockBase = base; return b }
func (b ImageBlock) WithBase(base BlockBase) Block        { b.BlockBase = base; return b }
func (b ImageGalleryBlock) WithBase(base BlockBase) Block { b.BlockBase = base; return b }
func (b QuoteBlock) WithBase(base BlockBase) Block        { b.BlockBase = base; return b }
func (b SpacerBlock) WithBase(base BlockBase) Block       { b.BlockBase = base; return b }
func (b TitleBlock) WithBase(base BlockBase) Block        { b.BlockBase = base; return b }
func (b DescriptionBlock) WithBase(base BlockBase) Block  { b.BlockBase = base; return b }
func (b StoryImageBlock) WithBase(base BlockBase) Block   { b.BlockBase = base; return b }
func (b DividerBlock) WithBase(base BlockBase) Block      { b.BlockBase = base; return b }
func (b FooterBlock) WithBase(base BlockBase) Block       { b.BlockBase = base; return b }
func (b UnknownBlock) WithBase(base BlockBase) Block      { b.BlockBase = base; return b }

func (b TextBlock) WithOrder(order int) Block         { b.Order = order; return b }
func (b ImageBlock) WithOrder(order int) Block        { b.Order = order; return b }
func (b ImageGalleryBlock) WithOrder(order int) Block { b.Order = order; return b }
func (b QuoteBlock) WithOrder(order int) Block        { b.Order = order; return b }
func (b SpacerBlock) WithOrder(order int) Block       { b.Order = order; return b }
func (b TitleBlock) WithOrder(order int) Block        { b.Order = order; return b }
func (b DescriptionBlock) WithOrder(order int) Block  { b.Order = order; return b }
func (b StoryImageBlock) WithOrder(order int) Block   { b.Order = order; return b }
func (b DividerBlock) WithOrder(order int) Block      { b.Order = order; return b }
func (b FooterBlock) WithOrder(order int) Block       { b.Order = order; return b }
func (b UnknownBlock) WithOrder(order int) Block      { b.Order = order; return b }

// ImageSources returns every image URL a block points at, in display order.
func ImageSources(b Block) []string {
	switch v := b.(type) {
	case ImageBlock:
		if v.Src != "" {
			return []string{v.Src}
		}
	case StoryImageBlock:
		if v.Src != "" {
			return []string{v.Src}
		}
	case ImageGalleryBlock:
		srcs := make([]string, 0, len(v.Images))
		for _, img := range v.Images {
			if img.Src != "" {
				srcs = append(srcs, img.Src)
			}
		}
		return srcs
	}
	return nil
}
