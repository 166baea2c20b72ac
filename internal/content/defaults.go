package content

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewBlockID returns a fresh block id. Ids are never reused within a project.
func NewBlockID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("block-%d-%s", time.Now().UnixMilli(), suffix)
}

// NewBlock returns a default-valued block of the given type at order.
// Unknown types yield an UnknownBlock.
func NewBlock(t BlockType, order int) Block {
	base := BlockBase{ID: NewBlockID(), Type: t, Order: order}

	switch t {
	case TypeText:
		return TextBlock{BlockBase: base, TextAlign: "left", FontSize: "medium", FontWeight: "normal"}
	case TypeImage:
		return ImageBlock{BlockBase: base, Alignment: "center"}
	case TypeImageGallery:
		return ImageGalleryBlock{BlockBase: base, Images: []GalleryImage{}, Layout: "grid", Columns: 3}
	case TypeQuote:
		return QuoteBlock{BlockBase: base, Alignment: "center", Style: "default"}
	case TypeSpacer:
		return SpacerBlock{BlockBase: base, Height: 40}
	case TypeTitle:
		return TitleBlock{BlockBase: base, FontSize: "large", Alignment: "left"}
	case TypeDescription:
		return DescriptionBlock{BlockBase: base, LineHeight: "relaxed", MaxWidth: "medium"}
	case TypeStoryImage:
		return StoryImageBlock{
			BlockBase:        base,
			Size:             SizeFullWidth,
			AspectRatioLock:  true,
			CaptionPlacement: CaptionBelow,
		}
	case TypeDivider:
		return DividerBlock{BlockBase: base, SpacingTop: 32, SpacingBottom: 32}
	case TypeFooter:
		return FooterBlock{BlockBase: base, PageWidth: "medium"}
	default:
		return UnknownBlock{BlockBase: base}
	}
}

// ApplyPatch merges the same-type fields present in patch into b.
// The id, type and order of b are kept regardless of the patch contents.
func ApplyPatch(b Block, patch []byte) (Block, error) {
	if b == nil {
		return nil, fmt.Errorf("apply patch: nil block")
	}
	base := b.Base()
	if len(strings.TrimSpace(string(patch))) == 0 {
		return b, nil
	}

	var merged Block
	var err error
	switch v := b.(type) {
	case TextBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case ImageBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case ImageGalleryBlock:
		v.Images = slices.Clone(v.Images)
		err = json.Unmarshal(patch, &v)
		merged = v
	case QuoteBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case SpacerBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case TitleBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case DescriptionBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case StoryImageBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case DividerBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	case FooterBlock:
		err = json.Unmarshal(patch, &v)
		merged = v
	default:
		merged = b
	}
	if err != nil {
		return nil, fmt.Errorf("apply patch to %s block: %w", base.Type, err)
	}

	return merged.WithBase(base), nil
}
