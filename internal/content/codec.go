package content

import (
	"encoding/json"
	"fmt"
)

// DecodeBlock decodes one JSON block, dispatching on its type field.
// Unknown types decode to an UnknownBlock carrying only the shared fields.
func DecodeBlock(data []byte) (Block, error) {
	var base BlockBase
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}

	switch base.Type {
	case TypeText:
		return decodeAs[TextBlock](data)
	case TypeImage:
		return decodeAs[ImageBlock](data)
	case TypeImageGallery:
		return decodeAs[ImageGalleryBlock](data)
	case TypeQuote:
		return decodeAs[QuoteBlock](data)
	case TypeSpacer:
		return decodeAs[SpacerBlock](data)
	case TypeTitle:
		return decodeAs[TitleBlock](data)
	case TypeDescription:
		return decodeAs[DescriptionBlock](data)
	case TypeStoryImage:
		return decodeAs[StoryImageBlock](data)
	case TypeDivider:
		return decodeAs[DividerBlock](data)
	case TypeFooter:
		return decodeAs[FooterBlock](data)
	default:
		return UnknownBlock{BlockBase: base}, nil
	}
}

func decodeAs[T Block](data []byte) (Block, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}

// UnmarshalJSON reads the canonical caption fields and falls back to the
// legacy placement and italic names when the canonical ones are absent.
func (b *StoryImageBlock) UnmarshalJSON(data []byte) error {
	type plain StoryImageBlock
	if err := json.Unmarshal(data, (*plain)(b)); err != nil {
		return err
	}

	var legacy struct {
		CaptionPlacement *string `json:"captionPlacement"`
		CaptionItalic    *bool   `json:"captionItalic"`
		Placement        *string `json:"placement"`
		Italic           *bool   `json:"italic"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	if legacy.CaptionPlacement == nil && legacy.Placement != nil {
		b.CaptionPlacement = CaptionPlacement(*legacy.Placement)
	}
	if legacy.CaptionItalic == nil && legacy.Italic != nil {
		b.CaptionItalic = *legacy.Italic
	}
	return nil
}

// BlockList is an ordered block sequence with a type-dispatching JSON codec.
type BlockList []Block

// MarshalJSON always writes an array, never null.
func (l BlockList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Block(l))
}

// UnmarshalJSON decodes each element with DecodeBlock.
func (l *BlockList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decode block list: %w", err)
	}
	out := make(BlockList, 0, len(raws))
	for i, raw := range raws {
		block, err := DecodeBlock(raw)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, block)
	}
	*l = out
	return nil
}
