package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/photofolio/internal/content"
	"gorm.io/datatypes"
)

// RowFromBlock 将块写成宽表行：只填充该类型拥有的字段，零值写为 NULL。
func RowFromBlock(projectID string, b content.Block) (ContentBlock, error) {
	base := b.Base()
	row := ContentBlock{
		ProjectID:  projectID,
		ID:         base.ID,
		Type:       string(base.Type),
		OrderIndex: base.Order,
	}

	switch v := b.(type) {
	case content.TextBlock:
		row.Content = optString(v.Content)
		row.TextAlign = optString(v.TextAlign)
		row.FontSize = optString(v.FontSize)
		row.FontWeight = optString(v.FontWeight)
	case content.ImageBlock:
		row.Src = optString(v.Src)
		row.Alt = optString(v.Alt)
		row.Caption = optString(v.Caption)
		row.AspectRatio = optString(v.AspectRatio)
		row.Alignment = optString(v.Alignment)
	case content.ImageGalleryBlock:
		images, err := encodeImages(v.Images)
		if err != nil {
			return ContentBlock{}, fmt.Errorf("block %s: %w", base.ID, err)
		}
		row.Images = images
		row.Layout = optString(v.Layout)
		row.Columns = optInt(v.Columns)
	case content.QuoteBlock:
		row.Text = optString(v.Text)
		row.Author = optString(v.Author)
		row.Alignment = optString(v.Alignment)
		row.Style = optString(v.Style)
	case content.SpacerBlock:
		row.Height = optInt(v.Height)
	case content.TitleBlock:
		row.Text = optString(v.Text)
		row.Subtitle = optString(v.Subtitle)
		row.FontSize = optString(v.FontSize)
		row.Alignment = optString(v.Alignment)
	case content.DescriptionBlock:
		row.Content = optString(v.Content)
		row.LineHeight = optString(v.LineHeight)
		row.MaxWidth = optString(v.MaxWidth)
	case content.StoryImageBlock:
		row.Src = optString(v.Src)
		row.Alt = optString(v.Alt)
		row.Size = optString(string(v.Size))
		row.AspectRatioLock = optBool(v.AspectRatioLock)
		row.AspectRatio = optString(v.AspectRatio)
		row.Caption = optString(v.Caption)
		row.CaptionPlacement = optString(string(v.CaptionPlacement))
		row.CaptionItalic = optBool(v.CaptionItalic)
	case content.DividerBlock:
		row.SpacingTop = optInt(v.SpacingTop)
		row.SpacingBottom = optInt(v.SpacingBottom)
	case content.FooterBlock:
		row.Text = optString(v.Text)
		row.Date = optString(v.Date)
		row.Credits = optString(v.Credits)
		row.PageWidth = optString(v.PageWidth)
	}

	return row, nil
}

// BlockFromRow 按 type 列重建块，只读取该类型有意义的列。
// 未知类型只保留 id、type、order。
func BlockFromRow(row ContentBlock) (content.Block, error) {
	base := content.BlockBase{
		ID:    row.ID,
		Type:  content.BlockType(row.Type),
		Order: row.OrderIndex,
	}

	switch base.Type {
	case content.TypeText:
		return content.TextBlock{
			BlockBase:  base,
			Content:    str(row.Content),
			TextAlign:  str(row.TextAlign),
			FontSize:   str(row.FontSize),
			FontWeight: str(row.FontWeight),
		}, nil
	case content.TypeImage:
		return content.ImageBlock{
			BlockBase:   base,
			Src:         str(row.Src),
			Alt:         str(row.Alt),
			Caption:     str(row.Caption),
			AspectRatio: str(row.AspectRatio),
			Alignment:   str(row.Alignment),
		}, nil
	case content.TypeImageGallery:
		images, err := decodeImages(row.Images)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", row.ID, err)
		}
		return content.ImageGalleryBlock{
			BlockBase: base,
			Images:    images,
			Layout:    str(row.Layout),
			Columns:   num(row.Columns),
		}, nil
	case content.TypeQuote:
		return content.QuoteBlock{
			BlockBase: base,
			Text:      str(row.Text),
			Author:    str(row.Author),
			Alignment: str(row.Alignment),
			Style:     str(row.Style),
		}, nil
	case content.TypeSpacer:
		return content.SpacerBlock{BlockBase: base, Height: num(row.Height)}, nil
	case content.TypeTitle:
		return content.TitleBlock{
			BlockBase: base,
			Text:      str(row.Text),
			Subtitle:  str(row.Subtitle),
			FontSize:  str(row.FontSize),
			Alignment: str(row.Alignment),
		}, nil
	case content.TypeDescription:
		return content.DescriptionBlock{
			BlockBase:  base,
			Content:    str(row.Content),
			LineHeight: str(row.LineHeight),
			MaxWidth:   str(row.MaxWidth),
		}, nil
	case content.TypeStoryImage:
		return content.StoryImageBlock{
			BlockBase:        base,
			Src:              str(row.Src),
			Alt:              str(row.Alt),
			Size:             content.ParseStorySize(str(row.Size)),
			AspectRatioLock:  flag(row.AspectRatioLock),
			AspectRatio:      str(row.AspectRatio),
			Caption:          str(row.Caption),
			CaptionPlacement: content.CaptionPlacement(str(row.CaptionPlacement)),
			CaptionItalic:    flag(row.CaptionItalic),
		}, nil
	case content.TypeDivider:
		return content.DividerBlock{
			BlockBase:     base,
			SpacingTop:    num(row.SpacingTop),
			SpacingBottom: num(row.SpacingBottom),
		}, nil
	case content.TypeFooter:
		return content.FooterBlock{
			BlockBase: base,
			Text:      str(row.Text),
			Date:      str(row.Date),
			Credits:   str(row.Credits),
			PageWidth: str(row.PageWidth),
		}, nil
	default:
		return content.UnknownBlock{BlockBase: base}, nil
	}
}

// RowsFromBlocks 批量转换，写入前调用方应已完成重排序。
func RowsFromBlocks(projectID string, blocks []content.Block) ([]ContentBlock, error) {
	rows := make([]ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		row, err := RowFromBlock(projectID, b)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// BlocksFromRows 按 order_index 排序后重建块列表。
func BlocksFromRows(rows []ContentBlock) (content.BlockList, error) {
	sorted := make([]ContentBlock, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})

	blocks := make(content.BlockList, 0, len(sorted))
	for _, row := range sorted {
		b, err := BlockFromRow(row)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func encodeImages(images []content.GalleryImage) (datatypes.JSON, error) {
	if images == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(images); err != nil {
		return nil, fmt.Errorf("encode gallery images: %w", err)
	}
	return datatypes.JSON(bytes.TrimSpace(buf.Bytes())), nil
}

func decodeImages(raw datatypes.JSON) ([]content.GalleryImage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var images []content.GalleryImage
	if err := json.Unmarshal([]byte(trimmed), &images); err != nil {
		return nil, fmt.Errorf("decode gallery images: %w", err)
	}
	return images, nil
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func optBool(v bool) *bool {
	if !v {
		return nil
	}
	return &v
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func flag(p *bool) bool {
	return p != nil && *p
}
