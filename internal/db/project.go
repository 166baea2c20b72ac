package db

import (
	"time"

	"gorm.io/datatypes"
)

// Project 对应 projects 表，一行一个作品或故事。
type Project struct {
	ID            string                      `gorm:"primaryKey;size:64"`
	Title         string                      `gorm:"size:255;not null"`
	Slug          string                      `gorm:"size:255;uniqueIndex;not null"`
	Description   string                      `gorm:"type:text"`
	Location      string                      `gorm:"size:255"`
	FeaturedImage string                      `gorm:"column:featured_image;size:1024;index"`
	Kind          string                      `gorm:"size:20;default:project"`
	Published     bool                        `gorm:"not null;default:false;index"`
	Tags          datatypes.JSONSlice[string] `gorm:"column:tags"`
	CreatedAt     time.Time                   `gorm:"index"`
	UpdatedAt     time.Time
	Blocks        []ContentBlock `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName 固定表名。
func (Project) TableName() string {
	return "projects"
}

// ContentBlock 是所有块类型字段的并集，type 决定哪些列有意义，其余列为 NULL。
// 该结构只在 db 包与仓储层之间流转，其他层只看到 content.Block。
type ContentBlock struct {
	ProjectID  string `gorm:"primaryKey;size:64;index"`
	ID         string `gorm:"primaryKey;size:64"`
	Type       string `gorm:"size:40;not null"`
	OrderIndex int    `gorm:"column:order_index;not null;default:0"`

	Content    *string `gorm:"type:text"`
	TextAlign  *string `gorm:"size:20"`
	FontSize   *string `gorm:"size:20"`
	FontWeight *string `gorm:"size:20"`

	Src         *string `gorm:"size:1024;index"`
	Alt         *string `gorm:"size:1024"`
	Caption     *string `gorm:"type:text"`
	AspectRatio *string `gorm:"size:20"`
	Alignment   *string `gorm:"size:20"`

	Images  datatypes.JSON `gorm:"column:images"`
	Layout  *string        `gorm:"size:20"`
	Columns *int

	Text   *string `gorm:"type:text"`
	Author *string `gorm:"size:255"`
	Style  *string `gorm:"size:20"`

	Height *int

	Subtitle *string `gorm:"type:text"`

	LineHeight *string `gorm:"size:20"`
	MaxWidth   *string `gorm:"size:20"`

	Size             *string `gorm:"size:20"`
	AspectRatioLock  *bool
	CaptionPlacement *string `gorm:"size:20"`
	CaptionItalic    *bool

	SpacingTop    *int
	SpacingBottom *int

	Date      *string `gorm:"size:100"`
	Credits   *string `gorm:"type:text"`
	PageWidth *string `gorm:"size:20"`
}

// TableName 固定表名。
func (ContentBlock) TableName() string {
	return "content_blocks"
}

// SchemaMigration 记录已执行的迁移版本。
type SchemaMigration struct {
	Version   string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"size:255"`
	AppliedAt time.Time
}

// TableName 固定表名。
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
