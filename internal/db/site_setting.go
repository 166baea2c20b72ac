package db

import "gorm.io/gorm"

// SiteSetting 存储站点级键值对，例如首页精选图片列表。
type SiteSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SiteSetting) TableName() string {
	return "site_settings"
}

const (
	// SettingKeyIconicImages 保存精选图片 URL 的 JSON 数组，顺序即展示顺序。
	SettingKeyIconicImages = "iconic_images"
)
