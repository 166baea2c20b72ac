package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/photofolio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IconicImageService 维护首页精选图片的有序 URL 列表。
type IconicImageService struct {
	db *gorm.DB
}

// NewIconicImageService 构造 IconicImageService。
func NewIconicImageService(gdb *gorm.DB) *IconicImageService {
	return &IconicImageService{db: gdb}
}

// List 返回保存的顺序，未设置时返回空列表。
func (s *IconicImageService) List(ctx context.Context) ([]string, error) {
	var setting db.SiteSetting
	err := s.db.WithContext(ctx).Where("key = ?", db.SettingKeyIconicImages).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("load iconic images: %w", err)
	}

	if strings.TrimSpace(setting.Value) == "" {
		return []string{}, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(setting.Value), &urls); err != nil {
		return nil, fmt.Errorf("decode iconic images: %w", err)
	}
	return normalizeURLList(urls), nil
}

// Replace 整体覆盖列表，去掉空值与重复项并保留顺序。
func (s *IconicImageService) Replace(ctx context.Context, urls []string) ([]string, error) {
	cleaned := normalizeURLList(urls)
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("encode iconic images: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertSetting(tx, db.SettingKeyIconicImages, string(raw))
	})
	if err != nil {
		return nil, fmt.Errorf("update iconic images: %w", err)
	}
	return cleaned, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SiteSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

func normalizeURLList(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, url := range urls {
		trimmed := strings.TrimSpace(url)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}
