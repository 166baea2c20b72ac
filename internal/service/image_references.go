package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/db"
)

// FindProjectsReferencingImage returns the distinct projects that point at url
// through their featured image, a single-image block or a gallery entry.
func (s *ProjectService) FindProjectsReferencingImage(ctx context.Context, url string) ([]content.Project, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return []content.Project{}, nil
	}
	gdb := s.db.WithContext(ctx)
	ids := make(map[string]struct{})

	var featured []string
	if err := gdb.Model(&db.Project{}).Where("featured_image = ?", url).Pluck("id", &featured).Error; err != nil {
		return nil, fmt.Errorf("scan featured images: %w", err)
	}
	for _, id := range featured {
		ids[id] = struct{}{}
	}

	var direct []string
	if err := gdb.Model(&db.ContentBlock{}).Where("src = ?", url).Distinct().Pluck("project_id", &direct).Error; err != nil {
		return nil, fmt.Errorf("scan block images: %w", err)
	}
	for _, id := range direct {
		ids[id] = struct{}{}
	}

	// LIKE only narrows the candidates, each match is confirmed after decoding.
	var galleries []db.ContentBlock
	if err := gdb.Where("type = ? AND images IS NOT NULL AND CAST(images AS TEXT) LIKE ?",
		string(content.TypeImageGallery), "%"+jsonFragment(url)+"%").
		Find(&galleries).Error; err != nil {
		return nil, fmt.Errorf("scan gallery images: %w", err)
	}
	candidates := make(map[string]*content.Project)
	for _, row := range galleries {
		if _, seen := ids[row.ProjectID]; seen {
			continue
		}
		block, err := db.BlockFromRow(row)
		if err != nil {
			s.log.Warn("skipping unreadable gallery block", "project_id", row.ProjectID, "block_id", row.ID, "error", err)
			continue
		}
		candidate, ok := candidates[row.ProjectID]
		if !ok {
			candidate = &content.Project{ID: row.ProjectID}
			candidates[row.ProjectID] = candidate
		}
		candidate.ContentBlocks = append(candidate.ContentBlocks, block)
	}
	for id, candidate := range candidates {
		if candidate.References(url) {
			ids[id] = struct{}{}
		}
	}

	if len(ids) == 0 {
		return []content.Project{}, nil
	}

	keys := make([]string, 0, len(ids))
	for id := range ids {
		keys = append(keys, id)
	}
	var rows []db.Project
	if err := gdb.Where("id IN ?", keys).Order("created_at desc").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load referencing projects: %w", err)
	}

	projects := make([]content.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, toDomainProject(row))
	}
	return projects, nil
}

// jsonFragment returns url as it appears inside a JSON string literal.
func jsonFragment(url string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(url); err != nil {
		return url
	}
	encoded := strings.TrimSpace(buf.String())
	return strings.TrimSuffix(strings.TrimPrefix(encoded, `"`), `"`)
}
