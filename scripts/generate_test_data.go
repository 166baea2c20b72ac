package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/photofolio/internal/authoring"
	"github.com/photofolio/internal/config"
	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/db"
	"github.com/photofolio/internal/logger"
	"github.com/photofolio/internal/migrate"
	"github.com/photofolio/internal/service"
	"gorm.io/gorm"
)

// 测试数据生成器
func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("读取 .env 失败: %v", err)
	}
	cfg := config.Load()

	gdb, err := db.Init(db.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN()})
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := migrate.New(gdb, logger.Nop()).Up(ctx); err != nil {
		log.Fatal("数据库迁移失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	created, err := seed(ctx, gdb)
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}
	fmt.Printf("测试数据生成完成！新增 %d 个作品\n", created)
}

type sampleImage struct {
	src, alt, caption string
}

type sample struct {
	kind        content.Kind
	title       string
	location    string
	description string
	published   bool
	tags        []string
	cover       string
	images      []sampleImage
}

var samples = []sample{
	{
		kind:        content.KindProject,
		title:       "Coastal Light",
		location:    "Big Sur, California",
		description: "Long exposures of the Pacific at dusk.",
		published:   true,
		tags:        []string{"landscape", "sea"},
		cover:       "https://images.unsplash.com/photo-1507525428034-b723cf961d3e?auto=format&fit=crop&w=1600&q=80",
		images: []sampleImage{
			{"https://images.unsplash.com/photo-1500375592092-40eb2168fd21?auto=format&fit=crop&w=1600&q=80", "Waves over rocks", "Bixby Creek"},
			{"https://images.unsplash.com/photo-1505142468610-359e7d316be0?auto=format&fit=crop&w=1600&q=80", "Foam on black sand", ""},
		},
	},
	{
		kind:        content.KindProject,
		title:       "City Geometry",
		location:    "Tokyo",
		description: "Stairwells, facades and the grid.",
		published:   true,
		tags:        []string{"architecture", "street"},
		cover:       "https://images.unsplash.com/photo-1480796927426-f609979314bd?auto=format&fit=crop&w=1600&q=80",
		images: []sampleImage{
			{"https://images.unsplash.com/photo-1503899036084-c55cdd92da26?auto=format&fit=crop&w=1600&q=80", "Neon crossing", "Shibuya"},
			{"https://images.unsplash.com/photo-1542051841857-5f90071e7989?auto=format&fit=crop&w=1600&q=80", "Alley at night", ""},
			{"https://images.unsplash.com/photo-1536098561742-ca998e48cbcc?auto=format&fit=crop&w=1600&q=80", "Tower facade", ""},
		},
	},
	{
		kind:        content.KindStory,
		title:       "Into the North",
		location:    "Iceland",
		description: "Ten days on the ring road in February.",
		published:   true,
		tags:        []string{"travel", "winter"},
		cover:       "https://images.unsplash.com/photo-1504829857797-ddff29c27927?auto=format&fit=crop&w=1600&q=80",
		images: []sampleImage{
			{"https://images.unsplash.com/photo-1476610182048-b716b8518aae?auto=format&fit=crop&w=1600&q=80", "Aurora over a fjord", "The first clear night."},
			{"https://images.unsplash.com/photo-1520769945061-0a448c463865?auto=format&fit=crop&w=1600&q=80", "Glacier lagoon", "Jökulsárlón at sunrise."},
		},
	},
	{
		kind:        content.KindStory,
		title:       "Desert Notes",
		location:    "Wadi Rum",
		description: "Draft of a story that is not public yet.",
		published:   false,
		tags:        []string{"travel"},
		cover:       "https://images.unsplash.com/photo-1509316785289-025f5b846b35?auto=format&fit=crop&w=1600&q=80",
		images: []sampleImage{
			{"https://images.unsplash.com/photo-1473580044384-7ba9967e16a0?auto=format&fit=crop&w=1600&q=80", "Dunes", ""},
		},
	},
}

// seed 创建示例作品与故事，已存在的 slug 会跳过。返回新增数量。
func seed(ctx context.Context, gdb *gorm.DB) (int, error) {
	projects := service.NewProjectService(gdb, nil)
	created := 0
	for _, s := range samples {
		editor := draft(s)
		existing, err := projects.GetProjectBySlug(ctx, editor.Project().Slug)
		if err != nil {
			return created, err
		}
		if existing != nil {
			fmt.Printf("%s 已存在，跳过创建\n", s.title)
			continue
		}
		if _, err := editor.Submit(ctx, projects); err != nil {
			return created, fmt.Errorf("create %s: %w", s.title, err)
		}
		created++
		fmt.Printf("✅ %s 创建完成\n", s.title)
	}

	iconic := []string{}
	for _, s := range samples {
		if s.published {
			iconic = append(iconic, s.cover)
		}
	}
	if _, err := service.NewIconicImageService(gdb).Replace(ctx, iconic); err != nil {
		return created, fmt.Errorf("set iconic images: %w", err)
	}
	return created, nil
}

// draft 按作品类型拼出内容块：项目用图库，故事用标题、正文和故事图片。
func draft(s sample) *authoring.Editor {
	editor := authoring.NewEditor(s.kind)
	title, location, description, cover := s.title, s.location, s.description, s.cover
	published, tags := s.published, s.tags
	editor.SetMeta(authoring.Meta{
		Title:         &title,
		Location:      &location,
		Description:   &description,
		FeaturedImage: &cover,
		Published:     &published,
		Tags:          &tags,
	})

	if s.kind == content.KindProject {
		text := editor.AddBlock(content.TypeText, -1)
		editor.UpdateBlock(text.Base().ID, mustJSON(map[string]string{"content": s.description}))
		gallery := editor.AddBlock(content.TypeImageGallery, -1)
		for _, img := range s.images {
			editor.AddGalleryImage(gallery.Base().ID, content.GalleryImage{Src: img.src, Alt: img.alt, Caption: img.caption})
		}
		return editor
	}

	heading := editor.AddBlock(content.TypeTitle, -1)
	editor.UpdateBlock(heading.Base().ID, mustJSON(map[string]string{"text": s.title}))
	for i, img := range s.images {
		if i > 0 {
			editor.AddBlock(content.TypeDivider, -1)
		}
		block := editor.AddBlock(content.TypeStoryImage, -1)
		editor.UpdateBlock(block.Base().ID, mustJSON(map[string]interface{}{
			"src":              img.src,
			"alt":              img.alt,
			"caption":          img.caption,
			"captionPlacement": "below",
			"size":             "narrow",
		}))
	}
	return editor
}

func mustJSON(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
