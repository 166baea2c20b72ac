package render

import (
	"strings"
	"testing"

	"github.com/photofolio/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func base(id string, t content.BlockType, order int) content.BlockBase {
	return content.BlockBase{ID: id, Type: t, Order: order}
}

func storyFixture() content.Project {
	return content.Project{
		ID:            "p1",
		Title:         "Iceland",
		Slug:          "iceland",
		Kind:          content.KindStory,
		Published:     true,
		FeaturedImage: "/cover.jpg",
		ContentBlocks: content.BlockList{
			content.TitleBlock{BlockBase: base("t", content.TypeTitle, 0), Text: "Into the North", Alignment: "left"},
			content.TextBlock{BlockBase: base("x", content.TypeText, 1), Content: "Some **bold** words<script>alert(1)</script>"},
			content.StoryImageBlock{BlockBase: base("s", content.TypeStoryImage, 2), Src: "/a.jpg", Alt: "A", Size: content.PixelSize(420), AspectRatioLock: true, AspectRatio: "3:2", Caption: "Aurora", CaptionPlacement: content.CaptionBelow, CaptionItalic: true},
			content.ImageGalleryBlock{BlockBase: base("g", content.TypeImageGallery, 3), Layout: "grid", Columns: 3, Images: []content.GalleryImage{{Src: "/b.jpg", Alt: "B"}, {Src: "", Alt: "empty"}, {Src: "/c.jpg", Alt: "C", Caption: "Cliffs"}}},
			content.DescriptionBlock{BlockBase: base("d", content.TypeDescription, 4), Content: `<p>Watch</p><iframe src="https://www.youtube.com/embed/abc"></iframe><iframe src="https://evil.example/x"></iframe>`},
			content.ImageBlock{BlockBase: base("i", content.TypeImage, 5), Src: "/d.jpg", Alt: "D"},
			content.UnknownBlock{BlockBase: base("u", "carousel", 6)},
		},
	}
}

func TestLightboxOrderExcludesFeatured(t *testing.T) {
	slides := Lightbox(storyFixture())
	require.Len(t, slides, 4)

	srcs := make([]string, len(slides))
	for i, s := range slides {
		assert.Equal(t, i, s.Index)
		srcs[i] = s.Src
	}
	assert.Equal(t, []string{"/a.jpg", "/b.jpg", "/c.jpg", "/d.jpg"}, srcs)
	assert.Equal(t, "Aurora", slides[0].Caption)
	assert.Equal(t, "g", slides[2].BlockID)
	assert.NotContains(t, srcs, "/cover.jpg")

	assert.Empty(t, Lightbox(content.Project{}))
}

func TestStorySections(t *testing.T) {
	view := Story(storyFixture())
	require.Len(t, view.Sections, 7)

	text := view.Sections[1]
	assert.Contains(t, string(text.HTML), "<strong>bold</strong>")
	assert.NotContains(t, string(text.HTML), "<script>")

	img := view.Sections[2]
	assert.Equal(t, "420px", img.Width)
	assert.Equal(t, "3 / 2", img.AspectRatio)
	assert.Contains(t, string(img.Style), "aspect-ratio: 3 / 2")
	require.Len(t, img.Slides, 1)
	assert.Equal(t, 0, img.Slides[0].Index)

	gallery := view.Sections[3]
	require.Len(t, gallery.Slides, 2)
	assert.Equal(t, 1, gallery.Slides[0].Index)

	desc := string(view.Sections[4].HTML)
	assert.Contains(t, desc, "https://www.youtube.com/embed/abc")
	assert.NotContains(t, desc, "evil.example")

	assert.Empty(t, view.Sections[6].HTML)
	assert.Len(t, view.Slides, 4)
}

func TestStoryWidth(t *testing.T) {
	cases := []struct {
		size content.StorySize
		want string
	}{
		{content.SizeFullWidth, "100%"},
		{content.SizeNarrow, NarrowWidth},
		{content.PixelSize(300), "300px"},
		{"", "100%"},
		{"-420", "100%"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StoryWidth(tc.size), "size %q", tc.size)
	}
}

func TestCSSAspectRatio(t *testing.T) {
	assert.Equal(t, "16 / 9", cssAspectRatio("16:9"))
	assert.Equal(t, "4 / 3", cssAspectRatio(" 4/3 "))
	assert.Equal(t, "1.5", cssAspectRatio("1.5"))
	assert.Equal(t, "", cssAspectRatio("1; background:red"))
}

func TestPageUsesKindTemplate(t *testing.T) {
	story, err := Page(storyFixture())
	require.NoError(t, err)
	assert.Contains(t, story, `class="page-story"`)
	assert.Contains(t, story, "Into the North")
	assert.Contains(t, story, `data-slide="3"`)
	assert.Contains(t, story, `class="italic"`)
	assert.Contains(t, story, "window.__LIGHTBOX__")
	assert.NotContains(t, story, "<script>alert")

	project := storyFixture()
	project.Kind = content.KindProject
	project.Location = "Vík"
	page, err := Page(project)
	require.NoError(t, err)
	assert.Contains(t, page, `class="page-project"`)
	assert.Contains(t, page, "Vík")
	assert.True(t, strings.Contains(page, `<h1>Iceland</h1>`))
}
