package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/photofolio/internal/content"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"slidesJSON": slidesJSON,
	"blockType":  func(s Section) string { return string(s.Type) },
}).ParseFS(templateFS, "templates/*.html"))

// Page renders the public HTML of p using the template for its kind.
func Page(p content.Project) (string, error) {
	name := "project.html"
	if p.Kind == content.KindStory {
		name = "story.html"
	}
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, Story(p)); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func slidesJSON(slides []Slide) (template.JS, error) {
	raw, err := json.Marshal(slides)
	if err != nil {
		return "", err
	}
	return template.JS(raw), nil
}
