package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/authoring"
	"github.com/photofolio/internal/cache"
	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/service"
)

type projectPayload struct {
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Description   string            `json:"description"`
	Location      string            `json:"location"`
	FeaturedImage string            `json:"featuredImage"`
	Kind          string            `json:"kind"`
	Published     bool              `json:"published"`
	Tags          []string          `json:"tags"`
	ContentBlocks content.BlockList `json:"contentBlocks"`
}

func (p projectPayload) toInput() service.ProjectInput {
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = authoring.Slugify(p.Title)
	}
	return service.ProjectInput{
		Title:         p.Title,
		Slug:          slug,
		Description:   p.Description,
		Location:      p.Location,
		FeaturedImage: p.FeaturedImage,
		Kind:          content.NormalizeKind(p.Kind),
		Published:     p.Published,
		Tags:          p.Tags,
	}
}

// projectUpdatePayload only carries the fields present in the request body.
type projectUpdatePayload struct {
	Title         *string            `json:"title"`
	Slug          *string            `json:"slug"`
	Description   *string            `json:"description"`
	Location      *string            `json:"location"`
	FeaturedImage *string            `json:"featuredImage"`
	Kind          *string            `json:"kind"`
	Published     *bool              `json:"published"`
	Tags          *[]string          `json:"tags"`
	ContentBlocks *content.BlockList `json:"contentBlocks"`
}

func (p projectUpdatePayload) toPatch() (service.ProjectPatch, *[]content.Block) {
	patch := service.ProjectPatch{
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		Location:      p.Location,
		FeaturedImage: p.FeaturedImage,
		Published:     p.Published,
		Tags:          p.Tags,
	}
	if p.Kind != nil {
		kind := content.NormalizeKind(*p.Kind)
		patch.Kind = &kind
	}
	var blocks *[]content.Block
	if p.ContentBlocks != nil {
		list := []content.Block(*p.ContentBlocks)
		blocks = &list
	}
	return patch, blocks
}

type projectLink struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

func linkTo(p content.Project) projectLink {
	return projectLink{ID: p.ID, Slug: p.Slug, Title: p.Title, Path: p.PublicPath()}
}

// ListProjects 返回项目列表。非管理员只能看到已发布的内容。
func (a *API) ListProjects(c *gin.Context) {
	filter := service.ListFilter{PublishedOnly: !a.isAdmin(c) || c.Query("published") == "true"}
	if raw := strings.TrimSpace(c.Query("kind")); raw != "" {
		kind, ok := content.ParseKind(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "unknown kind")
			return
		}
		filter.Kind = kind
	}

	projects, err := a.projects.ListProjects(c.Request.Context(), filter)
	if err != nil {
		a.internalError(c, "failed to list projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject 返回项目及其内容块。
func (a *API) GetProject(c *gin.Context) {
	project, err := a.projects.GetProjectWithBlocks(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.internalError(c, "failed to load project", err)
		return
	}
	if project == nil || (!project.Published && !a.isAdmin(c)) {
		respondError(c, http.StatusNotFound, "project not found")
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProject 创建项目，可同时写入内容块。
func (a *API) CreateProject(c *gin.Context) {
	var payload projectPayload
	if !bindJSON(c, &payload, "invalid project payload") {
		return
	}

	project, err := a.projects.CreateProjectWithBlocks(c.Request.Context(), payload.toInput(), payload.ContentBlocks)
	if err != nil {
		a.writeProjectError(c, "failed to create project", err)
		return
	}
	a.invalidateListings(c.Request.Context())
	c.JSON(http.StatusCreated, project)
}

// UpdateProject 局部更新元数据；提供 contentBlocks 时整体替换内容块。
func (a *API) UpdateProject(c *gin.Context) {
	var payload projectUpdatePayload
	if !bindJSON(c, &payload, "invalid project payload") {
		return
	}

	patch, blocks := payload.toPatch()
	project, err := a.projects.UpdateProject(c.Request.Context(), c.Param("id"), patch, blocks)
	if err != nil {
		a.writeProjectError(c, "failed to update project", err)
		return
	}
	a.invalidateListings(c.Request.Context())
	c.JSON(http.StatusOK, project)
}

// DeleteProject 删除项目及其内容块。
func (a *API) DeleteProject(c *gin.Context) {
	if err := a.projects.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		a.writeProjectError(c, "failed to delete project", err)
		return
	}
	a.invalidateListings(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ProjectsList 返回导航用的已发布项目与故事，结果会被缓存。
func (a *API) ProjectsList(c *gin.Context) {
	ctx := c.Request.Context()
	if raw, err := a.cache.Get(ctx, cache.KeyProjectsList); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		a.log.Warn("Listing cache read failed", "error", err)
	}

	projects, err := a.projects.ListProjects(ctx, service.ListFilter{PublishedOnly: true})
	if err != nil {
		a.internalError(c, "failed to list projects", err)
		return
	}

	listing := struct {
		Projects []projectLink `json:"projects"`
		Stories  []projectLink `json:"stories"`
	}{Projects: []projectLink{}, Stories: []projectLink{}}
	for _, p := range projects {
		link := linkTo(p)
		if content.NormalizeKind(string(p.Kind)) == content.KindStory {
			listing.Stories = append(listing.Stories, link)
		} else {
			listing.Projects = append(listing.Projects, link)
		}
	}

	raw, err := json.Marshal(listing)
	if err != nil {
		a.internalError(c, "failed to encode listing", err)
		return
	}
	if err := a.cache.Set(ctx, cache.KeyProjectsList, raw, a.listTTL); err != nil {
		a.log.Warn("Listing cache write failed", "error", err)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (a *API) writeProjectError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondError(c, http.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrSlugConflict):
		respondError(c, http.StatusConflict, "slug is already in use")
	case errors.Is(err, service.ErrDuplicateBlockID):
		respondError(c, http.StatusBadRequest, "block ids must be unique")
	default:
		a.internalError(c, message, err)
	}
}
