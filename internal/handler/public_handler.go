package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/render"
)

const notFoundPage = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Not found</title></head><body><h1>Not found</h1></body></html>`

// ShowProject renders a published project page.
func (a *API) ShowProject(c *gin.Context) {
	a.showPage(c, content.KindProject)
}

// ShowStory renders a published story page.
func (a *API) ShowStory(c *gin.Context) {
	a.showPage(c, content.KindStory)
}

func (a *API) showPage(c *gin.Context, kind content.Kind) {
	project, err := a.projects.GetProjectBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		a.log.Error("Failed to load page", "slug", c.Param("slug"), "error", err)
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("internal error"))
		return
	}
	if project == nil || !project.Published || content.NormalizeKind(string(project.Kind)) != kind {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))
		return
	}

	page, err := render.Page(*project)
	if err != nil {
		a.log.Error("Failed to render page", "slug", project.Slug, "error", err)
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("internal error"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// Lightbox returns the lightbox sequence of a published project as JSON.
func (a *API) Lightbox(c *gin.Context) {
	project, err := a.projects.GetProjectWithBlocks(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.internalError(c, "failed to load project", err)
		return
	}
	if project == nil || (!project.Published && !a.isAdmin(c)) {
		respondError(c, http.StatusNotFound, "project not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slides": render.Lightbox(*project)})
}
