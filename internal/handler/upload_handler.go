package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/service"
	"github.com/photofolio/internal/storage"
)

// UploadImage 处理图片上传：projectId 优先，否则写入图库 folder。
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer src.Close()

	result, err := a.assets.Upload(c.Request.Context(), service.UploadInput{
		File:        src,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		ProjectID:   strings.TrimSpace(c.PostForm("projectId")),
		Folder:      strings.TrimSpace(c.PostForm("folder")),
		ImageName:   strings.TrimSpace(c.PostForm("imageName")),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAnImage):
			respondError(c, http.StatusBadRequest, "only image uploads are allowed")
		case errors.Is(err, service.ErrImageTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, "image is too large")
		default:
			a.internalError(c, "failed to store image", err)
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListGalleryImages 列出图库下的图片，最新的在前。
func (a *API) ListGalleryImages(c *gin.Context) {
	images, err := a.assets.ListGallery(c.Request.Context(), c.Query("folder"))
	if err != nil {
		a.internalError(c, "failed to list gallery images", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// DeleteImage 删除图片；仍被项目引用时返回 409 和引用列表。
func (a *API) DeleteImage(c *gin.Context) {
	url, ok := requiredQuery(c, "url")
	if !ok {
		return
	}

	err := a.assets.Delete(c.Request.Context(), url)
	var inUse *service.ImageInUseError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.As(err, &inUse):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "image is used by other projects",
			"projects": projectLinks(inUse.Projects),
		})
	case errors.Is(err, storage.ErrObjectNotFound):
		respondError(c, http.StatusNotFound, "image not found")
	case errors.Is(err, service.ErrImageURL):
		respondError(c, http.StatusBadRequest, "url is required")
	default:
		a.internalError(c, "failed to delete image", err)
	}
}

// ImageUsage 查询图片是否被引用。
func (a *API) ImageUsage(c *gin.Context) {
	url, ok := requiredQuery(c, "url")
	if !ok {
		return
	}
	usage, err := a.assets.Usage(c.Request.Context(), url)
	if err != nil {
		a.internalError(c, "failed to check image usage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":      usage.URL,
		"inUse":    usage.InUse,
		"projects": projectLinks(usage.Projects),
	})
}

func projectLinks(projects []content.Project) []projectLink {
	links := make([]projectLink, 0, len(projects))
	for _, p := range projects {
		links = append(links, linkTo(p))
	}
	return links
}
