package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type iconicImagesPayload struct {
	Images []string `json:"images"`
}

// ListIconicImages returns the ordered homepage images.
func (a *API) ListIconicImages(c *gin.Context) {
	images, err := a.iconic.List(c.Request.Context())
	if err != nil {
		a.internalError(c, "failed to load iconic images", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// ReplaceIconicImages stores a new ordered list.
func (a *API) ReplaceIconicImages(c *gin.Context) {
	var payload iconicImagesPayload
	if !bindJSON(c, &payload, "invalid images payload") {
		return
	}
	images, err := a.iconic.Replace(c.Request.Context(), payload.Images)
	if err != nil {
		a.internalError(c, "failed to save iconic images", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}
