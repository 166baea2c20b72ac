package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/authoring"
	"github.com/photofolio/internal/content"
)

type addBlockPayload struct {
	Type string `json:"type"`
	At   *int   `json:"at"`
}

type moveBlockPayload struct {
	Direction string `json:"direction"`
	To        *int   `json:"to"`
}

type galleryImagePayload struct {
	Src     string `json:"src" binding:"required"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type moveGalleryImagePayload struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// loadEditor opens the project named by :id in an editor. It writes the
// response itself and returns nil when the project cannot be edited.
func (a *API) loadEditor(c *gin.Context) *authoring.Editor {
	project, err := a.projects.GetProjectWithBlocks(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.internalError(c, "failed to load project", err)
		return nil
	}
	if project == nil {
		respondError(c, http.StatusNotFound, "project not found")
		return nil
	}
	return authoring.EditProject(*project)
}

func (a *API) saveEditor(c *gin.Context, editor *authoring.Editor, status int, extra gin.H) {
	project, err := editor.SaveBlocks(c.Request.Context(), a.projects)
	if err != nil {
		a.writeProjectError(c, "failed to save blocks", err)
		return
	}
	a.invalidateListings(c.Request.Context())
	body := gin.H{"project": project}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// AddBlock 在指定位置插入默认内容块。
func (a *API) AddBlock(c *gin.Context) {
	var payload addBlockPayload
	if !bindJSON(c, &payload, "invalid block payload") {
		return
	}
	blockType := content.BlockType(strings.TrimSpace(payload.Type))
	if !blockType.IsKnown() {
		respondError(c, http.StatusBadRequest, "unknown block type")
		return
	}

	editor := a.loadEditor(c)
	if editor == nil {
		return
	}
	at := -1
	if payload.At != nil {
		at = *payload.At
	}
	block := editor.AddBlock(blockType, at)
	a.saveEditor(c, editor, http.StatusCreated, gin.H{"block": block, "activeId": editor.ActiveID()})
}

// UpdateBlock 合并同类型字段补丁，id、类型与顺序保持不变。
func (a *API) UpdateBlock(c *gin.Context) {
	patch, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil || len(strings.TrimSpace(string(patch))) == 0 {
		respondError(c, http.StatusBadRequest, "invalid block patch")
		return
	}

	editor := a.loadEditor(c)
	if editor == nil {
		return
	}
	block, err := editor.UpdateBlock(c.Param("blockId"), patch)
	if err != nil {
		a.writeBlockError(c, err)
		return
	}
	a.saveEditor(c, editor, http.StatusOK, gin.H{"block": block})
}

// DeleteBlock 删除内容块并重排顺序。
func (a *API) DeleteBlock(c *gin.Context) {
	editor := a.loadEditor(c)
	if editor == nil {
		return
	}
	if err := editor.RemoveBlock(c.Param("blockId")); err != nil {
		a.writeBlockError(c, err)
		return
	}
	a.saveEditor(c, editor, http.StatusOK, nil)
}

// MoveBlock 上下移动或拖拽到指定位置。
func (a *API) MoveBlock(c *gin.Context) {
	var payload moveBlockPayload
	if !bindJSON(c, &payload, "invalid move payload") {
		return
	}

	editor := a.loadEditor(c)
	if editor == nil {
		return
	}
	id := c.Param("blockId")
	var err error
	switch {
	case payload.To != nil:
		err = editor.MoveBlock(id, *payload.To)
	case payload.Direction == "up":
		err = editor.MoveBlockUp(id)
	case payload.Direction == "down":
		err = editor.MoveBlockDown(id)
	default:
		respondError(c, http.StatusBadRequest, "direction must be up or down, or give a target position")
		return
	}
	if err != nil {
		a.writeBlockError(c, err)
		return
	}
	a.saveEditor(c, editor, http.StatusOK, nil)
}

// AddGalleryImage 向图库块末尾追加一张图片。
func (a *API) AddGalleryImage(c *gin.Context) {
	var payload galleryImagePayload
	if !bindJSON(c, &payload, "src is required") {
		return
	}
	a.editGallery(c, http.StatusCreated, func(editor *authoring.Editor, blockID string) error {
		return editor.AddGalleryImage(blockID, content.GalleryImage{
			Src:     strings.TrimSpace(payload.Src),
			Alt:     payload.Alt,
			Caption: payload.Caption,
		})
	})
}

// RemoveGalleryImage 删除图库块中指定位置的图片。
func (a *API) RemoveGalleryImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "index must be a number")
		return
	}
	a.editGallery(c, http.StatusOK, func(editor *authoring.Editor, blockID string) error {
		return editor.RemoveGalleryImage(blockID, index)
	})
}

// MoveGalleryImage 调整图库块内图片的顺序。
func (a *API) MoveGalleryImage(c *gin.Context) {
	var payload moveGalleryImagePayload
	if !bindJSON(c, &payload, "from and to are required") {
		return
	}
	a.editGallery(c, http.StatusOK, func(editor *authoring.Editor, blockID string) error {
		return editor.MoveGalleryImage(blockID, *payload.From, *payload.To)
	})
}

func (a *API) editGallery(c *gin.Context, status int, edit func(*authoring.Editor, string) error) {
	editor := a.loadEditor(c)
	if editor == nil {
		return
	}
	blockID := c.Param("blockId")
	if err := edit(editor, blockID); err != nil {
		a.writeBlockError(c, err)
		return
	}
	block, _ := editor.Block(blockID)
	a.saveEditor(c, editor, status, gin.H{"block": block})
}

func (a *API) writeBlockError(c *gin.Context, err error) {
	if errors.Is(err, authoring.ErrBlockNotFound) {
		respondError(c, http.StatusNotFound, "block not found")
		return
	}
	respondError(c, http.StatusBadRequest, err.Error())
}
