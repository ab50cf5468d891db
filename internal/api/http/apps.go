package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/apps"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// appError maps host lookup failures. Reads answer 404; mutations answer
// success=false like the window intents.
func appError(c *gin.Context, windowID int, err error) {
	switch {
	case errors.Is(err, apps.ErrNoSuchWindow), errors.Is(err, apps.ErrWrongKind):
		if c.Request.Method == http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "window_id": windowID, "error": err.Error()})
	case errors.Is(err, apps.ErrNoSuchChoice):
		badRequest(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetNotepad returns a notepad's text
func (h *Handlers) GetNotepad(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	pad, err := h.desktop.Apps.Notepad(windowID)
	if err != nil {
		appError(c, windowID, err)
		return
	}
	c.JSON(http.StatusOK, pad.Snapshot())
}

// PutNotepad replaces a notepad's text
func (h *Handlers) PutNotepad(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	var req types.NotepadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateText(req.Text, utils.MaxNotepadBytes); err != nil {
		badRequest(c, err)
		return
	}
	if !h.accepting(c) {
		return
	}

	pad, err := h.desktop.Apps.Notepad(windowID)
	if err != nil {
		appError(c, windowID, err)
		return
	}
	pad.SetText(req.Text)
	c.JSON(http.StatusOK, gin.H{"success": true, "notepad": pad.Snapshot()})
}

// GetAbout returns the About panel content
func (h *Handlers) GetAbout(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	about, err := h.desktop.Apps.About(windowID)
	if err != nil {
		appError(c, windowID, err)
		return
	}
	c.JSON(http.StatusOK, about.Info())
}

// ListWallpapers returns the picker's choices
func (h *Handlers) ListWallpapers(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	picker, err := h.desktop.Apps.Wallpapers(windowID)
	if err != nil {
		appError(c, windowID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallpapers": picker.List()})
}

// ChooseWallpaper applies one of the picker's choices
func (h *Handlers) ChooseWallpaper(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, errors.New("wallpaper index must be an integer"))
		return
	}
	if !h.accepting(c) {
		return
	}

	picker, err := h.desktop.Apps.Wallpapers(windowID)
	if err != nil {
		appError(c, windowID, err)
		return
	}
	if err := picker.Choose(index); err != nil {
		appError(c, windowID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wallpapers": picker.List()})
}

// GetChat returns a conversation
func (h *Handlers) GetChat(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	chat, err := h.desktop.Apps.Chat(windowID)
	if err != nil {
		appError(c, windowID, err)
		return
	}
	c.JSON(http.StatusOK, chat.Snapshot())
}

// PostChat sends a message. The reply streams over the WebSocket; poll
// GET /windows/:id/chat without one.
func (h *Handlers) PostChat(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateText(req.Message, utils.MaxPromptBytes); err != nil {
		badRequest(c, err)
		return
	}
	if !h.accepting(c) {
		return
	}

	chat, err := h.desktop.Apps.Chat(windowID)
	if err != nil {
		appError(c, windowID, err)
		return
	}
	status := http.StatusOK
	sent := chat.Send(req.Message)
	if sent {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{"success": sent, "chat": chat.Snapshot()})
}
