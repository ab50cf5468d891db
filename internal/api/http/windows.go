package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/WebDesk/backend/internal/app"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// OpenWindow opens an application window, or focuses the existing one for
// single-instance apps
func (h *Handlers) OpenWindow(c *gin.Context) {
	var req types.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateAppID(req.AppID); err != nil {
		badRequest(c, err)
		return
	}
	h.apply(c, app.Intent{Kind: app.IntentOpen, AppID: req.AppID})
}

// MoveWindow sets a window's position
func (h *Handlers) MoveWindow(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}

	var req types.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePosition(*req.X, *req.Y); err != nil {
		badRequest(c, err)
		return
	}

	h.apply(c, app.Intent{Kind: app.IntentMove, WindowID: windowID, X: *req.X, Y: *req.Y})
}

// intent builds a handler for an intent addressed by the :id parameter, or
// by no id at all for desktop-wide intents
func (h *Handlers) intent(kind app.IntentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := app.Intent{Kind: kind}
		if c.Param("id") != "" {
			windowID, ok := windowParam(c)
			if !ok {
				return
			}
			in.WindowID = windowID
		}
		h.apply(c, in)
	}
}

func (h *Handlers) apply(c *gin.Context, in app.Intent) {
	res, err := h.desktop.Apply(in)
	switch {
	case errors.Is(err, app.ErrNotAccepting):
		c.JSON(http.StatusConflict, gin.H{
			"error": app.ErrNotAccepting.Error(),
			"phase": h.desktop.Session.Phase(),
		})
		return
	case err != nil:
		badRequest(c, err)
		return
	}

	body := gin.H{"success": res.Success}
	if c.Param("id") != "" {
		body["window_id"] = in.WindowID
	}
	if in.AppID != "" {
		body["app_id"] = in.AppID
	}
	if res.Window != nil {
		body["window"] = res.Window
	}
	if in.Kind == app.IntentShutdown {
		body["closing"] = res.Affected
	}
	if in.Kind == app.IntentToggleStartMenu {
		body["shell"] = h.desktop.Shell.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}
