package http

import (
	"fmt"
	"net/http"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// GetSound serves a rendered cue clip
func (h *Handlers) GetSound(c *gin.Context) {
	cue := types.Cue(c.Param("cue"))
	if !cue.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown cue %q", cue)})
		return
	}
	if h.opts.Sounds == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sound is disabled"})
		return
	}

	clip, ok := h.opts.Sounds.Clip(cue)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no clip for cue %q", cue)})
		return
	}

	etag := h.hasher.ETag(string(cue), clip.Data)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=86400")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, clip.ContentType, clip.Data)
}
