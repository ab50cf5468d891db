package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/app"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/shell"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/sound"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Options holds the optional collaborators of the handlers
type Options struct {
	Sounds   *sound.Bank
	Metrics  *monitoring.Metrics
	Breaker  *resilience.Breaker
	Location *time.Location
}

// Handlers contains all HTTP handlers
type Handlers struct {
	desktop *app.Desktop
	opts    Options
	hasher  *utils.Hasher
	logger  *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(desktop *app.Desktop, opts Options, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handlers{desktop: desktop, opts: opts, hasher: utils.DefaultHasher(), logger: logger}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/desktop", h.Desktop)
	r.GET("/apps", h.ListApps)
	r.GET("/clock", h.Clock)

	r.GET("/session", h.Session)
	r.POST("/session/shutdown", h.Shutdown)

	r.POST("/start-menu/toggle", h.intent(app.IntentToggleStartMenu))
	r.PUT("/wallpaper", h.SetWallpaper)

	r.POST("/windows", h.OpenWindow)
	r.POST("/windows/:id/move", h.MoveWindow)
	for _, kind := range []app.IntentKind{
		app.IntentFocus, app.IntentMinimize, app.IntentMinimized,
		app.IntentRestore, app.IntentClose, app.IntentClosed,
	} {
		r.POST("/windows/:id/"+string(kind), h.intent(kind))
	}

	r.GET("/windows/:id/notepad", h.GetNotepad)
	r.PUT("/windows/:id/notepad", h.PutNotepad)
	r.GET("/windows/:id/about", h.GetAbout)
	r.GET("/windows/:id/wallpapers", h.ListWallpapers)
	r.POST("/windows/:id/wallpapers/:index", h.ChooseWallpaper)
	r.GET("/windows/:id/chat", h.GetChat)
	r.POST("/windows/:id/chat", h.PostChat)

	r.GET("/sounds/:cue", h.GetSound)
	r.POST("/logs", h.StreamLogs)

	if h.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
		r.GET("/metrics/json", h.MetricsJSON)
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "WebDesk",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	phase := h.desktop.Session.Phase()
	status := "healthy"
	if phase == types.PhaseShutdownPending || phase == types.PhaseShutdownFinal {
		status = "shutting_down"
	}

	body := gin.H{
		"status":  status,
		"phase":   phase,
		"windows": h.desktop.Windows.Stats(),
		"apps":    h.desktop.Apps.Len(),
	}
	if h.opts.Breaker != nil {
		body["assistant"] = gin.H{"breaker": h.opts.Breaker.State().String()}
	}
	c.JSON(http.StatusOK, body)
}

// Desktop returns the full snapshot
func (h *Handlers) Desktop(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktop.Snapshot())
}

// ListApps returns the catalog in start menu order
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"apps": h.desktop.Catalog.List()})
}

// Clock returns the taskbar clock reading
func (h *Handlers) Clock(c *gin.Context) {
	c.JSON(http.StatusOK, clock.Read(h.desktop.Clock(), h.opts.Location))
}

// Session returns the phase snapshot
func (h *Handlers) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session":        h.desktop.Session.Snapshot(),
		"accepts_input":  h.desktop.Session.AcceptsInput(),
		"uptime_seconds": h.desktop.Session.Uptime().Seconds(),
	})
}

// Shutdown begins the shutdown sequence
func (h *Handlers) Shutdown(c *gin.Context) {
	h.apply(c, app.Intent{Kind: app.IntentShutdown})
}

// SetWallpaper replaces the desktop background
func (h *Handlers) SetWallpaper(c *gin.Context) {
	var req types.WallpaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.accepting(c) {
		return
	}

	if err := h.desktop.Shell.SetWallpaper(req.URL); err != nil {
		if errors.Is(err, shell.ErrInvalidWallpaper) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shell": h.desktop.Shell.Snapshot()})
}

// accepting writes 409 and returns false outside the running phase
func (h *Handlers) accepting(c *gin.Context) bool {
	if h.desktop.Session.AcceptsInput() {
		return true
	}
	c.JSON(http.StatusConflict, gin.H{
		"error": app.ErrNotAccepting.Error(),
		"phase": h.desktop.Session.Phase(),
	})
	return false
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
