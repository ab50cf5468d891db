package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// MetricsReport combines counters with the live desktop state
type MetricsReport struct {
	Timestamp time.Time                  `json:"timestamp"`
	Backend   monitoring.MetricsSnapshot `json:"backend"`
	Windows   types.WindowStats          `json:"windows"`
	Phase     types.Phase                `json:"phase"`
	Breaker   string                     `json:"breaker,omitempty"`
}

// MetricsJSON returns a JSON summary for dashboards that do not scrape
// Prometheus
func (h *Handlers) MetricsJSON(c *gin.Context) {
	report := MetricsReport{
		Timestamp: time.Now(),
		Backend:   h.opts.Metrics.Snapshot(),
		Windows:   h.desktop.Windows.Stats(),
		Phase:     h.desktop.Session.Phase(),
	}
	if h.opts.Breaker != nil {
		report.Breaker = h.opts.Breaker.State().String()
	}
	c.JSON(http.StatusOK, report)
}
