package http

import (
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// windowParam reads :id, writing 400 and returning false when malformed
func windowParam(c *gin.Context) (int, bool) {
	windowID, err := utils.ParseWindowID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return 0, false
	}
	return windowID, true
}
