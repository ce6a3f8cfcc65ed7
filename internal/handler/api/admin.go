package api

import (
	"net/http"

	resdto "parkly/internal/handler/dto/response"
	"parkly/internal/handler/httperr"
	"parkly/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	restorations commands.RestorationCommands
}

func NewAdminHandler(restorations commands.RestorationCommands) *AdminHandler {
	return &AdminHandler{restorations: restorations}
}

// @Summary Run restoration sweep
// @Description Reverse every temporary override whose week has elapsed
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/restorations [post]
func (h *AdminHandler) RunRestorations(c *gin.Context) {
	result, err := h.restorations.RestoreExpired(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Restoration sweep failed", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSweepResult(result))
}
