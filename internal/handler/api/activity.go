package api

import (
	"net/http"
	"strconv"

	resdto "kyuaar/internal/handler/dto/response"
	"kyuaar/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activities queries.ActivityQueries
}

func NewActivityHandler(activities queries.ActivityQueries) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// @Summary Recent activity
// @Description Most recent lifecycle events across all packets, newest first
// @Tags activities
// @Produce json
// @Param limit query int false "Max events"
// @Success 200 {array} resdto.ActivityResponse
// @Security BearerAuth
// @Router /api/activities [get]
func (h *ActivityHandler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	views, err := h.activities.Recent(c.Request.Context(), limit)
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, resdto.FromActivityList(views))
}
