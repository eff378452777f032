package api

import (
	"net/http"

	reqdto "kyuaar/internal/handler/dto/request"
	resdto "kyuaar/internal/handler/dto/response"
	"kyuaar/internal/handler/httperr"
	"kyuaar/internal/pkg/config"
	"kyuaar/internal/usecase/commands"
	"kyuaar/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// ManageHandler serves the owner-facing management namespace. Scanning the
// secret identifier always surfaces the edit form, never the redirect.
type ManageHandler struct {
	scans queries.ScanQueries
	cmds  commands.ConfigureCommands
	cfg   config.RedirectConfig
}

func NewManageHandler(scans queries.ScanQueries, cmds commands.ConfigureCommands, cfg config.Config) *ManageHandler {
	return &ManageHandler{scans: scans, cmds: cmds, cfg: cfg.Redirect}
}

// @Summary Resolve management-path scan
// @Description Always returns a configuration form outcome, pre-filled when already configured
// @Tags manage
// @Produce json
// @Param id path string true "Management ID"
// @Success 200 {object} resdto.ScanResponse
// @Failure 404 {object} resdto.ScanResponse
// @Router /m/{id} [get]
func (h *ManageHandler) Resolve(c *gin.Context) {
	res, err := h.scans.ResolveManagement(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	if res.Outcome == queries.OutcomeNotReady {
		c.JSON(http.StatusNotFound, resdto.FromResolution(res))
		return
	}
	c.JSON(http.StatusOK, resdto.FromResolution(res))
}

// @Summary Configure via management path
// @Description Destination update through the secret identifier; rate limited per window
// @Tags manage
// @Accept json
// @Produce json
// @Param id path string true "Management ID"
// @Param request body reqdto.ConfigureRequest true "Destination"
// @Success 200 {object} resdto.ConfigureResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 429 {object} map[string]any
// @Router /m/{id}/configure [post]
func (h *ManageHandler) Configure(c *gin.Context) {
	var req reqdto.ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	p, err := h.cmds.ConfigureByManagementID(c.Request.Context(), c.Param("id"), commands.ConfigureInput{
		Type:  req.Type,
		Phone: req.Phone,
		URL:   req.URL,
	})
	if err != nil {
		abortDomainError(c, err, h.cfg.UpdateWindow)
		return
	}

	c.JSON(http.StatusOK, resdto.ConfigureResponse{
		Message:        "Packet updated successfully",
		RedirectTarget: p.RedirectTarget().String(),
	})
}
