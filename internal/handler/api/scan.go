package api

import (
	"net/http"

	reqdto "kyuaar/internal/handler/dto/request"
	resdto "kyuaar/internal/handler/dto/response"
	"kyuaar/internal/handler/httperr"
	"kyuaar/internal/usecase/commands"
	"kyuaar/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// ScanHandler serves the customer-facing main-path namespace: the codes
// printed in the packet itself.
type ScanHandler struct {
	scans   queries.ScanQueries
	packets queries.PacketQueries
	cmds    commands.ConfigureCommands
}

func NewScanHandler(scans queries.ScanQueries, packets queries.PacketQueries, cmds commands.ConfigureCommands) *ScanHandler {
	return &ScanHandler{scans: scans, packets: packets, cmds: cmds}
}

// @Summary Resolve main-path scan
// @Description Resolve a scanned packet code: redirect when configured, otherwise a configuration prompt
// @Tags scan
// @Produce json
// @Param id path string true "Packet ID"
// @Success 302 "Redirect to the configured target"
// @Success 200 {object} resdto.ScanResponse
// @Failure 404 {object} resdto.ScanResponse
// @Router /p/{id} [get]
func (h *ScanHandler) Resolve(c *gin.Context) {
	res, err := h.scans.ResolveMain(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	switch res.Outcome {
	case queries.OutcomeRedirect:
		c.Redirect(http.StatusFound, res.Target)
	case queries.OutcomeNotReady:
		c.JSON(http.StatusNotFound, resdto.FromResolution(res))
	default:
		c.JSON(http.StatusOK, resdto.FromResolution(res))
	}
}

// @Summary Configure via main path
// @Description First-time destination submission from a customer scan; single shot
// @Tags scan
// @Accept json
// @Produce json
// @Param id path string true "Packet ID"
// @Param request body reqdto.ConfigureRequest true "Destination"
// @Success 200 {object} resdto.ConfigureResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /p/{id}/configure [post]
func (h *ScanHandler) Configure(c *gin.Context) {
	var req reqdto.ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	p, err := h.cmds.ConfigureByPacketID(c.Request.Context(), c.Param("id"), commands.ConfigureInput{
		Type:  req.Type,
		Phone: req.Phone,
		URL:   req.URL,
	})
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}

	c.JSON(http.StatusOK, resdto.ConfigureResponse{
		Message:        "Packet configured successfully",
		RedirectTarget: p.RedirectTarget().String(),
	})
}

// @Summary Packet status probe
// @Description Public state check used by the configuration page polling
// @Tags scan
// @Produce json
// @Param id path string true "Packet ID"
// @Success 200 {object} resdto.StatusResponse
// @Failure 404 {object} map[string]any
// @Router /p/{id}/status [get]
func (h *ScanHandler) Status(c *gin.Context) {
	view, err := h.packets.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, resdto.FromStatusView(view))
}
