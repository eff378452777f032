package api

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"kyuaar/internal/domain/packet"
	reqdto "kyuaar/internal/handler/dto/request"
	resdto "kyuaar/internal/handler/dto/response"
	"kyuaar/internal/handler/httperr"
	"kyuaar/internal/handler/middleware"
	"kyuaar/internal/usecase/commands"
	"kyuaar/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 100

// PacketHandler is the operator API over the packet lifecycle. Every route
// sits behind RequireAdmin; the actor recorded on activity events is the
// authenticated operator.
type PacketHandler struct {
	cmds    commands.PacketCommands
	packets queries.PacketQueries
}

func NewPacketHandler(cmds commands.PacketCommands, packets queries.PacketQueries) *PacketHandler {
	return &PacketHandler{cmds: cmds, packets: packets}
}

// @Summary Create packet
// @Tags packets
// @Accept json
// @Produce json
// @Param request body reqdto.CreatePacketRequest true "Packet parameters"
// @Success 201 {object} resdto.PacketResponse
// @Failure 400 {object} map[string]any
// @Security BearerAuth
// @Router /api/packets [post]
func (h *PacketHandler) Create(c *gin.Context) {
	var req reqdto.CreatePacketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	p, err := h.cmds.Create(c.Request.Context(), commands.CreatePacketInput{
		QRCount: req.QRCount,
		Price:   req.Price,
	}, actorFrom(c))
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}

	view, err := h.packets.GetByID(c.Request.Context(), p.ID().String())
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromPacketView(view))
}

// @Summary List packets
// @Tags packets
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {array} resdto.PacketResponse
// @Security BearerAuth
// @Router /api/packets [get]
func (h *PacketHandler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	views, err := h.packets.List(c.Request.Context(), limit)
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPacketList(views))
}

// @Summary Get packet
// @Tags packets
// @Produce json
// @Param id path string true "Packet ID"
// @Success 200 {object} resdto.PacketResponse
// @Failure 404 {object} map[string]any
// @Security BearerAuth
// @Router /api/packets/{id} [get]
func (h *PacketHandler) Get(c *gin.Context) {
	view, err := h.packets.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPacketView(view))
}

// @Summary Attach printed artifact
// @Description Records the rendered artifact and moves the packet out of setup
// @Tags packets
// @Accept json
// @Produce json
// @Param id path string true "Packet ID"
// @Param request body reqdto.AttachArtifactRequest true "Artifact"
// @Success 200 {object} resdto.PacketResponse
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Security BearerAuth
// @Router /api/packets/{id}/artifact [post]
func (h *PacketHandler) AttachArtifact(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req reqdto.AttachArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Content must be base64 encoded", nil)
		return
	}

	p, err := h.cmds.AttachArtifact(c.Request.Context(), id, commands.AttachArtifactInput{
		ArtifactURL:  req.ArtifactURL,
		Data:         data,
		DeclaredType: req.ContentType,
	}, actorFrom(c))
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	h.respondPacket(c, p)
}

// @Summary Mark packet sold
// @Tags packets
// @Accept json
// @Produce json
// @Param id path string true "Packet ID"
// @Param request body reqdto.SellPacketRequest true "Sale details"
// @Success 200 {object} resdto.PacketResponse
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Security BearerAuth
// @Router /api/packets/{id}/sell [post]
func (h *PacketHandler) Sell(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req reqdto.SellPacketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	p, err := h.cmds.MarkSold(c.Request.Context(), id, commands.SellPacketInput{
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		SalePrice:  req.SalePrice,
	}, actorFrom(c))
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	h.respondPacket(c, p)
}

// @Summary Reset packet
// @Description Returns a packet to its initial state, clearing sale and destination
// @Tags packets
// @Produce json
// @Param id path string true "Packet ID"
// @Success 200 {object} resdto.PacketResponse
// @Failure 404 {object} map[string]any
// @Security BearerAuth
// @Router /api/packets/{id}/reset [post]
func (h *PacketHandler) Reset(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	p, err := h.cmds.Reset(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	h.respondPacket(c, p)
}

// @Summary Delete packet
// @Description Soft delete; the identifiers stop resolving but the record is retained
// @Tags packets
// @Param id path string true "Packet ID"
// @Success 204
// @Failure 404 {object} map[string]any
// @Security BearerAuth
// @Router /api/packets/{id} [delete]
func (h *PacketHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.cmds.Tombstone(c.Request.Context(), id, actorFrom(c)); err != nil {
		abortDomainError(c, err, 0)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PacketHandler) pathID(c *gin.Context) (packet.PacketID, bool) {
	id, err := packet.ParsePacketID(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "This code is not recognized", nil)
		return "", false
	}
	return id, true
}

func (h *PacketHandler) respondPacket(c *gin.Context, p *packet.Packet) {
	view, err := h.packets.GetByID(c.Request.Context(), p.ID().String())
	if err != nil {
		abortDomainError(c, err, 0)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPacketView(view))
}

func actorFrom(c *gin.Context) string {
	if actor, ok := middleware.GetActor(c); ok {
		return actor
	}
	return "admin"
}
