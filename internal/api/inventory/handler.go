package inventoryapi

import (
	"net/http"

	"asset-manager-api/internal/api/respond"
	"asset-manager-api/internal/app/http/middleware"
	"asset-manager-api/internal/domain/inventory"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the hardware routes that the subscription guards protect.
type Handler struct {
	store  inventory.Store
	logger *zap.Logger
}

func NewHandler(store inventory.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

func (h *Handler) List(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	items, err := h.store.ListHardware(c.Request.Context(), org.ID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hardware": items})
}

type createHardwareRequest struct {
	Name         string `json:"name" binding:"required"`
	Type         string `json:"type"`
	SerialNumber string `json:"serialNumber"`
	MACAddress   string `json:"macAddress"`
}

func (h *Handler) Create(c *gin.Context) {
	var body createHardwareRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Hardware name is required")
		return
	}

	org := middleware.CurrentOrganization(c)
	item := inventory.Hardware{
		OrganizationID: org.ID,
		Name:           body.Name,
		Type:           body.Type,
		SerialNumber:   body.SerialNumber,
		MACAddress:     body.MACAddress,
	}
	if err := h.store.CreateHardware(c.Request.Context(), &item); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "hardware": item})
}

func (h *Handler) Delete(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	if err := h.store.DeleteHardware(c.Request.Context(), org.ID, c.Param("id")); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Summary breaks hardware down by type. It is gated on advanced analytics.
func (h *Handler) Summary(c *gin.Context) {
	org := middleware.CurrentOrganization(c)
	items, err := h.store.ListHardware(c.Request.Context(), org.ID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   len(items),
		"byType":  inventory.SummarizeByType(items),
	})
}
