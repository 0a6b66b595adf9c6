package handler

import (
	"net/http"

	"github.com/Enochthedev/mintro-sub001/internal/apierror"
	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/middleware"
	"github.com/Enochthedev/mintro-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Adjust applies a manual stock movement (purchase, waste, correction).
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustInventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alerts lists items at or below their minimum quantity.
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.LowStockAlerts(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// Movements lists the movement ledger, filtered and paginated.
func (h *InventoryHandler) Movements(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidArgument("invalid query: %s", err.Error()))
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), middleware.GetUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
