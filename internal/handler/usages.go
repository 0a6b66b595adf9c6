package handler

import (
	"net/http"

	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/middleware"
	"github.com/Enochthedev/mintro-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type UsagesHandler struct{ svc service.ConsumptionService }

func NewUsagesHandler(svc service.ConsumptionService) *UsagesHandler {
	return &UsagesHandler{svc: svc}
}

// Create records a single blueprint usage and deducts its component stock.
// A 201 may still carry warnings when a deduction could not be applied.
func (h *UsagesHandler) Create(c *gin.Context) {
	var req dto.CreateUsageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateUsage(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CreateBatch records several usages at once. Stock coverage is checked for
// the aggregate requirement of the whole batch before anything is written.
func (h *UsagesHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateUsageBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateUsageBatch(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
