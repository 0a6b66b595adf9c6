package handler

import (
	"net/http"

	"github.com/Enochthedev/mintro-sub001/internal/apierror"
	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/middleware"
	"github.com/Enochthedev/mintro-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// Update edits invoice fields, including the manual cost override.
func (h *InvoicesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidArgument("invalid invoice id"))
		return
	}
	var req dto.UpdateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Profit reconciles one invoice's profitability.
func (h *InvoicesHandler) Profit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidArgument("invalid invoice id"))
		return
	}
	resp, err := h.svc.Profit(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProfitSummary reconciles profitability across all of the caller's invoices.
func (h *InvoicesHandler) ProfitSummary(c *gin.Context) {
	resp, err := h.svc.ProfitSummary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
