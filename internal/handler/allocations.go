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

type AllocationsHandler struct{ svc service.AllocationService }

func NewAllocationsHandler(svc service.AllocationService) *AllocationsHandler {
	return &AllocationsHandler{svc: svc}
}

// Link creates or replaces the allocation between a transaction and an invoice.
func (h *AllocationsHandler) Link(c *gin.Context) {
	var req dto.LinkTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.LinkToInvoice(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Unlink removes an allocation by id or by (transaction, invoice) pair.
func (h *AllocationsHandler) Unlink(c *gin.Context) {
	var req dto.UnlinkTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Unlink(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UnlinkByID removes an allocation addressed by its path id.
func (h *AllocationsHandler) UnlinkByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidArgument("invalid allocation id"))
		return
	}
	resp, err := h.svc.Unlink(c.Request.Context(), middleware.GetUserID(c), dto.UnlinkTransactionRequest{
		AllocationID: id.String(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LinkExpense attaches a transaction to one cost bucket of a blueprint usage.
func (h *AllocationsHandler) LinkExpense(c *gin.Context) {
	var req dto.LinkExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.LinkToUsage(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UnlinkExpense removes an expense allocation and recomputes the usage costs.
func (h *AllocationsHandler) UnlinkExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidArgument("invalid expense allocation id"))
		return
	}
	resp, err := h.svc.UnlinkFromUsage(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
