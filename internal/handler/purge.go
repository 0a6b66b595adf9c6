package handler

import (
	"net/http"

	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/middleware"
	"github.com/Enochthedev/mintro-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type PurgeHandler struct{ svc service.PurgeService }

func NewPurgeHandler(svc service.PurgeService) *PurgeHandler {
	return &PurgeHandler{svc: svc}
}

// DeleteAllInvoices removes every invoice of the caller, with dependents.
// Without confirm=true it only returns a preview and deletes nothing.
func (h *PurgeHandler) DeleteAllInvoices(c *gin.Context) {
	var req dto.PurgeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DeleteAllInvoices(c.Request.Context(), middleware.GetUserID(c), req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteAllUsages removes every blueprint usage of the caller, with their
// expense allocations. Deducted stock is not restored.
func (h *PurgeHandler) DeleteAllUsages(c *gin.Context) {
	var req dto.PurgeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DeleteAllUsages(c.Request.Context(), middleware.GetUserID(c), req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
