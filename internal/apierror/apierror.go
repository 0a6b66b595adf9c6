// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
//
// Service-layer errors carry a machine-readable Code plus structured details
// naming the violated constraint and the concrete values involved, so a caller
// can self-correct without additional lookups.
package apierror

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// Code identifies the error class; it maps 1:1 to an HTTP status.
type Code string

const (
	CodeUnauthenticated       Code = "unauthenticated"
	CodeInvalidArgument       Code = "invalid_argument"
	CodeNotFound              Code = "not_found"
	CodeInsufficientInventory Code = "insufficient_inventory"
	CodeOverAllocation        Code = "over_allocation"
	CodeConflict              Code = "conflict"
	CodeInternal              Code = "internal"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code    Code        `json:"code"`
	Detail  string      `json:"detail"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string { return string(e.Code) + ": " + e.Detail }

// HTTPStatus returns the HTTP status code for the error class.
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientInventory, CodeOverAllocation, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(msg string) *APIError {
	return &APIError{Code: CodeInternal, Detail: msg}
}

func Unauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Detail: msg}
}

func InvalidArgument(format string, args ...interface{}) *APIError {
	return &APIError{Code: CodeInvalidArgument, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *APIError {
	return &APIError{Code: CodeNotFound, Detail: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *APIError {
	return &APIError{Code: CodeConflict, Detail: fmt.Sprintf(format, args...)}
}

// NotFoundIDs reports referenced entities that do not exist or are not owned
// by the caller, listing every missing id.
func NotFoundIDs(entity string, ids []string) *APIError {
	return &APIError{
		Code:    CodeNotFound,
		Detail:  fmt.Sprintf("%s not found: %s", entity, strings.Join(ids, ", ")),
		Details: map[string]interface{}{"entity": entity, "missing_ids": ids},
	}
}

// Shortage is one row of the structured shortage report returned when an
// inventory batch would over-draw stock.
type Shortage struct {
	InventoryItemID string          `json:"inventory_item_id"`
	ItemName        string          `json:"item_name"`
	Current         decimal.Decimal `json:"current_quantity"`
	Required        decimal.Decimal `json:"required_quantity"`
	Shortage        decimal.Decimal `json:"shortage"`
}

// InsufficientInventory rejects a whole consumption batch: no writes were
// performed and every short item is listed.
func InsufficientInventory(shortages []Shortage) *APIError {
	names := make([]string, 0, len(shortages))
	for _, s := range shortages {
		names = append(names, fmt.Sprintf("%s (short %s)", s.ItemName, s.Shortage))
	}
	return &APIError{
		Code:    CodeInsufficientInventory,
		Detail:  "insufficient inventory for batch: " + strings.Join(names, ", "),
		Details: map[string]interface{}{"shortages": shortages},
	}
}

// OverAllocation rejects an allocation that would push the sum of a
// transaction's allocations past its absolute amount.
func OverAllocation(transactionID string, txAmount, allocated, requested decimal.Decimal) *APIError {
	excess := allocated.Add(requested).Sub(txAmount)
	return &APIError{
		Code: CodeOverAllocation,
		Detail: fmt.Sprintf(
			"allocation of %s exceeds transaction amount %s (already allocated %s, excess %s)",
			requested, txAmount, allocated, excess),
		Details: map[string]interface{}{
			"transaction_id":     transactionID,
			"transaction_amount": txAmount,
			"already_allocated":  allocated,
			"requested":          requested,
			"excess":             excess,
		},
	}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   Code              `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeInvalidArgument, Detail: "validation failed", Fields: fields}
}
