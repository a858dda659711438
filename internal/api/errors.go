package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safar/shop-ledger/internal/database"
)

const (
	kindNotFound          = "not_found"
	kindInvalidArgument   = "invalid_argument"
	kindInsufficientStock = "insufficient_stock"
	kindTransactionFailed = "transaction_failed"
	kindInternal          = "internal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, database.ErrInvalidArgument):
		return http.StatusBadRequest, kindInvalidArgument
	case errors.Is(err, database.ErrInsufficientStock):
		return http.StatusConflict, kindInsufficientStock
	case errors.Is(err, database.ErrTransactionFailed):
		return http.StatusInternalServerError, kindTransactionFailed
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

// respondError writes err as JSON. Causes of 5xx responses are attached to
// the gin context for the request logger and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	status, kind := classify(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		message = "the operation could not be completed"
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: kind, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: kindInvalidArgument, Message: message})
}
