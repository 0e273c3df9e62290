package apperrors

import (
	"github.com/gin-gonic/gin"

	"resumecraft_backend/internal/logger"
)

// ErrorResponse is the JSON envelope every failure resolves to.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// HandleError writes an AppError to the response. Raw upstream bodies stay in
// the server log; the client sees only code and message.
func HandleError(c *gin.Context, err *AppError) {
	if err.HTTPCode >= 500 {
		logger.CtxWithError(c.Request.Context(), "server error", err, "path", c.Request.URL.Path)
	}
	c.JSON(err.HTTPCode, ErrorResponse{Error: err})
}

// HandleAnyError maps arbitrary errors onto the taxonomy before responding.
func HandleAnyError(c *gin.Context, err error) {
	var appErr *AppError
	if As(err, &appErr) {
		HandleError(c, appErr)
		return
	}
	HandleError(c, InternalError(err))
}
