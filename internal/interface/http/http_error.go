package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faqbot/internal/domain/faq"
	apperrors "github.com/yanqian/faqbot/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// domainStatus maps apperrors codes raised by the services to HTTP statuses.
var domainStatus = map[string]int{
	"invalid_input":              http.StatusBadRequest,
	"invalid_credentials":        http.StatusUnauthorized,
	"invalid_token":              http.StatusForbidden,
	"admin_disabled":             http.StatusNotFound,
	faq.CodeCatalogUnavailable:   http.StatusBadGateway,
	faq.CodeEmbeddingUnavailable: http.StatusBadGateway,
	faq.CodeEmbeddingFailed:      http.StatusBadGateway,
	faq.CodeCacheFailed:          http.StatusBadGateway,
	faq.CodeTimeout:              http.StatusGatewayTimeout,
}

// publicCode renames service codes whose wire name differs.
var publicCode = map[string]string{
	"invalid_input": "invalid_request",
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		status, ok := domainStatus[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if renamed, ok := publicCode[code]; ok {
			code = renamed
		}
		return &HTTPError{Status: status, Code: code, Message: appErr.Message, Err: err}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
