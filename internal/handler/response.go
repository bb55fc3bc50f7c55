package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/listing-studio/internal/ai"
	"github.com/shinyyama/listing-studio/internal/mask"
	"github.com/shinyyama/listing-studio/internal/reqctx"
	"github.com/shinyyama/listing-studio/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// writeServiceError maps service and client errors onto the error envelope.
func writeServiceError(c echo.Context, err error) error {
	status, code, msg := http.StatusInternalServerError, "internal_error", "internal error"
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, code, msg = http.StatusNotFound, "not_found", "session not found"
	case errors.Is(err, service.ErrRequestInFlight):
		status, code, msg = http.StatusConflict, "busy", err.Error()
	case errors.Is(err, ai.ErrMissingAPIKey):
		status, code, msg = http.StatusInternalServerError, "missing_credential", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, code, msg = http.StatusGatewayTimeout, "upstream_timeout", "gemini did not respond in time"
	case errors.Is(err, service.ErrUpstream):
		status, code, msg = http.StatusBadGateway, "upstream_error", err.Error()
	case errors.Is(err, service.ErrNoMask):
		status, code, msg = http.StatusPreconditionFailed, "mask_empty", "draw on the image before applying an edit"
	case errors.Is(err, service.ErrPromptRequired):
		status, code, msg = http.StatusBadRequest, "prompt_required", "describe what should replace the masked area"
	case errors.Is(err, service.ErrInvalidImage):
		status, code, msg = http.StatusBadRequest, "invalid_image", err.Error()
	case errors.Is(err, mask.ErrInvalidMask):
		status, code, msg = http.StatusBadRequest, "invalid_mask", err.Error()
	case errors.Is(err, service.ErrInvalidInput):
		status, code, msg = http.StatusBadRequest, "bad_request", err.Error()
	default:
		log.Printf("[http] rid=%s path=%s stage=unhandled err=%v", reqctx.RID(c.Request().Context()), c.Path(), err)
	}
	return c.JSON(status, NewErrorResponse(code, msg))
}
