package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/listing-studio/internal/ai"
)

// Enhance overlays the request body onto the neutral settings and runs whole-image enhancement.
func (h *SessionHandler) Enhance(c echo.Context) error {
	settings := ai.DefaultEnhancementSettings()
	if err := c.Bind(&settings); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	st, err := h.svc.Enhance(c.Request().Context(), c.Param("id"), settings)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Edit runs a masked edit; strength defaults to 100 when omitted.
func (h *SessionHandler) Edit(c echo.Context) error {
	req := ai.BrushEditRequest{Strength: 100}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	st, err := h.svc.MaskedEdit(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
