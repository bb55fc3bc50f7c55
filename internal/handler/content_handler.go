package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/listing-studio/internal/ai"
	"github.com/shinyyama/listing-studio/internal/service"
)

type ContentHandler struct {
	svc service.ContentService
}

func NewContentHandler(svc service.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

type ContentRequest struct {
	Listing  ai.PropertyListingInput      `json:"listing"`
	Settings *ai.ContentGenerationSettings `json:"settings"`
	Profile  string                        `json:"profile"`
}

func (h *ContentHandler) Generate(c echo.Context) error {
	var req ContentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	content, err := h.svc.Generate(c.Request().Context(), req.Listing, req.Settings, req.Profile)
	if err != nil {
		return writeServiceError(c, err)
	}
	if content.Hashtags == nil {
		content.Hashtags = []string{}
	}
	return c.JSON(http.StatusOK, content)
}
