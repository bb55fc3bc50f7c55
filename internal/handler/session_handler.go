package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/listing-studio/internal/mask"
	"github.com/shinyyama/listing-studio/internal/service"
)

var errTooLarge = errors.New("file is too large")

func errMissingField(field string) error {
	return fmt.Errorf("%s file is required", field)
}

type SessionHandler struct {
	svc      service.EditorService
	maxBytes int64
}

func NewSessionHandler(svc service.EditorService, maxBytes int64) *SessionHandler {
	return &SessionHandler{svc: svc, maxBytes: maxBytes}
}

type pointerRequest struct {
	Events []mask.PointerInput `json:"events"`
}

// Create starts an editing session from a multipart "image" upload.
func (h *SessionHandler) Create(c echo.Context) error {
	data, err := h.readUpload(c, "image")
	if errors.Is(err, errTooLarge) {
		return c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("too_large", err.Error()))
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	st, err := h.svc.CreateSession(c.Request().Context(), data)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *SessionHandler) Get(c echo.Context) error {
	st, err := h.svc.State(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SessionHandler) SetBrush(c echo.Context) error {
	b := mask.DefaultBrush()
	if err := c.Bind(&b); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	st, err := h.svc.SetBrush(c.Request().Context(), c.Param("id"), b)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SessionHandler) Pointer(c echo.Context) error {
	var req pointerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if len(req.Events) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "events are required"))
	}
	st, err := h.svc.ApplyPointer(c.Request().Context(), c.Param("id"), req.Events)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SessionHandler) Undo(c echo.Context) error {
	st, err := h.svc.Undo(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SessionHandler) Clear(c echo.Context) error {
	st, err := h.svc.Clear(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SessionHandler) GetMask(c echo.Context) error {
	data, err := h.svc.ExportMask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// PutMask accepts a PNG either as a multipart "mask" field or as the raw body.
func (h *SessionHandler) PutMask(c echo.Context) error {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		data, err = h.readUpload(c, "mask")
	} else {
		data, err = io.ReadAll(io.LimitReader(c.Request().Body, h.limit()))
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	st, err := h.svc.ImportMask(c.Request().Context(), c.Param("id"), data)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// GetImage returns the working image, or the upload with ?variant=original.
func (h *SessionHandler) GetImage(c echo.Context) error {
	original := c.QueryParam("variant") == "original"
	img, err := h.svc.Image(c.Request().Context(), c.Param("id"), original)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Blob(http.StatusOK, img.MimeType, img.Data)
}

func (h *SessionHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) limit() int64 {
	if h.maxBytes <= 0 {
		return 15 << 20
	}
	return h.maxBytes
}

func (h *SessionHandler) readUpload(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, errMissingField(field)
	}
	if fh.Size > h.limit() {
		return nil, errTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, h.limit()))
}
