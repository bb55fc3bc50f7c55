package handler

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/listing-studio/internal/ai"
	"github.com/shinyyama/listing-studio/internal/mask"
	"github.com/shinyyama/listing-studio/internal/repository"
	"github.com/shinyyama/listing-studio/internal/service"
)

type fakeAI struct {
	image   []byte
	err     error
	content *ai.ListingContent
}

func (f *fakeAI) EnhanceImage(ctx context.Context, req ai.EnhanceRequest) (*ai.ImageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ai.ImageResult{Image: f.image, MimeType: "image/png"}, nil
}

func (f *fakeAI) EditWithMask(ctx context.Context, req ai.MaskEditRequest) (*ai.ImageResult, error) {
	return f.EnhanceImage(ctx, ai.EnhanceRequest{})
}

func (f *fakeAI) GenerateListingContent(ctx context.Context, req ai.ContentRequest) (*ai.ListingContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.NRGBA{A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newTestEcho(f *fakeAI) *echo.Echo {
	e := echo.New()
	editor := service.NewEditorService(repository.NewSessionRepository(), f, 0, 0)
	content := service.NewContentService(f, "detailed", 0)
	sh := NewSessionHandler(editor, 1<<20)
	ch := NewContentHandler(content)
	cat := NewCatalogHandler(content.DefaultProfile())

	e.GET("/api/catalog", cat.Get)
	e.POST("/api/sessions", sh.Create)
	e.GET("/api/sessions/:id", sh.Get)
	e.DELETE("/api/sessions/:id", sh.Delete)
	e.PUT("/api/sessions/:id/brush", sh.SetBrush)
	e.POST("/api/sessions/:id/pointer", sh.Pointer)
	e.POST("/api/sessions/:id/undo", sh.Undo)
	e.GET("/api/sessions/:id/mask", sh.GetMask)
	e.PUT("/api/sessions/:id/mask", sh.PutMask)
	e.GET("/api/sessions/:id/image", sh.GetImage)
	e.POST("/api/sessions/:id/enhance", sh.Enhance)
	e.POST("/api/sessions/:id/edit", sh.Edit)
	e.POST("/api/listings/content", ch.Generate)
	return e
}

func do(e *echo.Echo, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, e *echo.Echo, data []byte) service.SessionState {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "room.png")
	_, _ = fw.Write(data)
	_ = mw.Close()
	rec := do(e, http.MethodPost, "/api/sessions", mw.FormDataContentType(), buf.Bytes())
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status=%d body=%s", rec.Code, rec.Body.String())
	}
	var st service.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return st
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v (%s)", err, rec.Body.String())
	}
	return resp.Error.Code
}

func TestSessionFlow(t *testing.T) {
	e := newTestEcho(&fakeAI{image: testPNG(t, 20, 10)})
	st := upload(t, e, testPNG(t, 20, 10))
	base := "/api/sessions/" + st.ID

	rec := do(e, http.MethodPut, base+"/brush", echo.MIMEApplicationJSON, []byte(`{"size":60,"hardness":100}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("brush status=%d", rec.Code)
	}

	vp := `{"left":0,"top":0,"width":200,"height":100}`
	events := `{"events":[` +
		`{"type":"down","event":{"clientX":50,"clientY":50},"viewport":` + vp + `},` +
		`{"type":"move","event":{"clientX":150,"clientY":50},"viewport":` + vp + `},` +
		`{"type":"up","viewport":` + vp + `}]}`
	rec = do(e, http.MethodPost, base+"/pointer", echo.MIMEApplicationJSON, []byte(events))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"hasMask":true`) {
		t.Fatalf("pointer status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, base+"/mask", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Fatalf("mask status=%d type=%s", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil || cfg.Width != 20 || cfg.Height != 10 {
		t.Fatalf("mask config=%+v err=%v", cfg, err)
	}
	exported := rec.Body.Bytes()

	rec = do(e, http.MethodPost, base+"/edit", echo.MIMEApplicationJSON, []byte(`{"mode":"remove"}`))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"revision":1`) {
		t.Fatalf("edit status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPut, base+"/mask", "image/png", exported)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"hasMask":true`) {
		t.Fatalf("import status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, base+"/image?variant=original", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Fatalf("image status=%d", rec.Code)
	}

	rec = do(e, http.MethodDelete, base, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
	rec = do(e, http.MethodGet, base, "", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "not_found" {
		t.Fatalf("get after delete status=%d", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	e := newTestEcho(&fakeAI{err: ai.ErrMissingAPIKey})
	st := upload(t, e, testPNG(t, 20, 10))
	base := "/api/sessions/" + st.ID

	tests := []struct {
		name   string
		method string
		path   string
		ctype  string
		body   string
		status int
		code   string
	}{
		{"edit without mask", http.MethodPost, base + "/edit", echo.MIMEApplicationJSON, `{"mode":"remove"}`, http.StatusPreconditionFailed, "mask_empty"},
		{"replace without prompt", http.MethodPost, base + "/edit", echo.MIMEApplicationJSON, `{"mode":"replace"}`, http.StatusBadRequest, "prompt_required"},
		{"bad mode", http.MethodPost, base + "/edit", echo.MIMEApplicationJSON, `{"mode":"smear"}`, http.StatusBadRequest, "bad_request"},
		{"enhance no key", http.MethodPost, base + "/enhance", echo.MIMEApplicationJSON, `{"sky":"sunset"}`, http.StatusInternalServerError, "missing_credential"},
		{"enhance bad angle", http.MethodPost, base + "/enhance", echo.MIMEApplicationJSON, `{"angle":"upside-down"}`, http.StatusBadRequest, "bad_request"},
		{"bad mask", http.MethodPut, base + "/mask", "image/png", "nope", http.StatusBadRequest, "invalid_mask"},
		{"empty pointer batch", http.MethodPost, base + "/pointer", echo.MIMEApplicationJSON, `{"events":[]}`, http.StatusBadRequest, "bad_request"},
		{"unknown session", http.MethodPost, "/api/sessions/nope/undo", "", "", http.StatusNotFound, "not_found"},
		{"upload without file", http.MethodPost, "/api/sessions", echo.MIMEApplicationJSON, `{}`, http.StatusBadRequest, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.ctype, []byte(tt.body))
			if rec.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tt.status, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Fatalf("code=%s want %s", got, tt.code)
			}
		})
	}
}

func TestUploadRejectsInvalidImages(t *testing.T) {
	// IHDR for a 16777216 x 16777216 RGBA image with no pixel data behind it
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], 1<<24)
	binary.BigEndian.PutUint32(ihdr[4:], 1<<24)
	ihdr[8], ihdr[9] = 8, 6
	chunk := append([]byte("IHDR"), ihdr...)
	var huge bytes.Buffer
	huge.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&huge, binary.BigEndian, uint32(len(ihdr)))
	huge.Write(chunk)
	_ = binary.Write(&huge, binary.BigEndian, crc32.ChecksumIEEE(chunk))

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"not an image", "notes.txt", []byte("hello")},
		{"oversized dimensions", "huge.png", huge.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(&fakeAI{})
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, _ := mw.CreateFormFile("image", tt.filename)
			_, _ = fw.Write(tt.data)
			_ = mw.Close()
			rec := do(e, http.MethodPost, "/api/sessions", mw.FormDataContentType(), buf.Bytes())
			if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_image" {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrRequestInFlight, http.StatusConflict, "busy"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "upstream_timeout"},
		{errors.Join(service.ErrUpstream, service.ErrInvalidImage), http.StatusBadGateway, "upstream_error"},
		{mask.ErrInvalidMask, http.StatusBadRequest, "invalid_mask"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if err := writeServiceError(c, tt.err); err != nil {
				t.Fatalf("write: %v", err)
			}
			if rec.Code != tt.status || errorCode(t, rec) != tt.code {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestContentGenerate(t *testing.T) {
	f := &fakeAI{content: &ai.ListingContent{SEOTitle: "Rumah Depok"}}
	e := newTestEcho(f)

	body := `{"listing":{"location":"Depok","type":"House","status":"For Sale"},"profile":"concise"}`
	rec := do(e, http.MethodPost, "/api/listings/content", echo.MIMEApplicationJSON, []byte(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got ai.ListingContent
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SEOTitle != "Rumah Depok" || got.Hashtags == nil {
		t.Fatalf("content=%+v", got)
	}

	rec = do(e, http.MethodPost, "/api/listings/content", echo.MIMEApplicationJSON, []byte(`{"listing":{"location":"Depok"},"profile":"novel"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}

	f.err = ai.ErrParseFailed
	rec = do(e, http.MethodPost, "/api/listings/content", echo.MIMEApplicationJSON, []byte(body))
	if rec.Code != http.StatusBadGateway || errorCode(t, rec) != "upstream_error" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCatalog(t *testing.T) {
	e := newTestEcho(&fakeAI{})
	rec := do(e, http.MethodGet, "/api/catalog", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var got CatalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.CameraAngles) != 22 || len(got.BrushModes) != 6 || got.DefaultProfile != ai.ProfileDetailed {
		t.Fatalf("catalog=%+v", got)
	}
	if got.CTACategories[len(got.CTACategories)-1].Name != ai.CTACustom {
		t.Fatalf("custom category missing")
	}
}
