package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shinyyama/listing-studio/internal/ai"
	"github.com/shinyyama/listing-studio/internal/mask"
	"github.com/shinyyama/listing-studio/internal/model"
	"github.com/shinyyama/listing-studio/internal/reqctx"
	"github.com/shinyyama/listing-studio/internal/repository"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidImage    = errors.New("invalid image")
	ErrNoMask          = errors.New("mask is empty")
	ErrPromptRequired  = errors.New("prompt is required")
	ErrRequestInFlight = errors.New("another request is in progress")
	ErrUpstream        = errors.New("upstream failure")
)

// ImageGenerator is the image half of the Gemini client.
type ImageGenerator interface {
	EnhanceImage(ctx context.Context, req ai.EnhanceRequest) (*ai.ImageResult, error)
	EditWithMask(ctx context.Context, req ai.MaskEditRequest) (*ai.ImageResult, error)
}

type SessionState struct {
	ID           string      `json:"id"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	MimeType     string      `json:"mimeType"`
	Brush        mask.Brush  `json:"brush"`
	Cursor       mask.Cursor `json:"cursor"`
	HasMask      bool        `json:"hasMask"`
	Drawing      bool        `json:"drawing"`
	HistoryLen   int         `json:"historyLen"`
	CanUndo      bool        `json:"canUndo"`
	InFlight     bool        `json:"inFlight"`
	Revision     int         `json:"revision"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastActivity time.Time   `json:"lastActivity"`
}

type EditorService interface {
	CreateSession(ctx context.Context, data []byte) (*SessionState, error)
	State(ctx context.Context, id string) (*SessionState, error)
	SetBrush(ctx context.Context, id string, b mask.Brush) (*SessionState, error)
	ApplyPointer(ctx context.Context, id string, inputs []mask.PointerInput) (*SessionState, error)
	Undo(ctx context.Context, id string) (*SessionState, error)
	Clear(ctx context.Context, id string) (*SessionState, error)
	ExportMask(ctx context.Context, id string) ([]byte, error)
	ImportMask(ctx context.Context, id string, data []byte) (*SessionState, error)
	Image(ctx context.Context, id string, original bool) (*model.Image, error)
	Enhance(ctx context.Context, id string, settings ai.EnhancementSettings) (*SessionState, error)
	MaskedEdit(ctx context.Context, id string, req ai.BrushEditRequest) (*SessionState, error)
	Delete(ctx context.Context, id string) error
	SweepIdle(ctx context.Context, idle time.Duration) int
}

// DefaultMaxImagePixels caps width x height of uploads and generated results.
// The mask buffer costs four bytes per pixel and is snapshotted into history.
const DefaultMaxImagePixels = 40_000_000

type editorService struct {
	repo      repository.SessionRepository
	gen       ImageGenerator
	timeout   time.Duration
	maxPixels int64
	now       func() time.Time
}

// NewEditorService builds the editor. maxPixels <= 0 selects DefaultMaxImagePixels.
func NewEditorService(repo repository.SessionRepository, gen ImageGenerator, timeout time.Duration, maxPixels int64) EditorService {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	return &editorService{repo: repo, gen: gen, timeout: timeout, maxPixels: maxPixels, now: time.Now}
}

func (s *editorService) CreateSession(ctx context.Context, data []byte) (*SessionState, error) {
	img, err := decodeImage(data, s.maxPixels)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &model.EditSession{
		ID:           uuid.NewString(),
		Original:     *img,
		Current:      *img,
		Mask:         mask.NewEngine(),
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := sess.Mask.Initialize(img.Width, img.Height); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	sess.Mask.OnPresenceChange(presenceLogger(sess.ID))
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	log.Printf("[editor] rid=%s session=%s stage=created size=%dx%d mime=%s", reqctx.RID(ctx), sess.ID, img.Width, img.Height, img.MimeType)
	return snapshot(sess), nil
}

func (s *editorService) State(ctx context.Context, id string) (*SessionState, error) {
	return s.withSession(ctx, id, func(*model.EditSession) error { return nil })
}

func (s *editorService) SetBrush(ctx context.Context, id string, b mask.Brush) (*SessionState, error) {
	return s.withSession(ctx, id, func(sess *model.EditSession) error {
		sess.Mask.SetBrush(b)
		return nil
	})
}

func (s *editorService) ApplyPointer(ctx context.Context, id string, inputs []mask.PointerInput) (*SessionState, error) {
	for _, in := range inputs {
		switch in.Kind {
		case mask.PointerDown, mask.PointerMove, mask.PointerUp, mask.PointerLeave:
		default:
			return nil, fmt.Errorf("%w: unknown pointer type %q", ErrInvalidInput, in.Kind)
		}
	}
	return s.withSession(ctx, id, func(sess *model.EditSession) error {
		for _, in := range inputs {
			sess.Mask.Dispatch(in)
		}
		return nil
	})
}

func (s *editorService) Undo(ctx context.Context, id string) (*SessionState, error) {
	return s.withSession(ctx, id, func(sess *model.EditSession) error {
		sess.Mask.Undo()
		return nil
	})
}

func (s *editorService) Clear(ctx context.Context, id string) (*SessionState, error) {
	return s.withSession(ctx, id, func(sess *model.EditSession) error {
		sess.Mask.Clear()
		return nil
	})
}

func (s *editorService) ExportMask(ctx context.Context, id string) ([]byte, error) {
	var out []byte
	_, err := s.withSession(ctx, id, func(sess *model.EditSession) error {
		data, err := sess.Mask.Export()
		out = data
		return err
	})
	return out, err
}

func (s *editorService) ImportMask(ctx context.Context, id string, data []byte) (*SessionState, error) {
	return s.withSession(ctx, id, func(sess *model.EditSession) error {
		return sess.Mask.Import(data)
	})
}

func (s *editorService) Image(ctx context.Context, id string, original bool) (*model.Image, error) {
	var out model.Image
	_, err := s.withSession(ctx, id, func(sess *model.EditSession) error {
		out = sess.Current
		if original {
			out = sess.Original
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Enhance runs whole-image enhancement on the uploaded original.
func (s *editorService) Enhance(ctx context.Context, id string, settings ai.EnhancementSettings) (*SessionState, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.runAI(ctx, id, "enhance", func(sess *model.EditSession) (aiCall, error) {
		src := ai.ImageInput{Data: sess.Original.Data, MimeType: sess.Original.MimeType}
		return func(ctx context.Context) (*ai.ImageResult, error) {
			return s.gen.EnhanceImage(ctx, ai.EnhanceRequest{Image: src, Settings: settings})
		}, nil
	})
}

// MaskedEdit applies a localized edit to the working image using the current mask.
func (s *editorService) MaskedEdit(ctx context.Context, id string, req ai.BrushEditRequest) (*SessionState, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, req.Mode)
	}
	if req.Strength < 0 || req.Strength > 100 {
		return nil, fmt.Errorf("%w: strength must be between 0 and 100", ErrInvalidInput)
	}
	if req.Mode == ai.ModeReplace && ai.PromptDetail(req.Prompt) == "" {
		return nil, ErrPromptRequired
	}
	return s.runAI(ctx, id, "mask_edit", func(sess *model.EditSession) (aiCall, error) {
		if !sess.Mask.HasMask() {
			return nil, ErrNoMask
		}
		maskPNG, err := sess.Mask.Export()
		if err != nil {
			return nil, err
		}
		src := ai.ImageInput{Data: sess.Current.Data, MimeType: sess.Current.MimeType}
		return func(ctx context.Context) (*ai.ImageResult, error) {
			return s.gen.EditWithMask(ctx, ai.MaskEditRequest{Image: src, Mask: maskPNG, Edit: req})
		}, nil
	})
}

func (s *editorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrNotFound
		}
		return err
	}
	log.Printf("[editor] rid=%s session=%s stage=deleted", reqctx.RID(ctx), id)
	return nil
}

// SweepIdle removes sessions inactive for longer than idle and returns how many were dropped.
func (s *editorService) SweepIdle(ctx context.Context, idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	removed, err := s.repo.DeleteIdle(ctx, s.now().Add(-idle))
	if err != nil {
		log.Printf("[editor] stage=sweep_fail err=%v", err)
		return 0
	}
	if len(removed) > 0 {
		log.Printf("[editor] stage=sweep removed=%d remaining=%d", len(removed), s.repo.Count(ctx))
	}
	return len(removed)
}

type aiCall func(ctx context.Context) (*ai.ImageResult, error)

// runAI prepares a call under the session lock, runs it unlocked and applies
// the result. Only one call per session may be pending; a failed call leaves
// the session untouched.
func (s *editorService) runAI(ctx context.Context, id, op string, prepare func(*model.EditSession) (aiCall, error)) (*SessionState, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = reqctx.WithSessionID(ctx, id)
	rid := reqctx.RID(ctx)

	sess.Lock()
	if sess.InFlight {
		sess.Unlock()
		return nil, ErrRequestInFlight
	}
	call, err := prepare(sess)
	if err != nil {
		sess.Unlock()
		return nil, err
	}
	sess.InFlight = true
	sess.Touch(s.now())
	sess.Unlock()

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	res, callErr := call(callCtx)

	sess.Lock()
	defer sess.Unlock()
	sess.InFlight = false
	sess.Touch(s.now())

	if callErr != nil {
		log.Printf("[editor] rid=%s session=%s op=%s stage=ai_fail ms=%d err=%v", rid, id, op, time.Since(start).Milliseconds(), callErr)
		return nil, upstreamError(callErr)
	}
	img, err := decodeImage(res.Image, s.maxPixels)
	if err != nil {
		log.Printf("[editor] rid=%s session=%s op=%s stage=result_decode_fail err=%v", rid, id, op, err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if err := applyResult(sess, img); err != nil {
		return nil, err
	}
	log.Printf("[editor] rid=%s session=%s op=%s stage=applied size=%dx%d genMs=%d revision=%d", rid, id, op, img.Width, img.Height, res.ElapsedMs, sess.Revision)
	return snapshot(sess), nil
}

// applyResult installs a generated image as the working image. The mask is
// cleared when dimensions match and re-initialized otherwise.
func applyResult(sess *model.EditSession, img *model.Image) error {
	w, h := sess.Mask.Size()
	if w == img.Width && h == img.Height {
		sess.Mask.Clear()
	} else if err := sess.Mask.Initialize(img.Width, img.Height); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	sess.Current = *img
	sess.Revision++
	return nil
}

func upstreamError(err error) error {
	switch {
	case errors.Is(err, ai.ErrMissingAPIKey):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

func (s *editorService) find(ctx context.Context, id string) (*model.EditSession, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// withSession runs fn under the session lock and returns the resulting state.
func (s *editorService) withSession(ctx context.Context, id string, fn func(*model.EditSession) error) (*SessionState, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.Touch(s.now())
	return snapshot(sess), nil
}

func snapshot(sess *model.EditSession) *SessionState {
	e := sess.Mask
	return &SessionState{
		ID:           sess.ID,
		Width:        sess.Current.Width,
		Height:       sess.Current.Height,
		MimeType:     sess.Current.MimeType,
		Brush:        e.Brush(),
		Cursor:       e.Cursor(),
		HasMask:      e.HasMask(),
		Drawing:      e.Drawing(),
		HistoryLen:   e.HistoryLen(),
		CanUndo:      e.HistoryLen() > 1,
		InFlight:     sess.InFlight,
		Revision:     sess.Revision,
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
	}
}

func presenceLogger(id string) mask.PresenceFunc {
	return func(hasMask bool) {
		log.Printf("[editor] session=%s stage=mask_presence hasMask=%t", id, hasMask)
	}
}

var formatMIME = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// decodeImage reads dimensions and format without decoding pixels and refuses
// images above maxPixels before anything is allocated for them.
func decodeImage(data []byte, maxPixels int64) (*model.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	mime, ok := formatMIME[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty dimensions", ErrInvalidImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}
	return &model.Image{Data: data, MimeType: mime, Width: cfg.Width, Height: cfg.Height}, nil
}
