package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shinyyama/listing-studio/internal/reqctx"
	"google.golang.org/genai"
)

const (
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultTextModel  = "gemini-2.5-flash"
)

var (
	ErrMissingAPIKey    = errors.New("GEMINI_API_KEY is not set")
	ErrImageRequired    = errors.New("image is required")
	ErrNoImageGenerated = errors.New("gemini response did not include an image")
	ErrNoContent        = errors.New("gemini response did not include text")
)

type GeminiOptions struct {
	APIKey     string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
}

// GeminiClient talks to the Gemini API. A genai client is created per call so
// the credential is read at request time.
type GeminiClient struct {
	apiKey     string
	imageModel string
	textModel  string
	httpClient *http.Client
}

type ImageInput struct {
	Data     []byte
	MimeType string
}

type ImageResult struct {
	Image     []byte
	MimeType  string
	ElapsedMs int64
}

type EnhanceRequest struct {
	Image    ImageInput
	Settings EnhancementSettings
}

type MaskEditRequest struct {
	Image ImageInput
	Mask  []byte
	Edit  BrushEditRequest
}

type ContentRequest struct {
	Listing  PropertyListingInput
	Settings ContentGenerationSettings
	Profile  ListingProfile
}

func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}
	if opts.ImageModel == "" {
		opts.ImageModel = DefaultImageModel
	}
	if opts.TextModel == "" {
		opts.TextModel = DefaultTextModel
	}
	return &GeminiClient{
		apiKey:     strings.TrimSpace(opts.APIKey),
		imageModel: opts.ImageModel,
		textModel:  opts.TextModel,
		httpClient: opts.HTTPClient,
	}
}

func (c *GeminiClient) newClient(ctx context.Context) (*genai.Client, error) {
	if c == nil {
		return nil, errors.New("gemini client is nil")
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	})
}

// EnhanceImage sends the enhancement prompt with the source image and returns the first generated image.
func (c *GeminiClient) EnhanceImage(ctx context.Context, req EnhanceRequest) (*ImageResult, error) {
	if len(req.Image.Data) == 0 {
		return nil, ErrImageRequired
	}
	prompt := BuildEnhancePrompt(req.Settings)
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		inlinePart(req.Image.Data, req.Image.MimeType, "image/jpeg"),
	}
	seed := int32(req.Settings.Seed)
	config := &genai.GenerateContentConfig{Seed: &seed}
	return c.generateImage(ctx, "enhance", parts, config)
}

// EditWithMask sends the source image and the mask PNG, in that order, with the masked-edit prompt.
func (c *GeminiClient) EditWithMask(ctx context.Context, req MaskEditRequest) (*ImageResult, error) {
	if len(req.Image.Data) == 0 || len(req.Mask) == 0 {
		return nil, ErrImageRequired
	}
	prompt := BuildMaskedEditPrompt(req.Edit)
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		inlinePart(req.Image.Data, req.Image.MimeType, "image/jpeg"),
		inlinePart(req.Mask, "image/png", "image/png"),
	}
	return c.generateImage(ctx, "mask_edit", parts, nil)
}

func (c *GeminiClient) generateImage(ctx context.Context, op string, parts []*genai.Part, config *genai.GenerateContentConfig) (*ImageResult, error) {
	rid := reqctx.RID(ctx)
	sid := reqctx.SessionID(ctx)
	client, err := c.newClient(ctx)
	if err != nil {
		log.Printf("[gemini] rid=%s session=%s op=%s stage=client_init err=%v", rid, sid, op, err)
		return nil, err
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	start := time.Now()
	log.Printf("[gemini] rid=%s session=%s op=%s stage=gemini_start model=%s", rid, sid, op, c.imageModel)
	res, err := client.Models.GenerateContent(ctx, c.imageModel, contents, config)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("[gemini] rid=%s session=%s op=%s stage=gemini_fail model=%s err=%v", rid, sid, op, c.imageModel, err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	blob := firstInlineImage(res)
	if blob == nil {
		log.Printf("[gemini] rid=%s session=%s op=%s stage=no_image genMs=%d text=%q", rid, sid, op, elapsed, truncate(res.Text(), 200))
		return nil, ErrNoImageGenerated
	}
	log.Printf("[gemini] rid=%s session=%s op=%s stage=gemini_done model=%s bytes=%d genMs=%d", rid, sid, op, c.imageModel, len(blob.Data), elapsed)
	mime := blob.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &ImageResult{Image: blob.Data, MimeType: mime, ElapsedMs: elapsed}, nil
}

// GenerateListingContent asks the text model for listing copy and parses the JSON reply.
func (c *GeminiClient) GenerateListingContent(ctx context.Context, req ContentRequest) (*ListingContent, error) {
	rid := reqctx.RID(ctx)
	client, err := c.newClient(ctx)
	if err != nil {
		log.Printf("[listing] rid=%s stage=client_init err=%v", rid, err)
		return nil, err
	}

	instructions, details := BuildListingPrompt(req.Listing, req.Settings, req.Profile)
	parts := []*genai.Part{
		genai.NewPartFromText(instructions),
		genai.NewPartFromText("Listing Details:\n" + details),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	temp := float32(0.7)
	config := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	log.Printf("[listing] rid=%s stage=gemini_start model=%s profile=%s", rid, c.textModel, req.Profile)
	res, err := client.Models.GenerateContent(ctx, c.textModel, contents, config)
	if err != nil {
		log.Printf("[listing] rid=%s stage=gemini_fail model=%s err=%v", rid, c.textModel, err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	genMs := time.Since(start).Milliseconds()

	rawText := res.Text()
	if strings.TrimSpace(rawText) == "" {
		log.Printf("[listing] rid=%s stage=empty_output genMs=%d", rid, genMs)
		return nil, ErrNoContent
	}
	content, err := ParseListingContent(rawText)
	if err != nil {
		text := strings.ReplaceAll(rawText, "\n", " ")
		log.Printf("[listing] rid=%s stage=parse_fail len=%d text=%q err=%v", rid, len(rawText), truncate(text, 80), err)
		return nil, err
	}
	content.ClearDisabled(req.Settings.Platforms)
	log.Printf("[listing] rid=%s stage=parse_ok hashtags=%d genMs=%d", rid, len(content.Hashtags), genMs)
	return content, nil
}

func inlinePart(data []byte, mimeType, fallback string) *genai.Part {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = fallback
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}

// firstInlineImage returns the first inline image of the first candidate that has one.
func firstInlineImage(res *genai.GenerateContentResponse) *genai.Blob {
	if res == nil {
		return nil
	}
	for _, cand := range res.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
