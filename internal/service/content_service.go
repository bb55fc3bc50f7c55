package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/listing-studio/internal/ai"
	"github.com/shinyyama/listing-studio/internal/reqctx"
)

// ListingWriter is the text half of the Gemini client.
type ListingWriter interface {
	GenerateListingContent(ctx context.Context, req ai.ContentRequest) (*ai.ListingContent, error)
}

type ContentService interface {
	Generate(ctx context.Context, input ai.PropertyListingInput, settings *ai.ContentGenerationSettings, profile string) (*ai.ListingContent, error)
	DefaultProfile() ai.ListingProfile
}

type contentService struct {
	writer         ListingWriter
	defaultProfile ai.ListingProfile
	timeout        time.Duration
}

func NewContentService(writer ListingWriter, defaultProfile string, timeout time.Duration) ContentService {
	p := ai.ListingProfile(strings.TrimSpace(defaultProfile))
	if !p.Valid() {
		log.Printf("[listing] stage=config unknown profile %q, using %s", defaultProfile, ai.ProfileDetailed)
		p = ai.ProfileDetailed
	}
	return &contentService{writer: writer, defaultProfile: p, timeout: timeout}
}

func (s *contentService) DefaultProfile() ai.ListingProfile {
	return s.defaultProfile
}

func (s *contentService) Generate(ctx context.Context, input ai.PropertyListingInput, settings *ai.ContentGenerationSettings, profile string) (*ai.ListingContent, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cfg := ai.DefaultContentSettings()
	if settings != nil {
		cfg = *settings
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p := s.defaultProfile
	if profile = strings.TrimSpace(profile); profile != "" {
		p = ai.ListingProfile(profile)
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown profile %q", ErrInvalidInput, profile)
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	content, err := s.writer.GenerateListingContent(ctx, ai.ContentRequest{Listing: input, Settings: cfg, Profile: p})
	if err != nil {
		log.Printf("[listing] rid=%s stage=generate_fail profile=%s err=%v", reqctx.RID(ctx), p, err)
		return nil, upstreamError(err)
	}
	return content, nil
}
