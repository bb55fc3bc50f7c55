package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern    = regexp.MustCompile("(?s)^```(?:json|JSON)?[ \t]*\n?(.*?)\n?```$")
	ErrParseFailed  = errors.New("parse_failed")
	ErrMissingField = errors.New("missing_field")
)

type ListingContent struct {
	SEOTitle           string   `json:"seoTitle"`
	SEODescription     string   `json:"seoDescription"`
	ListingDescription string   `json:"listingDescription"`
	InstagramCaption   string   `json:"instagramCaption"`
	TikTokCaption      string   `json:"tiktokCaption"`
	FacebookCaption    string   `json:"facebookCaption"`
	Hashtags           []string `json:"hashtags"`
}

// ParseListingContent decodes a model response into ListingContent. Every key of
// the contract must be present; a markdown fence around the object is tolerated.
func ParseListingContent(text string) (*ListingContent, error) {
	raw := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(raw); len(m) >= 2 {
		raw = strings.TrimSpace(m[1])
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParseFailed)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	for _, key := range ListingContentKeys {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}

	var out ListingContent
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return &out, nil
}

// ClearDisabled blanks captions for platforms that were not requested.
func (c *ListingContent) ClearDisabled(p PlatformFlags) {
	if !p.Website {
		c.ListingDescription = ""
	}
	if !p.Instagram {
		c.InstagramCaption = ""
	}
	if !p.TikTok {
		c.TikTokCaption = ""
	}
	if !p.Facebook {
		c.FacebookCaption = ""
	}
}
