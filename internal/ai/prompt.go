package ai

import (
	"fmt"
	"strings"
)

const (
	enhanceOpening = "Act as a professional high-end real estate photo editor. " +
		"Enhance this property image significantly while maintaining realism."
	enhanceClosing = "Ensure the lighting is balanced, exposure is perfect, and the image looks high-resolution and market-ready."
)

var (
	skyOptions         = []string{"original", "clear", "sunset", "cloudy", "dramatic"}
	wallColorOptions   = []string{"original", "white", "beige", "grey"}
	floorPolishOptions = []string{"none", "glossy", "matte"}
	stagingOptions     = []string{"none", "minimalist", "scandinavian", "modern-luxury", "japandi"}
	depthOptions       = []string{"none", "shallow", "deep"}
	upscaleOptions     = []string{"1x", "2x", "4x", "8x"}
	noiseOptions       = []string{"off", "low", "medium", "high"}
)

// EnhancementSettings drives whole-image enhancement. Brightness, contrast,
// vibrance, warmth, sharpness and noise reduction are preview-only adjustments
// and never reach the prompt.
type EnhancementSettings struct {
	Brightness     int    `json:"brightness"`
	Contrast       int    `json:"contrast"`
	Vibrance       int    `json:"vibrance"`
	Warmth         int    `json:"warmth"`
	Sharpness      int    `json:"sharpness"`
	NoiseReduction string `json:"noiseReduction"`

	Sky          string `json:"sky"`
	Grass        bool   `json:"grass"`
	WallCleanup  bool   `json:"wallCleanup"`
	WallColor    string `json:"wallColor"`
	FloorPolish  string `json:"floorPolish"`
	Declutter    bool   `json:"declutter"`
	StagingStyle string `json:"stagingStyle"`

	Angle          CameraAngle `json:"angle"`
	PerspectiveFix bool        `json:"perspectiveFix"`
	DepthOfField   string      `json:"depthOfField"`

	Upscale        string `json:"upscale"`
	CustomPrompt   string `json:"customPrompt"`
	NegativePrompt string `json:"negativePrompt"`
	Strength       int    `json:"strength"`
	Seed           int    `json:"seed"`
}

// DefaultEnhancementSettings returns the neutral settings: the prompt they
// produce carries only the opening and closing directives.
func DefaultEnhancementSettings() EnhancementSettings {
	return EnhancementSettings{
		NoiseReduction: "off",
		Sky:            "original",
		WallColor:      "original",
		FloorPolish:    "none",
		StagingStyle:   "none",
		Angle:          AngleOriginal,
		DepthOfField:   "none",
		Upscale:        "1x",
		Strength:       75,
		Seed:           42,
	}
}

func (s EnhancementSettings) Validate() error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"sky", s.Sky, skyOptions},
		{"wallColor", s.WallColor, wallColorOptions},
		{"floorPolish", s.FloorPolish, floorPolishOptions},
		{"stagingStyle", s.StagingStyle, stagingOptions},
		{"depthOfField", s.DepthOfField, depthOptions},
		{"upscale", s.Upscale, upscaleOptions},
		{"noiseReduction", s.NoiseReduction, noiseOptions},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("invalid %s %q", c.field, c.value)
		}
	}
	if !s.Angle.Valid() {
		return fmt.Errorf("invalid angle %q", s.Angle)
	}
	if s.Strength < 0 || s.Strength > 100 {
		return fmt.Errorf("strength must be between 0 and 100")
	}
	return nil
}

// BuildEnhancePrompt turns settings into the enhancement instruction. Clauses
// appear in a fixed order and only for settings that differ from neutral.
func BuildEnhancePrompt(s EnhancementSettings) string {
	clauses := []string{enhanceOpening}
	add := func(format string, args ...any) {
		clauses = append(clauses, fmt.Sprintf(format, args...))
	}

	if isSet(s.Sky, "original") {
		add("Replace the sky with a realistic %s sky.", s.Sky)
	}
	if s.Grass {
		add("Make the grass look greener, lush, and perfectly manicured.")
	}
	if s.WallCleanup {
		add("Clean up any marks on the walls.")
		if isSet(s.WallColor, "original") {
			add("Repaint the walls in a clean %s tone.", s.WallColor)
		}
	}
	if isSet(s.FloorPolish, "none") {
		add("Make the floors look %s and polished.", s.FloorPolish)
	}
	if s.Declutter {
		add("Remove clutter and personal items from the room to make it spacious.")
	}
	if isSet(s.StagingStyle, "none") {
		add("Virtually stage the room in a %s interior design style with high-quality furniture.", s.StagingStyle)
	}
	if isSet(string(s.Angle), string(AngleOriginal)) {
		add("%s", s.Angle.phrase())
	}
	if s.PerspectiveFix {
		add("Fix all vertical lines and correct any lens distortion. Ensure architectural lines are straight.")
	}
	if isSet(s.DepthOfField, "none") {
		add("Apply a %s depth of field effect.", s.DepthOfField)
	}
	if isSet(s.Upscale, "1x") {
		add("Apply %s super-resolution upscaling. Maximize texture details, sharpness, and clarity to simulate an 8K resolution output. Ensure no pixelation or artifacts.", s.Upscale)
	}
	if custom := sentence(s.CustomPrompt); custom != "" {
		add("Additional instructions: %s.", custom)
	}
	if negative := sentence(s.NegativePrompt); negative != "" {
		add("Avoid the following: %s.", negative)
	}

	clauses = append(clauses, enhanceClosing)
	return strings.Join(clauses, " ")
}

// isSet reports whether value carries an effect, treating blank as neutral.
func isSet(value, neutral string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != neutral
}

// sentence trims free text so it can be spliced into a clause ending with a period.
func sentence(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ". ")
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// EnhancementOptions lists the accepted values for each enumerated enhancement field.
func EnhancementOptions() map[string][]string {
	return map[string][]string{
		"sky":            append([]string(nil), skyOptions...),
		"wallColor":      append([]string(nil), wallColorOptions...),
		"floorPolish":    append([]string(nil), floorPolishOptions...),
		"stagingStyle":   append([]string(nil), stagingOptions...),
		"depthOfField":   append([]string(nil), depthOptions...),
		"upscale":        append([]string(nil), upscaleOptions...),
		"noiseReduction": append([]string(nil), noiseOptions...),
	}
}
