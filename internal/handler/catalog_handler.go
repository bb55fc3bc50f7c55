package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/listing-studio/internal/ai"
	"github.com/shinyyama/listing-studio/internal/mask"
)

type brushLimits struct {
	MinSize         float64 `json:"minSize"`
	MaxSize         float64 `json:"maxSize"`
	DefaultSize     float64 `json:"defaultSize"`
	DefaultHardness float64 `json:"defaultHardness"`
	MaxHistory      int     `json:"maxHistory"`
}

type CatalogResponse struct {
	CameraAngles       []ai.CameraAngleOption       `json:"cameraAngles"`
	BrushModes         []ai.BrushMode               `json:"brushModes"`
	Brush              brushLimits                  `json:"brush"`
	CTACategories      []ai.CTACategory             `json:"ctaCategories"`
	ListingProfiles    []ai.ListingProfileOption    `json:"listingProfiles"`
	DefaultProfile     ai.ListingProfile            `json:"defaultProfile"`
	EnhancementOptions map[string][]string          `json:"enhancementOptions"`
	ContentOptions     map[string][]string          `json:"contentOptions"`
	EnhanceDefaults    ai.EnhancementSettings       `json:"enhanceDefaults"`
	ContentDefaults    ai.ContentGenerationSettings `json:"contentDefaults"`
}

type CatalogHandler struct {
	defaultProfile ai.ListingProfile
}

func NewCatalogHandler(defaultProfile ai.ListingProfile) *CatalogHandler {
	return &CatalogHandler{defaultProfile: defaultProfile}
}

// Get lists every enumerated option the editor and listing forms need.
func (h *CatalogHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, CatalogResponse{
		CameraAngles: ai.CameraAngles(),
		BrushModes:   append([]ai.BrushMode(nil), ai.BrushModes...),
		Brush: brushLimits{
			MinSize:         mask.MinBrushSize,
			MaxSize:         mask.MaxBrushSize,
			DefaultSize:     mask.DefaultBrushSize,
			DefaultHardness: mask.DefaultBrushHardness,
			MaxHistory:      mask.MaxHistory,
		},
		CTACategories:      ai.CTACategories(),
		ListingProfiles:    ai.ListingProfiles(),
		DefaultProfile:     h.defaultProfile,
		EnhancementOptions: ai.EnhancementOptions(),
		ContentOptions:     ai.ContentOptions(),
		EnhanceDefaults:    ai.DefaultEnhancementSettings(),
		ContentDefaults:    ai.DefaultContentSettings(),
	})
}
