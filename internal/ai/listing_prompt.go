package ai

import (
	"fmt"
	"strings"
)

var (
	propertyTypes   = []string{"House", "Apartment", "Commercial", "Land"}
	listingStatuses = []string{"For Sale", "For Rent"}
	languages       = []string{"Indonesian", "English"}
	tones           = []string{"Informative", "Persuasive", "Luxury", "Casual", "Hard-selling", "Soft-selling"}
	writingStyles   = []string{"Formal", "Semi-Formal", "Relaxed", "Premium/High-End", "Friendly"}
	audiences       = []string{"Family", "Investors", "Professionals", "Students", "High-Net-Worth"}
)

type PropertySpecs struct {
	LandArea     string `json:"lt"`
	BuildingArea string `json:"lb"`
	Bedrooms     string `json:"bedrooms"`
	Bathrooms    string `json:"bathrooms"`
	Floors       string `json:"floors"`
	Electricity  string `json:"electricity"`
	Facing       string `json:"facing"`
	Certificate  string `json:"certificate"`
}

type PropertyListingInput struct {
	Title      string        `json:"title"`
	Location   string        `json:"location"`
	Price      string        `json:"price"`
	Type       string        `json:"type"`
	Status     string        `json:"status"`
	Specs      PropertySpecs `json:"specs"`
	Facilities string        `json:"facilities"`
	Nearby     string        `json:"nearby"`
	USP        string        `json:"usp"`
}

type PlatformFlags struct {
	Website   bool `json:"website"`
	Instagram bool `json:"instagram"`
	TikTok    bool `json:"tiktok"`
	Facebook  bool `json:"facebook"`
}

type CTASettings struct {
	Category   string        `json:"category"`
	Text       string        `json:"text"`
	Style      string        `json:"style"`
	Placements PlatformFlags `json:"placements"`
}

type ContentGenerationSettings struct {
	Language       string        `json:"language"`
	Tone           string        `json:"tone"`
	Style          string        `json:"style"`
	TargetAudience string        `json:"targetAudience"`
	Platforms      PlatformFlags `json:"platforms"`
	CTA            *CTASettings  `json:"cta,omitempty"`
}

func DefaultContentSettings() ContentGenerationSettings {
	all := PlatformFlags{Website: true, Instagram: true, TikTok: true, Facebook: true}
	return ContentGenerationSettings{
		Language:       "Indonesian",
		Tone:           "Persuasive",
		Style:          "Premium/High-End",
		TargetAudience: "Family",
		Platforms:      all,
		CTA: &CTASettings{
			Category:   "Soft-Selling",
			Text:       "Info lengkap? Hubungi kami ya!",
			Style:      "Friendly",
			Placements: all,
		},
	}
}

func (in PropertyListingInput) Validate() error {
	if in.Type != "" && !contains(propertyTypes, in.Type) {
		return fmt.Errorf("invalid property type %q", in.Type)
	}
	if in.Status != "" && !contains(listingStatuses, in.Status) {
		return fmt.Errorf("invalid status %q", in.Status)
	}
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("location is required")
	}
	return nil
}

func (s ContentGenerationSettings) Validate() error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"language", s.Language, languages},
		{"tone", s.Tone, tones},
		{"style", s.Style, writingStyles},
		{"targetAudience", s.TargetAudience, audiences},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("invalid %s %q", c.field, c.value)
		}
	}
	if s.CTA != nil {
		if !validCTACategory(strings.TrimSpace(s.CTA.Category)) {
			return fmt.Errorf("invalid cta category %q", s.CTA.Category)
		}
		if strings.TrimSpace(s.CTA.Category) == CTACustom && strings.TrimSpace(s.CTA.Text) == "" {
			return fmt.Errorf("custom cta requires text")
		}
	}
	return nil
}

// ListingProfile selects the length policy for listingDescription.
type ListingProfile string

const (
	ProfileDetailed ListingProfile = "detailed"
	ProfileConcise  ListingProfile = "concise"
)

type lengthPolicy struct {
	description    string
	firstParagraph string
	ceiling        int
}

var listingProfiles = map[ListingProfile]lengthPolicy{
	ProfileDetailed: {
		description:    "Long-form listing: first paragraph of about 600 words.",
		firstParagraph: "approximately 600 words",
		ceiling:        900,
	},
	ProfileConcise: {
		description:    "Compact listing: first paragraph capped at 300 words.",
		firstParagraph: "at most 300 words (hard cap, never exceed it)",
		ceiling:        500,
	},
}

type ListingProfileOption struct {
	Name        ListingProfile `json:"name"`
	Description string         `json:"description"`
	WordCeiling int            `json:"wordCeiling"`
}

func ListingProfiles() []ListingProfileOption {
	out := make([]ListingProfileOption, 0, len(listingProfiles))
	for _, p := range []ListingProfile{ProfileDetailed, ProfileConcise} {
		policy := listingProfiles[p]
		out = append(out, ListingProfileOption{Name: p, Description: policy.description, WordCeiling: policy.ceiling})
	}
	return out
}

func (p ListingProfile) Valid() bool {
	_, ok := listingProfiles[p]
	return ok
}

type copyLabels struct {
	saleOpener, rentOpener string
	specs, facilities      string
	access, price          string
	minutes                string
	specLines              []string
	igSpecs, igLocation    string
	igFacilities           string
}

var labelsByLanguage = map[string]copyLabels{
	"Indonesian": {
		saleOpener: "Dijual",
		rentOpener: "Disewakan",
		specs:      "DETAIL & SPESIFIKASI:",
		facilities: "FASILITAS:",
		access:     "AKSES LOKASI SANGAT STRATEGIS:",
		price:      "HARGA:",
		minutes:    "menit ke",
		specLines: []string{
			"Hadap: [facing]",
			"Kamar Tidur: [bedrooms]",
			"Kamar Mandi: [bathrooms]",
			"Listrik: [electricity]",
			"Air: [water source if available, e.g., PAM]",
			"Garasi: [garage info, e.g., \"1 mobil\"]",
			"Luas Tanah (LT): [lt]",
			"Luas Bangunan (LB): [lb]",
			"Lantai: [floors]",
			"Sertifikat: [certificate]",
			"Status: [condition/status]",
		},
		igSpecs:      "SPESIFIKASI",
		igLocation:   "LOKASI",
		igFacilities: "FASILITAS",
	},
	"English": {
		saleOpener: "For sale:",
		rentOpener: "For rent:",
		specs:      "DETAILS & SPECIFICATIONS:",
		facilities: "FACILITIES:",
		access:     "STRATEGIC LOCATION ACCESS:",
		price:      "PRICE:",
		minutes:    "minutes to",
		specLines: []string{
			"Facing: [facing]",
			"Bedrooms: [bedrooms]",
			"Bathrooms: [bathrooms]",
			"Electricity: [electricity]",
			"Water: [water source if available]",
			"Garage: [garage info, e.g., \"1 car\"]",
			"Land Size (LT): [lt]",
			"Building Size (LB): [lb]",
			"Floors: [floors]",
			"Certificate: [certificate]",
			"Status: [condition/status]",
		},
		igSpecs:      "SPECIFICATIONS",
		igLocation:   "LOCATION",
		igFacilities: "FACILITIES",
	},
}

// ListingContentKeys is the JSON contract of a listing content response.
var ListingContentKeys = []string{
	"seoTitle",
	"seoDescription",
	"listingDescription",
	"instagramCaption",
	"tiktokCaption",
	"facebookCaption",
	"hashtags",
}

// BuildListingDetails renders the structured listing summary sent next to the instructions.
func BuildListingDetails(in PropertyListingInput) string {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Untitled Property"
	}
	lines := []string{
		"Title: " + title,
		"Location: " + in.Location,
		"Price: " + in.Price,
		"Type: " + in.Type,
		"Status: " + in.Status,
		"Specs:",
		"  - Land Size (LT): " + in.Specs.LandArea,
		"  - Building Size (LB): " + in.Specs.BuildingArea,
		"  - Bedrooms: " + in.Specs.Bedrooms,
		"  - Bathrooms: " + in.Specs.Bathrooms,
		"  - Floors: " + in.Specs.Floors,
		"  - Electricity: " + in.Specs.Electricity,
		"  - Facing: " + in.Specs.Facing,
		"  - Certificate: " + in.Specs.Certificate,
		"Facilities: " + in.Facilities,
		"Nearby (POI): " + in.Nearby,
		"USP (Selling Points): " + in.USP,
	}
	return strings.Join(lines, "\n")
}

// BuildListingPrompt returns the instruction payload and the listing summary
// for a content request. It only describes the output; the copy itself comes
// from the model.
func BuildListingPrompt(in PropertyListingInput, s ContentGenerationSettings, profile ListingProfile) (string, string) {
	policy, ok := listingProfiles[profile]
	if !ok {
		policy = listingProfiles[ProfileDetailed]
	}
	labels, ok := labelsByLanguage[s.Language]
	if !ok {
		labels = labelsByLanguage["Indonesian"]
	}
	opener := labels.saleOpener
	if in.Status == "For Rent" {
		opener = labels.rentOpener
	}

	var cta *CTASettings
	if s.CTA != nil {
		resolved := ResolveCTA(*s.CTA)
		if strings.TrimSpace(resolved.Text) != "" {
			cta = &resolved
		}
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\n")
	}

	line("You are an expert Real Estate Copywriter and SEO Specialist.")
	line("Generate content based on the provided Property Listing Details below.")
	line("")
	line("Target Audience: %s", s.TargetAudience)
	line("Tone: %s", s.Tone)
	line("Style: %s", s.Style)
	line("Language: %s (Ensure output is in this language, but hashtags can be mixed if relevant)", s.Language)
	line("")

	if cta != nil {
		line("CALL TO ACTION:")
		line("- Category: %s", cta.Category)
		if style := strings.TrimSpace(cta.Style); style != "" {
			line("- Style: %s (the CTA wording and tone must reflect this style)", style)
		}
		line("- Exact text: \"%s\"", cta.Text)
		line("- Use the exact text above word for word wherever a CTA is placed. Do not replace it with another phrase.")
		line("- Place the CTA in: %s", placementList(cta.Placements, true))
		if omitted := placementList(cta.Placements, false); omitted != "none" {
			line("- Do NOT place any CTA in: %s", omitted)
		}
		line("")
	}

	line("Please output strictly a valid JSON object without markdown formatting (do not use ```json).")
	line("The JSON object must contain all of these keys, even when a value is empty: %s.", quotedKeys())
	line("For a platform that is disabled below, return an empty string for its caption.")
	line("")
	line("- \"seoTitle\": A catchy, SEO-friendly title including location and main keyword (max 60 chars).")
	line("- \"seoDescription\": A meta description (150-160 chars) for search engines. Include a hook and a specs summary%s.", websiteCTAHint(cta))

	if s.Platforms.Website {
		writeListingDescriptionRules(line, labels, opener, policy)
	} else {
		line("- \"listingDescription\": Website is disabled. Return an empty string.")
	}

	if s.Platforms.Instagram {
		writeInstagramRules(line, labels, cta)
	} else {
		line("- \"instagramCaption\": Instagram is disabled. Return an empty string.")
	}

	if s.Platforms.TikTok {
		line("- \"tiktokCaption\": Short, punchy, viral style, focuses on visual appeal or price/value.%s", captionCTAHint(cta, cta != nil && cta.Placements.TikTok))
	} else {
		line("- \"tiktokCaption\": TikTok is disabled. Return an empty string.")
	}

	if s.Platforms.Facebook {
		line("- \"facebookCaption\": Informative, slightly longer, community-focused, includes full details.%s", captionCTAHint(cta, cta != nil && cta.Placements.Facebook))
	} else {
		line("- \"facebookCaption\": Facebook is disabled. Return an empty string.")
	}

	line("- \"hashtags\": An array of strings. Include both location-specific hashtags and trending real estate hashtags.")

	return b.String(), BuildListingDetails(in)
}

func writeListingDescriptionRules(line func(string, ...any), l copyLabels, opener string, policy lengthPolicy) {
	line("- \"listingDescription\": A comprehensive, SEO-friendly property listing description for website use, formatted with these sections:")
	line("")
	line("  STRUCTURE (follow this exact format with clear section headers):")
	line("")
	line("  [FIRST PARAGRAPH - %s, start directly, no intro]", policy.firstParagraph)
	line("  Start directly with \"%s [property type]...\". No introductory phrases. Cover location, property type, condition, main appeal, all specifications, all facilities, key selling points and nearby POIs in one natural, flowing narrative with natural keyword usage (location + property type).", opener)
	line("")
	line("  %s", l.specs)
	for _, s := range l.specLines {
		line("  - %s", s)
	}
	line("")
	line("  %s", l.facilities)
	line("  - [Facility 1]")
	line("  - [Facility 2]")
	line("  (List all facilities mentioned, one bullet per line)")
	line("")
	line("  %s", l.access)
	line("  [X] %s:", l.minutes)
	line("  - [POI 1]")
	line("  - [POI 2]")
	line("")
	line("  [Y] %s:", l.minutes)
	line("  - [POI 3]")
	line("")
	line("  (Group nearby POIs by travel time bands: 5, 10, 15, 20 and so on, each band with its own header)")
	line("")
	line("  %s", l.price)
	line("  [Price information, e.g. \"Rp 1.7 Miliar (Semi Furnished)\"]")
	line("")
	line("  FORMATTING RULES:")
	line("  - Section headers in ALL CAPS exactly as shown above")
	line("  - Bullet points (dash format) for facilities and POIs")
	line("  - Double line breaks between major sections")
	line("  - Be specific with numbers and details")
	line("  - Total length: at most %d words", policy.ceiling)
	line("  - DO NOT include a conclusion or call-to-action section at the end. End with the %s section", strings.TrimSuffix(l.price, ":"))
}

func writeInstagramRules(line func(string, ...any), l copyLabels, cta *CTASettings) {
	line("- \"instagramCaption\": Engaging, narrative style with line breaks, using exactly these emoji-tagged sections in order:")
	line("  🏡 [Hook: one or two lines that stop the scroll]")
	line("  📐 %s:", l.igSpecs)
	line("  • [one bullet per specification]")
	line("  📍 %s:", l.igLocation)
	line("  • [one bullet per nearby point or access benefit]")
	line("  ✨ %s:", l.igFacilities)
	line("  • [one bullet per facility]")
	if cta != nil && cta.Placements.Instagram {
		line("  📲 [CTA block: use the exact CTA text \"%s\"; wording and tone must match the %s category%s]", cta.Text, cta.Category, styleSuffix(cta.Style))
	} else {
		line("  (No CTA block: end after the facilities section)")
	}
}

func websiteCTAHint(cta *CTASettings) string {
	if cta != nil && cta.Placements.Website {
		return fmt.Sprintf(", and end with the CTA \"%s\"", cta.Text)
	}
	return ""
}

func captionCTAHint(cta *CTASettings, placed bool) string {
	if !placed {
		return ""
	}
	return fmt.Sprintf(" End with the CTA \"%s\".", cta.Text)
}

func styleSuffix(style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return ""
	}
	return " in a " + style + " style"
}

func placementList(p PlatformFlags, want bool) string {
	var out []string
	if p.Website == want {
		out = append(out, "website")
	}
	if p.Instagram == want {
		out = append(out, "instagram")
	}
	if p.TikTok == want {
		out = append(out, "tiktok")
	}
	if p.Facebook == want {
		out = append(out, "facebook")
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ", ")
}

func quotedKeys() string {
	out := make([]string, len(ListingContentKeys))
	for i, k := range ListingContentKeys {
		out[i] = `"` + k + `"`
	}
	return strings.Join(out, ", ")
}

// ContentOptions lists the accepted values for listing input and generation settings.
func ContentOptions() map[string][]string {
	return map[string][]string{
		"type":           append([]string(nil), propertyTypes...),
		"status":         append([]string(nil), listingStatuses...),
		"language":       append([]string(nil), languages...),
		"tone":           append([]string(nil), tones...),
		"style":          append([]string(nil), writingStyles...),
		"targetAudience": append([]string(nil), audiences...),
		"ctaStyle":       CTAStyles(),
	}
}
