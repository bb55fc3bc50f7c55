package ai

import "strings"

// CTACustom lets the caller supply free CTA text instead of a preset.
const CTACustom = "Custom"

type CTACategory struct {
	Name    string   `json:"name"`
	Presets []string `json:"presets"`
}

var ctaCategories = []CTACategory{
	{Name: "Soft-Selling", Presets: []string{
		"Info lengkap? Hubungi kami ya!",
		"Klik chat untuk tanya detail.",
		"Yuk lihat rumahnya langsung!",
	}},
	{Name: "Hard-Selling", Presets: []string{
		"Segera hubungi sebelum terjual!",
		"Unit terbatas – booking sekarang!",
		"Jangan sampai kehabisan!",
	}},
	{Name: "Premium", Presets: []string{
		"Schedule private viewing today.",
		"For exclusive inquiry, contact us.",
		"Only for serious buyers.",
	}},
	{Name: "Friendly", Presets: []string{
		"Kalau cocok, DM aja ya!",
		"Ping aja kalau mau tanya-tanya 🍀",
		"Mau liat videonya? Langsung chat!",
	}},
	{Name: "WhatsApp", Presets: []string{
		"Klik link WhatsApp di bio untuk chat langsung.",
		"Chat via WhatsApp untuk fast response.",
	}},
	{Name: "Lead Magnet", Presets: []string{
		"Minta daftar rumah terbaru—gratis!",
		"Dapatkan rekomendasi properti sesuai budget Anda.",
	}},
}

var ctaStyles = []string{"Friendly", "Professional", "Urgent", "Exclusive", "Casual"}

// CTACategories lists the preset categories followed by the custom sentinel.
func CTACategories() []CTACategory {
	out := make([]CTACategory, 0, len(ctaCategories)+1)
	for _, c := range ctaCategories {
		out = append(out, CTACategory{Name: c.Name, Presets: append([]string(nil), c.Presets...)})
	}
	return append(out, CTACategory{Name: CTACustom})
}

func CTAStyles() []string {
	return append([]string(nil), ctaStyles...)
}

func ctaPresets(category string) ([]string, bool) {
	for _, c := range ctaCategories {
		if c.Name == category {
			return c.Presets, true
		}
	}
	return nil, false
}

// ResolveCTA fills in preset text for a known category left blank. Custom text
// is kept verbatim and never replaced by a preset.
func ResolveCTA(cta CTASettings) CTASettings {
	cta.Category = strings.TrimSpace(cta.Category)
	if cta.Category == CTACustom {
		return cta
	}
	if strings.TrimSpace(cta.Text) != "" {
		return cta
	}
	if presets, ok := ctaPresets(cta.Category); ok && len(presets) > 0 {
		cta.Text = presets[0]
	}
	return cta
}

func validCTACategory(category string) bool {
	if category == CTACustom {
		return true
	}
	_, ok := ctaPresets(category)
	return ok
}
