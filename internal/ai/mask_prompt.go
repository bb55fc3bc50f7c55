package ai

import (
	"fmt"
	"strings"
)

type BrushMode string

const (
	ModeRemove   BrushMode = "remove"
	ModeReplace  BrushMode = "replace"
	ModeRecolor  BrushMode = "recolor"
	ModeClone    BrushMode = "clone"
	ModeOutpaint BrushMode = "outpaint"
	ModeEnhance  BrushMode = "enhance"
)

var BrushModes = []BrushMode{ModeRemove, ModeReplace, ModeRecolor, ModeClone, ModeOutpaint, ModeEnhance}

const maskPreamble = "The second image is a mask containing red strokes indicating the area to edit."

// BrushEditRequest describes a localized edit. Prompt is only read by replace,
// recolor and enhance.
type BrushEditRequest struct {
	Mode     BrushMode `json:"mode"`
	Prompt   string    `json:"prompt"`
	Strength int       `json:"strength"`
}

func (m BrushMode) Valid() bool {
	for _, x := range BrushModes {
		if x == m {
			return true
		}
	}
	return false
}

// UsesPrompt reports whether the mode splices free text into the instruction.
func (m BrushMode) UsesPrompt() bool {
	return m == ModeReplace || m == ModeRecolor || m == ModeEnhance
}

// PromptDetail is the free text as it will be spliced into the instruction.
// An empty result means the prompt carries nothing usable.
func PromptDetail(prompt string) string {
	return sentence(prompt)
}

// BuildMaskedEditPrompt describes how the model should apply the accompanying mask.
func BuildMaskedEditPrompt(req BrushEditRequest) string {
	detail := PromptDetail(req.Prompt)

	var b strings.Builder
	b.WriteString(maskPreamble)
	b.WriteString(" ")

	switch req.Mode {
	case ModeRemove:
		b.WriteString("Remove the object(s) in the original image (first image) that correspond to the red areas in the mask. Inpaint the removed area to seamlessly match the background texture and lighting. Ensure no trace of the object remains.")
	case ModeReplace:
		fmt.Fprintf(&b, "Replace the area covered by the mask with: %s. Ensure it fits the perspective, lighting, and style of the room.", detail)
	case ModeRecolor:
		if detail == "" {
			detail = "clean and new"
		}
		fmt.Fprintf(&b, "Recolor the masked object/area to be: %s. Keep the original texture but change the color/tone.", detail)
	case ModeClone:
		b.WriteString("Use context from the surrounding area to fill in the masked area. Act like a clone stamp tool to extend the background or texture over the masked area.")
	case ModeOutpaint:
		b.WriteString("Fill the masked area seamlessly to extend the scene. Generate plausible background details that match the existing environment.")
	case ModeEnhance:
		if detail == "" {
			detail = "Improve clarity, fix texture, and adjust lighting"
		}
		fmt.Fprintf(&b, "Enhance the specific area covered by the mask. %s.", detail)
	default:
		b.WriteString("Inpaint the masked area seamlessly.")
	}

	if strength := clampPercent(req.Strength); strength < 100 {
		fmt.Fprintf(&b, " Apply this change with a strength of approximately %d%%, blending it slightly with the original if necessary.", strength)
	}
	return b.String()
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
