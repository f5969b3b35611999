package imagegen

import "strings"

// DefaultPrompt is used when a question has no image prompt of its own.
const DefaultPrompt = `Generate a highly realistic, photographic quality image. Style: Professional military documentary photography, Canon 5D Mark IV, 85mm lens, natural lighting, high detail, sharp focus.

Subject: Two young Asian Singaporean male soldiers (NSF, age 19-21) in MODERN Singapore Armed Forces uniforms during route march training.

MODERN SAF UNIFORM DETAILS (Current 2024 standard issue):
- Modern SAF No.4 digital pixelated camouflage uniform (distinctive green/brown/black pixel pattern)
- Current SAF Load Bearing Vest (LBV) with MOLLE webbing system
- Latest model SAF field pack with frame
- SAF jockey cap with metal Singapore Armed Forces crest badge
- Black Frontier combat boots (current SAF standard issue)
- Green SAF admin T-shirt visible at collar
- Name tag and rank insignia on uniform

Action: Route march injury scenario - one NSF soldier sitting on tarmac road holding injured right ankle with grimacing expression but determined look, second NSF soldier standing beside him bending down to help, showing buddy care system.

Environment: Modern Singapore military training camp (Tekong/Gedong style), SAF buildings with distinctive green metal roofs, covered walkways, tropical trees, hot sunny day with harsh shadows.

Quality: Photorealistic, high resolution, military documentary style, authentic modern SAF context.
Must look like actual SAF training photograph from 2024, NOT generic military or outdated uniforms.`

const (
	// SimplifiedPrompt replaces the configured prompt in simplified mode.
	SimplifiedPrompt = "Two soldiers military training one injured helping Singapore modern uniforms"

	// LastResortPrompt ends every plan.
	LastResortPrompt = "Two soldiers military training one injured helping Singapore"

	styleSuffix = ", ultra realistic, photorealistic, high quality photography"
)

// BasePrompt returns the configured prompt, or DefaultPrompt when blank.
func BasePrompt(configured string) string {
	if p := strings.TrimSpace(configured); p != "" {
		return p
	}
	return DefaultPrompt
}

func styled(p string) string { return p + styleSuffix }

// planRules maps a mode to the prompts it tries before the last resort.
var planRules = map[Mode]func(base string) []string{
	ModeFlux:       func(base string) []string { return []string{styled(base)} },
	ModeTurbo:      func(base string) []string { return []string{base} },
	ModeSimplified: func(string) []string { return []string{SimplifiedPrompt} },
	ModeAuto:       func(base string) []string { return []string{styled(base), base} },
	ModeEnhanced:   func(base string) []string { return []string{styled(base), base} },
}

// Plan returns the prompts to try, in order, for mode and the configured
// prompt. Unknown modes plan like auto. The enhanced prompt is not part of
// the plan; the generator prepends it.
func Plan(mode Mode, configured string) []string {
	rule, ok := planRules[mode]
	if !ok {
		rule = planRules[ModeAuto]
	}
	return append(rule(BasePrompt(configured)), LastResortPrompt)
}
