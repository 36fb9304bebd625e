package icon

import (
	"fmt"
	"sort"
	"strings"
)

// StyleCustom lets the model decide the design language; the prompt is
// expanded rather than suffixed with a preset.
const StyleCustom = "custom"

const customPrompt = "Design a sleek and modern %s icon with vibrant colors, highly detailed elements, professional quality, perfect composition, stunning visual appeal, cutting-edge design aesthetics, crisp and clean execution, visually striking appearance, carefully crafted details, contemporary style, premium quality look, sophisticated design language, eye-catching presence, polished and refined execution, masterful use of color and form, exceptional clarity and readability, innovative visual approach, professional-grade craftsmanship, beautiful and memorable design"

// stylePrompts maps preset names to the hidden prompt suffix applied to
// the user's subject.
var stylePrompts = map[string]string{
	"minimal":             "ultra minimalist design, clean lines, simple shapes, modern, lots of negative space, essential elements only",
	"flat":                "flat design style, bold solid colors, no gradients, simple shapes, modern flat icon design, 2D appearance",
	"outlined":            "outline style, line art, stroke-based design, no fill, clean outlines, vector line icon",
	"3d":                  "three-dimensional design, depth and perspective, subtle shadows, isometric or 3D appearance, dimensional icon",
	"geometric":           "geometric shapes, angular design, abstract geometry, sharp edges, mathematical precision, polygonal style",
	"gradient":            "smooth gradients, modern gradient design, color transitions, vibrant gradient effects, contemporary style",
	"hand-drawn":          "hand-drawn style, sketchy appearance, artistic, organic lines, illustrated feel, imperfect lines",
	"neon":                "neon glow effect, vibrant glowing colors, luminous design, electric appearance, bright neon lights",
	"retro":               "retro vintage style, classic design, nostalgic aesthetic, old-school vibes, vintage colors and shapes",
	"pixel":               "pixel art style, 8-bit design, pixelated appearance, retro gaming aesthetic, blocky pixels",
	"watercolor":          "soft watercolor style, artistic painting effect, gentle colors, watercolor brush strokes, artistic blend",
	"corporate":           "professional corporate design, clean business style, trustworthy appearance, formal and polished",
	"playful":             "playful and fun design, whimsical style, cheerful colors, casual and friendly appearance",
	"tech":                "futuristic technological design, digital aesthetic, high-tech appearance, modern tech style, cybernetic",
	"nature":              "organic natural design, eco-friendly style, nature-inspired shapes, earthy and natural appearance",
	"lineal":              "lineal style icon, clean outlined design, line art, stroke-based, simple vector lines, professional outline icon",
	"lineal-color":        "lineal color style, outlined design with selective color fills, line art with color accents, modern colored outlines",
	"filled":              "filled solid style, completely filled shapes, bold solid colors, no outlines, filled vector icon",
	"rounded":             "rounded style icon, soft rounded corners, smooth curves, friendly rounded shapes, gentle edges",
	"straight":            "straight style, sharp clean lines, angular edges, geometric straight shapes, precise corners",
	"circular-flat":       "circular flat design, round shapes, flat circular elements, modern circular icon style",
	"kawaii":              "kawaii cute style, adorable design, big eyes, chibi proportions, cute Japanese anime aesthetic, sweet and charming",
	"detailed":            "detailed intricate design, complex elements, rich detail, elaborate patterns, sophisticated icon",
	"doodle":              "doodle hand-drawn style, sketchy casual lines, playful scribble aesthetic, informal doodle art",
	"cartoon":             "cartoon style icon, fun animated look, bold playful design, cartoon character aesthetic",
	"isometric":           "isometric 3D style, isometric perspective, pseudo-3D design, dimensional isometric icon",
	"duotone":             "duotone two-color design, limited color palette, dual tone aesthetic, modern duotone style",
	"monochrome":          "monochrome single color, one color design, black and white or single hue, minimalist monochromatic",
	"glassmorphism":       "glassmorphism frosted glass effect, translucent design, blurred background, modern glass aesthetic",
	"flat-circular":       "flat circular design, round flat shapes, circular elements with flat colors, modern circular flat",
	"bicolor":             "bicolor two-tone design, dual color scheme, contrasting color combination, modern bicolor style",
	"glyph":               "glyph solid icon, simple filled symbol, single color glyph, basic pictogram",
	"hand-drawn-detailed": "detailed hand-drawn style, intricate sketchy design, artistic hand-crafted look, elaborate drawn details",
	"ultrathin":           "ultra thin line style, extremely thin strokes, delicate minimal lines, lightweight outlined design",
	"offset":              "offset style with shadow, layered offset effect, depth with offset shadows, dimensional offset design",
	"faded":               "faded soft colors, muted pastel tones, gentle faded aesthetic, soft vintage fade",
	"retro-neon":          "retro neon style, 80s neon lights, vibrant retro glow, nostalgic neon aesthetic, synthwave inspired",
	"3d-color":            "3D colored design, full color 3D rendering, realistic 3D icon, dimensional color depth",
	"pixel-art":           "pixel art 8-bit, retro pixel design, blocky pixelated style, classic pixel aesthetic",
	"brands":              "brand style icon, company logo aesthetic, professional brand identity, recognizable brand design",
}

// Styles returns the known preset names in stable order.
func Styles() []string {
	names := make([]string, 0, len(stylePrompts)+1)
	names = append(names, StyleCustom)
	for name := range stylePrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnhancePrompt augments the subject with the selected style preset.
// Unknown or empty styles fall back to the basic icon framing.
func EnhancePrompt(prompt, style string) string {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == StyleCustom {
		return fmt.Sprintf(customPrompt, prompt)
	}
	if suffix, ok := stylePrompts[style]; ok {
		return fmt.Sprintf("%s. Icon design: %s, bold outlines, perfect for an icon, professional quality", prompt, suffix)
	}
	return fmt.Sprintf("Icon design: %s. Simple, clean, bold outlines, perfect for an icon", prompt)
}
