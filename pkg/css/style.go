package css

import (
	"strconv"
	"strings"
)

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// FormatPx renders a pixel length the way computed styles store it.
func FormatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// FontSizePx returns the computed font-size of style in pixels.
func FontSizePx(style map[string]string) float64 {
	if v, ok := ParseLength(style["font-size"]); ok {
		return v
	}
	return defaultFontSize
}

// expandShorthand writes property into decls, expanding the few
// shorthands the renderer understands.
func expandShorthand(decls map[string]string, property, value string) {
	switch property {
	case "background":
		for _, part := range strings.Fields(value) {
			if _, ok := LookupColor(part); ok {
				decls["background-color"] = part
				return
			}
		}
		decls[property] = value
	default:
		decls[property] = value
	}
}
