package entities

import "strconv"

// Perceptual luminance thresholds. The two checks drive independent cosmetic
// decisions and are intentionally asymmetric: embedded-document background
// detection treats anything above 0.6 as light, while the broadcast dark
// flag only trips below 0.55. Colors in the narrow band between count as
// neither.
const (
	LightBackgroundThreshold = 0.6
	DarkBroadcastThreshold   = 0.55
)

// ParseHexColor parses a #rrggbb color (leading hash optional). It reports
// ok=false for any other shape.
func ParseHexColor(s string) (r, g, b uint8, ok bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	rv, err1 := strconv.ParseUint(s[0:2], 16, 8)
	gv, err2 := strconv.ParseUint(s[2:4], 16, 8)
	bv, err3 := strconv.ParseUint(s[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return uint8(rv), uint8(gv), uint8(bv), true
}

// Luminance computes perceptual luminance of a hex color, normalized 0..1.
// Unparseable colors read as white (luminance 1).
func Luminance(hex string) float64 {
	r, g, b, ok := ParseHexColor(hex)
	if !ok {
		return 1
	}
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// IsLightColor reports whether a color is light enough for the embedded
// document background check.
func IsLightColor(hex string) bool {
	return Luminance(hex) > LightBackgroundThreshold
}

// IsDarkColor reports whether a color is dark for the theme-broadcast flag.
// Unparseable colors are not dark.
func IsDarkColor(hex string) bool {
	if _, _, _, ok := ParseHexColor(hex); !ok {
		return false
	}
	return Luminance(hex) < DarkBroadcastThreshold
}
