package media

import "fmt"

const maxPlaceholderSide = 4000

// ClampPlaceholderSize keeps requested dimensions within 1..4000, using
// the defaults for non-positive values.
func ClampPlaceholderSize(width, height int) (int, int) {
	clamp := func(v, def int) int {
		if v <= 0 {
			return def
		}
		if v > maxPlaceholderSide {
			return maxPlaceholderSide
		}
		return v
	}
	return clamp(width, DefaultPlaceholderWidth), clamp(height, DefaultPlaceholderHeight)
}

// PlaceholderSVG renders a neutral grey image with its dimensions printed
// in the middle.
func PlaceholderSVG(width, height int) []byte {
	width, height = ClampPlaceholderSize(width, height)
	fontSize := min(width, height) / 8
	if fontSize < 10 {
		fontSize = 10
	}
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#e5e7eb"/>`+
			`<text x="50%%" y="50%%" dominant-baseline="middle" text-anchor="middle" `+
			`font-family="sans-serif" font-size="%d" fill="#9ca3af">%d×%d</text></svg>`,
		width, height, width, height, fontSize, width, height,
	))
}
