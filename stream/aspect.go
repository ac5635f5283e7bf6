package stream

// AspectRatio returns height divided by width, the factor a layout multiplies
// its width by to obtain the matching height. Zero width yields 0.
func AspectRatio(width, height int) float64 {
	if width <= 0 {
		return 0
	}
	return float64(height) / float64(width)
}
