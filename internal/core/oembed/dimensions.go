package oembed

import "math"

// Size used for a published chart whose metadata carries no usable embed size.
const (
	DefaultEmbedWidth  = 600
	DefaultEmbedHeight = 400
)

// NaturalSize returns the stored embed size, or the default size when either
// side is missing or not positive.
func NaturalSize(width, height int) Dimensions {
	if width <= 0 || height <= 0 {
		return Dimensions{Width: DefaultEmbedWidth, Height: DefaultEmbedHeight}
	}
	return Dimensions{Width: width, Height: height}
}

// Fit scales natural into the bounding box while keeping the aspect ratio.
// The box is only adopted when it is genuinely smaller than the natural size;
// charts are never upscaled. Without a bound, or without a natural width to
// derive an aspect ratio from, the natural size is returned unchanged.
func Fit(natural Dimensions, bound Bounds) Dimensions {
	if bound.IsZero() || natural.Width <= 0 || natural.Height <= 0 {
		return natural
	}

	maxWidth, maxHeight := max(bound.MaxWidth, 0), max(bound.MaxHeight, 0)
	aspect := float64(natural.Height) / float64(natural.Width)

	if (maxWidth > 0 && maxHeight == 0) ||
		(maxWidth > 0 && maxHeight > 0 && aspect < float64(maxHeight)/float64(maxWidth)) {
		maxHeight = int(math.Round(float64(maxWidth) * aspect))
	} else {
		maxWidth = int(math.Round(float64(maxHeight) / aspect))
	}

	if maxHeight < natural.Height {
		return Dimensions{Width: max(maxWidth, 1), Height: max(maxHeight, 1)}
	}
	return natural
}
