package covers

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
)

// Placeholder dimensions roughly match a paperback cover aspect ratio.
const (
	placeholderWidth  = 180
	placeholderHeight = 270
)

// placeholderPalette holds muted cover colors; the ISBN picks one
// deterministically so the same book always renders the same placeholder.
var placeholderPalette = []color.RGBA{
	{0x5C, 0x6B, 0x7A, 0xFF}, // slate
	{0x6B, 0x5B, 0x73, 0xFF}, // plum
	{0x4F, 0x6F, 0x5C, 0xFF}, // moss
	{0x7A, 0x5C, 0x4F, 0xFF}, // clay
	{0x4E, 0x5D, 0x78, 0xFF}, // steel blue
	{0x6E, 0x6A, 0x4F, 0xFF}, // olive
}

// GeneratePlaceholder renders a flat-color PNG stand-in for a missing cover.
func GeneratePlaceholder(isbn string) ([]byte, error) {
	h := fnv.New32a()
	h.Write([]byte(isbn))
	fill := placeholderPalette[int(h.Sum32())%len(placeholderPalette)]

	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	for y := range placeholderHeight {
		for x := range placeholderWidth {
			img.SetRGBA(x, y, fill)
		}
	}

	// A slightly darker spine band along the left edge.
	spine := color.RGBA{
		R: fill.R - fill.R/4,
		G: fill.G - fill.G/4,
		B: fill.B - fill.B/4,
		A: 0xFF,
	}
	for y := range placeholderHeight {
		for x := range placeholderWidth / 12 {
			img.SetRGBA(x, y, spine)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
