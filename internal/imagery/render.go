package imagery

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderPlaceholder draws a PNG whose background color is derived from
// seed, with the seed printed in the middle. Output is deterministic.
func RenderPlaceholder(seed string, width, height int) ([]byte, error) {
	if width <= 0 || width > 2000 {
		width = 400
	}
	if height <= 0 || height > 2000 {
		height = 300
	}

	bg := seedColor(seed)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	label := strings.TrimSpace(seed)
	if label == "" {
		label = "biodex"
	}
	const charW = 7 // basicfont.Face7x13
	if maxChars := (width - 20) / charW; maxChars > 3 && len([]rune(label)) > maxChars {
		label = string([]rune(label)[:maxChars-3]) + "..."
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor(bg)),
		Face: basicfont.Face7x13,
	}
	textW := d.MeasureString(label).Ceil()
	d.Dot = fixed.Point26_6{
		X: fixed.I((width - textW) / 2),
		Y: fixed.I(height/2 + 4),
	}
	d.DrawString(label)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func seedColor(seed string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	v := h.Sum32()
	// keep channels in a muted mid range
	return color.RGBA{
		R: uint8(64 + (v>>16)&0x7f),
		G: uint8(64 + (v>>8)&0x7f),
		B: uint8(64 + v&0x7f),
		A: 255,
	}
}

func textColor(bg color.RGBA) color.Color {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum > 140 {
		return color.Black
	}
	return color.White
}
