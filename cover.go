// Cover image for the exported diary book: a grid of watercolor-like dots
// in the card palette, seeded from the title, with the title and the span
// of years on a white band.
package main

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	coverWidth  = 1200
	coverHeight = 1800
)

// coverPalette follows the card classes of the home page.
var coverPalette = []color.RGBA{
	{0x5b, 0x8d, 0xc9, 0xff}, // blue
	{0x3f, 0xa3, 0x9b, 0xff}, // teal
	{0xb8, 0x5c, 0x38, 0xff}, // rust
	{0x7a, 0x8f, 0x4e, 0xff}, // moss
	{0xd9, 0xa4, 0x41, 0xff}, // gold
	{0x8c, 0xc4, 0xe8, 0xff}, // sky
}

var paper = color.RGBA{0xfb, 0xf8, 0xf1, 0xff}

// generateCover renders the cover PNG. The same title always gives the
// same pattern.
func generateCover(title string, entries int, years string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, coverWidth, coverHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)

	drawPattern(img, sha256.Sum256([]byte(title)))

	boldFace, err := loadFace(gobold.TTF, 72)
	if err != nil {
		return nil, fmt.Errorf("loading bold font: %w", err)
	}
	regularFace, err := loadFace(goregular.TTF, 32)
	if err != nil {
		return nil, fmt.Errorf("loading regular font: %w", err)
	}

	drawTitleBlock(img, title, coverSubtitle(entries, years), boldFace, regularFace)

	label := "fbdiary"
	w := font.MeasureString(regularFace, label).Ceil()
	drawString(img, label, regularFace, coverWidth-40-w, coverHeight-40)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding cover PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func coverSubtitle(entries int, years string) string {
	s := fmt.Sprintf("%d entries", entries)
	if entries == 1 {
		s = "1 entry"
	}
	if years != "" {
		s += "  " + years
	}
	return s
}

// drawPattern places one translucent dot per grid cell, leaving the rows
// of the title band empty. Colour and radius come from the hash.
func drawPattern(img *image.RGBA, hash [32]byte) {
	const (
		cols          = 10
		rows          = 15
		cellW         = coverWidth / cols
		cellH         = coverHeight / rows
		titleRowStart = 5
		titleRowEnd   = 9
	)

	for row := 0; row < rows; row++ {
		if row >= titleRowStart && row <= titleRowEnd {
			continue
		}
		for col := 0; col < cols; col++ {
			idx := (row*cols + col) % len(hash)
			b := hash[idx] ^ byte(row*17+col*31)
			c := coverPalette[int(b)%len(coverPalette)]

			b2 := hash[(idx+11)%len(hash)] ^ byte(row*13+col*41)
			maxR := float64(cellW) / 1.6
			radius := maxR*0.3 + maxR*0.7*float64(b2)/255.0

			cx := col*cellW + cellW/2 + int(b%16) - 8
			cy := row*cellH + cellH/2 + int(b2%16) - 8
			fillDot(img, cx, cy, radius, c)
		}
	}
}

// fillDot blends a disc of c onto img, fading towards the rim.
func fillDot(img *image.RGBA, cx, cy int, radius float64, c color.RGBA) {
	r := int(math.Ceil(radius))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d > radius {
				continue
			}
			x, y := cx+dx, cy+dy
			if !(image.Point{x, y}.In(img.Bounds())) {
				continue
			}
			alpha := 0.55 * (1 - 0.6*d/radius)
			img.SetRGBA(x, y, blend(img.RGBAAt(x, y), c, alpha))
		}
	}
}

func blend(dst, src color.RGBA, alpha float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*(1-alpha) + float64(b)*alpha))
	}
	return color.RGBA{mix(dst.R, src.R), mix(dst.G, src.G), mix(dst.B, src.B), 0xff}
}

// drawTitleBlock clears the central band and centres the wrapped title
// with the subtitle below it.
func drawTitleBlock(img *image.RGBA, title, subtitle string, titleFace, metaFace font.Face) {
	const (
		bandTop    = 600
		bandBottom = 1200
		padX       = 90
		maxWidth   = coverWidth - padX*2
	)

	draw.Draw(img,
		image.Rect(0, bandTop, coverWidth, bandBottom),
		image.NewUniform(color.White),
		image.Point{},
		draw.Src,
	)
	rule := color.RGBA{0x99, 0x99, 0x99, 0xff}
	for x := padX; x < coverWidth-padX; x++ {
		img.SetRGBA(x, bandTop+24, rule)
		img.SetRGBA(x, bandBottom-24, rule)
	}

	lines := wrapText(title, titleFace, maxWidth)
	lineHeight := titleFace.Metrics().Height.Ceil() + 8
	metaHeight := metaFace.Metrics().Height.Ceil() + 16
	totalHeight := len(lines)*lineHeight + metaHeight
	y := bandTop + (bandBottom-bandTop-totalHeight)/2 + titleFace.Metrics().Ascent.Ceil()

	for _, line := range lines {
		w := font.MeasureString(titleFace, line).Ceil()
		drawString(img, line, titleFace, (coverWidth-w)/2, y)
		y += lineHeight
	}

	y += 16
	w := font.MeasureString(metaFace, subtitle).Ceil()
	drawString(img, subtitle, metaFace, (coverWidth-w)/2, y)
}

func drawString(img draw.Image, s string, face font.Face, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrapText splits text into lines that fit within maxWidth pixels.
func wrapText(text string, face font.Face, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		trial := current + " " + word
		if font.MeasureString(face, trial).Ceil() <= maxWidth {
			current = trial
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// loadFace parses an OpenType font and returns a Face at the given size in points.
func loadFace(ttf []byte, sizePt float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
