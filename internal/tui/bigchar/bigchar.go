// Package bigchar renders a word as large block art using half-block characters.
package bigchar

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned by Load when none of the paths holds a usable font.
var ErrNoFont = errors.New("no usable font found")

// DefaultFontPaths lists fonts with Manchu (Mongolian block) or Latin
// coverage in common system locations, best first.
var DefaultFontPaths = []string{
	// Linux
	"/usr/share/fonts/truetype/noto/NotoSansMongolian-Regular.ttf",
	"/usr/share/fonts/noto/NotoSansMongolian-Regular.ttf",
	"/usr/share/fonts/opentype/noto/NotoSansMongolian-Regular.otf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	// macOS
	"/Library/Fonts/NotoSansMongolian-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	// Windows
	"C:\\Windows\\Fonts\\monbaiti.ttf",
	"C:\\Windows\\Fonts\\arialbd.ttf",
}

// threshold is the brightness above which a half cell is drawn.
const threshold = 40

// Renderer draws text with one font face and caches the results.
// A nil *Renderer renders nothing.
type Renderer struct {
	face font.Face

	mu    sync.Mutex
	cache map[cacheKey]string
}

type cacheKey struct {
	text       string
	cols, rows int
}

// Load returns a Renderer for the first path that parses as a font or
// font collection.
func Load(paths ...string) (*Renderer, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if face, err := parseFace(data); err == nil {
			return New(face), nil
		}
	}
	return nil, ErrNoFont
}

// New returns a Renderer using face.
func New(face font.Face) *Renderer {
	return &Renderer{face: face, cache: make(map[cacheKey]string)}
}

func parseFace(data []byte) (font.Face, error) {
	opts := &opentype.FaceOptions{Size: 64, DPI: 72}

	if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > 0 {
		fnt, err := coll.Font(0)
		if err != nil {
			return nil, err
		}
		return opentype.NewFace(fnt, opts)
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return opentype.NewFace(fnt, opts)
}

// Available reports whether r can render anything.
func (r *Renderer) Available() bool {
	return r != nil && r.face != nil
}

// Render draws text into a cols x rows block of half-block characters.
func (r *Renderer) Render(text string, cols, rows int) string {
	if !r.Available() || text == "" || cols <= 0 || rows <= 0 {
		return ""
	}

	key := cacheKey{text: text, cols: cols, rows: rows}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.cache[key]; ok {
		return s
	}

	s := imageToHalfBlocks(scaleDown(r.rasterize(text), cols, rows*2), cols, rows)
	r.cache[key] = s
	return s
}

// rasterize draws text white on black at the face's natural size.
func (r *Renderer) rasterize(text string) *image.Gray {
	bounds, advance := font.BoundString(r.face, text)
	textWidth := advance.Ceil()
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	const padding = 4
	width := max(textWidth+padding*2, 64)
	height := max(textHeight+padding*2, 64)

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P((width-textWidth)/2, height-padding-bounds.Max.Y.Ceil()),
	}
	d.DrawString(text)
	return img
}

// scaleDown scales a grayscale image using area averaging.
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcWidth := src.Bounds().Max.X
	srcHeight := src.Bounds().Max.Y

	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		for dx := 0; dx < dstWidth; dx++ {
			sx1 := int(float64(dx) * xRatio)
			sy1 := int(float64(dy) * yRatio)
			sx2 := min(int(float64(dx+1)*xRatio), srcWidth)
			sy2 := min(int(float64(dy+1)*yRatio), srcHeight)

			var sum, count int
			for sy := sy1; sy < sy2; sy++ {
				for sx := sx1; sx < sx2; sx++ {
					sum += int(src.GrayAt(sx, sy).Y)
					count++
				}
			}
			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}

	return dst
}

// imageToHalfBlocks maps each pair of vertical pixels to one of ▀▄█ or a space.
func imageToHalfBlocks(img *image.Gray, cols, rows int) string {
	var b strings.Builder

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := brightness(img, col, row*2) > threshold
			bottom := brightness(img, col, row*2+1) > threshold

			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if row < rows-1 {
			b.WriteRune('\n')
		}
	}

	return b.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	if x < 0 || y < 0 || x >= img.Bounds().Max.X || y >= img.Bounds().Max.Y {
		return 0
	}
	return img.GrayAt(x, y).Y
}
