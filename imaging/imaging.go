// @focus: #imaging { resize, ascii, palette }
// Package imaging draws pictures on the terminal, either as a brightness
// ramp of ASCII characters or as blocks of the 14 ANSI background colors.
package imaging

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/lixenwraith/tales/buffer"
	"github.com/lixenwraith/tales/terminal"
)

// Mode selects the rendering style
type Mode int

const (
	ModeASCII Mode = iota
	ModeTerm
)

// ParseMode maps the optional display_img argument; empty means ASCII
func ParseMode(s string) (Mode, error) {
	switch {
	case s == "", strings.EqualFold(s, "ascii"):
		return ModeASCII, nil
	case strings.EqualFold(s, "term"):
		return ModeTerm, nil
	}
	return ModeASCII, fmt.Errorf("unknown image mode %q", s)
}

func (m Mode) String() string {
	if m == ModeTerm {
		return "term"
	}
	return "ascii"
}

// Ramp runs from the densest glyph to blank; bright pixels take dense glyphs
const Ramp = "@#S%?*+;:,. "

// Swatch pairs a background modifier with the color it shows
type Swatch struct {
	Mod   buffer.CellModifier
	Color colorful.Color
}

// Palette holds the dark and light variants of the six hues and grey.
// Black is left out so pictures stay visible on dark terminals.
var Palette = func() []Swatch {
	pairs := []struct {
		base        buffer.BaseColor
		dark, light tcell.Color
	}{
		{buffer.Red, tcell.ColorMaroon, tcell.ColorRed},
		{buffer.Green, tcell.ColorGreen, tcell.ColorLime},
		{buffer.Yellow, tcell.ColorOlive, tcell.ColorYellow},
		{buffer.Blue, tcell.ColorNavy, tcell.ColorBlue},
		{buffer.Magenta, tcell.ColorPurple, tcell.ColorFuchsia},
		{buffer.Cyan, tcell.ColorTeal, tcell.ColorAqua},
		{buffer.Grey, tcell.ColorGray, tcell.ColorWhite},
	}
	p := make([]Swatch, 0, len(pairs)*2)
	for _, pr := range pairs {
		p = append(p,
			Swatch{Mod: buffer.Background(buffer.Dark(pr.base)), Color: fromTcell(pr.dark)},
			Swatch{Mod: buffer.Background(buffer.Light(pr.base)), Color: fromTcell(pr.light)},
		)
	}
	return p
}()

func fromTcell(c tcell.Color) colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Nearest returns the palette modifier closest to c in Lab space.
// Fully transparent pixels count as black.
func Nearest(c color.Color) buffer.CellModifier {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		cc = colorful.Color{}
	}
	best, bestDist := 0, -1.0
	for i, s := range Palette {
		if d := cc.DistanceLab(s.Color); bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return Palette[best].Mod
}

// Load decodes a PNG, JPEG, GIF, BMP or WebP file
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Resize scales img to exactly w by h cells with Catmull-Rom filtering
func Resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ASCII converts img to rows of ramp characters
func ASCII(img image.Image, w, h int) []string {
	small := Resize(img, w, h)
	b := small.Bounds()
	rows := make([]string, 0, b.Dy())
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sb.Reset()
		for x := b.Min.X; x < b.Max.X; x++ {
			sb.WriteByte(rampChar(color.GrayModel.Convert(small.At(x, y)).(color.Gray).Y))
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func rampChar(y uint8) byte {
	n := len(Ramp)
	return Ramp[n-1-n*int(y)/256]
}

// Term converts img to rows of palette modifiers
func Term(img image.Image, w, h int) [][]buffer.CellModifier {
	small := Resize(img, w, h)
	b := small.Bounds()
	rows := make([][]buffer.CellModifier, 0, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]buffer.CellModifier, 0, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			row = append(row, Nearest(small.At(x, y)))
		}
		rows = append(rows, row)
	}
	return rows
}

// Write draws img over the whole screen of cols by rows cells
func Write(w io.Writer, img image.Image, mode Mode, cols, rows int) error {
	bw := bufio.NewWriterSize(w, 16384)
	terminal.Actions{terminal.ResetColor(), terminal.ClearScreen()}.Encode(bw)

	switch mode {
	case ModeTerm:
		for y, row := range Term(img, cols, rows) {
			terminal.SetCursor(0, y).Encode(bw)
			var last buffer.CellModifier
			for x, m := range row {
				if x == 0 || m != last {
					bw.WriteString(m.Sequence())
					last = m
				}
				bw.WriteByte(' ')
			}
			terminal.ResetColor().Encode(bw)
		}
	default:
		for y, line := range ASCII(img, cols, rows) {
			terminal.SetCursor(0, y).Encode(bw)
			bw.WriteString(line)
		}
	}
	return bw.Flush()
}

// Renderer loads and draws image files
type Renderer struct{}

// Render loads path and draws it with Write
func (Renderer) Render(w io.Writer, path string, mode Mode, cols, rows int) error {
	img, err := Load(path)
	if err != nil {
		return err
	}
	return Write(w, img, mode, cols, rows)
}
