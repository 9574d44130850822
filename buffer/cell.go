// @lixen: #focus{render[cell,sgr]}
package buffer

import (
	"strconv"
	"strings"
)

// BaseColor is the SGR offset of one of the eight ANSI colors
type BaseColor uint8

const (
	Black BaseColor = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	Grey
	_
	Default // SGR 39/49
)

var baseColorNames = [...]string{"Black", "Red", "Green", "Yellow", "Blue", "Magenta", "Cyan", "Grey", "", "Default"}

func (b BaseColor) String() string {
	if int(b) < len(baseColorNames) && baseColorNames[b] != "" {
		return baseColorNames[b]
	}
	return "BaseColor(" + strconv.Itoa(int(b)) + ")"
}

// Color is a base color in its dark (30-37) or light (90-97) variant
type Color struct {
	Base  BaseColor
	Light bool
}

func Dark(b BaseColor) Color  { return Color{Base: b} }
func Light(b BaseColor) Color { return Color{Base: b, Light: true} }

// DefaultColor restores the terminal's own foreground or background
var DefaultColor = Color{Base: Default}

// SGR returns the foreground code; background is SGR()+10
func (c Color) SGR() int {
	if c.Base == Default {
		return 39
	}
	if c.Light {
		return 90 + int(c.Base)
	}
	return 30 + int(c.Base)
}

func (c Color) String() string {
	if c.Base == Default || !c.Light {
		return c.Base.String()
	}
	return "Light" + c.Base.String()
}

// TextEffect maps directly to SGR codes 0-9
type TextEffect uint8

const (
	EffectNone TextEffect = iota
	EffectBold
	EffectDim
	EffectItalic
	EffectUnderline
	EffectBlink
	EffectRapidBlink
	EffectInverse
	EffectHidden
	EffectStrikethrough
)

var effectNames = [...]string{
	"None", "Bold", "Dim", "Italic", "Underline",
	"Blink", "RapidBlink", "Inverse", "Hidden", "Strikethrough",
}

func (e TextEffect) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return "TextEffect(" + strconv.Itoa(int(e)) + ")"
}

// ModifierKind selects which field of a CellModifier is meaningful
type ModifierKind uint8

const (
	ModForeground ModifierKind = iota
	ModBackground
	ModEffect
)

// CellModifier is one style change attached to a cell
type CellModifier struct {
	Kind   ModifierKind
	Color  Color
	Effect TextEffect
}

func Foreground(c Color) CellModifier { return CellModifier{Kind: ModForeground, Color: c} }
func Background(c Color) CellModifier { return CellModifier{Kind: ModBackground, Color: c} }
func Effect(e TextEffect) CellModifier {
	return CellModifier{Kind: ModEffect, Effect: e}
}

// Reset is the neutral modifier pushed by UndoModifiers
var Reset = Effect(EffectNone)

// SGR returns the numeric Select Graphic Rendition code for the modifier
func (m CellModifier) SGR() int {
	switch m.Kind {
	case ModForeground:
		return m.Color.SGR()
	case ModBackground:
		return m.Color.SGR() + 10
	}
	return int(m.Effect)
}

// Sequence returns the escape sequence applying the modifier
func (m CellModifier) Sequence() string {
	return "\x1b[" + strconv.Itoa(m.SGR()) + "m"
}

func (m CellModifier) String() string {
	switch m.Kind {
	case ModForeground:
		return "Fg(" + m.Color.String() + ")"
	case ModBackground:
		return "Bg(" + m.Color.String() + ")"
	}
	return "Effect(" + m.Effect.String() + ")"
}

// sgrTable is the bounded lookup from SGR code to modifier
var sgrTable = func() map[int]CellModifier {
	t := make(map[int]CellModifier, 48)
	for e := EffectNone; e <= EffectStrikethrough; e++ {
		t[int(e)] = Effect(e)
	}
	for b := Black; b <= Grey; b++ {
		t[30+int(b)] = Foreground(Dark(b))
		t[40+int(b)] = Background(Dark(b))
		t[90+int(b)] = Foreground(Light(b))
		t[100+int(b)] = Background(Light(b))
	}
	t[39] = Foreground(DefaultColor)
	t[49] = Background(DefaultColor)
	return t
}()

// ModifierFromSGR maps a single SGR code to its modifier.
// Extended color codes (38/48) and anything outside the table are rejected.
func ModifierFromSGR(code int) (CellModifier, bool) {
	m, ok := sgrTable[code]
	return m, ok
}

// ParseSGR converts one or more concatenated "ESC [ params m" sequences into
// modifiers. An empty parameter list is SGR 0.
func ParseSGR(seq string) ([]CellModifier, bool) {
	if seq == "" {
		return nil, false
	}
	var mods []CellModifier
	for len(seq) > 0 {
		n, ms, ok := scanSGR(seq)
		if !ok {
			return nil, false
		}
		mods = append(mods, ms...)
		seq = seq[n:]
	}
	return mods, true
}

// scanSGR parses one SGR sequence at the start of s, returning bytes consumed
func scanSGR(s string) (int, []CellModifier, bool) {
	if !strings.HasPrefix(s, "\x1b[") {
		return 0, nil, false
	}
	end := strings.IndexByte(s, 'm')
	if end < 0 {
		return 0, nil, false
	}
	params := s[2:end]
	if params == "" {
		return end + 1, []CellModifier{Reset}, true
	}

	var mods []CellModifier
	for _, p := range strings.Split(params, ";") {
		code, err := strconv.Atoi(p)
		if err != nil {
			return 0, nil, false
		}
		m, ok := ModifierFromSGR(code)
		if !ok {
			return 0, nil, false
		}
		mods = append(mods, m)
	}
	return end + 1, mods, true
}

// Cell is one terminal position. Char 0 marks an empty cell.
type Cell struct {
	Char rune
	Mods []CellModifier
}

// IsEmpty reports whether the cell holds no character
func (c Cell) IsEmpty() bool { return c.Char == 0 }

// pen accumulates modifiers into the effective style at a point in the buffer
type pen struct {
	fg, bg  Color
	effects uint16
}

func newPen() pen { return pen{fg: DefaultColor, bg: DefaultColor} }

func (p *pen) apply(m CellModifier) {
	switch m.Kind {
	case ModForeground:
		p.fg = m.Color
	case ModBackground:
		p.bg = m.Color
	default:
		if m.Effect == EffectNone {
			*p = newPen()
			return
		}
		p.effects |= 1 << m.Effect
	}
}

// sequence returns a single SGR sequence reproducing the pen from a reset state
func (p pen) sequence() string {
	var sb strings.Builder
	sb.WriteString("\x1b[0")
	for e := EffectBold; e <= EffectStrikethrough; e++ {
		if p.effects&(1<<e) != 0 {
			sb.WriteByte(';')
			sb.WriteString(strconv.Itoa(int(e)))
		}
	}
	if p.fg != DefaultColor {
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(p.fg.SGR()))
	}
	if p.bg != DefaultColor {
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(p.bg.SGR() + 10))
	}
	sb.WriteByte('m')
	return sb.String()
}
