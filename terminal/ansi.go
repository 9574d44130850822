// @focus: #terminal { ansi }
package terminal

import (
	"bufio"
	"io"
	"strings"
)

// Pre-allocated ANSI sequence fragments
var (
	csi           = []byte("\x1b[")
	csiRIS        = []byte("\x1bc") // Reset to Initial State (emergency)
	csiSGR0       = []byte("\x1b[0m")
	csiClear      = []byte("\x1b[2J")
	csiEraseLine  = []byte("\x1b[2K")
	csiEraseFrom  = []byte("\x1b[0K")
	csiEraseTo    = []byte("\x1b[1K")
	csiDefaultFg  = []byte("\x1b[39m")
	csiDefaultBg  = []byte("\x1b[49m")
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// DECAWM: ?7l keeps the cursor at the right edge so a full bottom row does not scroll
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")
)

// writeInt writes a non-negative integer without allocation
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	w.Write(buf[i:])
}

// writeCSI writes ESC [ n final
func writeCSI(w *bufio.Writer, n int, final byte) {
	w.Write(csi)
	writeInt(w, n)
	w.WriteByte(final)
}

// ActionKind enumerates the escape actions the renderer emits
type ActionKind uint8

const (
	ActEraseLine ActionKind = iota
	ActEraseLineFromCursor
	ActEraseLineToCursor
	ActEraseCharsOnLine
	ActEraseLines
	ActMoveCursor
	ActSetCursor
	ActClearScreen
	ActResetColor
	ActCursorHide
	ActCursorShow
	ActAutoWrapOff
	ActAutoWrapOn
)

// Action is a single terminal escape action; X and Y carry counts or coordinates
type Action struct {
	Kind ActionKind
	X, Y int
}

func EraseLine() Action           { return Action{Kind: ActEraseLine} }
func EraseLineFromCursor() Action { return Action{Kind: ActEraseLineFromCursor} }
func EraseLineToCursor() Action   { return Action{Kind: ActEraseLineToCursor} }
func EraseCharsOnLine(n int) Action {
	return Action{Kind: ActEraseCharsOnLine, X: n}
}
func EraseLines(n int) Action { return Action{Kind: ActEraseLines, Y: n} }

// MoveCursor moves relative to the current position; positive dy moves up
func MoveCursor(dx, dy int) Action { return Action{Kind: ActMoveCursor, X: dx, Y: dy} }

// SetCursor positions the cursor at 0-based column x, row y
func SetCursor(x, y int) Action { return Action{Kind: ActSetCursor, X: x, Y: y} }
func ClearScreen() Action       { return Action{Kind: ActClearScreen} }
func ResetColor() Action        { return Action{Kind: ActResetColor} }
func CursorHide() Action        { return Action{Kind: ActCursorHide} }
func CursorShow() Action        { return Action{Kind: ActCursorShow} }
func AutoWrapOff() Action       { return Action{Kind: ActAutoWrapOff} }
func AutoWrapOn() Action        { return Action{Kind: ActAutoWrapOn} }

// Then starts an ordered sequence with a followed by next
func (a Action) Then(next Action) Actions { return Actions{a, next} }

// Encode appends the escape sequence for a to w
func (a Action) Encode(w *bufio.Writer) {
	switch a.Kind {
	case ActEraseLine:
		w.Write(csiEraseLine)
	case ActEraseLineFromCursor:
		w.Write(csiEraseFrom)
	case ActEraseLineToCursor:
		w.Write(csiEraseTo)
	case ActEraseCharsOnLine:
		writeCSI(w, a.X, 'D')
		w.Write(csiEraseFrom)
	case ActEraseLines:
		for i := 0; i < a.Y; i++ {
			w.Write(csiEraseLine)
			writeCSI(w, 1, 'A')
		}
	case ActMoveCursor:
		if a.X > 0 {
			writeCSI(w, a.X, 'C')
		} else if a.X < 0 {
			writeCSI(w, -a.X, 'D')
		}
		if a.Y > 0 {
			writeCSI(w, a.Y, 'A')
		} else if a.Y < 0 {
			writeCSI(w, -a.Y, 'B')
		}
	case ActSetCursor:
		w.Write(csi)
		writeInt(w, a.Y+1)
		w.WriteByte(';')
		writeInt(w, a.X+1)
		w.WriteByte('H')
	case ActClearScreen:
		w.Write(csiClear)
	case ActResetColor:
		w.Write(csiDefaultFg)
		w.Write(csiDefaultBg)
	case ActCursorHide:
		w.Write(csiCursorHide)
	case ActCursorShow:
		w.Write(csiCursorShow)
	case ActAutoWrapOff:
		w.Write(csiAutoWrapOff)
	case ActAutoWrapOn:
		w.Write(csiAutoWrapOn)
	}
}

func (a Action) String() string { return Actions{a}.String() }

// Actions is an ordered list of actions executed front to back
type Actions []Action

// Then appends next and returns the extended sequence
func (as Actions) Then(next Action) Actions { return append(as, next) }

// Encode appends every action to w in order
func (as Actions) Encode(w *bufio.Writer) {
	for _, a := range as {
		a.Encode(w)
	}
}

// WriteTo writes the encoded sequence to w
func (as Actions) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	as.Encode(bw)
	n := bw.Buffered()
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return int64(n), nil
}

func (as Actions) String() string {
	var sb strings.Builder
	as.WriteTo(&sb)
	return sb.String()
}
