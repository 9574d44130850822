// Package buffer holds the cell grid the story is written into before it
// reaches the terminal. The grid is a flat array split into pages of
// rows*cols cells; writing past the last page grows it by one page.
package buffer

import (
	"bufio"
	"io"
	"strings"

	"github.com/lixenwraith/tales/terminal"
)

const tabWidth = 8

// TermBuffer is a growable, cursor-addressed cell array
type TermBuffer struct {
	cells  []Cell
	rows   int
	cols   int
	cursor int

	// Erasing never goes below floor, the start of the last fresh page
	floor int

	// Set when the cursor moves onto a freshly grown page
	pageTurned bool
}

// New creates a buffer with one empty page
func New(rows, cols int) *TermBuffer {
	b := &TermBuffer{}
	b.Resize(rows, cols)
	return b
}

// Resize changes the page geometry. Existing content is discarded since
// cell positions depend on the column count.
func (b *TermBuffer) Resize(rows, cols int) {
	b.rows = max(rows, 1)
	b.cols = max(cols, 1)
	b.Clear()
}

// Clear drops all content and resets the cursor
func (b *TermBuffer) Clear() {
	b.cells = make([]Cell, b.pageSize())
	b.cursor = 0
	b.floor = 0
	b.pageTurned = false
}

func (b *TermBuffer) Rows() int { return b.rows }
func (b *TermBuffer) Cols() int { return b.cols }

func (b *TermBuffer) pageSize() int { return b.rows * b.cols }

func (b *TermBuffer) pageStart(page int) int { return page * b.pageSize() }

// grow appends whole pages until idx is addressable
func (b *TermBuffer) grow(idx int) {
	for idx >= len(b.cells) {
		b.cells = append(b.cells, make([]Cell, b.pageSize())...)
	}
}

// moveTo places the cursor, growing the array and raising the page flag
// when it lands past the end
func (b *TermBuffer) moveTo(idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(b.cells) {
		b.grow(idx)
		b.pageTurned = true
	}
	b.cursor = idx
}

// WriteChar stores r at the cursor and advances. A newline is kept in its
// cell and moves the cursor to the start of the next row.
func (b *TermBuffer) WriteChar(r rune) {
	switch {
	case r == '\n':
		b.cells[b.cursor].Char = '\n'
		b.moveTo((b.cursor/b.cols + 1) * b.cols)
	case r == '\t':
		col := b.cursor % b.cols
		n := tabWidth - col%tabWidth
		for i := 0; i < n && b.cursor%b.cols >= col; i++ {
			b.WriteChar(' ')
		}
	case r == '\r' || r < 0x20 || r == 0x7f:
		// Control characters have no cell representation
	default:
		b.cells[b.cursor].Char = r
		b.moveTo(b.cursor + 1)
	}
}

// WriteText writes every rune of s
func (b *TermBuffer) WriteText(s string) {
	for _, r := range s {
		b.WriteChar(r)
	}
}

// WriteANSI writes s, turning embedded SGR escape sequences into modifiers.
// Escape sequences that are not plain SGR codes are dropped.
func (b *TermBuffer) WriteANSI(s string) {
	for len(s) > 0 {
		i := strings.IndexByte(s, 0x1b)
		if i < 0 {
			b.WriteText(s)
			return
		}
		b.WriteText(s[:i])
		s = s[i:]

		if n, mods, ok := scanSGR(s); ok {
			for _, m := range mods {
				b.AddModifier(m)
			}
			s = s[n:]
			continue
		}
		s = s[skipEscape(s):]
	}
}

// skipEscape returns the length of the escape sequence at the start of s
func skipEscape(s string) int {
	if len(s) < 2 || s[1] != '[' {
		return min(len(s), 2)
	}
	for i := 2; i < len(s); i++ {
		if s[i] >= 0x40 && s[i] <= 0x7e {
			return i + 1
		}
	}
	return len(s)
}

// AddModifier attaches m to the cell under the cursor
func (b *TermBuffer) AddModifier(m CellModifier) {
	c := &b.cells[b.cursor]
	c.Mods = append(c.Mods, m)
}

// UndoModifiers pushes a reset modifier; earlier modifiers stay in place
func (b *TermBuffer) UndoModifiers() {
	b.AddModifier(Reset)
}

// eraseOne clears the last character before the cursor, skipping empty
// filler cells, and rewinds the cursor onto it. Pages grown by overflow are
// crossed; an explicit page turn is not.
func (b *TermBuffer) eraseOne() (rune, bool) {
	idx := b.lastChar()
	if idx < 0 {
		if b.cursor > b.floor {
			b.cursor = b.floor
		}
		return 0, false
	}
	r := b.cells[idx].Char
	b.cells[idx].Char = 0
	b.cursor = idx
	return r, true
}

// EraseChars clears the n characters behind the cursor. Modifiers on the
// cleared cells are kept so the active style does not change.
// Erasing stops at the start of the content written since the last
// TurnPage or Clear.
func (b *TermBuffer) EraseChars(n int) {
	for i := 0; i < n; i++ {
		if _, ok := b.eraseOne(); !ok {
			return
		}
	}
}

// EraseWords clears n words behind the cursor along with the whitespace
// that follows each of them
func (b *TermBuffer) EraseWords(n int) {
	for i := 0; i < n; i++ {
		inWord := false
		for {
			idx := b.lastChar()
			if idx < 0 {
				return
			}
			space := isSpace(b.cells[idx].Char)
			if inWord && space {
				break
			}
			inWord = inWord || !space
			b.eraseOne()
		}
	}
}

// lastChar returns the index of the character eraseOne would clear, or -1
func (b *TermBuffer) lastChar() int {
	for idx := b.cursor - 1; idx >= b.floor; idx-- {
		if !b.cells[idx].IsEmpty() {
			return idx
		}
	}
	return -1
}

func isSpace(r rune) bool { return r == ' ' || r == '\n' || r == '\t' }

// EraseLines erases characters until n newlines have been removed or the
// erase floor is reached
func (b *TermBuffer) EraseLines(n int) {
	for erased := 0; erased < n; {
		r, ok := b.eraseOne()
		if !ok {
			return
		}
		if r == '\n' {
			erased++
		}
	}
}

// MoveCursor shifts the cursor by n cells; it never goes below 0
func (b *TermBuffer) MoveCursor(n int) {
	b.moveTo(b.cursor + n)
}

// SetCursor positions the cursor within the current page
func (b *TermBuffer) SetCursor(row, col int) {
	row = min(max(row, 0), b.rows-1)
	col = min(max(col, 0), b.cols-1)
	b.cursor = b.pageStart(b.CurrentPage()) + row*b.cols + col
}

// Cursor returns the (row, col) of the cursor within the current page
func (b *TermBuffer) Cursor() (int, int) {
	off := b.cursor - b.pageStart(b.CurrentPage())
	return off / b.cols, off % b.cols
}

// Index returns the absolute cursor position
func (b *TermBuffer) Index() int { return b.cursor }

// CurrentPage returns the page holding the cursor
func (b *TermBuffer) CurrentPage() int { return b.cursor / b.pageSize() }

// NumPages returns the number of allocated pages
func (b *TermBuffer) NumPages() int { return len(b.cells) / b.pageSize() }

// PageTurned reports and clears the overflow flag
func (b *TermBuffer) PageTurned() bool {
	t := b.pageTurned
	b.pageTurned = false
	return t
}

// TurnPage moves the cursor to the start of a fresh page without raising
// the overflow flag. A cursor already at a page start stays, with that
// page's characters cleared.
func (b *TermBuffer) TurnPage() {
	size := b.pageSize()
	target := b.cursor
	if target%size != 0 {
		target = (target/size + 1) * size
	}
	b.grow(target + size - 1)
	for i := target; i < target+size; i++ {
		b.cells[i].Char = 0
	}
	b.cursor = target
	b.floor = target
}

// Cell returns a copy of the cell at (row, col) of page
func (b *TermBuffer) Cell(page, row, col int) Cell {
	idx := b.pageStart(page) + row*b.cols + col
	if idx < 0 || idx >= len(b.cells) {
		return Cell{}
	}
	return b.cells[idx]
}

// Render paints page to w. Modifiers from earlier pages are replayed so the
// page starts with the style in effect at its first cell.
func (b *TermBuffer) Render(w io.Writer, page int) error {
	bw := bufio.NewWriterSize(w, 16384)

	start := min(b.pageStart(page), len(b.cells))
	p := newPen()
	for _, c := range b.cells[:start] {
		for _, m := range c.Mods {
			p.apply(m)
		}
	}

	terminal.Actions{terminal.CursorHide(), terminal.AutoWrapOff()}.Encode(bw)
	for row := 0; row < b.rows; row++ {
		// Clear with default colors, then restore the running style
		bw.WriteString(Reset.Sequence())
		terminal.SetCursor(0, row).Then(terminal.EraseLine()).Encode(bw)
		bw.WriteString(p.sequence())

		skip := 0
		for col := 0; col < b.cols; col++ {
			idx := start + row*b.cols + col
			if idx >= len(b.cells) {
				break
			}
			c := b.cells[idx]
			for _, m := range c.Mods {
				p.apply(m)
				bw.WriteString(m.Sequence())
			}
			if c.Char == 0 || c.Char == '\n' {
				skip++
				continue
			}
			if skip > 0 {
				terminal.MoveCursor(skip, 0).Encode(bw)
				skip = 0
			}
			bw.WriteRune(c.Char)
		}
	}

	if b.CurrentPage() == page {
		row, col := b.Cursor()
		terminal.SetCursor(col, row).Encode(bw)
		terminal.CursorShow().Encode(bw)
	}
	return bw.Flush()
}

// String returns the written characters in cell order, skipping empty cells
func (b *TermBuffer) String() string {
	var sb strings.Builder
	for _, c := range b.cells {
		if c.Char != 0 {
			sb.WriteRune(c.Char)
		}
	}
	return sb.String()
}

// PageText returns the characters of one page, row by row
func (b *TermBuffer) PageText(page int) string {
	var sb strings.Builder
	start := b.pageStart(page)
	for idx := start; idx < start+b.pageSize() && idx < len(b.cells); idx++ {
		if c := b.cells[idx].Char; c != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
