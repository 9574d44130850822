package story

// Lines reserved at the bottom of the terminal for status text
const reservedRows = 2

// Layout holds the terminal-derived packing limits
type Layout struct {
	MaxLineWidth  int // terminal columns
	MaxPageHeight int // lines per page
	MaxPageLen    int // units per page
}

// LayoutForTerminal derives packing limits from the terminal size
func LayoutForTerminal(cols, rows int) Layout {
	h := rows - reservedRows
	if h < 1 {
		h = 1
	}
	if cols < 1 {
		cols = 1
	}
	return Layout{
		MaxLineWidth:  cols,
		MaxPageHeight: h,
		MaxPageLen:    cols * rows,
	}
}

// Line is a contiguous run of units in the flat unit list
type Line struct {
	Start int
	Len   int
}

// Page is an ordered list of lines
type Page struct {
	Lines []Line
}

// Units returns the number of units across all lines of the page
func (p Page) Units() int {
	n := 0
	for _, l := range p.Lines {
		n += l.Len
	}
	return n
}

// Section is a named list of pages
type Section struct {
	Name  string
	Pages []Page
}

type lineStop uint8

const (
	stopEnd lineStop = iota
	stopWidth
	stopNewline
	stopPageEnd
	stopSectionStart
)

// packer converts the flat unit list into sections of pages of lines
type packer struct {
	units  []Unit
	layout Layout
}

// extractLine greedily packs units starting at idx.
// A unit wider than the whole line is placed alone so packing always progresses;
// only zero-width units may follow it.
func (p *packer) extractLine(idx int) (Line, int, lineStop) {
	line := Line{Start: idx}
	width := 0
	for idx < len(p.units) {
		u := p.units[idx]
		if u.IsPageEnd() {
			return line, idx, stopPageEnd
		}
		if u.IsSectionStart() {
			return line, idx, stopSectionStart
		}

		w, h := u.Area()
		if w > 0 && width+w > p.layout.MaxLineWidth && line.Len > 0 {
			return line, idx, stopWidth
		}
		width += w
		line.Len++
		idx++
		if h > 0 {
			return line, idx, stopNewline
		}
	}
	return line, idx, stopEnd
}

// extractPage packs lines until the page is full, a page end is consumed,
// or a section start is reached (left unconsumed)
func (p *packer) extractPage(idx int) (Page, int, bool) {
	var page Page
	count := 0
	for idx < len(p.units) && len(page.Lines) < p.layout.MaxPageHeight && count < p.layout.MaxPageLen {
		line, next, stop := p.extractLine(idx)
		if line.Len > 0 {
			page.Lines = append(page.Lines, line)
			count += line.Len
		}
		idx = next

		switch stop {
		case stopPageEnd:
			return page, idx + 1, false
		case stopSectionStart:
			return page, idx, true
		}
	}
	return page, idx, false
}

// sections partitions all units into sections; leading content before any
// section marker becomes an unnamed section, empty pages are dropped
func (p *packer) sections() []Section {
	var out []Section

	cur := Section{}
	named := false
	idx := 0
	for idx < len(p.units) {
		if u := p.units[idx]; u.IsSectionStart() {
			if named || len(cur.Pages) > 0 {
				out = append(out, cur)
			}
			cur = Section{Name: u.Token.Text}
			named = true
			idx++
			continue
		}

		page, next, _ := p.extractPage(idx)
		if len(page.Lines) > 0 {
			cur.Pages = append(cur.Pages, page)
		}
		idx = next
	}
	if named || len(cur.Pages) > 0 {
		out = append(out, cur)
	}
	return out
}
