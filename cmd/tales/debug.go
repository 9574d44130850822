package main

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/tales/library"
	"github.com/lixenwraith/tales/script"
	"github.com/lixenwraith/tales/story"
	"github.com/lixenwraith/tales/terminal"
)

// debugLines renders the lexer or layout view of src, one item per line
func debugLines(view, src string, layout story.Layout) ([]string, error) {
	var lines []string
	switch view {
	case "tokens":
		for _, t := range script.Tokenize(src) {
			lines = append(lines, t.String())
		}
	case "units":
		s, err := story.Parse(src, layout)
		if err != nil {
			return nil, err
		}
		for _, u := range s.Units() {
			lines = append(lines, u.String())
		}
	default:
		return nil, fmt.Errorf("unknown debug view %q, want tokens or units", view)
	}
	return lines, nil
}

// chunks splits lines into screenfuls of at most size lines
func chunks(lines []string, size int) [][]string {
	size = max(size, 1)
	var out [][]string
	for len(lines) > 0 {
		n := min(size, len(lines))
		out = append(out, lines[:n])
		lines = lines[n:]
	}
	return out
}

// debugFile prints a debug view a screen at a time, waiting for Enter in between
func (a *app) debugFile(view, path string) error {
	if path == "" {
		return errors.New("-debug needs -story")
	}
	src, err := library.Load(path)
	if err != nil {
		return err
	}
	cols, rows := terminal.Size()
	lines, err := debugLines(view, src, story.LayoutForTerminal(cols, rows))
	if err != nil {
		return err
	}

	pages := chunks(lines, rows-2)
	for i, page := range pages {
		for _, l := range page {
			fmt.Fprintln(a.out, l)
		}
		if i < len(pages)-1 {
			fmt.Fprint(a.out, "-- more --")
			if _, err := a.in.ReadString('\n'); err != nil {
				break
			}
		}
	}
	fmt.Fprintln(a.out, "Fin")
	return nil
}
