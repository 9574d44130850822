// Previews an image the way a story's display_img command shows it.
//
// Usage examples:
//
// # Full-terminal preview in the 14-color palette, any key returns
// ./img-preview -m term stories/cat.png
//
// # ASCII ramp at a fixed size written to stdout
// ./img-preview -m ascii -w 100 -h 40 -o - stories/cat.png | less -R
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lixenwraith/tales/imaging"
	"github.com/lixenwraith/tales/terminal"
)

func main() {
	var (
		width   int
		height  int
		modeStr string
		output  string
	)

	flag.IntVar(&width, "w", 0, "Output width in columns (0 = terminal width)")
	flag.IntVar(&height, "h", 0, "Output height in rows (0 = terminal height)")
	flag.StringVar(&modeStr, "m", "ascii", "Render mode: 'ascii' or 'term'")
	flag.StringVar(&output, "o", "", "Write escape sequences to a file ('-' for stdout, omit for interactive)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: img-preview [options] <image>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	mode, err := imaging.ParseMode(modeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	img, err := imaging.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	cols, rows := terminal.Size()
	if width > 0 {
		cols = width
	}
	if height > 0 {
		rows = height
	}
	b := img.Bounds()
	fmt.Fprintf(os.Stderr, "Image: %s (%dx%d) -> %dx%d cells, %s\n", path, b.Dx(), b.Dy(), cols, rows, mode)

	if output != "" {
		if err := writeTo(output, func(w io.Writer) error { return imaging.Write(w, img, mode, cols, rows) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := display(func(w io.Writer) error { return imaging.Write(w, img, mode, cols, rows) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// writeTo sends the rendering to a file or stdout
func writeTo(output string, render func(io.Writer) error) error {
	var w *bufio.Writer
	if output == "-" {
		w = bufio.NewWriter(os.Stdout)
	} else {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = bufio.NewWriter(f)
	}
	if err := render(w); err != nil {
		return err
	}
	if _, err := (terminal.Actions{terminal.ResetColor()}).WriteTo(w); err != nil {
		return err
	}
	return w.Flush()
}

// display draws over the terminal and waits for any key
func display(render func(io.Writer) error) error {
	kb, err := terminal.OpenKeyboard()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer kb.Close()

	out := bufio.NewWriter(os.Stdout)
	terminal.Actions{terminal.CursorHide()}.WriteTo(out)
	if err := render(out); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}

	_, readErr := kb.ReadByte()
	terminal.Actions{
		terminal.ResetColor(),
		terminal.ClearScreen(),
		terminal.SetCursor(0, 0),
		terminal.CursorShow(),
	}.WriteTo(os.Stdout)
	if readErr != nil && readErr != io.EOF {
		return readErr
	}
	return nil
}
