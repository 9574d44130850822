// Shows the raw bytes the story player receives and how it reads them.
// Ctrl-C quits.
package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/tales/terminal"
)

func main() {
	kb, err := terminal.OpenKeyboard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer kb.Close()

	// Raw mode: \r\n keeps lines from stair-stepping
	fmt.Print("Key Test - press keys, Ctrl-C to quit\r\n\r\n")
	for {
		b, err := kb.ReadByte()
		if err != nil {
			fmt.Printf("read error: %v\r\n", err)
			return
		}
		fmt.Printf("%s\r\n", formatKey(b))
		if b == terminal.KeyCtrlC {
			return
		}
	}
}

// formatKey names a byte and the player action it maps to
func formatKey(b byte) string {
	return fmt.Sprintf("KEY: 0x%02x %-10s -> %s", b, keyToString(b), action(b))
}

func keyToString(b byte) string {
	switch b {
	case terminal.KeyEsc:
		return "Escape"
	case terminal.KeyCtrlC:
		return "Ctrl+C"
	case terminal.KeyBackspace, terminal.KeyCtrlH:
		return "Backspace"
	case terminal.KeyEnter:
		return "Enter"
	case terminal.KeyNewline:
		return "Newline"
	case ' ':
		return "Space"
	}
	if b >= 0x20 && b < 0x7f {
		return fmt.Sprintf("'%c'", b)
	}
	if b < 0x20 {
		return fmt.Sprintf("Ctrl+%c", b+'@')
	}
	return "Byte"
}

// action mirrors the player's key handling while a story is shown
func action(b byte) string {
	switch b {
	case 'p':
		return "pause/resume"
	case 'q', terminal.KeyEsc:
		return "quit (any-key while waiting)"
	case terminal.KeyCtrlC:
		return "quit"
	}
	return "any-key"
}
