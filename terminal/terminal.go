package terminal

import (
	"io"
	"os"
)

// Control bytes the story player reacts to
const (
	KeyEsc       byte = 0x1b
	KeyCtrlC     byte = 0x03
	KeyBackspace byte = 0x7f
	KeyCtrlH     byte = 0x08
	KeyEnter     byte = '\r'
	KeyNewline   byte = '\n'
)

// KeyboardSource is the keyboard capability handed to the player
type KeyboardSource interface {
	// Poll returns a pending byte without blocking
	Poll() (byte, bool)
	// ReadByte blocks until a byte is available
	ReadByte() (byte, error)
	// Drain discards all pending input, e.g. the tail of a multi-byte arrow key
	Drain()
	// Err reports why input ended; nil while the keyboard is usable
	Err() error
}

// EmergencyReset restores the terminal without relying on any held state.
// Used by panic handlers before printing the stack.
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
