package teller

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/tales/buffer"
	"github.com/lixenwraith/tales/terminal"
)

const (
	firstErase  = time.Second
	repeatErase = 600 * time.Millisecond
	inputSettle = 350 * time.Millisecond
)

// awaitKey blocks for any key, discarding type-ahead first. Ctrl-C or a
// closed keyboard ends the telling.
func (t *StoryTeller) awaitKey() {
	t.deps.Keyboard.Drain()
	b, err := t.deps.Keyboard.ReadByte()
	if err != nil || b == terminal.KeyCtrlC {
		t.interrupt()
		return
	}
	t.deps.Keyboard.Drain()
}

// readLine echoes printable bytes into the buffer until Enter. Backspace
// edits the line; escape sequences are discarded.
func (t *StoryTeller) readLine(buf *buffer.TermBuffer) (string, error) {
	var line []byte
	for {
		b, err := t.deps.Keyboard.ReadByte()
		if err != nil || b == terminal.KeyCtrlC {
			t.interrupt()
			return string(line), ErrInterrupted
		}

		switch {
		case b == terminal.KeyEnter || b == terminal.KeyNewline:
			return string(line), nil
		case b == terminal.KeyBackspace || b == terminal.KeyCtrlH:
			if len(line) > 0 {
				line = line[:len(line)-1]
				buf.EraseChars(1)
				t.flush(buf)
			}
		case b == terminal.KeyEsc:
			t.deps.Keyboard.Drain()
		case printable(b):
			line = append(line, b)
			buf.WriteChar(rune(b))
			t.flush(buf)
		}
	}
}

func printable(b byte) bool { return b >= 0x20 && b < 0x7f }

// yesNo maps a free-form answer onto "y" or "n"
func yesNo(answer, def string) string {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y", "sure", "yeah", "ok", "k", "yup", "yy":
		return "y"
	case "no", "n", "nah", "no thanks", "nope", "nn":
		return "n"
	}
	if def != "" {
		return def
	}
	return "n"
}

func (t *StoryTeller) promptYesNo(buf *buffer.TermBuffer, def string) string {
	buf.WriteText(" (y/n) ")
	t.flush(buf)
	line, _ := t.readLine(buf)
	buf.WriteChar('\n')
	t.flush(buf)
	return yesNo(line, def)
}

// forceInput makes the reader type want exactly. Keystrokes that leave
// the typed text off course are taken back one by one, the first after
// firstErase of quiet and the rest every repeatErase.
func (t *StoryTeller) forceInput(buf *buffer.TermBuffer, want string) error {
	for _, r := range want {
		if r > 0x7f || !printable(byte(r)) {
			return invalidArg("force_input accepts printable ASCII only, got %q", want)
		}
	}

	typed := ""
	threshold := firstErase
	mark := t.deps.Now()
	for typed != want {
		now := t.deps.Now()
		if strings.HasPrefix(want, typed) {
			mark = now
		} else if now.Sub(mark) > threshold {
			typed = typed[:len(typed)-1]
			buf.EraseChars(1)
			t.flush(buf)
			mark = now
			threshold = repeatErase
		}

		b, ok := t.deps.Keyboard.Poll()
		if !ok {
			if t.deps.Keyboard.Err() != nil {
				t.interrupt()
				return ErrInterrupted
			}
			t.deps.Sleep(pollInterval)
			continue
		}
		switch {
		case b == terminal.KeyCtrlC:
			t.interrupt()
			return ErrInterrupted
		case printable(b):
			typed += string(rune(b))
			buf.WriteChar(rune(b))
			t.flush(buf)
			threshold = firstErase
			mark = t.deps.Now()
		}
	}
	t.deps.Sleep(inputSettle)
	return nil
}

// choiceMenu lists choices numbered from 1 and reads a selection until a
// valid one is entered. The menu is erased after every attempt.
func (t *StoryTeller) choiceMenu(buf *buffer.TermBuffer, raw []string) (string, error) {
	choices := make([]string, len(raw))
	for i, c := range raw {
		choices[i] = strings.TrimSpace(c)
	}
	for {
		buf.WriteChar('\n')
		for i, c := range choices {
			buf.WriteText(fmt.Sprintf("%d. %s\n", i+1, c))
		}
		buf.WriteChar('\n')
		t.flush(buf)

		line, err := t.readLine(buf)
		buf.WriteChar('\n')
		buf.EraseLines(len(choices) + 3)
		t.flush(buf)
		if err != nil {
			return "", err
		}

		if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
		t.log.Debug("invalid menu choice", "input", line, "choices", len(choices))
	}
}
