package teller

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/tales/config"
	"github.com/lixenwraith/tales/terminal"
)

func TestYesNo(t *testing.T) {
	tests := []struct {
		answer, def, want string
	}{
		{"yes", "", "y"},
		{"  Sure ", "", "y"},
		{"k", "n", "y"},
		{"no thanks", "", "n"},
		{"NOPE", "y", "n"},
		{"maybe", "y", "y"},
		{"maybe", "", "n"},
		{"", "", "n"},
	}
	for _, tt := range tests {
		if got := yesNo(tt.answer, tt.def); got != tt.want {
			t.Errorf("yesNo(%q, %q) = %q, want %q", tt.answer, tt.def, got, tt.want)
		}
	}
}

func TestPromptYesNoCommand(t *testing.T) {
	h := newHarness(t, "ok? {{ prompt_yesno : ans |,| y }}\n${{ans}}", config.OnePage())
	h.kb.push("nah\r")
	h.run(t)
	if got := h.teller.Variables().Get("ans"); got != "n" {
		t.Errorf("ans = %q, want n", got)
	}
	if got := h.buf.String(); !strings.Contains(got, "(y/n) nah\nn") {
		t.Errorf("buffer = %q", got)
	}
}

func TestPromptYesNoDefault(t *testing.T) {
	h := newHarness(t, "{{ prompt_yesno : ans |,| y }}\n", config.OnePage())
	h.kb.push("hmm\r")
	h.run(t)
	if got := h.teller.Variables().Get("ans"); got != "y" {
		t.Errorf("ans = %q, want the default", got)
	}
}

func TestReadLineEditing(t *testing.T) {
	h := newHarness(t, "x", config.OnePage())
	h.kb.push("ab\x7fc\x1bd\n")
	line, err := h.teller.readLine(h.buf)
	if err != nil {
		t.Fatal(err)
	}
	if line != "acd" {
		t.Errorf("line = %q, want acd", line)
	}
	if got := h.buf.String(); got != "acd" {
		t.Errorf("echo = %q, want acd", got)
	}
}

func TestReadLineInterrupted(t *testing.T) {
	h := newHarness(t, "x", config.OnePage())
	h.kb.push("ab")
	h.kb.push(string(terminal.KeyCtrlC))
	if _, err := h.teller.readLine(h.buf); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	st, ok := h.teller.State().(Telling)
	if !ok {
		t.Fatalf("state = %s", StateName(h.teller.State()))
	}
	if _, ok := st.Pending.(Quit); !ok {
		t.Errorf("pending = %s, want Quit", StateName(st.Pending))
	}
}

func TestPromptOnClosedKeyboardQuits(t *testing.T) {
	h := newHarness(t, "{{ prompt_yesno : ans }}\nnever", config.OnePage())
	h.run(t)
	if _, ok := h.teller.State().(Quit); !ok {
		t.Errorf("state = %s, want Quit", StateName(h.teller.State()))
	}
	if strings.Contains(h.buf.String(), "never") {
		t.Error("telling went on after the keyboard closed")
	}
}

func TestChoiceMenu(t *testing.T) {
	h := newHarness(t, "{{ choice_menu : pick |,| red |,| blue }}\nchose ${{pick}}", config.OnePage())
	h.kb.push("9\r2\r")
	h.run(t)
	if got := h.teller.Variables().Get("pick"); got != "blue" {
		t.Errorf("pick = %q, want blue", got)
	}
	if got := h.buf.String(); got != "chose blue" {
		t.Errorf("buffer = %q, want the menu erased", got)
	}
	if !strings.Contains(h.out.String(), "2. blue") {
		t.Error("menu was never shown")
	}
}

func TestForceInputErasesWrongKeys(t *testing.T) {
	h := newHarness(t, "{{ force_input : ab }}\ndone", config.OnePage())
	h.kb.push("ax")
	h.kb.pushAt(2*time.Second, 'b')
	before := h.clock.now

	h.run(t)
	if got := h.buf.String(); got != "abdone" {
		t.Errorf("buffer = %q, want abdone", got)
	}
	if d := h.clock.now.Sub(before); d < 2*time.Second+inputSettle {
		t.Errorf("finished after %v", d)
	}
}

func TestForceInputRejectsNonASCII(t *testing.T) {
	h := newHarness(t, "x", config.OnePage())
	if err := h.teller.forceInput(h.buf, "héllo"); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("err = %v, want ErrInvalidArg", err)
	}
}

func TestForceInputInterrupted(t *testing.T) {
	h := newHarness(t, "x", config.OnePage())
	h.kb.push("a")
	h.kb.push(string(terminal.KeyCtrlC))
	if err := h.teller.forceInput(h.buf, "abc"); !errors.Is(err, ErrInterrupted) {
		t.Errorf("err = %v, want ErrInterrupted", err)
	}
}

func TestForceInputOnClosedKeyboard(t *testing.T) {
	h := newHarness(t, "{{ force_input : abc }}\nnever", config.OnePage())
	h.kb.push("a")
	h.kb.closed = true

	h.run(t)
	if _, ok := h.teller.State().(Quit); !ok {
		t.Errorf("state = %s, want Quit", StateName(h.teller.State()))
	}
	if strings.Contains(h.buf.String(), "never") {
		t.Error("telling went on after the keyboard closed")
	}
}
