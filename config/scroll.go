package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidScrollRate = errors.New("invalid scroll rate")

// ScrollKind selects how much content one playback step reveals
type ScrollKind uint8

const (
	ScrollPage ScrollKind = iota
	ScrollMillis
	ScrollWords
	ScrollLines
)

// ScrollRate is the snippet size of a playback step.
// Text form: "millis:<num>:<ms>", "words:<num>", "lines:<num>" or "page".
type ScrollRate struct {
	Kind ScrollKind
	Num  int // units, words or lines per step; always >= 1 outside ScrollPage
	Ms   int // sleep after each ScrollMillis step
}

func Millis(num, ms int) ScrollRate { return ScrollRate{Kind: ScrollMillis, Num: num, Ms: ms} }
func Words(num int) ScrollRate      { return ScrollRate{Kind: ScrollWords, Num: num} }
func Lines(num int) ScrollRate      { return ScrollRate{Kind: ScrollLines, Num: num} }
func OnePage() ScrollRate           { return ScrollRate{Kind: ScrollPage} }

// ParseScrollRate parses the text form
func ParseScrollRate(s string) (ScrollRate, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), ":")

	positive := func(p string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%w %q: %q must be a positive integer", ErrInvalidScrollRate, s, p)
		}
		return n, nil
	}

	switch {
	case parts[0] == "page" && len(parts) == 1:
		return OnePage(), nil
	case parts[0] == "millis" && len(parts) == 3:
		num, err := positive(parts[1])
		if err != nil {
			return ScrollRate{}, err
		}
		ms, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || ms < 0 {
			return ScrollRate{}, fmt.Errorf("%w %q: bad millisecond count", ErrInvalidScrollRate, s)
		}
		return Millis(num, ms), nil
	case parts[0] == "words" && len(parts) == 2:
		num, err := positive(parts[1])
		if err != nil {
			return ScrollRate{}, err
		}
		return Words(num), nil
	case parts[0] == "lines" && len(parts) == 2:
		num, err := positive(parts[1])
		if err != nil {
			return ScrollRate{}, err
		}
		return Lines(num), nil
	}
	return ScrollRate{}, fmt.Errorf("%w %q", ErrInvalidScrollRate, s)
}

func (r ScrollRate) String() string {
	switch r.Kind {
	case ScrollMillis:
		return fmt.Sprintf("millis:%d:%d", r.Num, r.Ms)
	case ScrollWords:
		return fmt.Sprintf("words:%d", r.Num)
	case ScrollLines:
		return fmt.Sprintf("lines:%d", r.Num)
	}
	return "page"
}

func (r ScrollRate) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ScrollRate) UnmarshalText(b []byte) error {
	v, err := ParseScrollRate(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
