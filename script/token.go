package script

import (
	"fmt"
	"slices"
	"strings"
)

// TokenType represents the kind of a lexical token
type TokenType int

const (
	TokenText         TokenType = iota // blah
	TokenCommand                       // {{ cmd : arg1 |,| arg2 |,| ... : wait_for_kb }}
	TokenVariable                      // ${{var}}
	TokenSymbol                        // $sym$
	TokenPageEnd                       // /PAGE/
	TokenChar                          // {c}
	TokenSectionStart                  // #=$ section name $=#
)

var tokenTypeNames = [...]string{
	TokenText:         "Text",
	TokenCommand:      "Command",
	TokenVariable:     "Variable",
	TokenSymbol:       "Symbol",
	TokenPageEnd:      "PageEnd",
	TokenChar:         "Char",
	TokenSectionStart: "SectionStart",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenTypeNames) {
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
	return tokenTypeNames[t]
}

// Token is a single lexical element of a story script.
// Text holds the literal for Text, the name for Command/Variable/Symbol/SectionStart.
// Args and Blocking are only meaningful for commands, Char only for TokenChar.
type Token struct {
	Type     TokenType
	Text     string
	Args     []string
	Blocking bool
	Char     rune
}

func Text(s string) Token         { return Token{Type: TokenText, Text: s} }
func Variable(name string) Token  { return Token{Type: TokenVariable, Text: name} }
func Symbol(name string) Token    { return Token{Type: TokenSymbol, Text: name} }
func PageEnd() Token              { return Token{Type: TokenPageEnd} }
func Char(c rune) Token           { return Token{Type: TokenChar, Char: c} }
func SectionStart(n string) Token { return Token{Type: TokenSectionStart, Text: n} }

// Command builds a command token; a nil args slice is normalized to empty
func Command(name string, args []string, blocking bool) Token {
	if args == nil {
		args = []string{}
	}
	return Token{Type: TokenCommand, Text: name, Args: args, Blocking: blocking}
}

// IsText reports whether the token renders as literal text
func (t Token) IsText() bool {
	return t.Type == TokenText || t.Type == TokenChar
}

func (t Token) IsPageEnd() bool      { return t.Type == TokenPageEnd }
func (t Token) IsSectionStart() bool { return t.Type == TokenSectionStart }
func (t Token) IsCommand() bool      { return t.Type == TokenCommand }

// IsBlockingCommand reports whether the token is a command carrying the wait_for_kb marker
func (t Token) IsBlockingCommand() bool {
	return t.Type == TokenCommand && t.Blocking
}

// IsEmpty reports tokens that carry no content and are dropped by Tokenize
func (t Token) IsEmpty() bool {
	switch t.Type {
	case TokenText, TokenCommand, TokenVariable, TokenSymbol:
		return t.Text == ""
	case TokenChar:
		return t.Char == 0
	default:
		return false
	}
}

// Equal compares tokens field by field, treating nil and empty Args alike
func (t Token) Equal(o Token) bool {
	if t.Type != o.Type || t.Text != o.Text || t.Blocking != o.Blocking || t.Char != o.Char {
		return false
	}
	return slices.Equal(t.Args, o.Args)
}

func (t Token) String() string {
	switch t.Type {
	case TokenText:
		return fmt.Sprintf("Text(%q)", t.Text)
	case TokenCommand:
		quoted := make([]string, len(t.Args))
		for i, a := range t.Args {
			quoted[i] = fmt.Sprintf("%q", a)
		}
		return fmt.Sprintf("Command(%q, [%s], %t)", t.Text, strings.Join(quoted, ", "), t.Blocking)
	case TokenChar:
		return fmt.Sprintf("Char(%q)", t.Char)
	case TokenPageEnd:
		return "PageEnd"
	default:
		return fmt.Sprintf("%s(%q)", t.Type, t.Text)
	}
}
