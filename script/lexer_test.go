package script

import (
	"strings"
	"testing"
)

func tokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestMatchSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
		n    int
		ok   bool
	}{
		{"fail", "", 0, false},
		{"$success$", "success", 9, true},
		{"$no luck&", "", 0, false},
		{"so $close$", "", 0, false},
		{"$special_-+-3chars$", "special_-+-3chars", 19, true},
		{"$var$ and more text", "var", 5, true},
	}
	for _, tt := range tests {
		tok, n, ok := matchSymbol(tt.in)
		if ok != tt.ok {
			t.Errorf("matchSymbol(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (!tok.Equal(Symbol(tt.want)) || n != tt.n) {
			t.Errorf("matchSymbol(%q) = %v/%d, want %q/%d", tt.in, tok, n, tt.want, tt.n)
		}
	}
}

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Token
		n    int
		ok   bool
	}{
		{"fail", Token{}, 0, false},
		{"{{ one : arg }}", Command("one", []string{"arg"}, false), 15, true},
		{"{{ properly : formatted |,| command }}", Command("properly", []string{"formatted", "command"}, false), 38, true},
		{"{{seems:legal|,|enough}}", Command("seems", []string{"legal", "enough"}, false), 24, true},
		{"{{trailing: comma |,| }}", Command("trailing", []string{"comma", ""}, false), 24, true},
		{"{{{}}{}{}}", Token{}, 0, false},
		{"{print : here}", Token{}, 0, false},
		{" {{ gotta : start |,| with |,| it }}", Token{}, 0, false},
		{"{{ must_be : whole |,| line}} fdasfkdlsafjd;slkfjdlas;", Token{}, 0, false},
		{"{{ command : is |,| entire |,| line }}\n", Command("command", []string{"is", "entire", "line"}, false), 39, true},
		{"{{ space_at_end_is_fine : ok}}", Command("space_at_end_is_fine", []string{"ok"}, false), 30, true},
		{"{{ : }}", Token{}, 0, false},
		{"{{ empty_arg : }}", Command("empty_arg", []string{""}, false), 17, true},
		{"{{ no_arg :}}", Command("no_arg", nil, false), 13, true},
		{"{{ cmd : arg1 |,| arg2 : wait_for_kb }}", Command("cmd", []string{"arg1", "arg2"}, true), 39, true},
		{"{{ cmd : arg : last part, if present, must be 'wait_for_kb' }}", Token{}, 0, false},
		{"{{ must_have_first_colon }}", Token{}, 0, false},
		{"{{ split : across\nlines }}", Token{}, 0, false},
		{"{{ a : b }}\nc }}", Command("a", []string{"b"}, false), 12, true},
		{"{{\nname : x }}", Token{}, 0, false},
		{"{{ :: wait_for_kb }}", Token{}, 0, false},
		{"{{ repeat : . |,| 8 |,| 450ms : wait_for_kb }}", Command("repeat", []string{".", "8", "450ms"}, true), 46, true},
		{
			"{{ jump_if_eq : ${{ANSWER}} |,| y |,| yes section |,| no section }}",
			Command("jump_if_eq", []string{"${{ANSWER}}", "y", "yes section", "no section"}, false),
			67, true,
		},
	}
	for _, tt := range tests {
		tok, n, ok := matchCommand(tt.in)
		if ok != tt.ok {
			t.Errorf("matchCommand(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if !tok.Equal(tt.want) {
			t.Errorf("matchCommand(%q) = %v, want %v", tt.in, tok, tt.want)
		}
		if n != tt.n {
			t.Errorf("matchCommand(%q) consumed %d, want %d", tt.in, n, tt.n)
		}
	}
}

func TestMatchVariable(t *testing.T) {
	tests := []struct {
		in   string
		want string
		n    int
		ok   bool
	}{
		{"fail", "", 0, false},
		{"$almost$", "", 0, false},
		{"${{finally}}", "finally", 12, true},
		{"${{no spaces}}", "", 0, false},
		{"${{_=?!2#232}} huh?", "_=?!2#232", 14, true},
	}
	for _, tt := range tests {
		tok, n, ok := matchVariable(tt.in)
		if ok != tt.ok {
			t.Errorf("matchVariable(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (!tok.Equal(Variable(tt.want)) || n != tt.n) {
			t.Errorf("matchVariable(%q) = %v/%d", tt.in, tok, n)
		}
	}
}

func TestMatchPageEnd(t *testing.T) {
	if _, n, ok := matchPageEnd("/PAGE/"); !ok || n != 6 {
		t.Errorf("expected /PAGE/ to match with length 6")
	}
	if _, _, ok := matchPageEnd("/page/"); ok {
		t.Errorf("lowercase page marker must not match")
	}
	if _, n, ok := matchPageEnd("/PAGE/ other stuff is allowed"); !ok || n != 6 {
		t.Errorf("trailing text after /PAGE/ must be allowed")
	}
}

func TestMatchChar(t *testing.T) {
	tests := []struct {
		in   string
		want rune
		n    int
		ok   bool
	}{
		{"fail", 0, 0, false},
		{"{c}", 'c', 3, true},
		{"{.}", '.', 3, true},
		{"{too_long}", 0, 0, false},
		{"{{}", '{', 3, true},
		{"{}}", '}', 3, true},
		{"{é}", 'é', 4, true},
		{"must be at beginning {n}", 0, 0, false},
	}
	for _, tt := range tests {
		tok, n, ok := matchChar(tt.in)
		if ok != tt.ok {
			t.Errorf("matchChar(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (tok.Char != tt.want || n != tt.n) {
			t.Errorf("matchChar(%q) = %v/%d, want %q/%d", tt.in, tok, n, tt.want, tt.n)
		}
	}
}

func TestMatchSectionStart(t *testing.T) {
	tests := []struct {
		in   string
		want string
		n    int
		ok   bool
	}{
		{"fail", "", 0, false},
		{"#=$ secret section $=#", "secret section", 22, true},
		{"#=$  no_trim   $=#", " no_trim  ", 18, true},
		{"#=$Need space$=#", "", 0, false},
		{"#=$ Need to be whole line $=# blah blah extra", "", 0, false},
		{"#=$ special chars -?.#&?$ in middle are fine $=#", "special chars -?.#&?$ in middle are fine", 48, true},
		{"#=$ 42 $=#", "", 0, false},
	}
	for _, tt := range tests {
		tok, n, ok := matchSectionStart(tt.in)
		if ok != tt.ok {
			t.Errorf("matchSectionStart(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (!tok.Equal(SectionStart(tt.want)) || n != tt.n) {
			t.Errorf("matchSectionStart(%q) = %v/%d", tt.in, tok, n)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Token
	}{
		{
			name: "single command",
			in:   "{{ one : arg }}",
			want: []Token{Command("one", []string{"arg"}, false)},
		},
		{
			name: "variable then text",
			in:   "${{RED_LFG}} hi",
			want: []Token{Variable("RED_LFG"), Text(" hi")},
		},
		{
			name: "blocking command",
			in:   "{{ cmd : a |,| b : wait_for_kb }}",
			want: []Token{Command("cmd", []string{"a", "b"}, true)},
		},
		{
			name: "consecutive page ends",
			in:   "Page 1/PAGE/ Page 2/PAGE//PAGE/Fin.",
			want: []Token{
				Text("Page 1"), PageEnd(), Text(" Page 2"), PageEnd(), PageEnd(), Text("Fin."),
			},
		},
		{
			name: "story excerpt",
			in: "Once upon a time, there was a large and terrifying ${{RED_LFG}} credit card bill!\n" +
				"{{ backspace : 10 |,| chars |,| one_by_one }}\n" +
				"OVERDUE Credit Card Bill!",
			want: []Token{
				Text("Once upon a time, there was a large and terrifying "),
				Variable("RED_LFG"),
				Text(" credit card bill!\n"),
				Command("backspace", []string{"10", "chars", "one_by_one"}, false),
				Text("OVERDUE Credit Card Bill!"),
			},
		},
		{
			name: "dollar sign in prose",
			in: "Your total comes out to ${{BLUE_DBG}} $5.98. Is that ok?\n" +
				"{{ user_input : $response$}}\n" +
				"You answered '${{response}}'.",
			want: []Token{
				Text("Your total comes out to "),
				Variable("BLUE_DBG"),
				Text(" $5.98. Is that ok?\n"),
				Command("user_input", []string{"$response$"}, false),
				Text("You answered '"),
				Variable("response"),
				Text("'."),
			},
		},
		{
			name: "section markers",
			in:   "intro\n#=$ cave $=#\ninside{!}",
			want: []Token{Text("intro\n"), SectionStart("cave"), Text("inside"), Char('!')},
		},
		{
			name: "numeric section stays text",
			in:   "#=$ 7 $=#",
			want: []Token{Text("#=$ 7 $=#")},
		},
		{
			name: "malformed command degrades to text",
			in:   "{{ must_have_first_colon }}",
			want: []Token{Text("{{ must_have_first_colon }}")},
		},
		{
			name: "command ends at its own line",
			in:   "{{ choice_menu : pick |,| red |,| blue }}\nchose ${{pick}}",
			want: []Token{
				Command("choice_menu", []string{"pick", "red", "blue"}, false),
				Text("chose "),
				Variable("pick"),
			},
		},
		{
			name: "closing braces on a later line",
			in:   "{{ pause : 1s\nstill prose }}\n",
			want: []Token{Text("{{ pause : 1s\nstill prose }}\n")},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !tokensEqual(got, tt.want) {
				t.Errorf("Tokenize(%q)\n got: %v\nwant: %v", tt.in, got, tt.want)
			}
		})
	}
}

// Input without trigger characters must come back as a single text token
func TestTokenizeLiteralRoundTrip(t *testing.T) {
	inputs := []string{
		"plain words only",
		"multi\nline\n\ttext with tabs",
		"unicode: héllo wörld ✓",
		strings.Repeat("long ", 500),
	}
	for _, in := range inputs {
		got := Tokenize(in)
		if len(got) != 1 || !got[0].Equal(Text(in)) {
			t.Errorf("Tokenize(%q) = %v, want single Text", in, got)
		}
	}
}

func TestTokenizeDropsEmpty(t *testing.T) {
	for _, tok := range Tokenize("{{ a :}}\n${{x}}/PAGE/") {
		if tok.IsEmpty() {
			t.Errorf("empty token %v leaked into output", tok)
		}
	}
}
