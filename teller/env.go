package teller

import (
	"os"
	"os/user"

	"github.com/lixenwraith/tales/buffer"
)

// Variables is the name to value table behind ${{name}} tokens
type Variables map[string]string

var colorNames = [...]struct {
	name string
	base buffer.BaseColor
}{
	{"RED", buffer.Red},
	{"GREEN", buffer.Green},
	{"YELLOW", buffer.Yellow},
	{"BLUE", buffer.Blue},
	{"MAGENTA", buffer.Magenta},
	{"CYAN", buffer.Cyan},
	{"GREY", buffer.Grey},
}

// NewVariables returns the builtin table: every color as <NAME>_DFG, _DBG,
// _LFG and _LBG escape codes, the default colors, a few text effects and
// USER_NAME when the user can be resolved
func NewVariables() Variables {
	v := Variables{}
	for _, c := range colorNames {
		v[c.name+"_DFG"] = buffer.Foreground(buffer.Dark(c.base)).Sequence()
		v[c.name+"_DBG"] = buffer.Background(buffer.Dark(c.base)).Sequence()
		v[c.name+"_LFG"] = buffer.Foreground(buffer.Light(c.base)).Sequence()
		v[c.name+"_LBG"] = buffer.Background(buffer.Light(c.base)).Sequence()
	}
	v["DEFCOL_FG"] = buffer.Foreground(buffer.DefaultColor).Sequence()
	v["DEFCOL_BG"] = buffer.Background(buffer.DefaultColor).Sequence()
	v["BOLD"] = buffer.Effect(buffer.EffectBold).Sequence()
	v["DIM"] = buffer.Effect(buffer.EffectDim).Sequence()
	v["UNDERLINE"] = buffer.Effect(buffer.EffectUnderline).Sequence()
	v["BLINK"] = buffer.Effect(buffer.EffectBlink).Sequence()
	v["NORMAL"] = buffer.Reset.Sequence()

	if name := userName(); name != "" {
		v["USER_NAME"] = name
	}
	return v
}

func userName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// Get returns the value of name; unknown names are empty
func (v Variables) Get(name string) string { return v[name] }

func (v Variables) Set(name, value string) { v[name] = value }
