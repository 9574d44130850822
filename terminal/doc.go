// @focus: #sys { term }
// Package terminal provides the small ANSI action set used by the story
// renderer together with raw keyboard access.
//
// Features:
//   - Ordered escape action sequences (erase, cursor, color reset)
//   - Scoped raw mode via RawGuard, released on every exit path
//   - Non-blocking single byte keyboard polling
//   - SIGWINCH resize notification
//   - Clean terminal restoration on panic
//
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
