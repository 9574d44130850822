//go:build unix

package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// pollTimeoutMs bounds each blocking wait so EINTR and shutdown are noticed
const pollTimeoutMs = 100

// RawGuard holds the terminal in raw mode until Release
type RawGuard struct {
	fd  int
	old *term.State
}

// MakeRaw switches fd into raw mode
func MakeRaw(fd int) (*RawGuard, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("fd %d is not a terminal", fd)
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return &RawGuard{fd: fd, old: old}, nil
}

// Release restores the saved mode. Safe to call multiple times
func (g *RawGuard) Release() error {
	if g == nil || g.old == nil {
		return nil
	}
	err := term.Restore(g.fd, g.old)
	g.old = nil
	return err
}

// Keyboard reads single bytes from stdin while holding raw mode
type Keyboard struct {
	fd    int
	guard *RawGuard
	buf   [1]byte
	err   error
}

// OpenKeyboard enters raw mode on stdin
func OpenKeyboard() (*Keyboard, error) {
	fd := int(os.Stdin.Fd())
	guard, err := MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &Keyboard{fd: fd, guard: guard}, nil
}

// Close leaves raw mode. Safe to call multiple times
func (k *Keyboard) Close() error {
	return k.guard.Release()
}

// wait polls stdin for readability, timeout in ms (0 = non-blocking)
func (k *Keyboard) wait(timeout int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(k.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, timeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func (k *Keyboard) read() (byte, error) {
	for {
		n, err := unix.Read(k.fd, k.buf[:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return k.buf[0], nil
	}
}

// Poll returns a pending byte without blocking. A failed read is kept
// for Err.
func (k *Keyboard) Poll() (byte, bool) {
	if k.err != nil {
		return 0, false
	}
	ready, err := k.wait(0)
	if err != nil {
		k.err = err
		return 0, false
	}
	if !ready {
		return 0, false
	}
	b, err := k.read()
	if err != nil {
		k.err = err
		return 0, false
	}
	return b, true
}

// Err returns the error that ended input, io.EOF once stdin is closed
func (k *Keyboard) Err() error { return k.err }

// ReadByte blocks until a byte arrives
func (k *Keyboard) ReadByte() (byte, error) {
	if k.err != nil {
		return 0, k.err
	}
	for {
		ready, err := k.wait(pollTimeoutMs)
		if err != nil {
			k.err = err
			return 0, err
		}
		if ready {
			b, err := k.read()
			if err != nil {
				k.err = err
			}
			return b, err
		}
	}
}

// Drain discards pending input
func (k *Keyboard) Drain() {
	for {
		if _, ok := k.Poll(); !ok {
			return
		}
	}
}
