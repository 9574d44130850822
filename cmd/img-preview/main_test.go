package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteToFileEndsWithColorReset(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cat.ans")
	err := writeTo(out, func(w io.Writer) error {
		_, err := io.WriteString(w, "\x1b[31m##")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "\x1b[31m##\x1b[39m\x1b[49m"; string(got) != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestWriteToStopsOnRenderError(t *testing.T) {
	boom := errors.New("decode failed")
	out := filepath.Join(t.TempDir(), "none.ans")
	if err := writeTo(out, func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
