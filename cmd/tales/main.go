package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/tales/audio"
	"github.com/lixenwraith/tales/buffer"
	"github.com/lixenwraith/tales/config"
	"github.com/lixenwraith/tales/library"
	"github.com/lixenwraith/tales/logging"
	"github.com/lixenwraith/tales/phrase"
	"github.com/lixenwraith/tales/story"
	"github.com/lixenwraith/tales/teller"
	"github.com/lixenwraith/tales/terminal"
)

var (
	configFlag = flag.String("config", config.DefaultPath, "options file")
	storyFlag  = flag.String("story", "", "tell this file directly instead of showing the menu")
	debugFlag  = flag.String("debug", "", "print the 'tokens' or 'units' of -story instead of telling it")
)

func main() {
	// Panic Recovery: a crash inside a telling leaves the terminal in raw mode
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\n\x1b[31mTALES CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	opts, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load options: %v (using defaults)\n", err)
		opts = config.Default()
	}
	if err := opts.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring environment override: %v\n", err)
	}

	logging.Init(logging.Merge(logging.Options{
		Level:     opts.Logging.Level,
		Format:    opts.Logging.Format,
		File:      opts.Logging.File,
		AddSource: opts.Logging.AddSource,
	}))
	defer logging.Close()

	a := newApp(opts)
	defer a.close()

	switch {
	case *debugFlag != "":
		err = a.debugFile(*debugFlag, *storyFlag)
	case *storyFlag != "":
		err = a.tell(*storyFlag)
	default:
		err = a.menu()
	}
	if err != nil {
		a.log.Error("exiting", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what outlives a single telling
type app struct {
	opts    *config.Options
	log     *slog.Logger
	cues    *audio.Cues
	phrases phrase.Source
	in      *bufio.Reader
	out     io.Writer
}

func newApp(opts *config.Options) *app {
	a := &app{
		opts: opts,
		log:  logging.WithComponent("main"),
		in:   bufio.NewReader(os.Stdin),
		out:  os.Stdout,
	}
	for _, k := range opts.UnknownKeys() {
		a.log.Warn("unknown option ignored", "key", k)
	}

	// Audio is optional; a missing sound device only costs the cues
	a.cues = audio.New(opts.Audio.Enabled, opts.Audio.Volume)
	if err := a.cues.Init(); err != nil {
		a.log.Warn("audio unavailable, continuing without cues", "error", err)
	}

	offline := phrase.NewOffline(time.Now().UnixNano())
	a.phrases = offline
	if ep := opts.Phrase.Endpoint; ep != "" {
		remote, err := phrase.NewHTTP(ep, opts.Phrase.RequestsPerSecond, opts.Phrase.Timeout.Duration)
		if err != nil {
			a.log.Warn("phrase endpoint rejected, using word lists", "endpoint", ep, "error", err)
		} else {
			a.phrases = phrase.Fallback{Primary: remote, Secondary: offline, Log: logging.WithComponent("phrase")}
		}
	}
	return a
}

func (a *app) close() {
	a.cues.Close()
}

// menu is the cooked-mode loop between tellings
func (a *app) menu() error {
	for {
		fmt.Fprint(a.out, "\n1. Tell me a story\n2. Debug Stuff\n3. Goodbye\n\n")
		choice, err := a.readChoice(3)
		if err != nil {
			return ignoreEOF(err)
		}

		switch choice {
		case 1:
			path, ok, err := a.pickStory()
			if err != nil || !ok {
				return ignoreEOF(err)
			}
			if err := a.tell(path); err != nil {
				a.log.Error("telling failed", "story", path, "error", err)
				fmt.Fprintf(a.out, "Could not tell %s: %v\n", path, err)
			}
		case 2:
			if err := a.debugMenu(); err != nil {
				return ignoreEOF(err)
			}
		case 3:
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// readChoice reads a number in 0..n, asking again until one is entered
func (a *app) readChoice(n int) (int, error) {
	for {
		fmt.Fprint(a.out, "> ")
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			return 0, err
		}
		if c, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && c >= 0 && c <= n {
			return c, nil
		}
		fmt.Fprintf(a.out, "Pick a number from 0 to %d\n", n)
	}
}

// pickStory lists the stories directory; ok is false when the reader backs out
func (a *app) pickStory() (path string, ok bool, err error) {
	lib, err := library.New(a.opts.Story.StoriesDirectory, a.opts.IgnorePatterns, logging.WithComponent("library"))
	if err != nil {
		return "", false, err
	}
	entries, err := lib.Discover()
	if errors.Is(err, library.ErrNoStories) {
		fmt.Fprintf(a.out, "No stories in %s\n", lib.Dir())
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	fmt.Fprintln(a.out)
	for i, e := range entries {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, e.Name)
	}
	fmt.Fprint(a.out, "0. Back\n\n")

	c, err := a.readChoice(len(entries))
	if err != nil || c == 0 {
		return "", false, err
	}
	return entries[c-1].Path, true, nil
}

func (a *app) debugMenu() error {
	path, ok, err := a.pickStory()
	if err != nil || !ok {
		return err
	}
	fmt.Fprint(a.out, "\n1. Tokens\n2. Units\n0. Back\n\n")
	c, err := a.readChoice(2)
	if err != nil || c == 0 {
		return err
	}
	view := "tokens"
	if c == 2 {
		view = "units"
	}
	if err := a.debugFile(view, path); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return nil
}

// tell plays one story in raw mode until it ends or is quit
func (a *app) tell(path string) error {
	src, err := library.Load(path)
	if err != nil {
		return err
	}
	cols, rows := terminal.Size()
	s, err := story.Parse(src, story.LayoutForTerminal(cols, rows))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	kb, err := terminal.OpenKeyboard()
	if err != nil {
		return err
	}
	defer kb.Close()

	resize := terminal.WatchResize()
	defer resize.Stop()

	log := logging.WithComponent("teller").With("story", path)
	st, err := teller.New(s, teller.OptionsFrom(a.opts), teller.Deps{
		Keyboard: kb,
		Out:      a.out,
		Phrases:  a.phrases,
		Cues:     a.cues,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	log.Info("telling started", "sections", s.NumSections(), "cols", cols, "rows", rows)
	terminal.Actions{terminal.ClearScreen(), terminal.SetCursor(0, 0)}.WriteTo(a.out)

	buf := buffer.New(rows, cols)
	for !st.Done() {
		if ev, ok := resize.Pending(); ok {
			log.Warn("terminal resized, layout kept until the story is reopened", "cols", ev.Cols, "rows", ev.Rows)
		}
		st.Step(buf)
		st.Transition(buf)
	}
	st.Finish(buf)
	log.Info("telling finished", "completed", st.Over(), "place", s.Place().String())
	return nil
}
