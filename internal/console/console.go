// Package console drives a transcription session from a line-oriented
// terminal. Input is read on its own goroutine so the loop keeps reacting to
// job notifications while the user is typing.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"studiokit/internal/config"
	"studiokit/internal/session"
	"studiokit/internal/worker"
)

var errQuit = errors.New("quit")

const placeholder = "(The transcription will appear here...)"

// Console is the terminal front end of a Session.
type Console struct {
	s    *session.Session
	out  io.Writer
	clip session.Clipboard
}

// New returns a Console writing to out.
func New(s *session.Session, out io.Writer, clip session.Clipboard) *Console {
	return &Console{s: s, out: out, clip: clip}
}

// Run reads commands from in until quit, end of input or ctx is done. A job
// still running when input ends is waited for.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.banner()

	lines := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readLines(gctx, in, lines)
	})
	g.Go(func() error {
		return c.loop(gctx, lines)
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-gctx.Done():
		// The reader may be parked in a blocking read; do not wait for it.
		err = context.Cause(gctx)
	}
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) error {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		select {
		case lines <- line:
		case <-ctx.Done():
			return nil
		}
		if isQuit(line) {
			return nil
		}
	}
	return sc.Err()
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func (c *Console) loop(ctx context.Context, lines <-chan string) error {
	c.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				if !c.s.Busy() {
					return errQuit
				}
				continue
			}
			if isQuit(line) {
				if c.s.Busy() {
					fmt.Fprintln(c.out, "Waiting for the running transcription to finish...")
					lines = nil
					continue
				}
				return errQuit
			}
			c.exec(ctx, line)
			c.prompt()
		case ev, ok := <-c.s.Events():
			if !ok {
				c.s.Closed()
				c.report(worker.Event{Kind: worker.EventError, Message: c.s.LastError()})
			} else {
				c.s.Handle(ev)
				c.report(ev)
			}
			if lines == nil && !c.s.Busy() {
				return errQuit
			}
		}
	}
}

func (c *Console) report(ev worker.Event) {
	switch ev.Kind {
	case worker.EventUpdate:
		fmt.Fprintf(c.out, "[%s]\n", ev.Message)
	case worker.EventFinished:
		fmt.Fprintf(c.out, "[%s]\n", c.s.Status())
		fmt.Fprintln(c.out, c.s.Text())
	case worker.EventError:
		fmt.Fprintf(c.out, "Error: %s\n", ev.Message)
	}
}

func (c *Console) exec(ctx context.Context, line string) {
	if line == "" {
		return
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "help", "?":
		c.help()
	case "open":
		opts := session.SelectOptions{}
		if rest, ok := strings.CutPrefix(arg, "--all"); ok && (rest == "" || rest[0] == ' ') {
			opts.AllFiles = true
			arg = strings.TrimSpace(rest)
		}
		if arg == "" {
			c.fail(errors.New("usage: open [--all] <path>"))
			return
		}
		if err := c.s.SelectFile(unquote(arg), opts); err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintln(c.out, c.s.FileLabel())
	case "language", "lang":
		if arg == "" {
			for _, l := range config.Languages {
				mark := " "
				if l.Code == c.s.Language() {
					mark = "*"
				}
				fmt.Fprintf(c.out, " %s %s\n", mark, l.Label())
			}
			return
		}
		if err := c.s.SetLanguage(arg); err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintf(c.out, "Language: %s\n", c.s.Language())
	case "model":
		if arg == "" {
			for _, m := range config.Models {
				mark := " "
				if m == c.s.Model() {
					mark = "*"
				}
				fmt.Fprintf(c.out, " %s %s\n", mark, m)
			}
			return
		}
		if err := c.s.SetModel(arg); err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintf(c.out, "Model: %s\n", c.s.Model())
	case "transcribe", "t":
		if err := c.s.Start(ctx); err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintf(c.out, "[%s]\n", c.s.Status())
	case "status":
		fmt.Fprintf(c.out, "Status: %s\n%s\nLanguage: %s  Model: %s\nTranscribe: %s  Select: %s\n",
			c.s.Status(), c.s.FileLabel(), c.s.Language(), c.s.Model(),
			onOff(c.s.TranscribeEnabled()), onOff(c.s.SelectEnabled()))
	case "show":
		if strings.TrimSpace(c.s.Text()) == "" {
			fmt.Fprintln(c.out, placeholder)
			return
		}
		fmt.Fprintln(c.out, c.s.Text())
	case "edit":
		c.s.SetText(arg)
	case "export", "save":
		path := unquote(arg)
		if path == "" {
			c.fail(errors.New("usage: export <file.txt|file.srt>"))
			return
		}
		if err := c.s.Export(path); err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintf(c.out, "Transcription saved to %s\n", path)
	case "copy":
		if err := c.s.Copy(c.clip); err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintln(c.out, c.s.Status())
	default:
		fmt.Fprintf(c.out, "Unknown command %q. Type 'help' for the list.\n", cmd)
	}
}

// fail prints err as a warning for user mistakes and as an error otherwise.
func (c *Console) fail(err error) {
	switch {
	case errors.Is(err, session.ErrNoFile),
		errors.Is(err, session.ErrNothingToExport),
		errors.Is(err, session.ErrBusy):
		fmt.Fprintf(c.out, "Warning: %s\n", err)
	default:
		fmt.Fprintf(c.out, "Error: %s\n", err)
	}
}

func (c *Console) banner() {
	fmt.Fprintln(c.out, "Audio Transcriber")
	fmt.Fprintf(c.out, "Language: %s  Model: %s\n", c.s.Language(), c.s.Model())
	fmt.Fprintln(c.out, "Type 'help' for commands.")
}

func (c *Console) help() {
	fmt.Fprint(c.out, `Commands:
  open [--all] <path>     select an audio file (.mp3 .wav .ogg .flac)
  language [code|label]   show or set the language
  model [name]            show or set the model
  transcribe              transcribe the selected file
  status                  show status and enabled actions
  show                    print the transcription
  edit <text>             replace the transcription text
  export <path>           save as .txt (or .srt with timings)
  copy                    copy the transcription to the clipboard
  quit                    leave
`)
}

func (c *Console) prompt() {
	fmt.Fprint(c.out, "> ")
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
