// Package session holds the state of an interactive transcription window:
// the selected file, the language and model choices, the editable result
// text and which actions are currently enabled.
//
// A Session is owned by a single UI goroutine. The background job talks to
// it only through the event channel returned by Events.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"studiokit/internal/api"
	"studiokit/internal/config"
	"studiokit/internal/transcript"
	"studiokit/internal/worker"
)

var (
	ErrNoFile          = errors.New("Select an audio file first.")
	ErrBusy            = errors.New("a transcription is already running")
	ErrNothingToExport = errors.New("There is no text to export.")
	ErrUnsupportedFile = errors.New("unsupported audio file")
)

const (
	StatusReady    = "Ready"
	StatusRunning  = "Transcribing..."
	StatusComplete = "Transcription complete!"
	StatusFailed   = "Transcription failed"
	StatusCopied   = "Text copied to clipboard!"

	NoFileLabel = "No file selected"
)

// AudioExtensions is the file picker's audio filter.
var AudioExtensions = []string{".mp3", ".wav", ".ogg", ".flac"}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// Starter launches a background job. worker.Start satisfies it.
type Starter func(ctx context.Context, opts worker.Options) <-chan worker.Event

// Options configures a new Session.
type Options struct {
	API         api.Config
	Language    string
	Model       string
	Prompt      string
	Temperature float32

	// Start defaults to worker.Start.
	Start Starter
}

// Session is the transcriber window state.
type Session struct {
	opts Options

	audioPath string
	language  string
	model     string

	text       string
	transcript *transcript.Transcript
	status     string
	lastError  string

	busy   bool
	events <-chan worker.Event
}

// New returns a Session with the configured language and model selected.
func New(opts Options) (*Session, error) {
	if opts.Start == nil {
		opts.Start = worker.Start
	}
	lang := opts.Language
	if lang == "" {
		lang = config.DefaultLanguage
	}
	code, err := config.ParseLanguage(lang)
	if err != nil {
		return nil, err
	}
	model := opts.Model
	if model == "" {
		model = config.DefaultModel
	}
	if !config.IsSupportedModel(model) {
		return nil, fmt.Errorf("unsupported model %q", model)
	}
	return &Session{
		opts:     opts,
		language: code,
		model:    model,
		status:   StatusReady,
	}, nil
}

// SelectOptions mirrors the file picker's filter choice.
type SelectOptions struct {
	AllFiles bool
}

// SelectFile chooses the audio file for the next run.
func (s *Session) SelectFile(path string, opts SelectOptions) error {
	if s.busy {
		return ErrBusy
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrNoFile
	}
	if !opts.AllFiles && !IsAudioFile(path) {
		return fmt.Errorf("%w: %s (expected one of %s)", ErrUnsupportedFile,
			filepath.Base(path), strings.Join(AudioExtensions, " "))
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	s.audioPath = path
	slog.Debug("audio file selected", "path", path)
	return nil
}

// IsAudioFile reports whether path passes the audio filter.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range AudioExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// SetLanguage accepts a code or a selector label.
func (s *Session) SetLanguage(v string) error {
	code, err := config.ParseLanguage(v)
	if err != nil {
		return err
	}
	s.language = code
	return nil
}

// SetModel selects one of config.Models.
func (s *Session) SetModel(name string) error {
	name = strings.TrimSpace(name)
	if !config.IsSupportedModel(name) {
		return fmt.Errorf("unsupported model %q (choose one of %s)", name, strings.Join(config.Models, ", "))
	}
	s.model = name
	return nil
}

// Start launches a transcription of the selected file and disables the
// Transcribe and Select actions until the job ends.
func (s *Session) Start(ctx context.Context) error {
	if s.audioPath == "" {
		return ErrNoFile
	}
	if s.busy {
		return ErrBusy
	}

	s.busy = true
	s.status = StatusRunning
	s.lastError = ""
	s.events = s.opts.Start(ctx, worker.Options{
		API:         s.opts.API,
		InputPath:   s.audioPath,
		Language:    s.language,
		Model:       s.model,
		Prompt:      s.opts.Prompt,
		Temperature: s.opts.Temperature,
	})
	return nil
}

// Events returns the running job's notifications, or nil when idle.
func (s *Session) Events() <-chan worker.Event {
	return s.events
}

// Handle applies one worker notification to the window state.
func (s *Session) Handle(ev worker.Event) {
	switch ev.Kind {
	case worker.EventUpdate:
		s.status = ev.Message
	case worker.EventFinished:
		s.transcript = ev.Transcript
		s.text = ""
		if ev.Transcript != nil {
			s.text = ev.Transcript.Text
		}
		s.status = StatusComplete
		s.finish()
	case worker.EventError:
		s.lastError = ev.Message
		s.status = StatusFailed
		s.finish()
	}
}

// Closed must be called when the event channel closes without a terminal
// event, so the actions are not left disabled.
func (s *Session) Closed() {
	if s.busy {
		s.lastError = "Transcription error: job ended unexpectedly"
		s.status = StatusFailed
		s.finish()
	}
}

func (s *Session) finish() {
	s.busy = false
	s.events = nil
}

// Wait consumes events until the running job ends.
func (s *Session) Wait(ctx context.Context) error {
	for s.busy {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.Closed()
				break
			}
			s.Handle(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.lastError != "" {
		return errors.New(s.lastError)
	}
	return nil
}

// SetText replaces the result text, as an edit in the text area would.
func (s *Session) SetText(text string) {
	s.text = text
}

// Export writes the result text to path. A .srt path gets SubRip output when
// the result carries segment timings and the text was not edited.
func (s *Session) Export(path string) error {
	if strings.TrimSpace(s.text) == "" {
		return ErrNothingToExport
	}
	content := s.text
	if strings.EqualFold(filepath.Ext(path), ".srt") && s.transcript.HasTimings() && s.text == s.transcript.Text {
		content = transcript.RenderSRT(s.transcript.Segments, transcript.DefaultCharsPerLine)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("save transcription: %w", err)
	}
	slog.Info("transcription saved", "path", path)
	return nil
}

// Copy puts the result text on the clipboard.
func (s *Session) Copy(cb Clipboard) error {
	if strings.TrimSpace(s.text) == "" {
		return ErrNothingToExport
	}
	if err := cb.WriteAll(s.text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	s.status = StatusCopied
	return nil
}

func (s *Session) TranscribeEnabled() bool { return s.audioPath != "" && !s.busy }
func (s *Session) SelectEnabled() bool     { return !s.busy }
func (s *Session) Busy() bool              { return s.busy }
func (s *Session) Status() string          { return s.status }
func (s *Session) Text() string            { return s.text }
func (s *Session) LastError() string       { return s.lastError }
func (s *Session) Language() string        { return s.language }
func (s *Session) Model() string           { return s.model }
func (s *Session) AudioPath() string       { return s.audioPath }

// FileLabel is the selected-file caption.
func (s *Session) FileLabel() string {
	if s.audioPath == "" {
		return NoFileLabel
	}
	return "File: " + filepath.Base(s.audioPath)
}
