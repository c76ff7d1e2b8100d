package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"studiokit/internal/api"
	"studiokit/internal/transcript"
)

// EventKind identifies a worker notification.
type EventKind int

const (
	EventUpdate EventKind = iota
	EventFinished
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventFinished:
		return "finished"
	case EventError:
		return "error"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a one-shot notification from a running job. Finished carries
// Transcript; Update and Error carry Message.
type Event struct {
	Kind       EventKind
	Message    string
	Transcript *transcript.Transcript
}

// Terminal reports whether no further events follow.
func (e Event) Terminal() bool {
	return e.Kind == EventFinished || e.Kind == EventError
}

const (
	MsgInitializing = "Initializing..."
	MsgSending      = "Sending file for transcription..."
)

// Options configures one transcription job.
type Options struct {
	API         api.Config
	InputPath   string
	Language    string
	Model       string
	Prompt      string
	Temperature float32
}

// Start runs a job on its own goroutine. The returned channel receives the
// job's notifications and is closed after the terminal event.
func Start(ctx context.Context, opts Options) <-chan Event {
	events := make(chan Event, 4)
	go func() {
		defer close(events)
		Run(ctx, opts, func(ev Event) {
			events <- ev
		})
	}()
	return events
}

// Run executes a job synchronously, reporting through emit. It emits exactly
// one terminal event.
func Run(ctx context.Context, opts Options, emit func(Event)) {
	emit(Event{Kind: EventUpdate, Message: MsgInitializing})

	client, err := api.NewClient(opts.API)
	if err != nil {
		slog.Warn("transcription not started", "err", err)
		emit(Event{Kind: EventError, Message: err.Error()})
		return
	}

	emit(Event{Kind: EventUpdate, Message: MsgSending})
	slog.Info("uploading audio", "file", filepath.Base(opts.InputPath), "language", opts.Language, "model", opts.Model)

	start := time.Now()
	tr, err := client.Transcribe(ctx, api.Request{
		FilePath:    opts.InputPath,
		Language:    opts.Language,
		Model:       opts.Model,
		Prompt:      opts.Prompt,
		Temperature: opts.Temperature,
	}, progressLogger())
	if err != nil {
		msg := "Transcription error: " + err.Error()
		if errors.Is(err, context.Canceled) {
			msg = "Transcription error: cancelled"
		}
		slog.Error("transcription failed", "file", filepath.Base(opts.InputPath), "err", err)
		emit(Event{Kind: EventError, Message: msg})
		return
	}

	slog.Info("transcription completed",
		"file", filepath.Base(opts.InputPath),
		"chars", len(tr.Text),
		"segments", len(tr.Segments),
		"elapsed", time.Since(start).Round(time.Millisecond))
	emit(Event{Kind: EventFinished, Transcript: tr})
}

// progressLogger returns a debug-level callback for reading the audio into
// the request body, throttled so large files do not flood the log.
func progressLogger() api.ProgressFunc {
	every := &rate.Sometimes{First: 1, Interval: 500 * time.Millisecond}
	return func(read, total int64) {
		every.Do(func() {
			pct := 0.0
			if total > 0 {
				pct = math.Min(float64(read)/float64(total)*100, 100)
			}
			slog.Debug("reading audio", "percent", fmt.Sprintf("%.1f%%", pct))
		})
	}
}
