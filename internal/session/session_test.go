package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiokit/internal/transcript"
	"studiokit/internal/worker"
)

// fakeJob hands the session a channel the test controls.
type fakeJob struct {
	ch   chan worker.Event
	opts worker.Options
	runs int
}

func (f *fakeJob) start(_ context.Context, opts worker.Options) <-chan worker.Event {
	f.ch = make(chan worker.Event, 4)
	f.opts = opts
	f.runs++
	return f.ch
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func newSession(t *testing.T, job *fakeJob) *Session {
	t.Helper()
	s, err := New(Options{Start: job.start, Prompt: "p"})
	require.NoError(t, err)
	return s
}

func audio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))
	return path
}

func TestNewDefaults(t *testing.T) {
	s := newSession(t, &fakeJob{})
	assert.Equal(t, "pt", s.Language())
	assert.Equal(t, "whisper-large-v3-turbo", s.Model())
	assert.Equal(t, StatusReady, s.Status())
	assert.Equal(t, NoFileLabel, s.FileLabel())
	assert.False(t, s.TranscribeEnabled())
	assert.True(t, s.SelectEnabled())
}

func TestNewRejectsUnknownChoices(t *testing.T) {
	_, err := New(Options{Language: "de"})
	assert.Error(t, err)
	_, err = New(Options{Model: "whisper-1"})
	assert.Error(t, err)
}

func TestSelectFile(t *testing.T) {
	s := newSession(t, &fakeJob{})

	err := s.SelectFile(audio(t, "notes.txt"), SelectOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.False(t, s.TranscribeEnabled())

	err = s.SelectFile(filepath.Join(t.TempDir(), "missing.mp3"), SelectOptions{})
	assert.Error(t, err)

	txt := audio(t, "notes.txt")
	require.NoError(t, s.SelectFile(txt, SelectOptions{AllFiles: true}))

	path := audio(t, "Aula.FLAC")
	require.NoError(t, s.SelectFile(path, SelectOptions{}))
	assert.Equal(t, "File: Aula.FLAC", s.FileLabel())
	assert.True(t, s.TranscribeEnabled())
}

func TestStartWithoutFile(t *testing.T) {
	job := &fakeJob{}
	s := newSession(t, job)
	assert.ErrorIs(t, s.Start(context.Background()), ErrNoFile)
	assert.Zero(t, job.runs)
	assert.False(t, s.Busy())
}

func TestActionsDisabledWhileRunningAndReenabledOnFinish(t *testing.T) {
	job := &fakeJob{}
	s := newSession(t, job)
	path := audio(t, "aula.mp3")
	require.NoError(t, s.SelectFile(path, SelectOptions{}))
	require.NoError(t, s.SetLanguage("English (en)"))
	require.NoError(t, s.SetModel("whisper-large-v3"))

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 1, job.runs)
	assert.Equal(t, "en", job.opts.Language)
	assert.Equal(t, "whisper-large-v3", job.opts.Model)
	assert.Equal(t, path, job.opts.InputPath)
	assert.Equal(t, "p", job.opts.Prompt)

	assert.True(t, s.Busy())
	assert.False(t, s.TranscribeEnabled())
	assert.False(t, s.SelectEnabled())
	assert.Equal(t, StatusRunning, s.Status())
	assert.ErrorIs(t, s.Start(context.Background()), ErrBusy)
	assert.ErrorIs(t, s.SelectFile(path, SelectOptions{}), ErrBusy)
	assert.Equal(t, 1, job.runs)

	s.Handle(worker.Event{Kind: worker.EventUpdate, Message: worker.MsgSending})
	assert.Equal(t, worker.MsgSending, s.Status())
	assert.False(t, s.TranscribeEnabled())

	s.Handle(worker.Event{Kind: worker.EventFinished, Transcript: &transcript.Transcript{Text: "hello class"}})
	assert.Equal(t, StatusComplete, s.Status())
	assert.Equal(t, "hello class", s.Text())
	assert.True(t, s.TranscribeEnabled())
	assert.True(t, s.SelectEnabled())
	assert.Nil(t, s.Events())
}

func TestActionsReenabledOnError(t *testing.T) {
	job := &fakeJob{}
	s := newSession(t, job)
	require.NoError(t, s.SelectFile(audio(t, "a.wav"), SelectOptions{}))
	require.NoError(t, s.Start(context.Background()))

	job.ch <- worker.Event{Kind: worker.EventUpdate, Message: worker.MsgInitializing}
	job.ch <- worker.Event{Kind: worker.EventError, Message: "Transcription error: boom"}
	close(job.ch)

	err := s.Wait(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Transcription error: boom", err.Error())
	assert.Equal(t, StatusFailed, s.Status())
	assert.Equal(t, "Transcription error: boom", s.LastError())
	assert.True(t, s.TranscribeEnabled())
	assert.True(t, s.SelectEnabled())
}

func TestWaitHandlesChannelClosedEarly(t *testing.T) {
	job := &fakeJob{}
	s := newSession(t, job)
	require.NoError(t, s.SelectFile(audio(t, "a.ogg"), SelectOptions{}))
	require.NoError(t, s.Start(context.Background()))
	close(job.ch)

	assert.Error(t, s.Wait(context.Background()))
	assert.False(t, s.Busy())
	assert.True(t, s.TranscribeEnabled())
}

func TestWaitRespectsContext(t *testing.T) {
	job := &fakeJob{}
	s := newSession(t, job)
	require.NoError(t, s.SelectFile(audio(t, "a.ogg"), SelectOptions{}))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
	assert.True(t, s.Busy())
}

func TestNewRunOverwritesPreviousResult(t *testing.T) {
	job := &fakeJob{}
	s := newSession(t, job)
	require.NoError(t, s.SelectFile(audio(t, "a.mp3"), SelectOptions{}))

	require.NoError(t, s.Start(context.Background()))
	s.Handle(worker.Event{Kind: worker.EventFinished, Transcript: &transcript.Transcript{Text: "first"}})
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, "first", s.Text())
	s.Handle(worker.Event{Kind: worker.EventFinished, Transcript: &transcript.Transcript{Text: "second"}})
	assert.Equal(t, "second", s.Text())
}

func TestExport(t *testing.T) {
	s := newSession(t, &fakeJob{})
	dir := t.TempDir()

	assert.ErrorIs(t, s.Export(filepath.Join(dir, "empty.txt")), ErrNothingToExport)

	s.Handle(worker.Event{Kind: worker.EventFinished, Transcript: &transcript.Transcript{
		Text:     "Bom dia.",
		Segments: []transcript.Segment{{Text: "Bom dia.", Start: 0, End: 1}},
	}})

	txt := filepath.Join(dir, "out.txt")
	require.NoError(t, s.Export(txt))
	data, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, "Bom dia.", string(data))

	srt := filepath.Join(dir, "out.srt")
	require.NoError(t, s.Export(srt))
	data, err = os.ReadFile(srt)
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:01,000\nBom dia.\n", string(data))

	s.SetText("Bom dia, turma.")
	require.NoError(t, s.Export(srt))
	data, err = os.ReadFile(srt)
	require.NoError(t, err)
	assert.Equal(t, "Bom dia, turma.", string(data))
}

func TestCopy(t *testing.T) {
	s := newSession(t, &fakeJob{})
	cb := &fakeClipboard{}

	assert.ErrorIs(t, s.Copy(cb), ErrNothingToExport)

	s.SetText("texto")
	require.NoError(t, s.Copy(cb))
	assert.Equal(t, "texto", cb.text)
	assert.Equal(t, StatusCopied, s.Status())

	cb.err = errors.New("no clipboard")
	assert.Error(t, s.Copy(cb))
}
