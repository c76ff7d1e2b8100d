package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"studiokit/internal/transcript"
)

// ErrMissingAPIKey is returned by NewClient when no credential is configured.
var ErrMissingAPIKey = errors.New("Groq API key not found in environment / .env (GROQ_API_KEY)")

// ProgressFunc is called with (bytesRead, totalBytes) while the audio is read.
// The multipart body is buffered in memory before it is sent, so this tracks
// request preparation rather than bytes on the wire.
type ProgressFunc func(bytesRead, totalBytes int64)

// progressReader wraps an io.Reader and reports progress.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)
	if pr.callback != nil {
		pr.callback(pr.read, pr.total)
	}
	return n, err
}

// Config selects the speech-to-text endpoint.
type Config struct {
	APIKey  string
	BaseURL string
}

// Request describes one transcription call.
type Request struct {
	FilePath    string
	Language    string
	Model       string
	Prompt      string
	Temperature float32
}

// Client talks to an OpenAI-compatible transcription endpoint (Groq by default).
type Client struct {
	oa *openai.Client
}

// NewClient builds a client. It performs no network I/O.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{oa: openai.NewClientWithConfig(oc)}, nil
}

// Transcribe uploads an audio file and returns the verbose transcript.
func (c *Client) Transcribe(ctx context.Context, req Request, progress ProgressFunc) (*transcript.Transcript, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	body := &progressReader{
		reader:   f,
		total:    stat.Size(),
		callback: progress,
	}

	// A zero Temperature is left out of the form; the API default is also 0.
	resp, err := c.oa.CreateTranscription(ctx, openai.AudioRequest{
		Model:       req.Model,
		FilePath:    filepath.Base(req.FilePath),
		Reader:      body,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		Language:    req.Language,
		Format:      openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	out := &transcript.Transcript{
		SourcePath: req.FilePath,
		Language:   resp.Language,
		Duration:   resp.Duration,
		Text:       strings.TrimSpace(resp.Text),
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, transcript.Segment{
			Text:  s.Text,
			Start: s.Start,
			End:   s.End,
		})
	}
	return out, nil
}
