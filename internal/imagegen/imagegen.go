package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoImage means the API answered successfully but without image data.
	ErrNoImage       = errors.New("response has no image data")
	ErrMissingConfig = errors.New("image provider credentials are not configured")
)

// StatusError is a non-success HTTP answer from the image API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Request describes one generated image.
type Request struct {
	Prompt string
	Width  int
	Height int
	Steps  int
}

// Generator produces raw image bytes for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Generate asks gen for an image and writes it to outputPath. Nothing is
// written unless the generator returned image bytes.
func Generate(ctx context.Context, gen Generator, req Request, outputPath string) (int, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return 0, errors.New("prompt is empty")
	}

	slog.Info("requesting image", "width", req.Width, "height", req.Height, "steps", req.Steps)
	data, err := gen.Generate(ctx, req)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, ErrNoImage
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return 0, fmt.Errorf("write image: %w", err)
	}
	return len(data), nil
}

func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}
