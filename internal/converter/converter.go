package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"studiokit/internal/ffmpeg"
)

var (
	ErrInputNotFound = errors.New("The input file does not exist.")
	ErrNoOutput      = errors.New("no output path given")
	ErrSamePath      = errors.New("input and output are the same file")
)

// Transcoder re-encodes one audio file. *ffmpeg.Transcoder satisfies it.
type Transcoder interface {
	Convert(ctx context.Context, inputPath, outputPath string, opts ffmpeg.ConvertOptions) error
}

// Options describes one conversion.
type Options struct {
	Input        string
	Output       string
	InputFormat  string
	OutputFormat string
	Codec        string
	Bitrate      string
}

// Run validates the paths and converts Input into Output. It returns the
// output path actually written.
func Run(ctx context.Context, tc Transcoder, opts Options) (string, error) {
	input := strings.TrimSpace(opts.Input)
	output := strings.TrimSpace(opts.Output)

	info, err := os.Stat(input)
	if input == "" || err != nil || info.IsDir() {
		return "", ErrInputNotFound
	}
	if output == "" {
		return "", ErrNoOutput
	}
	output = withExtension(output, opts.OutputFormat)

	if abs(input) == abs(output) {
		return "", ErrSamePath
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	ffmpeg.LogMediaInfo(ctx, input)

	err = tc.Convert(ctx, input, output, ffmpeg.ConvertOptions{
		InputFormat: opts.InputFormat,
		Codec:       opts.Codec,
		Bitrate:     opts.Bitrate,
	})
	if err != nil {
		return "", fmt.Errorf("converting file: %w", err)
	}
	slog.Debug("conversion finished", "output", output)
	return output, nil
}

// withExtension appends "."+format when path has no extension.
func withExtension(path, format string) string {
	if format == "" || filepath.Ext(path) != "" {
		return path
	}
	return path + "." + strings.TrimPrefix(format, ".")
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}
