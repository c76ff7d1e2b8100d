package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrNotFound is returned when no ffmpeg binary can be located.
var ErrNotFound = errors.New("ffmpeg not found; install it or set STUDIOKIT_FFMPEG_PATH")

// MediaInfo holds duration and codec information from ffprobe.
type MediaInfo struct {
	Duration float64
	Codec    string
}

// Find locates ffmpeg in this order:
// 1. ffmpeg on $PATH
// 2. STUDIOKIT_FFMPEG_PATH (warns and continues if set but missing)
// 3. ffmpeg next to the current executable
func Find() (string, error) {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	if envPath := os.Getenv("STUDIOKIT_FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		slog.Warn("STUDIOKIT_FFMPEG_PATH set but not found, continuing search", "path", envPath)
	}

	if exe, err := os.Executable(); err == nil {
		for _, name := range []string{"ffmpeg", "ffmpeg.exe"} {
			candidate := filepath.Join(filepath.Dir(exe), name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", ErrNotFound
}

// Available returns true if an ffmpeg binary can be located.
func Available() bool {
	_, err := Find()
	return err == nil
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// ProbeMedia uses ffprobe to get media duration and audio codec.
func ProbeMedia(ctx context.Context, path string) (*MediaInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name:format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	dur, _ := strconv.ParseFloat(probe.Format.Duration, 64)

	codec := "N/A"
	if len(probe.Streams) > 0 && probe.Streams[0].CodecName != "" {
		codec = probe.Streams[0].CodecName
	}

	return &MediaInfo{Duration: dur, Codec: codec}, nil
}

// LogMediaInfo logs file size and, when ffprobe is present, duration and codec.
func LogMediaInfo(ctx context.Context, path string) *MediaInfo {
	stat, err := os.Stat(path)
	if err != nil {
		slog.Warn("cannot stat file", "path", path, "err", err)
		return nil
	}

	attrs := []any{"file", filepath.Base(path), "size", humanize.Bytes(uint64(stat.Size()))}

	info, err := ProbeMedia(ctx, path)
	if err == nil && info != nil {
		minutes := int(info.Duration) / 60
		seconds := int(info.Duration) % 60
		attrs = append(attrs, "duration", fmt.Sprintf("%02d:%02d", minutes, seconds), "codec", info.Codec)
	} else {
		slog.Debug("media probe skipped", "err", err)
	}

	slog.Info("media info", attrs...)
	return info
}

// ConvertOptions selects the container and codec for Convert.
type ConvertOptions struct {
	// InputFormat names the input container (ffmpeg -f, opus read as ogg); empty lets ffmpeg detect it.
	InputFormat string
	// Codec is the audio encoder, e.g. libmp3lame.
	Codec string
	// Bitrate is the target audio bitrate, e.g. 192k; empty keeps the encoder default.
	Bitrate string
}

// Transcoder runs a located ffmpeg binary.
type Transcoder struct {
	Path    string
	Verbose bool
}

// NewTranscoder locates ffmpeg once; a missing binary is reported here.
func NewTranscoder(verbose bool) (*Transcoder, error) {
	path, err := Find()
	if err != nil {
		return nil, err
	}
	return &Transcoder{Path: path, Verbose: verbose}, nil
}

// demuxers maps container names that ffmpeg can only write to the
// demuxer that reads them.
var demuxers = map[string]string{
	"opus": "ogg",
	"oga":  "ogg",
}

// demuxerFor returns the -f value for an input format name.
func demuxerFor(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if d, ok := demuxers[format]; ok {
		return d
	}
	return format
}

// convertArgs builds the ffmpeg argument list for Convert.
func convertArgs(inputPath, outputPath string, opts ConvertOptions) []string {
	args := []string{"-hide_banner"}
	if f := demuxerFor(opts.InputFormat); f != "" {
		args = append(args, "-f", f)
	}
	args = append(args, "-i", inputPath, "-vn")
	if opts.Codec != "" {
		args = append(args, "-c:a", opts.Codec)
	}
	if opts.Bitrate != "" {
		args = append(args, "-b:a", opts.Bitrate)
	}
	return append(args, "-y", outputPath)
}

// Convert decodes inputPath and re-encodes its audio stream into outputPath.
func (t *Transcoder) Convert(ctx context.Context, inputPath, outputPath string, opts ConvertOptions) error {
	slog.Info("converting audio", "input", filepath.Base(inputPath), "output", filepath.Base(outputPath))

	cmd := exec.CommandContext(ctx, t.Path, convertArgs(inputPath, outputPath, opts)...)
	var stderrBuf bytes.Buffer
	if t.Verbose {
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Run(); err != nil {
		stderr := stderrBuf.String()
		if stderr == "" {
			return fmt.Errorf("ffmpeg conversion failed: %w", err)
		}
		if len(stderr) > 500 {
			stderr = "..." + stderr[len(stderr)-500:]
		}
		return fmt.Errorf("ffmpeg conversion failed: %w\nffmpeg stderr: %s", err, stderr)
	}
	return nil
}
