package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func TestConvertArgs(t *testing.T) {
	tests := []struct {
		name string
		opts ConvertOptions
		want []string
	}{
		{
			name: "opus to mp3",
			opts: ConvertOptions{InputFormat: "opus", Codec: "libmp3lame", Bitrate: "192k"},
			want: []string{"-hide_banner", "-f", "ogg", "-i", "in.opus", "-vn", "-c:a", "libmp3lame", "-b:a", "192k", "-y", "out.mp3"},
		},
		{
			name: "readable format passes through",
			opts: ConvertOptions{InputFormat: "WAV"},
			want: []string{"-hide_banner", "-f", "wav", "-i", "in.opus", "-vn", "-y", "out.mp3"},
		},
		{
			name: "autodetect with encoder defaults",
			opts: ConvertOptions{},
			want: []string{"-hide_banner", "-i", "in.opus", "-vn", "-y", "out.mp3"},
		},
	}

	for _, tt := range tests {
		got := convertArgs("in.opus", "out.mp3", tt.opts)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: convertArgs = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDemuxerFor(t *testing.T) {
	tests := map[string]string{
		"opus":  "ogg",
		"OPUS ": "ogg",
		"oga":   "ogg",
		"ogg":   "ogg",
		"flac":  "flac",
		"":      "",
	}
	for in, want := range tests {
		if got := demuxerFor(in); got != want {
			t.Errorf("demuxerFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFind_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "my-ffmpeg")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", t.TempDir())
	t.Setenv("STUDIOKIT_FFMPEG_PATH", fake)

	got, err := Find()
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != fake {
		t.Errorf("Find = %q, want %q", got, fake)
	}
}

func TestConvert_ReportsStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as a stand-in for ffmpeg")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}

	tc := &Transcoder{Path: script}
	err := tc.Convert(context.Background(), "in.opus", filepath.Join(dir, "out.mp3"), ConvertOptions{InputFormat: "opus"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("error should carry ffmpeg stderr, got %v", err)
	}
}
