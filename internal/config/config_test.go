package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"pt", "pt", false},
		{"EN", "en", false},
		{"Português (pt)", "pt", false},
		{"Français (fr)", "fr", false},
		{"  Español (es) ", "es", false},
		{"de", "", true},
		{"German (de)", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseLanguage(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseLanguage(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLanguageLabelRoundTrip(t *testing.T) {
	for _, l := range Languages {
		code, err := ParseLanguage(l.Label())
		require.NoError(t, err)
		assert.Equal(t, l.Code, code)
	}
}

func TestIsSupportedModel(t *testing.T) {
	assert.True(t, IsSupportedModel("whisper-large-v3-turbo"))
	assert.True(t, IsSupportedModel("whisper-large-v3"))
	assert.False(t, IsSupportedModel("whisper-1"))
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadImageSettings(t *testing.T) {
	cfg := Default()
	cfg.Image.Width = 0
	cfg.Image.Steps = -1
	cfg.Image.Provider = "midjourney"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image.width")
	assert.Contains(t, err.Error(), "image.steps")
	assert.Contains(t, err.Error(), "midjourney")
}

func TestLoadReadsFileAndCredentialEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studiokit.yaml")
	yaml := `
transcribe:
  language: en
  model: whisper-large-v3
image:
  width: 512
  output: chocolate.png
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acct")
	t.Setenv("STUDIOKIT_IMAGE_STEPS", "4")

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Transcribe.Language)
	assert.Equal(t, "whisper-large-v3", cfg.Transcribe.Model)
	assert.Equal(t, "gsk_test", cfg.Transcribe.APIKey)
	assert.Equal(t, DefaultGroqBaseURL, cfg.Transcribe.BaseURL)
	assert.Equal(t, "acct", cfg.Image.AccountID)
	assert.Equal(t, 512, cfg.Image.Width)
	assert.Equal(t, 1024, cfg.Image.Height)
	assert.Equal(t, 4, cfg.Image.Steps)
	assert.Equal(t, "chocolate.png", cfg.Image.Output)
}

func TestLoadWithoutCredentialsSucceeds(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Empty(t, cfg.Transcribe.APIKey)
	assert.Equal(t, DefaultModel, cfg.Transcribe.Model)
}
