package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible API root.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// TranscribeSettings holds the transcriber parameters.
type TranscribeSettings struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Language    string  `mapstructure:"language"`
	Prompt      string  `mapstructure:"prompt"`
	Temperature float32 `mapstructure:"temperature"`
}

// ConvertSettings holds the audio converter parameters.
type ConvertSettings struct {
	InputFormat  string `mapstructure:"input_format"`
	OutputFormat string `mapstructure:"output_format"`
	Codec        string `mapstructure:"codec"`
	Bitrate      string `mapstructure:"bitrate"`
}

// ImageSettings holds the image generator parameters.
type ImageSettings struct {
	Provider    string        `mapstructure:"provider"`
	BaseURL     string        `mapstructure:"base_url"`
	AccountID   string        `mapstructure:"account_id"`
	APIToken    string        `mapstructure:"api_token"`
	Model       string        `mapstructure:"model"`
	OpenAIKey   string        `mapstructure:"openai_key"`
	OpenAIModel string        `mapstructure:"openai_model"`
	Prompt      string        `mapstructure:"prompt"`
	Width       int           `mapstructure:"width"`
	Height      int           `mapstructure:"height"`
	Steps       int           `mapstructure:"steps"`
	Output      string        `mapstructure:"output"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Config holds the full application configuration.
type Config struct {
	Transcribe TranscribeSettings `mapstructure:"transcribe"`
	Convert    ConvertSettings    `mapstructure:"convert"`
	Image      ImageSettings      `mapstructure:"image"`
}

// Default returns a Config with hardcoded defaults.
func Default() *Config {
	return &Config{
		Transcribe: TranscribeSettings{
			BaseURL:     DefaultGroqBaseURL,
			Model:       DefaultModel,
			Language:    DefaultLanguage,
			Prompt:      "Transcribe the audio with high accuracy",
			Temperature: 0,
		},
		Convert: ConvertSettings{
			InputFormat:  "opus",
			OutputFormat: "mp3",
			Codec:        "libmp3lame",
			Bitrate:      "192k",
		},
		Image: ImageSettings{
			Provider:    "cloudflare",
			BaseURL:     "https://api.cloudflare.com/client/v4",
			Model:       "@cf/black-forest-labs/flux-1-schnell",
			OpenAIModel: "dall-e-3",
			Prompt:      "a landscape where everything is made of chocolate",
			Width:       1024,
			Height:      1024,
			Steps:       30,
			Output:      "output.png",
			Timeout:     2 * time.Minute,
		},
	}
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// credential variables read under their conventional names.
var envBindings = map[string]string{
	"transcribe.api_key": "GROQ_API_KEY",
	"image.account_id":   "CLOUDFLARE_ACCOUNT_ID",
	"image.api_token":    "CLOUDFLARE_API_TOKEN",
	"image.openai_key":   "OPENAI_API_KEY",
}

// Load merges defaults, an optional YAML file and the environment.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v, Default())

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else if cfg := os.Getenv("STUDIOKIT_CONFIG_FILE"); cfg != "" {
		v.SetConfigFile(cfg)
	} else {
		v.SetConfigName("studiokit")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("STUDIOKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "STUDIOKIT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("transcribe.api_key", "")
	v.SetDefault("transcribe.base_url", d.Transcribe.BaseURL)
	v.SetDefault("transcribe.model", d.Transcribe.Model)
	v.SetDefault("transcribe.language", d.Transcribe.Language)
	v.SetDefault("transcribe.prompt", d.Transcribe.Prompt)
	v.SetDefault("transcribe.temperature", d.Transcribe.Temperature)

	v.SetDefault("convert.input_format", d.Convert.InputFormat)
	v.SetDefault("convert.output_format", d.Convert.OutputFormat)
	v.SetDefault("convert.codec", d.Convert.Codec)
	v.SetDefault("convert.bitrate", d.Convert.Bitrate)

	v.SetDefault("image.provider", d.Image.Provider)
	v.SetDefault("image.base_url", d.Image.BaseURL)
	v.SetDefault("image.account_id", "")
	v.SetDefault("image.api_token", "")
	v.SetDefault("image.model", d.Image.Model)
	v.SetDefault("image.openai_key", "")
	v.SetDefault("image.openai_model", d.Image.OpenAIModel)
	v.SetDefault("image.prompt", d.Image.Prompt)
	v.SetDefault("image.width", d.Image.Width)
	v.SetDefault("image.height", d.Image.Height)
	v.SetDefault("image.steps", d.Image.Steps)
	v.SetDefault("image.output", d.Image.Output)
	v.SetDefault("image.timeout", d.Image.Timeout)
}

// Validate checks numeric settings. Credentials are not required here;
// the command that needs one reports its absence.
func (c *Config) Validate() error {
	var problems []string

	if _, err := ParseLanguage(c.Transcribe.Language); err != nil {
		problems = append(problems, err.Error())
	}
	if !IsSupportedModel(c.Transcribe.Model) {
		problems = append(problems, fmt.Sprintf("transcribe.model %q is not supported", c.Transcribe.Model))
	}
	if c.Transcribe.Temperature < 0 || c.Transcribe.Temperature > 1 {
		problems = append(problems, "transcribe.temperature must be between 0 and 1")
	}
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		problems = append(problems, "image.width and image.height must be > 0")
	}
	if c.Image.Steps <= 0 {
		problems = append(problems, "image.steps must be > 0")
	}
	switch c.Image.Provider {
	case "cloudflare", "openai":
	default:
		problems = append(problems, fmt.Sprintf("image.provider %q must be cloudflare or openai", c.Image.Provider))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
