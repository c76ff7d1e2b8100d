package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"studiokit/internal/config"
)

var version = "dev"

var (
	verbose    bool
	quiet      bool
	configFile string
	envFile    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "studiokit",
	Short: "Small audio and image utilities backed by hosted AI APIs",
	Long: `studiokit bundles three utilities:

  transcribe  speech-to-text through Groq's Whisper models
  convert     OPUS to MP3 conversion through ffmpeg
  image       text-to-image through Cloudflare Workers AI or OpenAI`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		loaded, err := config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile})
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./studiokit.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with credentials (default: ./.env if present)")
}
