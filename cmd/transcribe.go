package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"studiokit/internal/api"
	"studiokit/internal/console"
	"studiokit/internal/session"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio-file]",
	Short: "Transcribe audio to text with Groq Whisper",
	Long: `Transcribe an audio file (.mp3 .wav .ogg .flac) with a hosted Whisper model.

Without --once an interactive session starts: select a file, pick the language
and model, transcribe, then export or copy the result. With --once the given
file is transcribed and the text is printed or written to --output.

The API key is read from GROQ_API_KEY (a .env file is honored).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranscribe,
}

var (
	trLanguage string
	trModel    string
	trOutput   string
	trOnce     bool
	trAllFiles bool
)

func init() {
	transcribeCmd.Flags().StringVarP(&trLanguage, "language", "l", "", "language: pt, en, es, fr (default from config)")
	transcribeCmd.Flags().StringVarP(&trModel, "model", "m", "", "model: whisper-large-v3-turbo, whisper-large-v3 (default from config)")
	transcribeCmd.Flags().StringVarP(&trOutput, "output", "o", "", "with --once, save the text here (.txt, or .srt for subtitles)")
	transcribeCmd.Flags().BoolVar(&trOnce, "once", false, "transcribe the given file and exit")
	transcribeCmd.Flags().BoolVar(&trAllFiles, "all-files", false, "accept files without an audio extension")

	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	language := cfg.Transcribe.Language
	if trLanguage != "" {
		language = trLanguage
	}
	model := cfg.Transcribe.Model
	if trModel != "" {
		model = trModel
	}

	s, err := session.New(session.Options{
		API: api.Config{
			APIKey:  cfg.Transcribe.APIKey,
			BaseURL: cfg.Transcribe.BaseURL,
		},
		Language:    language,
		Model:       model,
		Prompt:      cfg.Transcribe.Prompt,
		Temperature: cfg.Transcribe.Temperature,
	})
	if err != nil {
		return err
	}

	if cfg.Transcribe.APIKey == "" {
		cmd.PrintErrln("Warning:", api.ErrMissingAPIKey)
	}

	if len(args) == 1 {
		if err := s.SelectFile(args[0], session.SelectOptions{AllFiles: trAllFiles}); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !trOnce {
		return console.New(s, cmd.OutOrStdout(), systemClipboard{}).Run(ctx, cmd.InOrStdin())
	}

	if len(args) == 0 {
		return errors.New("--once needs an audio file argument")
	}
	if err := s.Start(ctx); err != nil {
		return err
	}
	if err := s.Wait(ctx); err != nil {
		return err
	}

	if trOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), s.Text())
		return nil
	}
	if err := s.Export(trOutput); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Transcription saved to %s\n", trOutput)
	}
	return nil
}

// systemClipboard adapts the OS clipboard to session.Clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard not supported here (install xclip, xsel or wl-clipboard)")
	}
	return clipboard.WriteAll(text)
}
