package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"studiokit/internal/converter"
	"studiokit/internal/ffmpeg"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert an OPUS audio file to MP3",
	Long: `Convert an audio file with ffmpeg (OPUS to MP3 by default).

Paths not given as arguments are asked for interactively.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConvert,
}

var (
	cvFrom    string
	cvTo      string
	cvCodec   string
	cvBitrate string
)

func init() {
	convertCmd.Flags().StringVar(&cvFrom, "from", "", "input container, opus is read with the ogg demuxer (default from config: opus)")
	convertCmd.Flags().StringVar(&cvTo, "to", "", "output format, used as extension when the output has none (default from config: mp3)")
	convertCmd.Flags().StringVar(&cvCodec, "codec", "", "audio encoder (default from config: libmp3lame)")
	convertCmd.Flags().StringVarP(&cvBitrate, "bitrate", "b", "", "audio bitrate, e.g. 128k (default from config: 192k)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	opts := converter.Options{
		InputFormat:  pick(cvFrom, cfg.Convert.InputFormat),
		OutputFormat: pick(cvTo, cfg.Convert.OutputFormat),
		Codec:        pick(cvCodec, cfg.Convert.Codec),
		Bitrate:      pick(cvBitrate, cfg.Convert.Bitrate),
	}

	tc, err := ffmpeg.NewTranscoder(verbose)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Audio Converter - %s to %s\n",
		strings.ToUpper(opts.InputFormat), strings.ToUpper(opts.OutputFormat))

	in := bufio.NewReader(cmd.InOrStdin())
	if len(args) > 0 {
		opts.Input = args[0]
	} else {
		opts.Input = ask(in, out, fmt.Sprintf("Enter the path of the %s file: ", strings.ToUpper(opts.InputFormat)))
	}
	if len(args) > 1 {
		opts.Output = args[1]
	} else {
		opts.Output = ask(in, out, fmt.Sprintf("Enter the path to save the %s file: ", strings.ToUpper(opts.OutputFormat)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	written, err := converter.Run(ctx, tc, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "File converted successfully: %s\n", written)
	return nil
}

// ask prints a prompt and returns the trimmed answer; end of input yields "".
func ask(in *bufio.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, _ := in.ReadString('\n')
	return strings.Trim(strings.TrimSpace(line), `"'`)
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
