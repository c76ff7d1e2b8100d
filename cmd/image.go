package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"studiokit/internal/imagegen"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Generate an image from a text prompt",
	Long: `Generate one image and save it as PNG.

The default provider is Cloudflare Workers AI (flux-1-schnell); credentials come
from CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN. With --provider openai the
OpenAI images API is used with OPENAI_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runImage,
}

var (
	imgPrompt   string
	imgOutput   string
	imgProvider string
	imgWidth    int
	imgHeight   int
	imgSteps    int
)

func init() {
	imageCmd.Flags().StringVarP(&imgPrompt, "prompt", "p", "", "image prompt (default from config)")
	imageCmd.Flags().StringVarP(&imgOutput, "output", "o", "", "output file (default from config: output.png)")
	imageCmd.Flags().StringVar(&imgProvider, "provider", "", "cloudflare or openai (default from config)")
	imageCmd.Flags().IntVar(&imgWidth, "width", 0, "image width (default from config: 1024)")
	imageCmd.Flags().IntVar(&imgHeight, "height", 0, "image height (default from config: 1024)")
	imageCmd.Flags().IntVar(&imgSteps, "steps", 0, "inference steps (default from config: 30)")

	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	ic := cfg.Image
	req := imagegen.Request{
		Prompt: pick(imgPrompt, ic.Prompt),
		Width:  pickInt(imgWidth, ic.Width),
		Height: pickInt(imgHeight, ic.Height),
		Steps:  pickInt(imgSteps, ic.Steps),
	}
	output := pick(imgOutput, ic.Output)

	gen, err := newGenerator(pick(imgProvider, ic.Provider))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := imagegen.Generate(ctx, gen, req, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Image saved as %s (%s)\n", output, humanize.Bytes(uint64(n)))
	return nil
}

func newGenerator(provider string) (imagegen.Generator, error) {
	ic := cfg.Image
	switch provider {
	case "cloudflare":
		return imagegen.NewCloudflareClient(imagegen.CloudflareConfig{
			BaseURL:   ic.BaseURL,
			AccountID: ic.AccountID,
			APIToken:  ic.APIToken,
			Model:     ic.Model,
			Timeout:   ic.Timeout,
		})
	case "openai":
		return imagegen.NewOpenAIClient(imagegen.OpenAIConfig{
			APIKey: ic.OpenAIKey,
			Model:  ic.OpenAIModel,
		})
	}
	return nil, fmt.Errorf("unknown image provider %q (cloudflare or openai)", provider)
}

func pickInt(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}
