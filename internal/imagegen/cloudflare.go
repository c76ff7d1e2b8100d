package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CloudflareConfig selects a Workers AI text-to-image model.
type CloudflareConfig struct {
	BaseURL   string
	AccountID string
	APIToken  string
	Model     string
	Timeout   time.Duration
}

// CloudflareClient calls the Workers AI run endpoint.
type CloudflareClient struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewCloudflareClient(cfg CloudflareConfig) (*CloudflareClient, error) {
	if cfg.AccountID == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: set CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN", ErrMissingConfig)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	endpoint := fmt.Sprintf("%s/accounts/%s/ai/run/%s",
		strings.TrimRight(cfg.BaseURL, "/"), cfg.AccountID, strings.TrimLeft(cfg.Model, "/"))

	return &CloudflareClient{
		endpoint: endpoint,
		token:    cfg.APIToken,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type cloudflareRequest struct {
	Prompt            string `json:"prompt"`
	Width             int    `json:"width,omitempty"`
	Height            int    `json:"height,omitempty"`
	NumInferenceSteps int    `json:"num_inference_steps,omitempty"`
}

type cloudflareResponse struct {
	Result struct {
		Image string `json:"image"`
	} `json:"result"`
	Success bool `json:"success"`
}

func (c *CloudflareClient) Generate(ctx context.Context, req Request) ([]byte, error) {
	b, err := json.Marshal(cloudflareRequest{
		Prompt:            req.Prompt,
		Width:             req.Width,
		Height:            req.Height,
		NumInferenceSteps: req.Steps,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cloudflare request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read cloudflare response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var out cloudflareResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode cloudflare response: %w", err)
	}
	if !out.Success {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if out.Result.Image == "" {
		return nil, ErrNoImage
	}
	return decodeBase64(out.Result.Image)
}
