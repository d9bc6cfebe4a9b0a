package probe

import (
	"context"
	"fmt"
	"net/http"
)

const anthropicModelsURL = "https://api.anthropic.com/v1/models"

// AnthropicProber verifies an Anthropic key. Anthropic uses an x-api-key
// header plus a required version header rather than a bearer token.
type AnthropicProber struct {
	baseURL string
	client  *http.Client
}

func NewAnthropicProber(client *http.Client) *AnthropicProber {
	return &AnthropicProber{baseURL: anthropicModelsURL, client: client}
}

func (p *AnthropicProber) Name() string { return "anthropic" }

func (p *AnthropicProber) Check(ctx context.Context, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("x-api-key", credential)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

var _ Prober = (*AnthropicProber)(nil)
