package probe

import (
	"context"
	"fmt"
	"net/http"
)

const openAIModelsURL = "https://api.openai.com/v1/models"

// OpenAIProber verifies an OpenAI key against the models endpoint.
type OpenAIProber struct {
	baseURL string
	client  *http.Client
}

func NewOpenAIProber(client *http.Client) *OpenAIProber {
	return &OpenAIProber{baseURL: openAIModelsURL, client: client}
}

func (p *OpenAIProber) Name() string { return "openai" }

func (p *OpenAIProber) Check(ctx context.Context, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := p.client.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

var _ Prober = (*OpenAIProber)(nil)
