package probe

import (
	"context"
	"fmt"
	"net/http"
)

// BearerProber is a generic prober for vendors that accept a plain
// Authorization bearer header against a single health/list URL. It lets a
// vendor declared only by base URL be live-tested without a dedicated type.
type BearerProber struct {
	vendorID string
	url      string
	client   *http.Client
}

func NewBearerProber(vendorID, url string, client *http.Client) *BearerProber {
	return &BearerProber{vendorID: vendorID, url: url, client: client}
}

func (p *BearerProber) Name() string { return p.vendorID }

func (p *BearerProber) Check(ctx context.Context, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
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

var _ Prober = (*BearerProber)(nil)
