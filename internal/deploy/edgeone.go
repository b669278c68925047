package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultEdgeOneBaseURL is the public EdgeOne Pages deployment endpoint.
const DefaultEdgeOneBaseURL = "https://mcp.edgeone.site"

// EdgeOnePublisher deploys to Tencent EdgeOne Pages. A deployment is two
// calls: fetch the upload URL, then post the document to it.
type EdgeOnePublisher struct {
	baseURL string
	client  *http.Client
}

func NewEdgeOnePublisher(baseURL string, timeout time.Duration) *EdgeOnePublisher {
	if baseURL == "" {
		baseURL = DefaultEdgeOneBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EdgeOnePublisher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *EdgeOnePublisher) Name() string { return "edgeone" }

func (p *EdgeOnePublisher) Publish(ctx context.Context, html string) (string, error) {
	uploadURL, err := p.getBaseURL(ctx)
	if err != nil {
		return "", err
	}
	return p.deployHTML(ctx, uploadURL, html)
}

func (p *EdgeOnePublisher) getBaseURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/get_base_url", nil)
	if err != nil {
		return "", fmt.Errorf("[getBaseUrl] create request: %w", err)
	}

	var out struct {
		BaseURL string `json:"baseUrl"`
	}
	if err := p.doJSON(req, "getBaseUrl", &out); err != nil {
		return "", err
	}
	if out.BaseURL == "" {
		return "", fmt.Errorf("[getBaseUrl] response has no baseUrl")
	}
	return out.BaseURL, nil
}

func (p *EdgeOnePublisher) deployHTML(ctx context.Context, uploadURL, html string) (string, error) {
	body, err := json.Marshal(map[string]string{"value": html})
	if err != nil {
		return "", fmt.Errorf("[deployHtml] encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("[deployHtml] create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		URL string `json:"url"`
	}
	if err := p.doJSON(req, "deployHtml", &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("[deployHtml] response has no url")
	}
	return out.URL, nil
}

func (p *EdgeOnePublisher) doJSON(req *http.Request, step string, dst any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("[%s] request failed: %w", step, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("[%s] HTTP error: %d %s", step, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("[%s] decode response: %w", step, err)
	}
	return nil
}
