package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"shpfusion-api/internal/config"
)

// SanityClient runs read-only GROQ queries against the CMS query API.
type SanityClient interface {
	Query(ctx context.Context, groq string, result interface{}) error
}

type sanityClientImpl struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewSanityClient(sanityCfg *config.Sanity) SanityClient {
	return &sanityClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: fmt.Sprintf("https://%s.api.sanity.io/v%s/data/query/%s",
			sanityCfg.ProjectID, sanityCfg.APIVersion, sanityCfg.Dataset),
		token: sanityCfg.Token,
	}
}

func (c *sanityClientImpl) Query(ctx context.Context, groq string, result interface{}) error {
	reqURL := c.baseURL + "?query=" + url.QueryEscape(groq)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sanity query request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sanity error %d: %s", resp.StatusCode, string(b))
	}

	// query responses wrap the rows in a result envelope
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode sanity response: %w", err)
	}

	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("decode sanity result: %w", err)
	}
	return nil
}
