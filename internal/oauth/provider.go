package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zazaborisovi/laptomania/internal/domain"
)

// Profile is what a provider knows about the authenticated account.
type Profile struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
	// EmailVerified is nil when the provider does not expose the signal.
	EmailVerified *bool
}

// Provider wraps one external identity service: building the browser
// redirect, exchanging the callback code server-side, and fetching the
// profile with the resulting access token.
type Provider interface {
	Name() domain.Provider
	AuthCodeURL() string
	Exchange(ctx context.Context, code string) (accessToken string, err error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

var defaultClient = &http.Client{Timeout: 10 * time.Second}

// getJSON performs a GET with optional bearer auth and decodes the
// 2xx JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Accept", "application/json")
	return doJSON(client, req, out)
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return doJSON(client, req, out)
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Host, err)
	}
	return nil
}
