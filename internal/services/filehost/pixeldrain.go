// Package filehost resolves names and sizes of remotely hosted files and
// manages the pixeldrain account the catalog links to.
package filehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mediaarchive/internal/retry"
)

const (
	defaultPixeldrainAPI = "https://pixeldrain.com/api"
	maxListPages         = 100
)

var ErrNotFound = errors.New("filehost: file not found")

type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	DateUpload time.Time `json:"date_upload"`
}

type PixeldrainConfig struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Retry   retry.Config
}

// Pixeldrain is a minimal client for the pixeldrain REST API.
type Pixeldrain struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   retry.Config
}

func NewPixeldrain(cfg PixeldrainConfig) *Pixeldrain {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultPixeldrainAPI
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	rc := cfg.Retry
	if rc.MaxAttempts <= 0 {
		rc = retry.DefaultConfig()
	}
	return &Pixeldrain{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		retry:   rc,
	}
}

func (p *Pixeldrain) Enabled() bool { return p.apiKey != "" }

func (p *Pixeldrain) Info(ctx context.Context, id string) (File, error) {
	var f File
	err := p.do(ctx, http.MethodGet, "/file/"+url.PathEscape(id)+"/info", &f)
	return f, err
}

// ListFiles walks the account's file list until an empty page. Files are
// de-duplicated by id since pages can shift while deleting.
func (p *Pixeldrain) ListFiles(ctx context.Context) ([]File, error) {
	if !p.Enabled() {
		return nil, errors.New("pixeldrain: api key not configured")
	}
	seen := make(map[string]struct{})
	var out []File
	for page := 1; page <= maxListPages; page++ {
		var resp struct {
			Files []File `json:"files"`
		}
		if err := p.do(ctx, http.MethodGet, "/user/files?page="+strconv.Itoa(page), &resp); err != nil {
			return out, err
		}
		if len(resp.Files) == 0 {
			break
		}
		for _, f := range resp.Files {
			if f.ID == "" {
				continue
			}
			if _, dup := seen[f.ID]; dup {
				continue
			}
			seen[f.ID] = struct{}{}
			out = append(out, f)
		}
	}
	return out, nil
}

func (p *Pixeldrain) Delete(ctx context.Context, id string) error {
	if !p.Enabled() {
		return errors.New("pixeldrain: api key not configured")
	}
	return p.do(ctx, http.MethodDelete, "/file/"+url.PathEscape(id), nil)
}

func (p *Pixeldrain) do(ctx context.Context, method, path string, out any) error {
	return retry.Do(ctx, p.retry, retryable, func() error {
		req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, nil)
		if err != nil {
			return err
		}
		if p.apiKey != "" {
			req.SetBasicAuth("", p.apiKey)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode >= 500:
			return &statusError{code: resp.StatusCode}
		case resp.StatusCode >= 300:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("pixeldrain HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		if out == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
			return nil
		}
		return json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out)
	})
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("pixeldrain HTTP %d", e.code) }

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return true
	}
	return retry.IsTransient(err)
}
