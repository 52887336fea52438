package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/go-resty/resty/v2"
)

// Fetcher loads manifests, article bodies and image files from HTTP(S) URLs
// or the local filesystem.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(3).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(5 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err == nil && r.StatusCode() >= http.StatusInternalServerError
			}),
	}
}

// Manifest is a parsed import manifest. Relative sources inside it resolve
// against Source.
type Manifest struct {
	Source string
	Items  []models.ImportItem
}

// LoadManifest reads a manifest holding either an array of items or a single
// item.
func (f *Fetcher) LoadManifest(ctx context.Context, source string) (*Manifest, error) {
	body, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	var items []models.ImportItem
	if err := json.Unmarshal(body, &items); err != nil {
		var single models.ImportItem
		if singleErr := json.Unmarshal(body, &single); singleErr != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w (tried both array and single item)", source, err)
		}
		items = []models.ImportItem{single}
	}

	return &Manifest{Source: source, Items: items}, nil
}

// Resolve returns ref as an absolute URL or path relative to the manifest.
func (m *Manifest) Resolve(ref string) string {
	if ref == "" || isURL(ref) || filepath.IsAbs(ref) {
		return ref
	}
	if isURL(m.Source) {
		base, err := url.Parse(m.Source)
		if err != nil {
			return ref
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return base.ResolveReference(rel).String()
	}
	return filepath.Join(filepath.Dir(m.Source), ref)
}

// Fetch returns the bytes behind source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !isURL(source) {
		body, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		return body, nil
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), source)
	}
	return resp.Body(), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
