package swissmodel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public SWISS-MODEL repository.
const DefaultBaseURL = "https://swissmodel.expasy.org"

// ErrNoStructure reports that the repository has no model for an accession.
// It is a normal negative result, not a failure.
var ErrNoStructure = errors.New("no 3D structure available for this protein")

// Client fetches PDB-format models keyed by UniProt accession.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{BaseURL: baseURL, HTTPClient: &http.Client{Timeout: timeout}}
}

// ModelURL is the repository download location for an accession.
func (c *Client) ModelURL(accession string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/repository/uniprot/" + url.PathEscape(accession) + ".pdb"
}

// LoadStructure downloads the model for accession. A non-2xx status or a
// body without any ATOM record yields ErrNoStructure; transport failures are
// returned wrapped.
func (c *Client) LoadStructure(ctx context.Context, accession string) (*Structure, error) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return nil, ErrNoStructure
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ModelURL(accession), nil)
	if err != nil {
		return nil, err
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swissmodel %s: %w", accession, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrNoStructure
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read swissmodel %s: %w", accession, err)
	}
	text := string(body)
	if !strings.Contains(text, "ATOM") {
		return nil, ErrNoStructure
	}
	return ParseStructure(accession, text), nil
}
