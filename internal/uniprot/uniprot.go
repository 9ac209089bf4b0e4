// Package uniprot downloads reviewed reference-proteome sequences from the
// UniProt REST stream endpoint and turns them into protein records.
package uniprot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/pgzip"

	"proteinstruct/internal/fasta"
	"proteinstruct/internal/protein"
)

// DefaultBaseURL is the public UniProt REST API.
const DefaultBaseURL = "https://rest.uniprot.org"

// ErrInvalidMaxCount is returned when fewer than one record is requested.
var ErrInvalidMaxCount = errors.New("max count must be positive")

// Client performs one streaming proteome download per call. The zero value
// is usable.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client // tests may replace it with a mock transport
	UserAgent  string
	MinLength  int
	Logger     *log.Logger
}

// NewClient returns a client for baseURL with the given download timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		MinLength:  protein.DefaultMinLength,
	}
}

// StreamURL builds the compressed FASTA stream query for a proteome.
func (c *Client) StreamURL(proteomeID string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	query := "(proteome:" + url.QueryEscape(proteomeID) + ")+AND+(reviewed:true)"
	return strings.TrimRight(base, "/") + "/uniprotkb/stream?format=fasta&query=" + query + "&compressed=true"
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) minLength() int {
	if c.MinLength <= 0 {
		return protein.DefaultMinLength
	}
	return c.MinLength
}

func (c *Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// Download fetches and decompresses the FASTA stream for a species.
func (c *Client) Download(ctx context.Context, sp Species) ([]byte, error) {
	u := c.StreamURL(sp.ProteomeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	ua := c.UserAgent
	if ua == "" {
		ua = "proteinstruct/1.0"
	}
	req.Header.Set("User-Agent", ua)

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("uniprot stream %s: %w", sp.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("uniprot stream returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	compressed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read uniprot stream: %w", err)
	}
	zr, err := pgzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress uniprot stream: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress uniprot stream: %w", err)
	}
	c.logger().Debug("uniprot stream downloaded", "species", sp.Name, "compressed_bytes", len(compressed), "bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	return data, nil
}

// Proteome downloads a species' reviewed proteome and returns at most
// maxCount records of at least MinLength residues, in stream order.
func (c *Client) Proteome(ctx context.Context, sp Species, maxCount int) ([]protein.Record, error) {
	if maxCount < 1 {
		return nil, ErrInvalidMaxCount
	}
	data, err := c.Download(ctx, sp)
	if err != nil {
		return nil, err
	}
	raws, err := fasta.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	records := protein.FromFasta(raws, c.minLength(), maxCount)
	c.logger().Info("parsed proteome", "species", sp.Name, "fasta_records", len(raws), "kept", len(records))
	return records, nil
}
