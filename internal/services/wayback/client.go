package wayback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	backoff "gopkg.in/cenkalti/backoff.v1"
)

const (
	defaultCDXAPI        = "http://web.archive.org/cdx/search/cdx"
	defaultIASearchAPI   = "https://archive.org/advancedsearch.php"
	defaultReplayPrefix  = "http://web.archive.org/web"
	defaultIADownloadFmt = "https://archive.org/download/%s/%s.pdf"
)

var errNotPDF = errors.New("response is not a PDF")

// Client talks to the Wayback Machine CDX index and the Internet
// Archive search API.
type Client struct {
	log           *slog.Logger
	http          *http.Client
	cdxAPI        string
	iaSearchAPI   string
	replayPrefix  string
	iaDownloadFmt string
	maxRetries    uint64
}

func NewClient(log *slog.Logger) *Client {
	return &Client{
		log:           log,
		http:          &http.Client{Timeout: 30 * time.Second},
		cdxAPI:        defaultCDXAPI,
		iaSearchAPI:   defaultIASearchAPI,
		replayPrefix:  defaultReplayPrefix,
		iaDownloadFmt: defaultIADownloadFmt,
		maxRetries:    3,
	}
}

// Snapshots returns all archived snapshot URLs for original, oldest to
// newest, keeping only 200 responses and collapsing identical captures.
func (c *Client) Snapshots(ctx context.Context, original string) ([]string, error) {
	const op = "wayback.Snapshots"

	params := url.Values{
		"url":      {original},
		"output":   {"json"},
		"fl":       {"timestamp,original"},
		"filter":   {"statuscode:200"},
		"collapse": {"digest"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cdxAPI+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	// CDX json output is an array of rows, the first being the header.
	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	snapshots := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		snapshots = append(snapshots, fmt.Sprintf("%s/%s/%s", c.replayPrefix, row[0], row[1]))
	}
	return snapshots, nil
}

// DownloadPDF fetches rawURL into outPath, retrying transient failures
// with exponential backoff. A non-PDF Content-Type is permanent and not
// retried.
func (c *Client) DownloadPDF(ctx context.Context, rawURL, outPath string) error {
	const op = "wayback.DownloadPDF"

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), "pdf") {
			return backoff.Permanent(fmt.Errorf("%w: Content-Type %q", errNotPDF, contentType))
		}

		f, err := os.Create(outPath)
		if err != nil {
			return backoff.Permanent(err)
		}
		if _, err := io.Copy(f, resp.Body); err != nil {
			f.Close()
			os.Remove(outPath)
			return err
		}
		return f.Close()
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Minute

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxTries(bo, c.maxRetries), ctx)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type iaSearchResponse struct {
	Response struct {
		Docs []struct {
			Identifier string `json:"identifier"`
			Title      string `json:"title"`
			MediaType  string `json:"mediatype"`
		} `json:"docs"`
	} `json:"response"`
}

// SearchArchive queries the Internet Archive advanced search for query
// (a bibcode or title) and returns the first candidate PDF URL whose
// existence a HEAD request confirms, or "" when nothing turns up.
func (c *Client) SearchArchive(ctx context.Context, query string) (string, error) {
	const op = "wayback.SearchArchive"

	params := url.Values{
		"q":      {query},
		"fl[]":   {"identifier", "title", "mediatype"},
		"output": {"json"},
		"rows":   {"10"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.iaSearchAPI+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var data iaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	for _, doc := range data.Response.Docs {
		if doc.MediaType != "texts" {
			continue
		}
		pdfURL := fmt.Sprintf(c.iaDownloadFmt, doc.Identifier, doc.Identifier)
		if c.headOK(ctx, pdfURL) {
			return pdfURL, nil
		}
	}
	return "", nil
}

func (c *Client) headOK(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
