// Package sheets fetches published Google Sheets timetables as raw string
// grids. A worksheet is downloaded through the xlsx export endpoint and
// decoded with excelize; no Google API credentials are involved.
package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corpix/uarand"
	"github.com/xuri/excelize/v2"

	"github.com/glebkhr/schedbot-go/internal/config"
	errs "github.com/glebkhr/schedbot-go/internal/errors"
	"github.com/glebkhr/schedbot-go/internal/timetable"
)

// defaultBaseURL hosts the public xlsx export endpoint of published sheets.
const defaultBaseURL = "https://docs.google.com"

// exportPathFormat is the xlsx export path of one worksheet.
const exportPathFormat = "/spreadsheets/d/%s/export?format=xlsx&gid=%s"

// maxWorkbookBytes caps the downloaded workbook size.
const maxWorkbookBytes = 32 << 20

// Client downloads and decodes timetable workbooks.
type Client struct {
	httpClient *http.Client
	userAgents []string
	maxRetries int
	retryDelay time.Duration
	baseURL    string
}

// NewClient creates a client with the given per-request timeout and retry
// budget.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgents: generateUserAgents(),
		maxRetries: maxRetries,
	}
}

// ExportURL returns the xlsx export URL for a source.
func (c *Client) ExportURL(src config.Source) string {
	return c.baseURL + fmt.Sprintf(exportPathFormat, src.SheetID, src.GID)
}

// FetchGrid downloads the worksheet of a source and returns its raw cell
// grid. Transient failures (network, 429, 5xx) are retried with backoff;
// other 4xx responses fail immediately. All failures wrap
// errs.ErrSourceUnavailable.
func (c *Client) FetchGrid(ctx context.Context, src config.Source) (timetable.Grid, error) {
	url := c.ExportURL(src)

	var body []byte
	err := RetryWithBackoff(ctx, c.maxRetries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", c.randomUserAgent())
		req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,*/*;q=0.8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return errs.NewFetchError(url, 0, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			ferr := errs.NewFetchError(url, resp.StatusCode, fmt.Errorf("unexpected status"))
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return ferr
			case resp.StatusCode >= 500:
				return ferr
			default:
				return permanent(ferr)
			}
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxWorkbookBytes))
		if err != nil {
			return errs.NewFetchError(url, resp.StatusCode, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, err)
	}

	grid, err := DecodeWorkbook(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, err)
	}
	return grid, nil
}

// DecodeWorkbook decodes xlsx bytes into the cell grid of the first
// worksheet. Cells keep their formatted string values; ragged rows are
// preserved as-is.
func DecodeWorkbook(data []byte) (timetable.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheetName, err)
	}

	grid := make(timetable.Grid, len(rows))
	for i, row := range rows {
		grid[i] = make([]string, len(row))
		copy(grid[i], row)
	}
	return grid, nil
}

// randomUserAgent returns a random user agent string
func (c *Client) randomUserAgent() string {
	if len(c.userAgents) == 0 {
		return uarand.GetRandom()
	}
	return c.userAgents[time.Now().UnixNano()%int64(len(c.userAgents))]
}

// generateUserAgents returns a list of common user agent strings
func generateUserAgents() []string {
	return []string{
		// Chrome on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",

		// Chrome on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",

		// Firefox on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",

		// Firefox on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",

		// Safari on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",

		// Edge on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",

		// Chrome on Linux
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}
