// Package sheets is a source.Source backed by the Google Sheets v4 REST API.
//
// Credentials are obtained out of band: the client is handed either an OAuth
// bearer token or an API key (read-only, public sheets).
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/sw33tLie/roomdesk/pkg/records"
	"github.com/sw33tLie/roomdesk/pkg/source"
	"github.com/sw33tLie/roomdesk/pkg/whttp"
)

const (
	SHEETS_API_BASE = "https://sheets.googleapis.com"
	// FALLBACK_SHEET is used when the first sheet's title cannot be read.
	FALLBACK_SHEET = "Sheet1"
)

// Config holds what Client needs to talk to one spreadsheet.
type Config struct {
	SpreadsheetID string
	Token         string
	APIKey        string
	BaseURL       string        // defaults to SHEETS_API_BASE
	Timeout       time.Duration // per request attempt
	RetryMax      int
	Proxy         string
	Log           source.Logger
}

// Client implements source.Source. An empty sheet name addresses the first
// sheet of the spreadsheet.
type Client struct {
	cfg  Config
	http *retryablehttp.Client
	log  source.Logger

	mu         sync.Mutex
	firstSheet string
}

var _ source.Source = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SHEETS_API_BASE
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpClient, err := whttp.NewClient(whttp.ClientOptions{
		Timeout:  cfg.Timeout,
		RetryMax: cfg.RetryMax,
		Proxy:    cfg.Proxy,
	})
	if err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = source.NopLogger{}
	}
	return &Client{cfg: cfg, http: httpClient, log: log}, nil
}

func (c *Client) FetchRows(ctx context.Context, sheet, columnRange string) ([]records.RawRow, error) {
	if _, err := source.ParseRange(columnRange); err != nil {
		return nil, err
	}
	sheet = c.sheetName(ctx, sheet)

	endpoint := c.valuesURL(a1(sheet, columnRange), url.Values{"majorDimension": {"ROWS"}})
	res, err := c.send(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s!%s: %v", source.ErrBackingStoreUnavailable, sheet, columnRange, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching %s!%s: %s", source.ErrBackingStoreUnavailable, sheet, columnRange, describe(res))
	}

	values := gjson.GetBytes(res.Body, "values").Array()
	rows := make([]records.RawRow, 0, len(values))
	for _, v := range values {
		cells := v.Array()
		row := make(records.RawRow, len(cells))
		for i, cell := range cells {
			row[i] = cell.String()
		}
		rows = append(rows, row)
	}
	c.log.Debugf("Fetched %d rows from %s!%s", len(rows), sheet, columnRange)
	return rows, nil
}

func (c *Client) WriteCell(ctx context.Context, sheet, rowRef, column, value string) error {
	row, err := source.ParseRowRef(rowRef)
	if err != nil {
		return err
	}
	if _, err := source.ColumnIndex(column); err != nil {
		return fmt.Errorf("%w: %v", source.ErrWriteRejected, err)
	}
	sheet = c.sheetName(ctx, sheet)

	cell := fmt.Sprintf("%s%d", strings.ToUpper(column), row)
	target := a1(sheet, cell)
	body, err := json.Marshal(map[string]interface{}{
		"range":  target,
		"values": [][]string{{value}},
	})
	if err != nil {
		return err
	}

	endpoint := c.valuesURL(target, url.Values{"valueInputOption": {"RAW"}})
	res, err := c.send(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", source.ErrBackingStoreUnavailable, target, err)
	}
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: writing %s: %s", source.ErrBackingStoreUnavailable, target, describe(res))
	default:
		return fmt.Errorf("%w: writing %s: %s", source.ErrWriteRejected, target, describe(res))
	}
}

// sheetName resolves an empty name to the title of the first sheet.
func (c *Client) sheetName(ctx context.Context, sheet string) string {
	if sheet != "" {
		return sheet
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firstSheet != "" {
		return c.firstSheet
	}

	endpoint := c.cfg.BaseURL + "/v4/spreadsheets/" + url.PathEscape(c.cfg.SpreadsheetID) + "?" + c.query(url.Values{"fields": {"sheets.properties.title"}})
	res, err := c.send(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Warnf("Error getting sheet name: %v", err)
		return FALLBACK_SHEET
	}
	title := gjson.GetBytes(res.Body, "sheets.0.properties.title").String()
	if res.StatusCode != http.StatusOK || title == "" {
		c.log.Warnf("Error getting sheet name: %s", describe(res))
		return FALLBACK_SHEET
	}
	c.firstSheet = title
	return title
}

func (c *Client) valuesURL(a1Range string, params url.Values) string {
	return c.cfg.BaseURL + "/v4/spreadsheets/" + url.PathEscape(c.cfg.SpreadsheetID) +
		"/values/" + url.PathEscape(a1Range) + "?" + c.query(params)
}

func (c *Client) query(params url.Values) string {
	if c.cfg.APIKey != "" && c.cfg.Token == "" {
		params.Set("key", c.cfg.APIKey)
	}
	return params.Encode()
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte) (*whttp.WHTTPRes, error) {
	req := &whttp.WHTTPReq{Method: method, URL: endpoint, Body: body}
	if c.cfg.Token != "" {
		req.Headers = append(req.Headers, whttp.WHTTPHeader{Name: "Authorization", Value: "Bearer " + c.cfg.Token})
	}
	return whttp.SendHTTPRequest(ctx, req, c.http)
}

// a1 builds a sheet-qualified range, quoting the sheet name.
func a1(sheet, rng string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + rng
}

// describe extracts the most useful error text from a failed response.
func describe(res *whttp.WHTTPRes) string {
	if msg := gjson.GetBytes(res.Body, "error.message").String(); msg != "" {
		return fmt.Sprintf("status %d: %s", res.StatusCode, msg)
	}
	if res.HTTPTitle != "" {
		return fmt.Sprintf("status %d: %s", res.StatusCode, res.HTTPTitle)
	}
	return fmt.Sprintf("status %d", res.StatusCode)
}

// FirstSheet returns the title of the spreadsheet's first sheet, or
// FALLBACK_SHEET when the metadata cannot be read.
func (c *Client) FirstSheet(ctx context.Context) string {
	return c.sheetName(ctx, "")
}
