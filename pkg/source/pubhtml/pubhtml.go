// Package pubhtml reads rows from a spreadsheet that has been published to
// the web as HTML. It is read-only: every write is rejected.
package pubhtml

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/sw33tLie/roomdesk/pkg/records"
	"github.com/sw33tLie/roomdesk/pkg/source"
	"github.com/sw33tLie/roomdesk/pkg/whttp"
)

type Config struct {
	// URL is the ".../pubhtml" address of the published spreadsheet.
	URL string
	// GIDs maps sheet names to their gid. The empty name selects the first sheet.
	GIDs     map[string]string
	Timeout  time.Duration
	RetryMax int
	Proxy    string
	Log      source.Logger
}

type Source struct {
	cfg  Config
	http *retryablehttp.Client
	log  source.Logger
}

var _ source.Source = (*Source)(nil)

func New(cfg Config) (*Source, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("pubhtml: url is required")
	}
	client, err := whttp.NewClient(whttp.ClientOptions{Timeout: cfg.Timeout, RetryMax: cfg.RetryMax, Proxy: cfg.Proxy})
	if err != nil {
		return nil, err
	}
	log := cfg.Log
	if log == nil {
		log = source.NopLogger{}
	}
	return &Source{cfg: cfg, http: client, log: log}, nil
}

func (s *Source) FetchRows(ctx context.Context, sheet, columnRange string) ([]records.RawRow, error) {
	rng, err := source.ParseRange(columnRange)
	if err != nil {
		return nil, err
	}
	endpoint, err := s.sheetURL(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrBackingStoreUnavailable, err)
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{Method: http.MethodGet, URL: endpoint}, s.http)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching published sheet %q: %v", source.ErrBackingStoreUnavailable, sheet, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching published sheet %q: status %d %s", source.ErrBackingStoreUnavailable, sheet, res.StatusCode, res.HTTPTitle)
	}

	rows, err := ParseTable(res.Body, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrBackingStoreUnavailable, err)
	}
	s.log.Debugf("Parsed %d rows from published sheet %q", len(rows), sheet)
	return rows, nil
}

func (s *Source) WriteCell(ctx context.Context, sheet, rowRef, column, value string) error {
	return fmt.Errorf("%w: published sheets are read-only", source.ErrWriteRejected)
}

func (s *Source) sheetURL(sheet string) (string, error) {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return "", err
	}
	gid, ok := s.cfg.GIDs[sheet]
	if !ok && sheet != "" {
		return "", fmt.Errorf("no gid configured for sheet %q", sheet)
	}
	q := u.Query()
	if gid != "" {
		q.Set("gid", gid)
		q.Set("single", "true")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseTable extracts the cells of rng from the first "table.waffle" of a
// published sheet. Row header cells (th) are skipped; td cells are columns
// A, B, C... in order.
func ParseTable(body []byte, rng source.Range) ([]records.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	table := doc.Find("table.waffle").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no sheet table in published page")
	}

	var rows []records.RawRow
	table.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		sheetRow := i + 1
		if sheetRow < rng.StartRow || (rng.EndRow != 0 && sheetRow > rng.EndRow) {
			return
		}
		row := make(records.RawRow, 0, rng.Width())
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			col := j + 1
			if col >= rng.StartCol && col <= rng.EndCol {
				row = append(row, strings.TrimSpace(td.Text()))
			}
		})
		rows = append(rows, row)
	})
	return source.TrimTrailingEmpty(rows), nil
}
