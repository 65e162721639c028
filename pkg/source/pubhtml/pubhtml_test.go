package pubhtml

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sw33tLie/roomdesk/pkg/source"
)

const publishedPage = `<html><head><title>Dashboard</title></head><body>
<div id="sheets-viewport"><table class="waffle" cellspacing="0" cellpadding="0">
<thead><tr><th class="row-header freezebar-origin-ltr"></th><th class="column-headers-background">A</th><th class="column-headers-background">B</th><th class="column-headers-background">C</th><th class="column-headers-background">D</th></tr></thead>
<tbody>
<tr><th class="row-headers-background"><div class="row-header-wrapper">1</div></th><td>RUTE</td><td>ID1</td><td>ID2</td><td>NAMA</td></tr>
<tr><th class="row-headers-background"><div class="row-header-wrapper">2</div></th><td>R1</td><td> ID-001 </td><td>ID-002</td><td>Budi</td></tr>
<tr><th class="row-headers-background"><div class="row-header-wrapper">3</div></th><td>R2</td><td>ID-003</td><td></td><td>Siti</td></tr>
<tr><th class="row-headers-background"><div class="row-header-wrapper">4</div></th><td></td><td></td><td></td><td></td></tr>
</tbody></table></div></body></html>`

func TestParseTable(t *testing.T) {
	rows, err := ParseTable([]byte(publishedPage), source.Range{StartCol: 2, StartRow: 2, EndCol: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "ID-001" || rows[0][2] != "Budi" || len(rows[0]) != 3 {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][1] != "" {
		t.Fatalf("expected empty cell to stay empty, got %v", rows[1][1])
	}
}

func TestParseTableMissing(t *testing.T) {
	if _, err := ParseTable([]byte("<html><body>nope</body></html>"), source.Range{StartCol: 1, StartRow: 2, EndCol: 2}); err == nil {
		t.Fatalf("expected error when no sheet table is present")
	}
}

func TestFetchRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("gid") != "42" {
			t.Errorf("expected gid 42, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, publishedPage)
	}))
	defer srv.Close()

	s, err := New(Config{URL: srv.URL + "/pubhtml", GIDs: map[string]string{"BA": "42"}, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := s.FetchRows(context.Background(), "BA", "A2:D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "R2" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	if _, err := s.FetchRows(context.Background(), "Other", "A2:D"); !errors.Is(err, source.ErrBackingStoreUnavailable) {
		t.Fatalf("expected unknown sheet to be unavailable, got %v", err)
	}
}

func TestWriteCellAlwaysRejected(t *testing.T) {
	s, err := New(Config{URL: "http://example.invalid/pubhtml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.WriteCell(context.Background(), "BA", "2", "M", "x"); !errors.Is(err, source.ErrWriteRejected) {
		t.Fatalf("expected ErrWriteRejected, got %v", err)
	}
}
