package query

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/sw33tLie/roomdesk/pkg/records"
)

// mkDefault builds a default-layout record with the given identifiers,
// customer, due date and reason.
func mkDefault(i int, id1, id2, customer, due, reason string) records.Record {
	return records.NormalizeDefault(records.RawRow{"R", id1, id2, "01/01/2025", "CT", customer, due, "100", "1", "LOB", reason}, i)
}

func mkBA(i int, id1, id2, name, due, reason string) records.Record {
	return records.NormalizeBA(records.RawRow{id1, id2, "beban", "cabang", "CT", name, "alamat", due, "100", "1", "LOB", reason}, i)
}

func sampleRecords() []records.Record {
	return []records.Record{
		mkDefault(0, "ABC-001", "X-9", "Alice", "05/03/2025", ""),
		mkDefault(1, "abc-002", "Y-1", "Bob", "5/3/2025", "called"),
		mkDefault(2, "ZZZ-003", "abc-ref", "Carol", "05/03/2025", "  "),
		mkDefault(3, "QQQ-004", "Q-4", "abc customer", "06/03/2025", "paid"),
	}
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	for _, text := range []string{"", "   ", "\t"} {
		got := Search(sampleRecords(), Query{Text: text, Page: 3, PageSize: 2})
		if len(got.Page) != 0 || got.TotalRecords != 0 || got.TotalPages != 0 || got.CurrentPage != 1 {
			t.Fatalf("expected empty first page for %q, got %+v", text, got)
		}
		if got.Page == nil {
			t.Fatalf("expected a non-nil empty page")
		}
	}
}

func TestSearchTextMatchesIdentifiersOnly(t *testing.T) {
	got := Search(sampleRecords(), Query{Text: "ABC", PageSize: 10})
	if got.TotalRecords != 3 {
		t.Fatalf("expected 3 matches, got %d", got.TotalRecords)
	}
	for _, rec := range got.Page {
		if rec.Customer == "abc customer" {
			t.Fatalf("customer name must not be searched")
		}
	}

	ba := []records.Record{mkBA(0, "B-1", "B-2", "abc name", "", "")}
	if got := Search(ba, Query{Text: "abc", PageSize: 10}); got.TotalRecords != 0 {
		t.Fatalf("expected BA name not to match, got %d", got.TotalRecords)
	}
	if got := Search(ba, Query{Text: "b-2", PageSize: 10}); got.TotalRecords != 1 {
		t.Fatalf("expected BA identifier to match, got %d", got.TotalRecords)
	}
}

func TestSearchKeepsSurroundingWhitespace(t *testing.T) {
	recs := []records.Record{mkDefault(0, "ab12", "XY-9", "Budi", "05/03/2025", "")}

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "leading space", text: " ab", want: 0},
		{name: "trailing space", text: "ab ", want: 0},
		{name: "plain", text: "AB", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(recs, Query{Text: tt.text, Page: 1})
			if got.TotalRecords != tt.want {
				t.Fatalf("expected %d matches for %q, got %d", tt.want, tt.text, got.TotalRecords)
			}
		})
	}

	blank := Search(recs, Query{Text: "   ", Page: 1})
	if blank.TotalRecords != 0 || blank.CurrentPage != 1 {
		t.Fatalf("expected whitespace-only text to short-circuit, got %+v", blank)
	}
}

func TestSearchDateFilterIsExact(t *testing.T) {
	date, err := ParseDate("2025-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Search(sampleRecords(), Query{Text: "-", DateFilter: date, PageSize: 10})
	if got.TotalRecords != 2 {
		t.Fatalf("expected 2 zero-padded matches, got %d", got.TotalRecords)
	}
	for _, rec := range got.Page {
		if rec.DueDate != "05/03/2025" {
			t.Fatalf("unexpected due date %q", rec.DueDate)
		}
	}
}

func TestSearchDateFilterBA(t *testing.T) {
	recs := []records.Record{
		mkBA(0, "B-1", "x", "n", "05/03/2025", ""),
		mkBA(1, "B-2", "x", "n", "5/3/2025", ""),
	}
	date, _ := ParseDate("2025-03-05")
	got := Search(recs, Query{Text: "b-", DateFilter: date, PageSize: 10})
	if got.TotalRecords != 1 || got.Page[0].RowRef != "2" {
		t.Fatalf("expected only the zero-padded BA record, got %+v", got)
	}
}

func TestSearchStatusFilter(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   int
	}{
		{name: "all", status: StatusAll, want: 4},
		{name: "filled", status: StatusFilled, want: 2},
		{name: "empty treats whitespace as empty", status: StatusEmpty, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(sampleRecords(), Query{Text: "-", Status: tt.status, PageSize: 10})
			if got.TotalRecords != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got.TotalRecords)
			}
		})
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	recs := sampleRecords()
	before := sampleRecords()
	q := Query{Text: "abc", Status: StatusEmpty, Page: 1, PageSize: 1}

	first := Search(recs, q)
	second := Search(recs, q)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if !reflect.DeepEqual(recs, before) {
		t.Fatalf("search must not mutate its input")
	}
}

func manyRecords(n int) []records.Record {
	recs := make([]records.Record, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, mkDefault(i, fmt.Sprintf("ID-%03d", i), "", "", "", ""))
	}
	return recs
}

func TestPaginationReconstructsFilteredSet(t *testing.T) {
	for _, total := range []int{0, 1, 7, 15, 16, 45} {
		for _, size := range []int{1, 2, 5, 15, 100} {
			recs := manyRecords(total)
			first := Search(recs, Query{Text: "id-", Page: 1, PageSize: size})

			wantPages := (total + size - 1) / size
			if first.TotalPages != wantPages || first.TotalRecords != total {
				t.Fatalf("total=%d size=%d: expected %d pages, got %+v", total, size, wantPages, first)
			}

			var all []records.Record
			for p := 1; p <= first.TotalPages; p++ {
				res := Search(recs, Query{Text: "id-", Page: p, PageSize: size})
				if len(res.Page) > size {
					t.Fatalf("page %d longer than page size", p)
				}
				all = append(all, res.Page...)
			}
			if len(all) != total {
				t.Fatalf("total=%d size=%d: reconstructed %d records", total, size, len(all))
			}
			for i, rec := range all {
				if rec.RowRef != recs[i].RowRef {
					t.Fatalf("record %d out of order or duplicated", i)
				}
			}
		}
	}
}

func TestPaginationClamps(t *testing.T) {
	recs := manyRecords(10)
	tests := []struct {
		name string
		page int
		want int
	}{
		{name: "negative", page: -5, want: 1},
		{name: "zero", page: 0, want: 1},
		{name: "in range", page: 2, want: 2},
		{name: "huge", page: 1 << 30, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(recs, Query{Text: "id", Page: tt.page, PageSize: 3})
			if got.CurrentPage != tt.want {
				t.Fatalf("expected page %d, got %d", tt.want, got.CurrentPage)
			}
			if tt.want == 4 && len(got.Page) != 1 {
				t.Fatalf("expected last partial page, got %d records", len(got.Page))
			}
		})
	}

	whole := Search(recs, Query{Text: "id", Page: 1, PageSize: math.MaxInt})
	if whole.TotalPages != 1 || whole.CurrentPage != 1 || len(whole.Page) != 10 {
		t.Fatalf("expected a single page for a huge page size, got totalPages=%d current=%d len=%d", whole.TotalPages, whole.CurrentPage, len(whole.Page))
	}

	none := Search(recs, Query{Text: "nomatch", Page: 9, PageSize: 3})
	if none.CurrentPage != 1 || none.TotalPages != 0 || len(none.Page) != 0 {
		t.Fatalf("expected clamped empty result, got %+v", none)
	}
}

func TestDefaultPageSize(t *testing.T) {
	got := Search(manyRecords(20), Query{Text: "id", Page: 1})
	if len(got.Page) != DefaultPageSize || got.TotalPages != 2 {
		t.Fatalf("expected default page size %d, got %+v", DefaultPageSize, got)
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{"": StatusAll, "ALL": StatusAll, "filled": StatusFilled, " Empty ": StatusEmpty} {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("expected %q -> %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-05")
	if err != nil || !got.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v (%v)", got, err)
	}
	if got, err := ParseDate(""); err != nil || !got.IsZero() {
		t.Fatalf("expected zero date for empty input")
	}
	if _, err := ParseDate("05/03/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Fatalf("expected error for a day outside the month")
	}
}
