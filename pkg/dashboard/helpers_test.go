package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/sw33tLie/roomdesk/pkg/records"
	"github.com/sw33tLie/roomdesk/pkg/source"
)

type write struct {
	sheet, rowRef, column, value string
}

// fakeSource serves fixed rows per sheet and records writes.
type fakeSource struct {
	mu       sync.Mutex
	rows     map[string][]records.RawRow
	fetches  map[string]int
	writes   []write
	fetchErr error
	writeErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		rows: map[string][]records.RawRow{
			"": {
				{"R1", "ID-001", "ID-002", "01/03/2025", "CT-1", "Budi", "05/03/2025", "100", "1", "MOTOR", ""},
				{"R2", "ID-003", "", "01/03/2025", "CT-2", "Sari", "5/3/2025", "200", "2", "MOTOR", "called"},
				{"R3", "ID-004", "ID-005", "02/03/2025", "CT-3", "Andi", "06/03/2025", "300", "3", "CAR", "paid"},
			},
			"BA": {
				{"BA-1", "BA-2", "beban", "Jakarta", "CT-7", "Siti", "Jl. 1", "05/03/2025", "200", "2", "CAR", ""},
				{"BA-3", "BA-4", "beban", "Bandung", "CT-8", "Tono", "Jl. 2", "07/03/2025", "200", "2", "", ""},
			},
		},
		fetches: make(map[string]int),
	}
}

func (f *fakeSource) FetchRows(ctx context.Context, sheet, columnRange string) ([]records.RawRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[sheet]++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	rows, ok := f.rows[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: no sheet %q", source.ErrBackingStoreUnavailable, sheet)
	}
	out := make([]records.RawRow, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (f *fakeSource) WriteCell(ctx context.Context, sheet, rowRef, column, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, write{sheet, rowRef, column, value})
	return nil
}

func (f *fakeSource) fetchCount(sheet string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[sheet]
}

type auditEntry struct {
	category, sheet, rowRef, column, value string
}

type fakeAuditor struct {
	entries []auditEntry
	err     error
}

func (a *fakeAuditor) LogWrite(ctx context.Context, category, sheet, rowRef, column, value string) error {
	a.entries = append(a.entries, auditEntry{category, sheet, rowRef, column, value})
	return a.err
}
