package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sw33tLie/roomdesk/pkg/records"
)

var (
	// ErrBackingStoreUnavailable means the store could not be reached or
	// refused our credentials. Callers may retry.
	ErrBackingStoreUnavailable = errors.New("backing store unavailable")
	// ErrWriteRejected means a single-cell write failed validation or was
	// refused by the store.
	ErrWriteRejected = errors.New("write rejected")
)

// Source fetches raw rows from and writes single cells to a backing store.
// Implementations enforce their own bounded timeouts.
type Source interface {
	// FetchRows returns the data rows of sheet!columnRange in natural order.
	// An existing but empty range yields an empty slice, not an error.
	FetchRows(ctx context.Context, sheet, columnRange string) ([]records.RawRow, error)
	// WriteCell writes value into column+rowRef of sheet.
	WriteCell(ctx context.Context, sheet, rowRef, column, value string) error
}

// Logger abstracts logging so callers can use logrus or anything else that
// satisfies it.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Debugf(string, ...interface{}) {}

// Range is a parsed A1 column range such as "A2:K" or "B2:M200".
// Columns are 1-based; EndRow is 0 when the range is open-ended.
type Range struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// Width is the number of columns covered by the range.
func (r Range) Width() int {
	return r.EndCol - r.StartCol + 1
}

// ParseRange parses an A1 range. A missing start row means row 1.
func ParseRange(s string) (Range, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), ":")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("invalid range %q", s)
	}
	sc, sr, err := splitCell(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	ec, er, err := splitCell(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if sr == 0 {
		sr = 1
	}
	if ec < sc || (er != 0 && er < sr) {
		return Range{}, fmt.Errorf("invalid range %q: end before start", s)
	}
	return Range{StartCol: sc, StartRow: sr, EndCol: ec, EndRow: er}, nil
}

func splitCell(cell string) (col, row int, err error) {
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("missing column in %q", cell)
	}
	col, err = ColumnIndex(cell[:i])
	if err != nil {
		return 0, 0, err
	}
	if i < len(cell) {
		row, err = strconv.Atoi(cell[i:])
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("bad row in %q", cell)
		}
	}
	return col, row, nil
}

// ColumnIndex converts a column letter ("A", "M", "AA") to its 1-based index.
func ColumnIndex(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, errors.New("empty column")
	}
	n := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("bad column %q", letters)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, nil
}

// ParseRowRef validates a row reference and returns it as a sheet row number.
// Row 1 is the header and can never be targeted.
func ParseRowRef(rowRef string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(rowRef))
	if err != nil || n < records.HeaderOffset {
		return 0, fmt.Errorf("%w: invalid row reference %q", ErrWriteRejected, rowRef)
	}
	return n, nil
}

// TrimTrailingEmpty drops trailing rows with no non-empty cell, the way the
// Sheets API stops at the last row holding data.
func TrimTrailingEmpty(rows []records.RawRow) []records.RawRow {
	end := len(rows)
	for end > 0 && rowIsBlank(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func rowIsBlank(row records.RawRow) bool {
	for _, v := range row {
		if records.CellString(v) != "" {
			return false
		}
	}
	return true
}
