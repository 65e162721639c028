package records

import (
	"fmt"
	"strconv"
	"time"
)

// Variant identifies which column layout a source uses.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantBA      Variant = "ba"
)

// HeaderOffset is added to a row's zero-based batch index to get its sheet row
// number: one for 1-based numbering, one for the header row.
const HeaderOffset = 2

// DateLayout is the canonical DD/MM/YYYY representation every date cell is
// normalized to. Date filters compare against it with plain string equality.
const DateLayout = "02/01/2006"

// RawRow is one row as returned by the backing store. Cells are positional;
// a cell is usually a string but may be a time.Time, a number or nil.
type RawRow []interface{}

// Cell returns the i-th cell, or nil when the row is shorter than i+1.
func (r RawRow) Cell(i int) interface{} {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// Clone returns a copy of the row that shares no backing array with r.
func (r RawRow) Clone() RawRow {
	if r == nil {
		return nil
	}
	out := make(RawRow, len(r))
	copy(out, r)
	return out
}

// DefaultFields mirrors the A:K columns of the default sheet.
type DefaultFields struct {
	Route          string `json:"A"`
	ID1            string `json:"B"`
	ID2            string `json:"C"`
	Date           string `json:"D"`
	Contract       string `json:"E"`
	Customer       string `json:"F"`
	DueDate        string `json:"G"`
	InstallAmount  string `json:"H"`
	Occurrence     string `json:"I"`
	LineOfBusiness string `json:"J"`
	Reason         string `json:"K"`
}

// BAFields mirrors the B:M columns of the BA sheet.
type BAFields struct {
	ID1            string `json:"B"`
	ID2            string `json:"C"`
	Charge         string `json:"D"`
	Branch         string `json:"E"`
	Contract       string `json:"F"`
	Name           string `json:"G"`
	Address        string `json:"H"`
	DueDate        string `json:"I"`
	InstallAmount  string `json:"J"`
	OccurrenceCode string `json:"K"`
	LineOfBusiness string `json:"L"`
	Reason         string `json:"M"`
}

// Record is the normalized view of one row. Exactly one of Default and BA is
// set, matching Type.
type Record struct {
	RowRef string  `json:"row_ref"`
	Type   Variant `json:"type"`

	Contract       string `json:"contract"`
	Customer       string `json:"customer"`
	DueDate        string `json:"due_date"`
	InstallAmount  string `json:"install_amt"`
	LineOfBusiness string `json:"lob"`
	Reason         string `json:"reason"`
	DateFilterKey  string `json:"date_filter"`

	Default *DefaultFields `json:"default,omitempty"`
	BA      *BAFields      `json:"ba,omitempty"`
}

// Identifiers returns the two identifier columns used by text search.
func (r Record) Identifiers() (string, string) {
	switch {
	case r.Default != nil:
		return r.Default.ID1, r.Default.ID2
	case r.BA != nil:
		return r.BA.ID1, r.BA.ID2
	}
	return "", ""
}

// Mapper converts one raw row at a zero-based batch index into a Record.
type Mapper func(row RawRow, index int) Record

// MapperFor returns the mapper for a variant. Unknown variants use the
// default layout.
func MapperFor(v Variant) Mapper {
	if v == VariantBA {
		return NormalizeBA
	}
	return NormalizeDefault
}

// Normalize maps a whole batch with the variant's mapper.
func Normalize(v Variant, rows []RawRow) []Record {
	mapRow := MapperFor(v)
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		out = append(out, mapRow(row, i))
	}
	return out
}

func rowRef(index int) string {
	return strconv.Itoa(index + HeaderOffset)
}

// NormalizeDefault maps an A:K row.
func NormalizeDefault(row RawRow, index int) Record {
	f := &DefaultFields{
		Route:          CellString(row.Cell(0)),
		ID1:            CellString(row.Cell(1)),
		ID2:            CellString(row.Cell(2)),
		Date:           NormalizeDate(row.Cell(3)),
		Contract:       CellString(row.Cell(4)),
		Customer:       CellString(row.Cell(5)),
		DueDate:        NormalizeDate(row.Cell(6)),
		InstallAmount:  CellString(row.Cell(7)),
		Occurrence:     CellString(row.Cell(8)),
		LineOfBusiness: CellString(row.Cell(9)),
		Reason:         CellString(row.Cell(10)),
	}
	return Record{
		RowRef:         rowRef(index),
		Type:           VariantDefault,
		Contract:       f.Contract,
		Customer:       f.Customer,
		DueDate:        f.DueDate,
		InstallAmount:  f.InstallAmount,
		LineOfBusiness: f.LineOfBusiness,
		Reason:         f.Reason,
		DateFilterKey:  f.Date,
		Default:        f,
	}
}

// NormalizeBA maps a B:M row. Index 0 of the row is column B.
func NormalizeBA(row RawRow, index int) Record {
	f := &BAFields{
		ID1:            CellString(row.Cell(0)),
		ID2:            CellString(row.Cell(1)),
		Charge:         CellString(row.Cell(2)),
		Branch:         CellString(row.Cell(3)),
		Contract:       CellString(row.Cell(4)),
		Name:           CellString(row.Cell(5)),
		Address:        CellString(row.Cell(6)),
		DueDate:        NormalizeDate(row.Cell(7)),
		InstallAmount:  CellString(row.Cell(8)),
		OccurrenceCode: CellString(row.Cell(9)),
		LineOfBusiness: CellString(row.Cell(10)),
		Reason:         CellString(row.Cell(11)),
	}
	return Record{
		RowRef:         rowRef(index),
		Type:           VariantBA,
		Contract:       f.Contract,
		Customer:       f.Name,
		DueDate:        f.DueDate,
		InstallAmount:  f.InstallAmount,
		LineOfBusiness: f.LineOfBusiness,
		Reason:         f.Reason,
		DateFilterKey:  f.DueDate,
		BA:             f,
	}
}

// NormalizeDate formats a native date as DD/MM/YYYY. Strings pass through
// unchanged and empty cells become "".
func NormalizeDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(DateLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return NormalizeDate(*t)
	}
	return CellString(v)
}

// CellString renders any cell value as a definite string.
func CellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time, *time.Time:
		return NormalizeDate(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// requiredCells is the number of leading cells that must be filled for a row
// to count as complete. The reason column, last in both layouts, is excluded.
var requiredCells = map[Variant]int{
	VariantDefault: 10,
	VariantBA:      11,
}

// IsComplete reports whether every required cell of the raw row is non-empty.
// It works on the raw row so counting never pays for normalization.
func IsComplete(v Variant, row RawRow) bool {
	n, ok := requiredCells[v]
	if !ok {
		n = requiredCells[VariantDefault]
	}
	for i := 0; i < n; i++ {
		if isEmptyCell(row.Cell(i)) {
			return false
		}
	}
	return true
}

// CountComplete counts the complete rows of a batch.
func CountComplete(v Variant, rows []RawRow) int {
	n := 0
	for _, row := range rows {
		if IsComplete(v, row) {
			n++
		}
	}
	return n
}

func isEmptyCell(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case time.Time:
		return t.IsZero()
	case *time.Time:
		return t == nil || t.IsZero()
	}
	return false
}
