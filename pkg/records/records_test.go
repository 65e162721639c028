package records

import (
	"reflect"
	"testing"
	"time"
)

func fullDefaultRow() RawRow {
	return RawRow{"R1", "ID-001", "ID-002", "01/03/2025", "CT-9", "Budi", "05/03/2025", "150000", "3", "MOTOR", ""}
}

func fullBARow() RawRow {
	return RawRow{"ID-101", "ID-102", "Beban A", "Jakarta", "CT-7", "Siti", "Jl. Merdeka 1", "05/03/2025", "200000", "2", "CAR", "called"}
}

func TestNormalizeDefault(t *testing.T) {
	rec := NormalizeDefault(fullDefaultRow(), 0)

	if rec.RowRef != "2" {
		t.Fatalf("expected row ref 2, got %q", rec.RowRef)
	}
	if rec.Type != VariantDefault || rec.Default == nil || rec.BA != nil {
		t.Fatalf("expected a default record, got %+v", rec)
	}
	if rec.Contract != "CT-9" || rec.Customer != "Budi" || rec.DueDate != "05/03/2025" {
		t.Fatalf("unexpected projection: %+v", rec)
	}
	if rec.DateFilterKey != "01/03/2025" {
		t.Fatalf("expected date filter key from column D, got %q", rec.DateFilterKey)
	}
	if rec.LineOfBusiness != "MOTOR" || rec.InstallAmount != "150000" {
		t.Fatalf("unexpected projection: %+v", rec)
	}
	id1, id2 := rec.Identifiers()
	if id1 != "ID-001" || id2 != "ID-002" {
		t.Fatalf("expected identifiers ID-001/ID-002, got %s/%s", id1, id2)
	}
}

func TestNormalizeBA(t *testing.T) {
	rec := NormalizeBA(fullBARow(), 4)

	if rec.RowRef != "6" {
		t.Fatalf("expected row ref 6, got %q", rec.RowRef)
	}
	if rec.Type != VariantBA || rec.BA == nil || rec.Default != nil {
		t.Fatalf("expected a BA record, got %+v", rec)
	}
	if rec.Customer != "Siti" || rec.Reason != "called" || rec.DueDate != "05/03/2025" {
		t.Fatalf("unexpected projection: %+v", rec)
	}
	if rec.BA.Charge != "Beban A" || rec.BA.Branch != "Jakarta" || rec.BA.Address != "Jl. Merdeka 1" || rec.BA.OccurrenceCode != "2" {
		t.Fatalf("unexpected BA extras: %+v", rec.BA)
	}
}

func TestNormalizeNeverLeavesHoles(t *testing.T) {
	rows := []RawRow{nil, {}, {nil, nil, "x"}, {"a"}}
	for i, row := range rows {
		for _, rec := range []Record{NormalizeDefault(row, i), NormalizeBA(row, i)} {
			checkStrings(t, reflect.ValueOf(rec))
		}
	}
}

func checkStrings(t *testing.T, v reflect.Value) {
	t.Helper()
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		checkStrings(t, v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			checkStrings(t, v.Field(i))
		}
	case reflect.String:
		// any string value, including "", is acceptable
	default:
		t.Fatalf("unexpected field kind %s", v.Kind())
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "native date", in: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), want: "05/03/2025"},
		{name: "preformatted string", in: "5/3/2025", want: "5/3/2025"},
		{name: "empty string", in: "", want: ""},
		{name: "nil", in: nil, want: ""},
		{name: "zero time", in: time.Time{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsComplete(t *testing.T) {
	row := fullDefaultRow()
	if !IsComplete(VariantDefault, row) {
		t.Fatalf("expected full default row with empty reason to be complete")
	}

	row[2] = ""
	if IsComplete(VariantDefault, row) {
		t.Fatalf("expected row with empty third cell to be incomplete")
	}

	short := fullDefaultRow()[:9]
	if IsComplete(VariantDefault, short) {
		t.Fatalf("expected short row to be incomplete")
	}

	ba := fullBARow()
	ba[11] = ""
	if !IsComplete(VariantBA, ba) {
		t.Fatalf("expected BA row without reason to be complete")
	}
	ba[10] = nil
	if IsComplete(VariantBA, ba) {
		t.Fatalf("expected BA row with empty LOB to be incomplete")
	}
}

func TestCountComplete(t *testing.T) {
	incomplete := fullDefaultRow()
	incomplete[0] = ""
	rows := []RawRow{fullDefaultRow(), incomplete, fullDefaultRow()}
	if got := CountComplete(VariantDefault, rows); got != 2 {
		t.Fatalf("expected 2 complete rows, got %d", got)
	}
}

func TestNormalizeUsesVariantNotContent(t *testing.T) {
	// A BA-shaped row read from the default source still maps with the default layout.
	recs := Normalize(VariantDefault, []RawRow{fullBARow()})
	if len(recs) != 1 || recs[0].Type != VariantDefault {
		t.Fatalf("expected one default record, got %+v", recs)
	}
	if recs[0].Customer != "Jl. Merdeka 1" {
		t.Fatalf("expected column F of the row as customer, got %q", recs[0].Customer)
	}
}

func TestCellString(t *testing.T) {
	if got := CellString(float64(150000)); got != "150000" {
		t.Fatalf("expected 150000, got %q", got)
	}
	if got := CellString(12.5); got != "12.5" {
		t.Fatalf("expected 12.5, got %q", got)
	}
}
