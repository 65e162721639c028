package storage

import "time"

// Write is one accepted single-cell update, as kept in the audit log.
type Write struct {
	OccurredAt time.Time
	Category   string
	Sheet      string
	RowRef     string
	Column     string
	Value      string
}

// SheetStats summarizes what the mirror holds for one sheet.
type SheetStats struct {
	Sheet     string
	RowCount  int
	CellCount int
}
