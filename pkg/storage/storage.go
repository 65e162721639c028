package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sw33tLie/roomdesk/pkg/records"
	"github.com/sw33tLie/roomdesk/pkg/source"
)

// DB is a local SQLite mirror of spreadsheet ranges. It implements
// source.Source so the service can run against it instead of the live sheet.
type DB struct {
	sql *sql.DB
}

var _ source.Source = (*DB)(nil)

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sheets (
  name       TEXT PRIMARY KEY,
  position   INTEGER NOT NULL,
  synced_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS cells (
  sheet      TEXT NOT NULL,
  row_num    INTEGER NOT NULL,
  col_num    INTEGER NOT NULL,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(sheet, row_num, col_num)
);
CREATE TABLE IF NOT EXISTS cell_writes (
  id          INTEGER PRIMARY KEY,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  category    TEXT NOT NULL,
  sheet       TEXT NOT NULL,
  row_ref     TEXT NOT NULL,
  col         TEXT NOT NULL,
  value       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_writes_time ON cell_writes(occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// resolveSheet maps the empty name to the first registered sheet.
func (d *DB) resolveSheet(ctx context.Context, sheet string) (string, error) {
	var name string
	var err error
	if sheet == "" {
		err = d.sql.QueryRowContext(ctx, "SELECT name FROM sheets ORDER BY position, name LIMIT 1").Scan(&name)
	} else {
		err = d.sql.QueryRowContext(ctx, "SELECT name FROM sheets WHERE name = ?", sheet).Scan(&name)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("sheet %q not found in mirror", sheet)
	}
	return name, err
}

func (d *DB) FetchRows(ctx context.Context, sheet, columnRange string) ([]records.RawRow, error) {
	rng, err := source.ParseRange(columnRange)
	if err != nil {
		return nil, err
	}
	name, err := d.resolveSheet(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrBackingStoreUnavailable, err)
	}

	q := `SELECT row_num, col_num, value FROM cells
WHERE sheet = ? AND row_num >= ? AND (? = 0 OR row_num <= ?) AND col_num BETWEEN ? AND ?
ORDER BY row_num, col_num`
	rows, err := d.sql.QueryContext(ctx, q, name, rng.StartRow, rng.EndRow, rng.EndRow, rng.StartCol, rng.EndCol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrBackingStoreUnavailable, err)
	}
	defer rows.Close()

	var out []records.RawRow
	for rows.Next() {
		var rowNum, colNum int
		var value string
		if err := rows.Scan(&rowNum, &colNum, &value); err != nil {
			return nil, fmt.Errorf("%w: %v", source.ErrBackingStoreUnavailable, err)
		}
		if value == "" {
			continue
		}
		idx := rowNum - rng.StartRow
		for len(out) <= idx {
			out = append(out, records.RawRow{})
		}
		pos := colNum - rng.StartCol
		for len(out[idx]) <= pos {
			out[idx] = append(out[idx], "")
		}
		out[idx][pos] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrBackingStoreUnavailable, err)
	}
	if out == nil {
		out = []records.RawRow{}
	}
	return out, nil
}

func (d *DB) WriteCell(ctx context.Context, sheet, rowRef, column, value string) error {
	rowNum, err := source.ParseRowRef(rowRef)
	if err != nil {
		return err
	}
	colNum, err := source.ColumnIndex(column)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrWriteRejected, err)
	}
	name, err := d.resolveSheet(ctx, sheet)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrWriteRejected, err)
	}

	_, err = d.sql.ExecContext(ctx, `INSERT INTO cells(sheet, row_num, col_num, value, updated_at) VALUES(?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(sheet, row_num, col_num) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, name, rowNum, colNum, value)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrBackingStoreUnavailable, err)
	}
	return nil
}

// ReplaceRange overwrites sheet!columnRange with rows, the first row landing
// on the range's start row. position orders sheets so that the lowest one is
// the "first sheet".
func (d *DB) ReplaceRange(ctx context.Context, sheet string, position int, columnRange string, rows []records.RawRow) (err error) {
	if sheet == "" {
		return errors.New("sheet name is required")
	}
	rng, err := source.ParseRange(columnRange)
	if err != nil {
		return err
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT INTO sheets(name, position, synced_at) VALUES(?,?,CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET position = excluded.position, synced_at = CURRENT_TIMESTAMP`, sheet, position); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cells WHERE sheet = ? AND row_num >= ? AND (? = 0 OR row_num <= ?) AND col_num BETWEEN ? AND ?`,
		sheet, rng.StartRow, rng.EndRow, rng.EndRow, rng.StartCol, rng.EndCol); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO cells(sheet, row_num, col_num, value) VALUES(?,?,?,?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		for j, cell := range row {
			if j >= rng.Width() {
				break
			}
			value := records.CellString(cell)
			if value == "" {
				continue
			}
			if _, err = stmt.ExecContext(ctx, sheet, rng.StartRow+i, rng.StartCol+j, value); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LogWrite appends an accepted write to the audit log.
func (d *DB) LogWrite(ctx context.Context, category, sheet, rowRef, column, value string) error {
	_, err := d.sql.ExecContext(ctx, "INSERT INTO cell_writes(occurred_at, category, sheet, row_ref, col, value) VALUES(?,?,?,?,?,?)",
		time.Now().UTC(), category, sheet, rowRef, column, value)
	return err
}

// ListWrites returns the most recent N audited writes, newest first.
func (d *DB) ListWrites(ctx context.Context, limit int) ([]Write, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx, "SELECT occurred_at, category, sheet, row_ref, col, value FROM cell_writes ORDER BY occurred_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	writes := []Write{}
	for rows.Next() {
		var w Write
		var occurredAtStr string
		if err := rows.Scan(&occurredAtStr, &w.Category, &w.Sheet, &w.RowRef, &w.Column, &w.Value); err != nil {
			return nil, err
		}
		w.OccurredAt = parseTimestamp(occurredAtStr)
		writes = append(writes, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return writes, nil
}

func (d *DB) GetStats(ctx context.Context) ([]SheetStats, error) {
	query := `
		SELECT
			s.name,
			COUNT(DISTINCT c.row_num),
			COUNT(c.value)
		FROM
			sheets s LEFT JOIN cells c ON c.sheet = s.name
		GROUP BY
			s.name
		ORDER BY
			s.position, s.name;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SheetStats
	for rows.Next() {
		var s SheetStats
		if err := rows.Scan(&s.Sheet, &s.RowCount, &s.CellCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// parseTimestamp accepts both CURRENT_TIMESTAMP output and the driver's
// formatting of time.Time values.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
