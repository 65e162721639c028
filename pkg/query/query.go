// Package query filters and paginates normalized records.
//
// Search runs its stages in a fixed order: empty-query short-circuit, text
// filter on the two identifier columns, exact due-date filter, reason status
// filter, then pagination. Records are never mutated or reordered; pages are
// slices of the filtered set in fetch order.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/sw33tLie/roomdesk/pkg/records"
)

// DefaultPageSize is used when a query carries no positive page size.
const DefaultPageSize = 15

// CalendarDateLayout is the layout of incoming date filters.
const CalendarDateLayout = "2006-01-02"

// Status filters records on whether their reason is filled in.
type Status string

const (
	StatusAll    Status = "all"
	StatusFilled Status = "filled"
	StatusEmpty  Status = "empty"
)

// ParseStatus accepts "", "all", "filled" and "empty", case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusFilled:
		return StatusFilled, nil
	case StatusEmpty:
		return StatusEmpty, nil
	}
	return "", fmt.Errorf("invalid status filter %q", s)
}

// ParseDate parses a YYYY-MM-DD calendar date. The empty string means no
// date filter and yields the zero time. Dates that do not exist, such as
// 2025-02-30, are rejected rather than matching nothing.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(CalendarDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date filter %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Query describes one search request.
type Query struct {
	Text       string
	DateFilter time.Time // zero means no date filter
	Status     Status
	Page       int
	PageSize   int
}

// Result is one page of matches.
type Result struct {
	Page         []records.Record `json:"matched_records"`
	TotalRecords int              `json:"total_records"`
	TotalPages   int              `json:"total_pages"`
	CurrentPage  int              `json:"current_page"`
}

// Search applies q to recs.
func Search(recs []records.Record, q Query) Result {
	if strings.TrimSpace(q.Text) == "" {
		return Result{Page: []records.Record{}, CurrentPage: 1}
	}
	// Surrounding whitespace is part of the needle.
	text := strings.ToLower(q.Text)

	matched := make([]records.Record, 0, len(recs))
	for _, rec := range recs {
		if matchesText(rec, text) {
			matched = append(matched, rec)
		}
	}

	if !q.DateFilter.IsZero() {
		matched = filter(matched, dueDateEquals(q.DateFilter.Format(records.DateLayout)))
	}

	switch q.Status {
	case StatusFilled:
		matched = filter(matched, reasonFilled(true))
	case StatusEmpty:
		matched = filter(matched, reasonFilled(false))
	}

	return Paginate(matched, q.Page, q.PageSize)
}

// Paginate slices recs into the requested page. Out-of-range pages are
// clamped into [1, max(totalPages, 1)].
func Paginate(recs []records.Record, page, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(recs)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	current := page
	if current > totalPages {
		current = totalPages
	}
	if current < 1 {
		current = 1
	}

	start := (current - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	out := make([]records.Record, end-start)
	copy(out, recs[start:end])
	return Result{
		Page:         out,
		TotalRecords: total,
		TotalPages:   totalPages,
		CurrentPage:  current,
	}
}

// matchesText checks the two identifier columns only; names are not searched.
func matchesText(rec records.Record, lowerText string) bool {
	id1, id2 := rec.Identifiers()
	return strings.Contains(strings.ToLower(id1), lowerText) ||
		strings.Contains(strings.ToLower(id2), lowerText)
}

// dueDateEquals compares strings, so "5/3/2025" never matches "05/03/2025".
func dueDateEquals(target string) func(records.Record) bool {
	return func(rec records.Record) bool {
		return rec.DueDate == target
	}
}

func reasonFilled(want bool) func(records.Record) bool {
	return func(rec records.Record) bool {
		return (strings.TrimSpace(rec.Reason) != "") == want
	}
}

func filter(recs []records.Record, keep func(records.Record) bool) []records.Record {
	out := recs[:0:0]
	for _, rec := range recs {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
