package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sw33tLie/roomdesk/pkg/records"
)

// Period selects how due dates are grouped.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly, Yearly:
		return p, nil
	}
	return "", fmt.Errorf("invalid period %q", s)
}

// Bucket is the number of records whose due date falls under Key.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CountByPeriod groups records by due date. Keys are DD/MM, W<n>, MM/YYYY or
// YYYY depending on the period and come back sorted as strings. Records with
// an empty or malformed due date are skipped.
func CountByPeriod(recs []records.Record, period Period) []Bucket {
	counts := make(map[string]int)
	for _, rec := range recs {
		d, m, y, ok := splitDate(rec.DueDate)
		if !ok {
			continue
		}

		var key string
		switch period {
		case Monthly:
			key = m + "/" + y
		case Yearly:
			key = y
		case Weekly:
			key = "W" + strconv.Itoa(weekNumber(d, m, y))
		default:
			key = d + "/" + m
		}
		counts[key]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, Bucket{Key: k, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

func splitDate(s string) (d, m, y string, ok bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// weekNumber is ceil(days since Jan 1 / 7), so Jan 1 itself is week 0.
func weekNumber(d, m, y string) int {
	day, err1 := strconv.Atoi(d)
	month, err2 := strconv.Atoi(m)
	year, err3 := strconv.Atoi(y)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	days := date.YearDay() - 1
	return (days + 6) / 7
}
