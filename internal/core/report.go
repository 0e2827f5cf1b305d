package core

import (
	"sort"
	"time"
)

// Period kinds for trend bucketing.
const (
	Daily   PeriodKind = "daily"
	Weekly  PeriodKind = "weekly"
	Monthly PeriodKind = "monthly"
	Yearly  PeriodKind = "yearly"
)

type (
	PeriodKind string

	// Report is a snapshot derived from a record collection. It is a pure
	// function of its input and is recomputed on every request; nothing here
	// is cached or updated incrementally.
	Report struct {
		Total       float64              `json:"total"`
		Count       int                  `json:"count"`
		Average     float64              `json:"average"`
		ByCategory  map[Category]float64 `json:"byCategory"`
		Percentages map[Category]float64 `json:"percentages"`
		ByMonth     map[string]float64   `json:"byMonth"`
		Recent      []Record             `json:"recent"`
		Period      Period               `json:"period"`
	}

	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	// PeriodBucket aggregates the records sharing one period key.
	PeriodBucket struct {
		Key        string               `json:"key"`
		Amount     float64              `json:"amount"`
		Count      int                  `json:"count"`
		ByCategory map[Category]float64 `json:"byCategory"`
	}
)

// IsValid returns true for a known period kind.
func (p PeriodKind) IsValid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// maxTrendBuckets bounds ByPeriod output to the most recent buckets.
const maxTrendBuckets = 12

// recentLimit bounds the Recent list of a report.
const recentLimit = 10

// BuildReport derives totals, category and month breakdowns with per-category
// percentage shares, the ten most recent records, and the covered period from
// a record collection. Category keys absent from the input are absent from
// the maps, not zero-filled; downstream consumers iterate only over present
// keys. An empty collection yields zero totals and empty maps without error.
func BuildReport(records []Record) Report {
	rep := Report{
		ByCategory:  make(map[Category]float64),
		Percentages: make(map[Category]float64),
		ByMonth:     make(map[string]float64),
		Recent:      []Record{},
		Count:       len(records),
	}

	for _, r := range records {
		rep.Total += r.Amount
		rep.ByCategory[r.Category] += r.Amount
		rep.ByMonth[monthKey(r.Date)] += r.Amount
	}

	if rep.Count > 0 {
		rep.Average = rep.Total / float64(rep.Count)
	}

	for c, amount := range rep.ByCategory {
		rep.Percentages[c] = Percentage(amount, rep.Total)
	}

	recent := Clone(records)
	SortByDateDesc(recent)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	rep.Recent = recent

	months := make([]string, 0, len(rep.ByMonth))
	for m := range rep.ByMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > 0 {
		rep.Period = Period{Start: months[0], End: months[len(months)-1]}
	}

	return rep
}

// Percentage returns part/total as a percentage, or 0 when total is zero so
// an empty collection never produces NaN.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// ByPeriod groups records into trend buckets keyed by the given period kind,
// newest bucket first, truncated to the 12 most recent buckets.
func ByPeriod(kind PeriodKind, records []Record) []PeriodBucket {
	grouped := make(map[string]*PeriodBucket)
	for _, r := range records {
		key := periodKey(kind, r.Date)
		b, ok := grouped[key]
		if !ok {
			b = &PeriodBucket{Key: key, ByCategory: make(map[Category]float64)}
			grouped[key] = b
		}
		b.Amount += r.Amount
		b.Count++
		b.ByCategory[r.Category] += r.Amount
	}

	buckets := make([]PeriodBucket, 0, len(grouped))
	for _, b := range grouped {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key > buckets[j].Key
	})
	if len(buckets) > maxTrendBuckets {
		buckets = buckets[:maxTrendBuckets]
	}
	return buckets
}

func periodKey(kind PeriodKind, date string) string {
	switch kind {
	case Weekly:
		return weekStart(date)
	case Monthly:
		return monthKey(date)
	case Yearly:
		return yearKey(date)
	default:
		return date
	}
}

func monthKey(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}

func yearKey(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}

// weekStart maps a date to the date of the preceding Sunday (the date itself
// when it already is a Sunday), formatted YYYY-MM-DD. Unparseable dates fall
// back to the raw string so a malformed record lands in its own bucket.
func weekStart(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	t = t.AddDate(0, 0, -int(t.Weekday()))
	return t.Format("2006-01-02")
}
