package core

import "sort"

// Collection helpers shared by the store variants so that scan logic is not
// duplicated per backend.

// SortByDateDesc orders records newest-first. The sort is stable, so records
// sharing a date keep their insertion order.
func SortByDateDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}

// IndexByID returns the position of the record with the given id, or -1.
func IndexByID(records []Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// FilterByCategory returns the records matching the category.
func FilterByCategory(records []Record, c Category) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDateRange returns records with start <= date <= end. The comparison
// is lexicographic, which is correct for zero-padded YYYY-MM-DD dates.
func FilterByDateRange(records []Record, start, end string) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a copy of the slice so callers cannot mutate store state.
func Clone(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
