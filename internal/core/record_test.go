package core

import (
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	draft := Draft{
		Date:          "2024-03-15",
		Category:      CategoryFeed,
		Description:   "Cattle feed bags",
		Amount:        1250.50,
		Quantity:      25,
		Unit:          "bags",
		Supplier:      "AgriSupply Co",
		PaymentMethod: PaymentBankTransfer,
	}

	r := NewRecord(draft, now)

	if r.ID != "1710498600000" {
		t.Errorf("NewRecord() ID = %v, want 1710498600000", r.ID)
	}
	if r.CreatedAt != "2024-03-15T10:30:00Z" {
		t.Errorf("NewRecord() CreatedAt = %v, want 2024-03-15T10:30:00Z", r.CreatedAt)
	}
	if r.UpdatedAt != r.CreatedAt {
		t.Errorf("NewRecord() UpdatedAt = %v, want same as CreatedAt", r.UpdatedAt)
	}
	if r.Date != draft.Date || r.Category != draft.Category || r.Amount != draft.Amount {
		t.Errorf("NewRecord() did not carry draft fields: got %+v", r)
	}
	if r.Supplier != "AgriSupply Co" {
		t.Errorf("NewRecord() Supplier = %v, want AgriSupply Co", r.Supplier)
	}
}

func TestPatch_Apply(t *testing.T) {
	base := Record{
		ID:            "42",
		Date:          "2024-01-10",
		Category:      CategoryFeed,
		Description:   "Hay",
		Amount:        100,
		PaymentMethod: PaymentCash,
		CreatedAt:     "2024-01-10T08:00:00Z",
		UpdatedAt:     "2024-01-10T08:00:00Z",
	}
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	newAmount := 150.0
	newDesc := "Hay bales"

	tests := []struct {
		name  string
		patch Patch
		check func(t *testing.T, r Record)
	}{
		{
			name:  "empty patch only refreshes updatedAt",
			patch: Patch{},
			check: func(t *testing.T, r Record) {
				if r.Amount != 100 || r.Description != "Hay" {
					t.Errorf("empty patch changed fields: %+v", r)
				}
				if r.UpdatedAt != "2024-02-01T12:00:00Z" {
					t.Errorf("UpdatedAt = %v, want 2024-02-01T12:00:00Z", r.UpdatedAt)
				}
			},
		},
		{
			name:  "partial patch merges only present fields",
			patch: Patch{Amount: &newAmount, Description: &newDesc},
			check: func(t *testing.T, r Record) {
				if r.Amount != 150 {
					t.Errorf("Amount = %v, want 150", r.Amount)
				}
				if r.Description != "Hay bales" {
					t.Errorf("Description = %v, want Hay bales", r.Description)
				}
				if r.Date != "2024-01-10" || r.Category != CategoryFeed {
					t.Errorf("untouched fields changed: %+v", r)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.patch.Apply(&r, now)
			if r.ID != "42" || r.CreatedAt != "2024-01-10T08:00:00Z" {
				t.Errorf("Apply() changed immutable fields: %+v", r)
			}
			tt.check(t, r)
		})
	}
}

func TestPatch_IsEmpty(t *testing.T) {
	if !(Patch{}).IsEmpty() {
		t.Error("IsEmpty() = false for zero patch, want true")
	}
	v := 1.0
	if (Patch{Amount: &v}).IsEmpty() {
		t.Error("IsEmpty() = true for non-empty patch, want false")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{"0", 0},
		{"-5", -5},
		{"", 0},
		{"abc", 0},
		{"12,5", 0},
		{"NaN", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseAmount(tt.in); got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	if KindExpense.Resource() != "expenses" {
		t.Errorf("KindExpense.Resource() = %v, want expenses", KindExpense.Resource())
	}
	if KindIncome.Resource() != "income" {
		t.Errorf("KindIncome.Resource() = %v, want income", KindIncome.Resource())
	}
	if !KindExpense.IsValid() || !KindIncome.IsValid() {
		t.Error("known kinds reported invalid")
	}
	if Kind("livestock").IsValid() {
		t.Error(`Kind("livestock").IsValid() = true, want false`)
	}
	if len(KindExpense.Categories()) != 11 {
		t.Errorf("expense categories = %d, want 11", len(KindExpense.Categories()))
	}
	if len(KindIncome.Categories()) != 5 {
		t.Errorf("income categories = %d, want 5", len(KindIncome.Categories()))
	}
}

func TestCollectionHelpers(t *testing.T) {
	records := []Record{
		{ID: "1", Date: "2024-01-05", Category: CategoryFeed, Amount: 100},
		{ID: "2", Date: "2024-01-20", Category: CategoryLabor, Amount: 200},
		{ID: "3", Date: "2024-01-20", Category: CategoryFeed, Amount: 50},
		{ID: "4", Date: "2024-02-01", Category: CategoryUtilities, Amount: 300},
	}

	t.Run("sort by date desc is stable", func(t *testing.T) {
		sorted := Clone(records)
		SortByDateDesc(sorted)
		wantOrder := []string{"4", "2", "3", "1"}
		for i, id := range wantOrder {
			if sorted[i].ID != id {
				t.Fatalf("position %d = %v, want %v", i, sorted[i].ID, id)
			}
		}
	})

	t.Run("index by id", func(t *testing.T) {
		if i := IndexByID(records, "3"); i != 2 {
			t.Errorf("IndexByID(3) = %d, want 2", i)
		}
		if i := IndexByID(records, "missing"); i != -1 {
			t.Errorf("IndexByID(missing) = %d, want -1", i)
		}
	})

	t.Run("filter by category", func(t *testing.T) {
		feed := FilterByCategory(records, CategoryFeed)
		if len(feed) != 2 {
			t.Fatalf("FilterByCategory(feed) returned %d records, want 2", len(feed))
		}
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		got := FilterByDateRange(records, "2024-01-20", "2024-02-01")
		if len(got) != 3 {
			t.Fatalf("FilterByDateRange returned %d records, want 3", len(got))
		}
	})

	t.Run("clone does not alias", func(t *testing.T) {
		cloned := Clone(records)
		cloned[0].Amount = 999
		if records[0].Amount == 999 {
			t.Error("Clone() aliases the input slice")
		}
	})
}
