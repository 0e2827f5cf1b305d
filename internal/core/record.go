package core

import (
	"strconv"
	"time"
)

// Kind distinguishes the two record ledgers kept by the farm.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is one of the known ledgers.
func (k Kind) IsValid() bool {
	switch k {
	case KindExpense, KindIncome:
		return true
	default:
		return false
	}
}

// Resource returns the REST resource name for the kind.
func (k Kind) Resource() string {
	if k == KindIncome {
		return "income"
	}
	return "expenses"
}

type (
	Category      string
	PaymentMethod string
)

// Expense categories (closed set).
const (
	CategoryFeed           Category = "feed"
	CategoryMedicine       Category = "medicine"
	CategoryVeterinary     Category = "veterinary"
	CategoryEquipment      Category = "equipment"
	CategoryLabor          Category = "labor"
	CategoryUtilities      Category = "utilities"
	CategoryMaintenance    Category = "maintenance"
	CategoryTransportation Category = "transportation"
	CategoryInsurance      Category = "insurance"
	CategoryTaxes          Category = "taxes"
	CategoryOther          Category = "other"
)

// Income categories (closed set).
const (
	CategoryMilkSale          Category = "milk_sale"
	CategoryCalfSale          Category = "calf_sale"
	CategoryManureSale        Category = "manure_sale"
	CategoryGovernmentSubsidy Category = "government_subsidy"
)

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentCheck        PaymentMethod = "check"
	PaymentUPI          PaymentMethod = "upi"
	PaymentCheque       PaymentMethod = "cheque"
)

// Categories returns the closed category set for the kind.
func (k Kind) Categories() []Category {
	if k == KindIncome {
		return []Category{
			CategoryMilkSale, CategoryCalfSale, CategoryManureSale,
			CategoryGovernmentSubsidy, CategoryOther,
		}
	}
	return []Category{
		CategoryFeed, CategoryMedicine, CategoryVeterinary, CategoryEquipment,
		CategoryLabor, CategoryUtilities, CategoryMaintenance,
		CategoryTransportation, CategoryInsurance, CategoryTaxes, CategoryOther,
	}
}

// Record is a single expense or income entry. Dates are calendar-date strings
// (YYYY-MM-DD); createdAt/updatedAt are RFC 3339 timestamps assigned by the
// service, never by the client. Category and payment method membership is not
// enforced at the store level.
type Record struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	Category      Category      `json:"category"`
	Description   string        `json:"description"`
	Amount        float64       `json:"amount"`
	Quantity      float64       `json:"quantity,omitempty"`
	Unit          string        `json:"unit,omitempty"`
	Supplier      string        `json:"supplier,omitempty"`
	Customer      string        `json:"customer,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

// Draft carries the client-suppliable fields of a record. The store assigns
// id and timestamps at creation.
type Draft struct {
	Date          string        `json:"date"`
	Category      Category      `json:"category"`
	Description   string        `json:"description"`
	Amount        float64       `json:"amount"`
	Quantity      float64       `json:"quantity,omitempty"`
	Unit          string        `json:"unit,omitempty"`
	Supplier      string        `json:"supplier,omitempty"`
	Customer      string        `json:"customer,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Notes         string        `json:"notes,omitempty"`
}

// Patch is a partial record update. Nil fields are left untouched; present
// fields are shallow-merged over the existing record.
type Patch struct {
	Date          *string        `json:"date,omitempty"`
	Category      *Category      `json:"category,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Amount        *float64       `json:"amount,omitempty"`
	Quantity      *float64       `json:"quantity,omitempty"`
	Unit          *string        `json:"unit,omitempty"`
	Supplier      *string        `json:"supplier,omitempty"`
	Customer      *string        `json:"customer,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Category == nil && p.Description == nil &&
		p.Amount == nil && p.Quantity == nil && p.Unit == nil &&
		p.Supplier == nil && p.Customer == nil && p.PaymentMethod == nil &&
		p.Notes == nil
}

// Apply merges the patch over the record and refreshes updatedAt.
// CreatedAt and ID are immutable.
func (p Patch) Apply(r *Record, now time.Time) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		r.Unit = *p.Unit
	}
	if p.Supplier != nil {
		r.Supplier = *p.Supplier
	}
	if p.Customer != nil {
		r.Customer = *p.Customer
	}
	if p.PaymentMethod != nil {
		r.PaymentMethod = *p.PaymentMethod
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	r.UpdatedAt = Timestamp(now)
}

// NewRecord stamps a draft with an id and timestamps. IDs are derived from
// the creation time in milliseconds; there is no collision handling.
func NewRecord(d Draft, now time.Time) Record {
	ts := Timestamp(now)
	return Record{
		ID:            strconv.FormatInt(now.UnixMilli(), 10),
		Date:          d.Date,
		Category:      d.Category,
		Description:   d.Description,
		Amount:        d.Amount,
		Quantity:      d.Quantity,
		Unit:          d.Unit,
		Supplier:      d.Supplier,
		Customer:      d.Customer,
		PaymentMethod: d.PaymentMethod,
		Notes:         d.Notes,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

// Timestamp formats a service-assigned timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseAmount converts a cell or form value to a non-negative magnitude.
// Malformed input falls back to 0 rather than failing the row; this mirrors
// the historical import behavior and masks data-entry errors (see DESIGN.md).
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v { // reject NaN
		return 0
	}
	return v
}
