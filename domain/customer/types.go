package customer

import (
	"fmt"
	"strings"

	"custlens/domain/core"
)

// ============================================================================
// ENUMERATIONS
// ============================================================================

// All is the selector value meaning "do not filter on this dimension".
const All = "All"

// Cities lists every city a record may carry, in display order.
var Cities = []string{"New York", "London", "Tokyo", "Paris", "Sydney"}

// Categories lists every product category a record may carry, in display order.
var Categories = []string{"Electronics", "Clothing", "Books", "Home", "Food"}

// Age domain of generated records: [MinAge, MaxAge).
const (
	MinAge = 18
	MaxAge = 70
)

// IsCity reports whether s names a known city.
func IsCity(s string) bool { return contains(Cities, s) }

// IsCategory reports whether s names a known product category.
func IsCategory(s string) bool { return contains(Categories, s) }

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// FIELDS
// ============================================================================

// Field names a column of the customer table.
type Field string

const (
	FieldCustomerID      Field = "customer_id"
	FieldAge             Field = "age"
	FieldIncome          Field = "income"
	FieldPurchaseAmount  Field = "purchase_amount"
	FieldCity            Field = "city"
	FieldProductCategory Field = "product_category"
)

// Fields lists all columns in table order.
var Fields = []Field{FieldCustomerID, FieldAge, FieldIncome, FieldPurchaseAmount, FieldCity, FieldProductCategory}

// NumericFields lists the columns that carry numbers.
var NumericFields = []Field{FieldCustomerID, FieldAge, FieldIncome, FieldPurchaseAmount}

// ParseField resolves a column name.
func ParseField(s string) (Field, error) {
	f := Field(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownField, s)
}

// IsNumeric reports whether the field holds numbers.
func (f Field) IsNumeric() bool {
	switch f {
	case FieldCustomerID, FieldAge, FieldIncome, FieldPurchaseAmount:
		return true
	}
	return false
}

// IsCategorical reports whether the field holds a label.
func (f Field) IsCategorical() bool {
	return f == FieldCity || f == FieldProductCategory
}

// Label returns the human-readable column header.
func (f Field) Label() string {
	switch f {
	case FieldCustomerID:
		return "Customer ID"
	case FieldAge:
		return "Age"
	case FieldIncome:
		return "Income"
	case FieldPurchaseAmount:
		return "Purchase Amount"
	case FieldCity:
		return "City"
	case FieldProductCategory:
		return "Product Category"
	}
	return string(f)
}

// ============================================================================
// RECORDS
// ============================================================================

// Record is one synthetic customer row.
type Record struct {
	CustomerID      int     `json:"customer_id"`
	Age             int     `json:"age"`
	Income          float64 `json:"income"`
	PurchaseAmount  float64 `json:"purchase_amount"`
	City            string  `json:"city"`
	ProductCategory string  `json:"product_category"`
}

// Number returns the value of a numeric field.
func (r Record) Number(f Field) (float64, error) {
	switch f {
	case FieldCustomerID:
		return float64(r.CustomerID), nil
	case FieldAge:
		return float64(r.Age), nil
	case FieldIncome:
		return r.Income, nil
	case FieldPurchaseAmount:
		return r.PurchaseAmount, nil
	case FieldCity, FieldProductCategory:
		return 0, fmt.Errorf("%w: %s", core.ErrNotNumeric, f)
	}
	return 0, fmt.Errorf("%w: %q", core.ErrUnknownField, f)
}

// Label returns the value of a categorical field.
func (r Record) Label(f Field) (string, error) {
	switch f {
	case FieldCity:
		return r.City, nil
	case FieldProductCategory:
		return r.ProductCategory, nil
	case FieldCustomerID, FieldAge, FieldIncome, FieldPurchaseAmount:
		return "", fmt.Errorf("%w: %s", core.ErrNotCategorical, f)
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownField, f)
}

// Validate checks that a record lies inside the declared domains.
// Income is unbounded.
func (r Record) Validate() error {
	switch {
	case r.CustomerID < 1:
		return fmt.Errorf("%w: customer_id %d", core.ErrInvalidRecord, r.CustomerID)
	case r.Age < MinAge || r.Age >= MaxAge:
		return fmt.Errorf("%w: age %d", core.ErrInvalidRecord, r.Age)
	case r.PurchaseAmount < 10 || r.PurchaseAmount >= 500:
		return fmt.Errorf("%w: purchase_amount %.2f", core.ErrInvalidRecord, r.PurchaseAmount)
	case !IsCity(r.City):
		return fmt.Errorf("%w: city %q", core.ErrInvalidRecord, r.City)
	case !IsCategory(r.ProductCategory):
		return fmt.Errorf("%w: product_category %q", core.ErrInvalidRecord, r.ProductCategory)
	}
	return nil
}
