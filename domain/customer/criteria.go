package customer

import (
	"fmt"
	"strings"

	"custlens/domain/core"
)

// Default age window preselected by the dashboard.
const (
	DefaultAgeMin = 20
	DefaultAgeMax = 60
)

// FilterCriteria selects rows by an inclusive age window and optional
// exact-match city and product category.
type FilterCriteria struct {
	AgeMin          int    `json:"age_min" yaml:"age_min"`
	AgeMax          int    `json:"age_max" yaml:"age_max"`
	City            string `json:"city" yaml:"city"`
	ProductCategory string `json:"product_category" yaml:"product_category"`
}

// DefaultCriteria returns the dashboard's initial selection.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		AgeMin:          DefaultAgeMin,
		AgeMax:          DefaultAgeMax,
		City:            All,
		ProductCategory: All,
	}
}

// Normalize trims selectors and maps the empty selector to All.
func (c FilterCriteria) Normalize() FilterCriteria {
	c.City = normalizeSelector(c.City)
	c.ProductCategory = normalizeSelector(c.ProductCategory)
	return c
}

func normalizeSelector(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, All) {
		return All
	}
	return s
}

// Validate rejects inverted age windows and unknown selector values.
func (c FilterCriteria) Validate() error {
	if c.AgeMin > c.AgeMax {
		return fmt.Errorf("%w: %d > %d", core.ErrInvalidAgeRange, c.AgeMin, c.AgeMax)
	}
	n := c.Normalize()
	if n.City != All && !IsCity(n.City) {
		return fmt.Errorf("%w: %q", core.ErrUnknownCity, c.City)
	}
	if n.ProductCategory != All && !IsCategory(n.ProductCategory) {
		return fmt.Errorf("%w: %q", core.ErrUnknownCategory, c.ProductCategory)
	}
	return nil
}

// FiltersCity reports whether a city predicate is active.
func (c FilterCriteria) FiltersCity() bool { return normalizeSelector(c.City) != All }

// FiltersCategory reports whether a product category predicate is active.
func (c FilterCriteria) FiltersCategory() bool { return normalizeSelector(c.ProductCategory) != All }

// Matches reports whether r satisfies every active predicate.
func (c FilterCriteria) Matches(r Record) bool {
	if r.Age < c.AgeMin || r.Age > c.AgeMax {
		return false
	}
	if c.FiltersCity() && r.City != normalizeSelector(c.City) {
		return false
	}
	if c.FiltersCategory() && r.ProductCategory != normalizeSelector(c.ProductCategory) {
		return false
	}
	return true
}

// Fingerprint hashes the normalized criteria.
func (c FilterCriteria) Fingerprint() core.Hash {
	n := c.Normalize()
	return core.Fingerprint(map[string]interface{}{
		"age_min":          n.AgeMin,
		"age_max":          n.AgeMax,
		"city":             n.City,
		"product_category": n.ProductCategory,
	})
}

// String renders the summary line shown above the dashboard.
func (c FilterCriteria) String() string {
	n := c.Normalize()
	return fmt.Sprintf("Showing data for ages %d-%d, City: %s, Product Category: %s",
		n.AgeMin, n.AgeMax, n.City, n.ProductCategory)
}
