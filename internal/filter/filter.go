// Package filter applies dashboard FilterCriteria to customer views.
package filter

import (
	"custlens/domain/customer"
)

// Apply returns the rows of view that satisfy every active predicate of
// criteria: inclusive age window, then city, then product category.
// Order is preserved and an empty result is not an error. Because the
// output is itself a View, applying the same criteria again is a no-op.
func Apply(view customer.View, criteria customer.FilterCriteria) (customer.View, error) {
	if err := criteria.Validate(); err != nil {
		return customer.View{}, err
	}
	criteria = criteria.Normalize()
	return view.Where(criteria.Matches), nil
}

// ApplyDataset filters a whole dataset.
func ApplyDataset(ds *customer.Dataset, criteria customer.FilterCriteria) (customer.View, error) {
	return Apply(ds.View(), criteria)
}

// ByCity narrows a view to one city; used by the exploration tabs.
func ByCity(view customer.View, city string) customer.View {
	return view.Where(func(r customer.Record) bool { return r.City == city })
}

// ByCategory narrows a view to one product category.
func ByCategory(view customer.View, category string) customer.View {
	return view.Where(func(r customer.Record) bool { return r.ProductCategory == category })
}

// Describe renders the summary line shown above the dashboard.
func Describe(criteria customer.FilterCriteria) string {
	return criteria.String()
}
