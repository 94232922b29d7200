package analysis

import (
	"fmt"

	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/domain/stats"
	"custlens/internal/filter"
)

// Summarize computes the headline metrics of a view. The purchase total of
// an empty view is 0; every other metric is undefined.
func Summarize(view customer.View) stats.Metrics {
	purchase := summarize(mustNumbers(view, customer.FieldPurchaseAmount))
	city, _ := MostCommon(view, customer.FieldCity)
	if purchase.count == 0 {
		purchase.sum = 0
	}

	return stats.Metrics{
		AverageAge:      mean(view, customer.FieldAge),
		AverageIncome:   mean(view, customer.FieldIncome),
		AveragePurchase: purchase.mean,
		TotalPurchases:  purchase.sum,
		MaxPurchase:     purchase.max,
		MostCommonCity:  city,
	}
}

// ExploreCity summarises the rows of one city within view.
func ExploreCity(view customer.View, city string) (stats.CityExploration, error) {
	if !customer.IsCity(city) {
		return stats.CityExploration{}, fmt.Errorf("%w: %q", core.ErrUnknownCity, city)
	}
	sub := filter.ByCity(view, city)
	categories, err := ValueCounts(sub, customer.FieldProductCategory)
	if err != nil {
		return stats.CityExploration{}, err
	}
	return stats.CityExploration{
		City:            city,
		Customers:       sub.Len(),
		AverageAge:      mean(sub, customer.FieldAge),
		AveragePurchase: mean(sub, customer.FieldPurchaseAmount),
		AverageIncome:   mean(sub, customer.FieldIncome),
		Categories:      categories,
	}, nil
}

// ExploreCategory summarises the rows of one product category within view.
func ExploreCategory(view customer.View, category string) (stats.CategoryExploration, error) {
	if !customer.IsCategory(category) {
		return stats.CategoryExploration{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
	}
	sub := filter.ByCategory(view, category)
	purchase := summarize(mustNumbers(sub, customer.FieldPurchaseAmount))
	cities, err := ValueCounts(sub, customer.FieldCity)
	if err != nil {
		return stats.CategoryExploration{}, err
	}
	return stats.CategoryExploration{
		Category:        category,
		Purchases:       sub.Len(),
		AveragePurchase: purchase.mean,
		MaxPurchase:     purchase.max,
		Cities:          cities,
	}, nil
}

// mustNumbers extracts a column known to be numeric.
func mustNumbers(view customer.View, field customer.Field) []float64 {
	values, err := view.Numbers(field)
	if err != nil {
		panic(err)
	}
	return values
}
