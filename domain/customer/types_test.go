package customer

import (
	"testing"

	"custlens/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset(Params{Source: "test"}, []Record{
		{CustomerID: 1, Age: 20, Income: 40000, PurchaseAmount: 100, City: "London", ProductCategory: "Books"},
		{CustomerID: 2, Age: 30, Income: 50000, PurchaseAmount: 200, City: "Tokyo", ProductCategory: "Food"},
		{CustomerID: 3, Age: 40, Income: 60000, PurchaseAmount: 300, City: "London", ProductCategory: "Home"},
	})
	require.NoError(t, err)
	return ds
}

func TestNewDatasetRejectsEmpty(t *testing.T) {
	_, err := NewDataset(Params{}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidRowCount)
}

func TestDatasetIsImmutable(t *testing.T) {
	ds := sampleDataset(t)
	records := ds.Records()
	records[0].Age = 99

	assert.Equal(t, 20, ds.At(0).Age)
	assert.Equal(t, 3, ds.Params().NumRows)
}

func TestViewWherePreservesOrder(t *testing.T) {
	ds := sampleDataset(t)
	v := ds.View().Where(func(r Record) bool { return r.City == "London" })

	require.Equal(t, 2, v.Len())
	assert.Equal(t, 1, v.At(0).CustomerID)
	assert.Equal(t, 3, v.At(1).CustomerID)
	assert.Equal(t, 2, v.SourceIndex(1))
	assert.Same(t, ds, v.Dataset())
}

func TestViewColumns(t *testing.T) {
	v := sampleDataset(t).View()

	ages, err := v.Numbers(FieldAge)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30, 40}, ages)

	cities, err := v.Labels(FieldCity)
	require.NoError(t, err)
	assert.Equal(t, []string{"London", "Tokyo", "London"}, cities)

	_, err = v.Numbers(FieldCity)
	assert.ErrorIs(t, err, core.ErrNotNumeric)
	_, err = v.Labels(FieldIncome)
	assert.ErrorIs(t, err, core.ErrNotCategorical)
	_, err = v.Numbers(Field("height"))
	assert.ErrorIs(t, err, core.ErrUnknownField)
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" Purchase_Amount ")
	require.NoError(t, err)
	assert.Equal(t, FieldPurchaseAmount, f)

	_, err = ParseField("zip")
	assert.ErrorIs(t, err, core.ErrUnknownField)
}

func TestRecordValidate(t *testing.T) {
	ok := Record{CustomerID: 1, Age: 18, Income: -5, PurchaseAmount: 10, City: "Paris", ProductCategory: "Home"}
	assert.NoError(t, ok.Validate())

	tooOld := ok
	tooOld.Age = 70
	assert.ErrorIs(t, tooOld.Validate(), core.ErrInvalidRecord)

	badCity := ok
	badCity.City = "Berlin"
	assert.ErrorIs(t, badCity.Validate(), core.ErrInvalidRecord)
}

func TestCriteriaValidate(t *testing.T) {
	assert.NoError(t, DefaultCriteria().Validate())
	assert.NoError(t, FilterCriteria{AgeMin: 30, AgeMax: 30}.Validate())

	err := FilterCriteria{AgeMin: 50, AgeMax: 40}.Validate()
	assert.ErrorIs(t, err, core.ErrInvalidAgeRange)
	assert.True(t, core.IsValidationError(err))

	err = FilterCriteria{AgeMin: 20, AgeMax: 60, City: "Berlin"}.Validate()
	assert.ErrorIs(t, err, core.ErrUnknownCity)

	err = FilterCriteria{AgeMin: 20, AgeMax: 60, ProductCategory: "Toys"}.Validate()
	assert.ErrorIs(t, err, core.ErrUnknownCategory)
}

func TestCriteriaMatches(t *testing.T) {
	r := Record{CustomerID: 1, Age: 25, City: "Tokyo", ProductCategory: "Books"}

	assert.True(t, FilterCriteria{AgeMin: 25, AgeMax: 25}.Matches(r), "age bounds are inclusive")
	assert.True(t, FilterCriteria{AgeMin: 18, AgeMax: 70, City: "all"}.Matches(r))
	assert.False(t, FilterCriteria{AgeMin: 26, AgeMax: 70}.Matches(r))
	assert.False(t, FilterCriteria{AgeMin: 18, AgeMax: 70, City: "Paris"}.Matches(r))
	assert.False(t, FilterCriteria{AgeMin: 18, AgeMax: 70, ProductCategory: "Food"}.Matches(r))
}

func TestCriteriaStringAndFingerprint(t *testing.T) {
	c := FilterCriteria{AgeMin: 20, AgeMax: 60}
	assert.Equal(t, "Showing data for ages 20-60, City: All, Product Category: All", c.String())
	assert.Equal(t, DefaultCriteria().Fingerprint(), c.Fingerprint())
}
