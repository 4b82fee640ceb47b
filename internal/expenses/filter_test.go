package expenses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-dashboard/internal/models"
)

func sampleList() []models.Expense {
	return []models.Expense{
		exp(1, 12.5, "Food", "Lunch with Sam", "2024-03-05"),
		exp(2, 40, "Transport", "Train ticket", "2024-03-07"),
		exp(3, 3, "Food", "Coffee", "2024-03-01"),
		exp(4, 250, "Rent", "March rent", "2024-03-01"),
		exp(5, 8, "Fun", "Cinema", ""),
	}
}

func ids(list []models.Expense) []int64 {
	out := make([]int64, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestParseCriteria(t *testing.T) {
	c := ParseCriteria("  lunch ", "all", "5", "abc", "2024-03-01", "03/10/2024")

	assert.Equal(t, "lunch", c.Search)
	assert.Empty(t, c.Category, "\"all\" means no category filter")
	require.NotNil(t, c.MinAmount)
	assert.Equal(t, 5.0, *c.MinAmount)
	assert.Nil(t, c.MaxAmount, "non-numeric bounds are dropped")
	require.NotNil(t, c.StartDate)
	assert.Equal(t, "2024-03-01", c.StartDate.Format(models.DateLayout))
	assert.Nil(t, c.EndDate, "dates outside YYYY-MM-DD are dropped")
}

func TestApplyNoCriteria(t *testing.T) {
	res := Criteria{}.Apply(sampleList())

	assert.Equal(t, []int64{2, 1, 3, 4, 5}, ids(res.Expenses))
	assert.Equal(t, 313.5, res.Total)
}

func TestApplyAllCategoryEqualsNoCategory(t *testing.T) {
	all := ParseCriteria("", AllCategories, "", "", "", "").Apply(sampleList())
	none := ParseCriteria("", "", "", "", "", "").Apply(sampleList())

	assert.Equal(t, ids(none.Expenses), ids(all.Expenses))
	assert.Equal(t, none.Total, all.Total)
}

func TestApplyCategory(t *testing.T) {
	res := ParseCriteria("", "Food", "", "", "", "").Apply(sampleList())

	assert.Equal(t, []int64{1, 3}, ids(res.Expenses))
	assert.Equal(t, 15.5, res.Total)
}

func TestApplySearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []int64
	}{
		{"description substring", "lunch", []int64{1}},
		{"case insensitive", "TRAIN", []int64{2}},
		{"matches category", "rent", []int64{4}},
		{"no match", "groceries", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseCriteria(tt.search, "", "", "", "", "").Apply(sampleList())
			assert.Equal(t, tt.want, ids(res.Expenses))
		})
	}
}

func TestApplyAmountBounds(t *testing.T) {
	res := ParseCriteria("", "", "5", "50", "", "").Apply(sampleList())
	assert.Equal(t, []int64{2, 1, 5}, ids(res.Expenses))

	inclusive := ParseCriteria("", "", "12.5", "12.5", "", "").Apply(sampleList())
	assert.Equal(t, []int64{1}, ids(inclusive.Expenses))
}

func TestApplyMinAboveEveryAmount(t *testing.T) {
	res := ParseCriteria("", "", "10000", "", "", "").Apply(sampleList())

	assert.Empty(t, res.Expenses)
	assert.Zero(t, res.Total)
}

func TestApplyDateRange(t *testing.T) {
	res := ParseCriteria("", "", "", "", "2024-03-01", "2024-03-05").Apply(sampleList())

	assert.Equal(t, []int64{1, 3, 4}, ids(res.Expenses), "bounds are inclusive and undated expenses are excluded")
	assert.Equal(t, 265.5, res.Total)
}

func TestApplyUnparseableValuesIgnored(t *testing.T) {
	res := ParseCriteria("", "", "lots", "many", "yesterday", "tomorrow").Apply(sampleList())

	assert.Len(t, res.Expenses, len(sampleList()))

	for _, raw := range []string{"Inf", "-Infinity", "NaN", "1e400"} {
		c := ParseCriteria("", "", raw, raw, "", "")
		assert.Nil(t, c.MinAmount, raw)
		assert.Nil(t, c.MaxAmount, raw)
		assert.Len(t, c.Apply(sampleList()).Expenses, len(sampleList()), raw)
	}
}

func TestApplyCombined(t *testing.T) {
	res := ParseCriteria("co", "Food", "1", "", "2024-03-01", "").Apply(sampleList())

	assert.Equal(t, []int64{3}, ids(res.Expenses))
	assert.Equal(t, 3.0, res.Total)
}
