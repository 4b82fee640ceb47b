package expenses

import (
	"math"
	"strconv"
	"strings"
	"time"

	"expense-dashboard/internal/models"
)

// AllCategories is the category value meaning "do not filter by category".
const AllCategories = "all"

// Criteria narrows an expense listing. A nil bound or empty string is not applied.
type Criteria struct {
	Search    string
	Category  string
	MinAmount *float64
	MaxAmount *float64
	StartDate *time.Time
	EndDate   *time.Time
}

// FilterResult is a filtered listing and the sum of its amounts.
type FilterResult struct {
	Expenses []models.Expense
	Total    float64
}

// ParseCriteria builds Criteria from raw form values. Values that do not parse
// (non-numeric amounts, dates not in YYYY-MM-DD) are dropped rather than reported.
func ParseCriteria(search, category, minAmount, maxAmount, startDate, endDate string) Criteria {
	c := Criteria{
		Search:   strings.TrimSpace(search),
		Category: strings.TrimSpace(category),
	}
	if c.Category == AllCategories {
		c.Category = ""
	}
	c.MinAmount = parseAmount(minAmount)
	c.MaxAmount = parseAmount(maxAmount)
	c.StartDate = parseDate(startDate)
	c.EndDate = parseDate(endDate)
	return c
}

// Apply returns the expenses matching every criterion, newest first, with their total.
func (c Criteria) Apply(list []models.Expense) FilterResult {
	search := strings.ToLower(c.Search)

	var matched []models.Expense
	for _, e := range list {
		if c.Category != "" && e.Category != c.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Description), search) &&
			!strings.Contains(strings.ToLower(e.Category), search) {
			continue
		}
		if c.MinAmount != nil && e.Amount < *c.MinAmount {
			continue
		}
		if c.MaxAmount != nil && e.Amount > *c.MaxAmount {
			continue
		}
		if c.StartDate != nil && (e.Date.IsZero() || e.Date.Before(*c.StartDate)) {
			continue
		}
		if c.EndDate != nil && (e.Date.IsZero() || e.Date.After(*c.EndDate)) {
			continue
		}
		matched = append(matched, e)
	}

	res := FilterResult{Expenses: sortedByDateDesc(matched)}
	for _, e := range res.Expenses {
		res.Total += e.Amount
	}
	return res
}

func parseAmount(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, ok := finiteAmount(raw)
	if !ok {
		return nil
	}
	return &v
}

// finiteAmount parses raw as a decimal amount. Inf and NaN are rejected.
func finiteAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil
	}
	return &d
}
