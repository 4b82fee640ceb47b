// Package expenses holds the expense rules: ownership-checked create/update/delete, the
// filter behind the expense listing and the aggregations shown on the dashboard and
// reports pages.
package expenses

import (
	"sort"
	"time"

	"expense-dashboard/internal/models"
)

const (
	// OtherCategory is the bucket for expenses without a category.
	OtherCategory = "Other"

	topCategoryCount = 3
	recentCount      = 5
)

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string
	Total    float64
}

// DayTotal is the summed amount of one calendar day, keyed YYYY-MM-DD.
type DayTotal struct {
	Date  string
	Total float64
}

// Summary is the dashboard view of a user's expenses.
type Summary struct {
	Total      float64
	TodayTotal float64
	MonthTotal float64
	Count      int
	// Categories in the order they were first seen.
	Categories []CategoryTotal
	// ByAmount holds every category, largest total first.
	ByAmount      []CategoryTotal
	TopCategories []CategoryTotal
	Recent        []models.Expense
}

// Report is the reports page view of a user's expenses.
type Report struct {
	Total      float64
	Count      int
	Categories []CategoryTotal
	// Timeline is ordered by ascending date.
	Timeline []DayTotal
}

// Summarize computes dashboard totals relative to now, which is interpreted in UTC.
// Expenses with an unreadable (zero) date still count toward Total and the category
// totals but never toward today or this month.
func Summarize(list []models.Expense, now time.Time) Summary {
	now = now.UTC()
	today := now.Format(models.DateLayout)

	s := Summary{Count: len(list)}
	for _, e := range list {
		s.Total += e.Amount
		if e.Date.IsZero() {
			continue
		}
		if e.Date.Format(models.DateLayout) == today {
			s.TodayTotal += e.Amount
		}
		if e.Date.Year() == now.Year() && e.Date.Month() == now.Month() {
			s.MonthTotal += e.Amount
		}
	}

	s.Categories = CategoryTotals(list)
	s.ByAmount = sortByAmount(s.Categories)
	s.TopCategories = s.ByAmount[:min(topCategoryCount, len(s.ByAmount))]
	s.Recent = mostRecent(list, recentCount)
	return s
}

// BuildReport computes the category and timeline series for the reports page.
// An expense with an unreadable date is placed on now's date.
func BuildReport(list []models.Expense, now time.Time) Report {
	fallback := now.UTC().Format(models.DateLayout)

	r := Report{Count: len(list), Categories: CategoryTotals(list)}

	byDay := make(map[string]float64)
	for _, e := range list {
		r.Total += e.Amount
		key := e.DateString()
		if key == "" {
			key = fallback
		}
		byDay[key] += e.Amount
	}

	r.Timeline = make([]DayTotal, 0, len(byDay))
	for day, total := range byDay {
		r.Timeline = append(r.Timeline, DayTotal{Date: day, Total: total})
	}
	sort.Slice(r.Timeline, func(i, j int) bool { return r.Timeline[i].Date < r.Timeline[j].Date })
	return r
}

// CategoryTotals sums amounts per category in first-encounter order.
func CategoryTotals(list []models.Expense) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, e := range list {
		cat := e.Category
		if cat == "" {
			cat = OtherCategory
		}
		i, ok := index[cat]
		if !ok {
			i = len(totals)
			index[cat] = i
			totals = append(totals, CategoryTotal{Category: cat})
		}
		totals[i].Total += e.Amount
	}
	return totals
}

func sortByAmount(totals []CategoryTotal) []CategoryTotal {
	sorted := make([]CategoryTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Total > sorted[j].Total })
	return sorted
}

func mostRecent(list []models.Expense, n int) []models.Expense {
	sorted := sortedByDateDesc(list)
	return sorted[:min(n, len(sorted))]
}

// sortedByDateDesc returns a copy of list ordered newest first; equal dates keep input order.
func sortedByDateDesc(list []models.Expense) []models.Expense {
	sorted := make([]models.Expense, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	return sorted
}
