package handlers

import (
	"net/http"
	"strings"

	"expense-dashboard/internal/expenses"
	"expense-dashboard/internal/models"
)

// CategoryDef defines a suggested category and its chart color.
type CategoryDef struct {
	ID    string
	Name  string
	Color string
}

var categories = []CategoryDef{
	{"food", "Food", "#60a5fa"},
	{"transport", "Transport", "#a78bfa"},
	{"entertainment", "Entertainment", "#f472b6"},
	{"utilities", "Utilities", "#fbbf24"},
	{"housing", "Housing", "#818cf8"},
	{"gifts", "Gifts", "#fb7185"},
	{"other", "Other", "#94a3b8"},
}

// CategoryStyle defines the visual style for a category.
type CategoryStyle struct {
	Color string
}

func getCategoryStyle(category string) CategoryStyle {
	catLower := strings.ToLower(category)
	for _, c := range categories {
		if c.ID == catLower {
			return CategoryStyle{Color: c.Color}
		}
	}
	return CategoryStyle{Color: "#94a3b8"}
}

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	User         *models.User
	Summary      expenses.Summary
	DonutLabels  []string
	DonutAmounts []float64
}

// Dashboard renders today/month/all-time totals, top categories and recent expenses.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	list, err := h.expenses.List(r.Context(), user.Email)
	if err != nil {
		h.log.WithError(err).Error("list expenses for dashboard")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	summary := expenses.Summarize(list, h.now())
	labels, amounts := series(summary.ByAmount)
	h.render(w, r, "dashboard.html", DashboardViewModel{
		User:         user,
		Summary:      summary,
		DonutLabels:  labels,
		DonutAmounts: amounts,
	})
}

// ReportsViewModel is the data passed to the reports template.
type ReportsViewModel struct {
	User            *models.User
	Report          expenses.Report
	CategoryLabels  []string
	CategoryAmounts []float64
	TimeLabels      []string
	TimeAmounts     []float64
}

// Reports renders category and per-day series over all of the user's expenses.
func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	list, err := h.expenses.List(r.Context(), user.Email)
	if err != nil {
		h.log.WithError(err).Error("list expenses for reports")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	report := expenses.BuildReport(list, h.now())
	vm := ReportsViewModel{User: user, Report: report}
	vm.CategoryLabels, vm.CategoryAmounts = series(report.Categories)
	vm.TimeLabels = make([]string, 0, len(report.Timeline))
	vm.TimeAmounts = make([]float64, 0, len(report.Timeline))
	for _, p := range report.Timeline {
		vm.TimeLabels = append(vm.TimeLabels, p.Date)
		vm.TimeAmounts = append(vm.TimeAmounts, p.Total)
	}
	h.render(w, r, "reports.html", vm)
}

func series(totals []expenses.CategoryTotal) ([]string, []float64) {
	labels := make([]string, 0, len(totals))
	amounts := make([]float64, 0, len(totals))
	for _, t := range totals {
		labels = append(labels, t.Category)
		amounts = append(amounts, t.Total)
	}
	return labels, amounts
}
