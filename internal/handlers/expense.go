package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"expense-dashboard/internal/apperr"
	"expense-dashboard/internal/expenses"
	"expense-dashboard/internal/models"
)

// ListViewModel is the data passed to the expense listing template.
type ListViewModel struct {
	User     *models.User
	Expenses []models.Expense
	Total    float64
	// Categories seen in the user's expenses, for the category filter.
	Categories       []string
	SearchTerm       string
	SelectedCategory string
	MinAmount        string
	MaxAmount        string
	StartDate        string
	EndDate          string
}

// FormViewModel is the data passed to the add-expense template.
type FormViewModel struct {
	User       *models.User
	Error      string
	Input      expenses.Input
	Categories []CategoryDef
}

// AllExpenses renders the user's expenses. A POST carries filter criteria; a GET lists
// everything.
func (h *Handlers) AllExpenses(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	list, err := h.expenses.List(r.Context(), user.Email)
	if err != nil {
		h.log.WithError(err).Error("list expenses")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm := ListViewModel{User: user, SelectedCategory: expenses.AllCategories}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		vm.SearchTerm = r.PostFormValue("search")
		vm.SelectedCategory = r.PostFormValue("category")
		if vm.SelectedCategory == "" {
			vm.SelectedCategory = expenses.AllCategories
		}
		vm.MinAmount = r.PostFormValue("min-amount")
		vm.MaxAmount = r.PostFormValue("max-amount")
		vm.StartDate = r.PostFormValue("start-date")
		vm.EndDate = r.PostFormValue("end-date")
	}

	criteria := expenses.ParseCriteria(vm.SearchTerm, vm.SelectedCategory, vm.MinAmount, vm.MaxAmount, vm.StartDate, vm.EndDate)
	result := criteria.Apply(list)
	vm.Expenses = result.Expenses
	vm.Total = result.Total
	vm.Categories = distinctCategories(list)

	h.render(w, r, "allexpense.html", vm)
}

// AddExpenseForm renders the form to create a new expense.
func (h *Handlers) AddExpenseForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "addexpense.html", FormViewModel{
		User:       UserFromContext(r),
		Input:      expenses.Input{Date: h.now().Format(models.DateLayout)},
		Categories: categories,
	})
}

// AddExpense handles the creation of a new expense.
func (h *Handlers) AddExpense(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := formInput(r)

	_, err := h.expenses.Create(r.Context(), user.Email, in)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, apperr.ErrValidation):
		h.render(w, r, "addexpense.html", FormViewModel{
			User:       user,
			Error:      message(err),
			Input:      in,
			Categories: categories,
		})
	case errors.Is(err, apperr.ErrNotFound):
		// the session outlived its user
		h.clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
	default:
		h.log.WithError(err).Error("create expense")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// UpdateExpense applies the submitted fields to an existing expense owned by the user.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/allexpense", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.expenses.Update(r.Context(), user.Email, id, formInput(r)); err != nil && apperr.Kind(err) == nil {
		h.log.WithError(err).WithField("expense_id", id).Error("update expense")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/allexpense", http.StatusFound)
}

// DeleteExpense removes an expense owned by the user.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/allexpense", http.StatusFound)
		return
	}

	if err := h.expenses.Delete(r.Context(), user.Email, id); err != nil && apperr.Kind(err) == nil {
		h.log.WithError(err).WithField("expense_id", id).Error("delete expense")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/allexpense", http.StatusFound)
}

func formInput(r *http.Request) expenses.Input {
	return expenses.Input{
		Amount:      r.PostFormValue("amount"),
		Category:    r.PostFormValue("category"),
		Description: r.PostFormValue("description"),
		Date:        r.PostFormValue("date"),
	}
}

func distinctCategories(list []models.Expense) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range list {
		if e.Category == "" || seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		out = append(out, e.Category)
	}
	sort.Strings(out)
	return out
}
