package expenses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"expense-dashboard/internal/apperr"
	"expense-dashboard/internal/models"
)

// Store is the persistence the expense service needs.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	UpdateExpense(ctx context.Context, e *models.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpensesByUser(ctx context.Context, email string) ([]models.Expense, error)
}

// Input carries raw form values for create and update.
type Input struct {
	Amount      string
	Category    string
	Description string
	Date        string
}

// Service applies ownership rules on top of the Store.
type Service struct {
	store Store
	log   logrus.FieldLogger
}

// NewService creates an expense Service.
func NewService(store Store, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: log.WithField("component", "expenses")}
}

// List returns every expense owned by email, newest first.
func (s *Service) List(ctx context.Context, email string) ([]models.Expense, error) {
	return s.store.ListExpensesByUser(ctx, email)
}

// Create stores a new expense for the user owning email. An empty amount is stored as 0;
// a non-numeric amount, a missing category or description and a date outside YYYY-MM-DD
// are validation errors. The owner must exist.
func (s *Service) Create(ctx context.Context, email string, in Input) (*models.Expense, error) {
	e := &models.Expense{
		UserEmail:   email,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
	}

	if raw := strings.TrimSpace(in.Amount); raw != "" {
		amount, ok := finiteAmount(raw)
		if !ok {
			return nil, apperr.Validation("amount %q is not a number", raw)
		}
		e.Amount = amount
	}
	if e.Category == "" {
		return nil, apperr.Validation("category is required")
	}
	if e.Description == "" {
		return nil, apperr.Validation("description is required")
	}
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, apperr.Validation("date %q must be YYYY-MM-DD", in.Date)
	}
	e.Date = date

	if _, err := s.store.GetUserByEmail(ctx, email); err != nil {
		return nil, err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"expense_id": e.ID, "user": email}).Info("expense created")
	return e, nil
}

// Update changes the supplied fields of expense id. Empty fields keep their stored value,
// as does a non-numeric amount; a date outside YYYY-MM-DD is ignored while the other
// fields still commit. Updating another user's expense fails with ErrUnauthorized.
func (s *Service) Update(ctx context.Context, email string, id int64, in Input) (*models.Expense, error) {
	e, err := s.owned(ctx, email, id)
	if err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(in.Amount); raw != "" {
		if amount, ok := finiteAmount(raw); ok {
			e.Amount = amount
		}
	}
	if v := strings.TrimSpace(in.Category); v != "" {
		e.Category = v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		e.Description = v
	}
	if raw := strings.TrimSpace(in.Date); raw != "" {
		if date, err := time.Parse(models.DateLayout, raw); err == nil {
			e.Date = date
		} else {
			s.log.WithField("expense_id", id).Debugf("ignoring unparseable date %q", raw)
		}
	}

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes expense id. A missing expense is not an error; another user's expense
// fails with ErrUnauthorized and is left in place.
func (s *Service) Delete(ctx context.Context, email string, id int64) error {
	if _, err := s.owned(ctx, email, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"expense_id": id, "user": email}).Info("expense deleted")
	return nil
}

func (s *Service) owned(ctx context.Context, email string, id int64) (*models.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserEmail != email {
		s.log.WithFields(logrus.Fields{"expense_id": id, "user": email}).Warn("expense ownership mismatch")
		return nil, apperr.Unauthorized("expense %d belongs to another user", id)
	}
	return e, nil
}
