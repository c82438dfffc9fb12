package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
)

// expenseService validates and applies expense commands. Every mutation
// runs in a single transaction so concurrent writers to the same group
// only ever observe fully-applied expenses.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// validateExpenseInput enforces the command invariants: positive amount,
// known category, payer and every split holder a current member, and the
// split amounts summing exactly to the expense amount in minor units.
func validateExpenseInput(db *gorm.DB, in ExpenseInput) error {
	if in.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !in.Category.Valid() {
		return apperrors.ErrUnknownCategory
	}
	if len(in.Splits) == 0 {
		return apperrors.ErrEmptySplits
	}

	memberIDs, err := groupMemberIDs(db, in.GroupID)
	if err != nil {
		return err
	}
	members := make(map[uint]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	if !members[in.PayerID] {
		return apperrors.WithMessage(apperrors.ErrNotAMember, "Payer is not a member of this group")
	}

	var splitSum int64
	seen := make(map[uint]bool, len(in.Splits))
	for _, split := range in.Splits {
		if !members[split.UserID] {
			return apperrors.WithMessage(apperrors.ErrNotAMember, "Split participant is not a member of this group")
		}
		if seen[split.UserID] {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "duplicate split participant")
		}
		seen[split.UserID] = true
		if split.AmountOwed < 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "split amounts cannot be negative")
		}
		splitSum += split.AmountOwed
	}
	if splitSum != in.Amount {
		return apperrors.ErrSplitSumMismatch
	}
	return nil
}

// CreateExpense validates and stores a new expense with its splits.
func (s *expenseService) CreateExpense(requesterID uint, in ExpenseInput) (*models.Expense, error) {
	group, err := getGroup(s.db, in.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(s.db, in.GroupID, requesterID); err != nil {
		return nil, err
	}
	if err := validateExpenseInput(s.db, in); err != nil {
		return nil, err
	}

	if in.Currency == "" {
		in.Currency = group.BaseCurrency
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	expense := &models.Expense{
		GroupID:     in.GroupID,
		PayerID:     in.PayerID,
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Category:    in.Category,
		Date:        in.Date,
	}
	for _, split := range in.Splits {
		expense.Splits = append(expense.Splits, models.Split{UserID: split.UserID, AmountOwed: split.AmountOwed})
	}

	// Expense and splits commit together or not at all.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense replaces an expense and its splits atomically. Splits are
// deleted and recreated rather than patched, so a half-applied update can
// never leave them inconsistent with the new amount.
func (s *expenseService) UpdateExpense(requesterID, expenseID uint, in ExpenseInput) (*models.Expense, error) {
	expense, err := s.getExpense(expenseID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(s.db, expense.GroupID, requesterID); err != nil {
		return nil, err
	}

	// The expense stays in its group; the input's group field is ignored.
	in.GroupID = expense.GroupID
	if err := validateExpenseInput(s.db, in); err != nil {
		return nil, err
	}
	if in.Currency == "" {
		in.Currency = expense.Currency
	}
	if in.Date.IsZero() {
		in.Date = expense.Date
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.Split{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updates := map[string]interface{}{
			"payer_id":    in.PayerID,
			"description": in.Description,
			"amount":      in.Amount,
			"currency":    in.Currency,
			"category":    in.Category,
			"date":        in.Date,
		}
		if err := tx.Model(expense).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		splits := make([]models.Split, 0, len(in.Splits))
		for _, split := range in.Splits {
			splits = append(splits, models.Split{ExpenseID: expense.ID, UserID: split.UserID, AmountOwed: split.AmountOwed})
		}
		if err := tx.Create(&splits).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		expense.Splits = splits
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense and its splits atomically.
func (s *expenseService) DeleteExpense(requesterID, expenseID uint) error {
	expense, err := s.getExpense(expenseID)
	if err != nil {
		return err
	}
	if err := requireMember(s.db, expense.GroupID, requesterID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.Split{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetGroupExpenses lists a group's expenses newest first, splits included.
func (s *expenseService) GetGroupExpenses(requesterID, groupID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if _, err := getGroup(s.db, groupID); err != nil {
		return nil, err
	}
	if err := requireMember(s.db, groupID, requesterID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("group_id = ?", groupID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Preload("Splits").
		Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *expenseService) getExpense(expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Preload("Splits").First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}
