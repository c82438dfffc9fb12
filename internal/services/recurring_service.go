package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "divvy/internal/errors"
	"divvy/internal/logger"
	"divvy/internal/models"
	"divvy/internal/money"
)

// recurringService manages recurring expense rules and materializes them
// into Expenses when their spawn date passes. The scheduler cursor
// (NextSpawnDate) lives on the row and only advances through a guarded
// UPDATE, so any number of concurrent triggers spawn each period exactly
// once.
type recurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// CreateRecurring validates and stores a recurring expense rule.
func (s *recurringService) CreateRecurring(requesterID uint, in RecurringInput) (*models.RecurringExpense, error) {
	group, err := getGroup(s.db, in.GroupID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(s.db, in.GroupID, requesterID); err != nil {
		return nil, err
	}
	if !in.Frequency.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown frequency")
	}
	if in.NextSpawnDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "next_spawn_date is required")
	}
	if err := validateExpenseInput(s.db, ExpenseInput{
		GroupID:  in.GroupID,
		PayerID:  in.PayerID,
		Amount:   in.Amount,
		Category: in.Category,
		Splits:   in.Splits,
	}); err != nil {
		return nil, err
	}

	if in.Currency == "" {
		in.Currency = group.BaseCurrency
	}

	rule := &models.RecurringExpense{
		GroupID:       in.GroupID,
		PayerID:       in.PayerID,
		Description:   in.Description,
		Amount:        in.Amount,
		Currency:      in.Currency,
		Category:      in.Category,
		Frequency:     in.Frequency,
		Status:        models.RecurringActive,
		NextSpawnDate: in.NextSpawnDate,
	}
	for _, split := range in.Splits {
		rule.Splits = append(rule.Splits, models.RecurringSplit{UserID: split.UserID, AmountOwed: split.AmountOwed})
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetGroupRecurring lists a group's recurring rules with their split
// templates, soonest spawn first.
func (s *recurringService) GetGroupRecurring(requesterID, groupID uint) ([]models.RecurringExpense, error) {
	if _, err := getGroup(s.db, groupID); err != nil {
		return nil, err
	}
	if err := requireMember(s.db, groupID, requesterID); err != nil {
		return nil, err
	}

	var rules []models.RecurringExpense
	if err := s.db.Preload("Splits").
		Where("group_id = ?", groupID).
		Order("next_spawn_date ASC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

// SetStatus transitions a rule between active, paused and cancelled.
// Cancelled is terminal; a cancelled rule rejects every transition.
func (s *recurringService) SetStatus(requesterID, recurringID uint, status models.RecurringStatus) (*models.RecurringExpense, error) {
	if !status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown status")
	}

	rule, err := s.getRecurring(recurringID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(s.db, rule.GroupID, requesterID); err != nil {
		return nil, err
	}
	if rule.Status == models.RecurringCancelled {
		return nil, apperrors.ErrRecurringCancelled
	}

	if err := s.db.Model(rule).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rule.Status = status
	return rule, nil
}

// TriggerSpawn materializes every due period of every active rule up to
// now and returns the IDs of the expenses it created. A rule whose spawn
// date is far in the past is caught up one period at a time, each in its
// own transaction; a concurrency conflict on any period skips the rest of
// that rule (the competing trigger owns it) and moves on.
func (s *recurringService) TriggerSpawn(now time.Time) ([]uint, error) {
	var due []models.RecurringExpense
	if err := s.db.Preload("Splits").
		Where("status = ? AND next_spawn_date <= ?", models.RecurringActive, now).
		Order("id ASC").
		Find(&due).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spawned := make([]uint, 0)
	for i := range due {
		ids, err := s.catchUp(&due[i], now)
		spawned = append(spawned, ids...)
		if err != nil {
			if errors.Is(err, apperrors.ErrConcurrencyConflict) {
				logger.Get().Infow("recurring spawn lost race, skipping rule",
					"recurring_id", due[i].ID,
				)
				continue
			}
			return spawned, err
		}
	}
	return spawned, nil
}

// catchUp spawns one expense per elapsed period of a single rule.
func (s *recurringService) catchUp(rule *models.RecurringExpense, now time.Time) ([]uint, error) {
	var spawned []uint
	cursor := rule.NextSpawnDate

	for !cursor.After(now) {
		id, next, err := s.spawnPeriod(rule, cursor)
		if err != nil {
			return spawned, err
		}
		if id != 0 {
			spawned = append(spawned, id)
		}
		if !next.After(cursor) {
			// Rule was auto-paused; nothing more to spawn.
			break
		}
		cursor = next
	}
	return spawned, nil
}

// spawnPeriod materializes one period of a rule in a single transaction.
// The split template is filtered to the group's current members and the
// amount reallocated proportionally among those left; a template with no
// remaining members (or a departed payer) is paused instead of spawned.
// The cursor advance is guarded on the value read at dispatch and on the
// rule still being active, so a concurrent trigger that already advanced
// it (or a cancel that landed in between) makes this a no-op conflict
// rather than a duplicate expense.
func (s *recurringService) spawnPeriod(rule *models.RecurringExpense, cursor time.Time) (uint, time.Time, error) {
	var expenseID uint
	var paused bool
	next := rule.Frequency.Advance(cursor)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		memberIDs, err := groupMemberIDs(tx, rule.GroupID)
		if err != nil {
			return err
		}
		members := make(map[uint]bool, len(memberIDs))
		for _, id := range memberIDs {
			members[id] = true
		}

		var keepIDs []uint
		var weights []int64
		for _, split := range rule.Splits {
			if members[split.UserID] {
				keepIDs = append(keepIDs, split.UserID)
				weights = append(weights, split.AmountOwed)
			}
		}

		if len(keepIDs) == 0 || !members[rule.PayerID] {
			paused = true
			return s.pauseRule(tx, rule, cursor)
		}

		amounts := money.Reallocate(rule.Amount, weights)
		expense := &models.Expense{
			GroupID:     rule.GroupID,
			PayerID:     rule.PayerID,
			Description: rule.Description,
			Amount:      rule.Amount,
			Currency:    rule.Currency,
			Category:    rule.Category,
			Date:        cursor,
		}
		for i, userID := range keepIDs {
			expense.Splits = append(expense.Splits, models.Split{UserID: userID, AmountOwed: amounts[i]})
		}

		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		res := tx.Model(&models.RecurringExpense{}).
			Where("id = ? AND next_spawn_date = ? AND status = ?", rule.ID, cursor, models.RecurringActive).
			Update("next_spawn_date", next)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			// Someone else advanced the cursor or the rule left the active
			// state since dispatch; roll back the expense.
			return apperrors.ErrConcurrencyConflict
		}

		expenseID = expense.ID
		return nil
	})
	if err != nil {
		return 0, cursor, err
	}
	if paused {
		return 0, cursor, nil
	}

	rule.NextSpawnDate = next
	return expenseID, next, nil
}

// pauseRule flips a rule to paused under the same optimistic guard used
// for spawning.
func (s *recurringService) pauseRule(tx *gorm.DB, rule *models.RecurringExpense, cursor time.Time) error {
	res := tx.Model(&models.RecurringExpense{}).
		Where("id = ? AND next_spawn_date = ? AND status = ?", rule.ID, cursor, models.RecurringActive).
		Update("status", models.RecurringPaused)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConcurrencyConflict
	}
	rule.Status = models.RecurringPaused
	logger.Get().Infow("recurring rule auto-paused, no eligible participants remain",
		"recurring_id", rule.ID,
		"group_id", rule.GroupID,
	)
	return nil
}

func (s *recurringService) getRecurring(recurringID uint) (*models.RecurringExpense, error) {
	var rule models.RecurringExpense
	if err := s.db.Preload("Splits").First(&rule, recurringID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}
