package services

import (
	"gorm.io/gorm"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
)

type settlementService struct {
	db *gorm.DB
}

// NewSettlementService creates a new SettlementServicer.
func NewSettlementService(db *gorm.DB) SettlementServicer {
	return &settlementService{db: db}
}

// RecordSettlement records a repayment from payer to payee. The amount is
// not capped at the payer's current debt; an over-payment simply flips the
// direction of the remaining balance.
func (s *settlementService) RecordSettlement(requesterID, groupID, payerID, payeeID uint, amount int64) (*models.Settlement, error) {
	group, err := getGroup(s.db, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(s.db, groupID, requesterID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if payerID == payeeID {
		return nil, apperrors.ErrSelfSettlement
	}
	if err := requireMember(s.db, groupID, payerID); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrNotAMember, "Payer is not a member of this group")
	}
	if err := requireMember(s.db, groupID, payeeID); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrNotAMember, "Payee is not a member of this group")
	}

	settlement := &models.Settlement{
		GroupID:  groupID,
		PayerID:  payerID,
		PayeeID:  payeeID,
		Amount:   amount,
		Currency: group.BaseCurrency,
	}
	if err := s.db.Create(settlement).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settlement, nil
}

// GetGroupSettlements lists a group's settlements newest first.
func (s *settlementService) GetGroupSettlements(requesterID, groupID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Settlement], error) {
	if _, err := getGroup(s.db, groupID); err != nil {
		return nil, err
	}
	if err := requireMember(s.db, groupID, requesterID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Settlement{}).Where("group_id = ?", groupID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var settlements []models.Settlement
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC, id DESC").
		Find(&settlements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(settlements, page.Page, page.PageSize, totalItems)
	return &result, nil
}
