package services

import (
	"sort"

	"gorm.io/gorm"

	apperrors "divvy/internal/errors"
	"divvy/internal/ledger"
	"divvy/internal/logger"
	"divvy/internal/models"
)

// balanceService derives balances on demand from the expense and
// settlement records. Nothing here writes to the database.
type balanceService struct {
	db *gorm.DB
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB) BalanceServicer {
	return &balanceService{db: db}
}

// ComputeGroupBalances replays a group's full expense and settlement
// history into per-member net positions.
func (s *balanceService) ComputeGroupBalances(groupID uint) (map[uint]int64, error) {
	memberIDs, err := groupMemberIDs(s.db, groupID)
	if err != nil {
		return nil, err
	}

	var expenses []models.Expense
	if err := s.db.Preload("Splits").
		Where("group_id = ?", groupID).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var settlements []models.Settlement
	if err := s.db.Where("group_id = ?", groupID).
		Find(&settlements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return ledger.ComputeBalances(memberIDs, expenses, settlements), nil
}

// GetGroupBalances returns the group's balance sheet together with the
// suggested transfers that would settle it. A non-zero balance total means
// the stored records themselves are corrupt, so it is logged and surfaced
// rather than papered over.
func (s *balanceService) GetGroupBalances(requesterID, groupID uint) (*GroupBalances, error) {
	if _, err := getGroup(s.db, groupID); err != nil {
		return nil, err
	}
	if err := requireMember(s.db, groupID, requesterID); err != nil {
		return nil, err
	}

	balances, err := s.ComputeGroupBalances(groupID)
	if err != nil {
		return nil, err
	}

	suggested, err := ledger.SuggestSettlements(balances)
	if err != nil {
		logger.Get().Errorw("group ledger does not sum to zero",
			"group_id", groupID,
			"error", err,
		)
		return nil, err
	}

	members := make([]MemberBalance, 0, len(balances))
	for userID, balance := range balances {
		members = append(members, MemberBalance{UserID: userID, Balance: balance})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })

	return &GroupBalances{Balances: members, Suggested: suggested}, nil
}

// GetUserSummary aggregates the user's net position across every group
// they belong to. Positive group balances accrue to TotalOwed, negative
// ones to TotalOwe.
func (s *balanceService) GetUserSummary(userID uint) (*UserSummary, error) {
	var groupIDs []uint
	if err := s.db.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Order("group_id").
		Pluck("group_id", &groupIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &UserSummary{}
	for _, groupID := range groupIDs {
		balances, err := s.ComputeGroupBalances(groupID)
		if err != nil {
			return nil, err
		}
		balance := balances[userID]
		if balance > 0 {
			summary.TotalOwed += balance
		} else {
			summary.TotalOwe += -balance
		}
		summary.NetBalance += balance
	}
	return summary, nil
}
