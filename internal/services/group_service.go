package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
)

// groupService handles group and membership business logic.
type groupService struct {
	db             *gorm.DB
	balanceService BalanceServicer
}

// NewGroupService creates a new GroupServicer.
func NewGroupService(db *gorm.DB, balanceService BalanceServicer) GroupServicer {
	return &groupService{db: db, balanceService: balanceService}
}

// CreateGroup creates a group with the creator as its first member. The
// base currency is fixed at creation and every settlement suggestion is
// denominated in it.
func (s *groupService) CreateGroup(creatorID uint, name, description, baseCurrency string) (*models.Group, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "group name is required")
	}
	if baseCurrency == "" {
		baseCurrency = "USD"
	}

	var creator models.User
	if err := s.db.First(&creator, creatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	group := &models.Group{
		Name:         name,
		Description:  description,
		BaseCurrency: baseCurrency,
		CreatedBy:    creatorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		membership := &models.Membership{
			GroupID:  group.ID,
			UserID:   creatorID,
			JoinDate: time.Now(),
		}
		if err := tx.Create(membership).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadGroup(group.ID)
}

// GetUserGroups lists all groups the user belongs to, members preloaded.
func (s *groupService) GetUserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.
		Joins("JOIN memberships ON memberships.group_id = groups.id AND memberships.deleted_at IS NULL").
		Where("memberships.user_id = ?", userID).
		Preload("Members.User").
		Order("groups.created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return groups, nil
}

// GetGroupByID returns a group with its members. The requester must be a
// current member.
func (s *groupService) GetGroupByID(userID, groupID uint) (*models.Group, error) {
	if _, err := getGroup(s.db, groupID); err != nil {
		return nil, err
	}
	if err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}
	return s.loadGroup(groupID)
}

// AddMember adds a user to a group. Only current members may add.
func (s *groupService) AddMember(requesterID, groupID, userID uint) (*models.Membership, error) {
	if _, err := getGroup(s.db, groupID); err != nil {
		return nil, err
	}
	if err := requireMember(s.db, groupID, requesterID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	s.db.Model(&models.Membership{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrAlreadyAMember
	}

	membership := &models.Membership{
		GroupID:  groupID,
		UserID:   userID,
		JoinDate: time.Now(),
	}
	if err := s.db.Create(membership).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	membership.User = &user
	return membership, nil
}

// RemoveMember removes a user from a group. Removal is refused while the
// member's derived balance is non-zero, and the creator (the group's
// membership floor) cannot be removed at all.
func (s *groupService) RemoveMember(requesterID, groupID, userID uint) error {
	group, err := getGroup(s.db, groupID)
	if err != nil {
		return err
	}
	if err := requireMember(s.db, groupID, requesterID); err != nil {
		return err
	}
	if err := requireMember(s.db, groupID, userID); err != nil {
		return err
	}
	if userID == group.CreatedBy {
		return apperrors.WithMessage(apperrors.ErrForbidden, "The group creator cannot be removed")
	}

	balances, err := s.balanceService.ComputeGroupBalances(groupID)
	if err != nil {
		return err
	}
	if balances[userID] != 0 {
		return apperrors.ErrMemberHasOutstandingBalance
	}

	if err := s.db.
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.Membership{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *groupService) loadGroup(groupID uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.Preload("Members.User").First(&group, groupID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}
