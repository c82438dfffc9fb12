package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
)

// getGroup fetches a group or returns ErrGroupNotFound.
func getGroup(db *gorm.DB, groupID uint) (*models.Group, error) {
	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}

// groupMemberIDs returns the user IDs of a group's current members.
func groupMemberIDs(db *gorm.DB, groupID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&models.Membership{}).
		Where("group_id = ?", groupID).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

// requireMember returns ErrNotAMember unless userID currently belongs to
// the group. Every command and read in this package is scoped to members.
func requireMember(db *gorm.DB, groupID, userID uint) error {
	var count int64
	if err := db.Model(&models.Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrNotAMember
	}
	return nil
}
