package models

import "time"

// Group represents a set of members sharing expenses. BaseCurrency is the
// settlement currency, fixed at creation; per-expense currency tags are
// display metadata only.
type Group struct {
	Base
	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	BaseCurrency string `gorm:"size:3;not null;default:'USD'" json:"base_currency"`
	CreatedBy    uint   `gorm:"not null" json:"created_by"`

	Members []Membership `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// Membership links a user to a group. A group always keeps at least one
// member (the creator); removal is refused while the member's balance in
// the group is non-zero. Rows are soft-deleted so a user can leave and
// rejoin; uniqueness over live rows is the partial index in the
// migrations, not a model-level constraint.
type Membership struct {
	Base
	GroupID  uint      `gorm:"not null;index:idx_group_user" json:"group_id"`
	UserID   uint      `gorm:"not null;index:idx_group_user" json:"user_id"`
	JoinDate time.Time `gorm:"not null" json:"join_date"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
