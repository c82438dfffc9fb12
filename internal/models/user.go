package models

// User represents a registered user. Identity is immutable once created;
// every other table references users by ID only.
type User struct {
	Base
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Memberships []Membership `gorm:"foreignKey:UserID" json:"-"`
}
