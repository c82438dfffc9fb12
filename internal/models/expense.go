package models

import "time"

// Category classifies an expense. The engine rejects values outside this
// set; defaulting unknown input to General is a presentation concern.
type Category string

const (
	CategoryGeneral       Category = "General"
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryRent          Category = "Rent"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryFood, CategoryTransport, CategoryRent,
		CategoryShopping, CategoryEntertainment, CategoryHealth:
		return true
	}
	return false
}

// Expense represents money paid by one member on behalf of the group.
// Amount is stored in minor units (cents). The splits always sum exactly
// to Amount.
type Expense struct {
	Base
	GroupID     uint      `gorm:"not null;index" json:"group_id"`
	PayerID     uint      `gorm:"not null" json:"payer_id"`
	Description string    `gorm:"not null" json:"description"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Currency    string    `gorm:"size:3;not null" json:"currency"`
	Category    Category  `gorm:"not null;default:'General'" json:"category"`
	Date        time.Time `gorm:"not null" json:"date"`

	Splits []Split `gorm:"foreignKey:ExpenseID" json:"splits,omitempty"`
}

// Split is one member's share of an expense, in minor units. Order
// matters: the residual cent from an uneven division sits on the first
// split in stable input order.
type Split struct {
	Base
	ExpenseID  uint  `gorm:"not null;index" json:"expense_id"`
	UserID     uint  `gorm:"not null" json:"user_id"`
	AmountOwed int64 `gorm:"type:bigint;not null" json:"amount_owed"`
}
