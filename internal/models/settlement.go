package models

// Settlement records a real-world payment between two members. It is a
// plain transfer on the ledger: over-payment is allowed and simply flips
// the sign of the outstanding balance, modeling an advance.
type Settlement struct {
	Base
	GroupID  uint   `gorm:"not null;index" json:"group_id"`
	PayerID  uint   `gorm:"not null" json:"payer_id"`
	PayeeID  uint   `gorm:"not null" json:"payee_id"`
	Amount   int64  `gorm:"type:bigint;not null" json:"amount"`
	Currency string `gorm:"size:3;not null" json:"currency"`
}
