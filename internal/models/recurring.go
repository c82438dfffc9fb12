package models

import "time"

// Frequency is how often a recurring expense spawns.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Advance returns the next occurrence after t. Monthly and yearly steps
// clamp the day-of-month to the last valid day of the target month, so
// Jan 31 + 1 month = Feb 28 (29 in leap years) and Feb 29 + 1 year =
// Feb 28 in non-leap years.
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsClamped(t, 1)
	case FrequencyYearly:
		return addMonthsClamped(t, 12)
	}
	return t
}

// addMonthsClamped adds months to t without the normalization AddDate
// performs (Jan 31 + 1 month must not become Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	y := year + (m-1)/12
	m = (m-1)%12 + 1

	if last := daysInMonth(y, time.Month(m)); day > last {
		day = last
	}
	return time.Date(y, time.Month(m), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RecurringStatus is the lifecycle state of a recurring expense.
// Cancelled is terminal.
type RecurringStatus string

const (
	RecurringActive    RecurringStatus = "active"
	RecurringPaused    RecurringStatus = "paused"
	RecurringCancelled RecurringStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s RecurringStatus) Valid() bool {
	switch s {
	case RecurringActive, RecurringPaused, RecurringCancelled:
		return true
	}
	return false
}

// RecurringExpense is a template that materializes Expenses on schedule.
// NextSpawnDate is the scheduler cursor; it lives on the row (not in
// process memory) and is advanced under an optimistic check so concurrent
// triggers never spawn twice for the same period.
type RecurringExpense struct {
	Base
	GroupID       uint            `gorm:"not null;index" json:"group_id"`
	PayerID       uint            `gorm:"not null" json:"payer_id"`
	Description   string          `gorm:"not null" json:"description"`
	Amount        int64           `gorm:"type:bigint;not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Category      Category        `gorm:"not null;default:'General'" json:"category"`
	Frequency     Frequency       `gorm:"not null" json:"frequency"`
	Status        RecurringStatus `gorm:"not null;default:'active'" json:"status"`
	NextSpawnDate time.Time       `gorm:"not null;index" json:"next_spawn_date"`

	Splits []RecurringSplit `gorm:"foreignKey:RecurringExpenseID" json:"splits,omitempty"`
}

// RecurringSplit is the split template, same shape as Split but owned by
// the recurring rule rather than a materialized expense.
type RecurringSplit struct {
	Base
	RecurringExpenseID uint  `gorm:"not null;index" json:"recurring_expense_id"`
	UserID             uint  `gorm:"not null" json:"user_id"`
	AmountOwed         int64 `gorm:"type:bigint;not null" json:"amount_owed"`
}
