package services

import (
	"time"

	"divvy/internal/ledger"
	"divvy/internal/models"
	"divvy/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	SearchUsers(query string, limit int) ([]models.User, error)
}

// GroupServicer defines the contract for group and membership management.
type GroupServicer interface {
	CreateGroup(creatorID uint, name, description, baseCurrency string) (*models.Group, error)
	GetUserGroups(userID uint) ([]models.Group, error)
	GetGroupByID(userID, groupID uint) (*models.Group, error)
	AddMember(requesterID, groupID, userID uint) (*models.Membership, error)
	RemoveMember(requesterID, groupID, userID uint) error
}

// SplitInput is one participant's share of an expense, in minor units.
type SplitInput struct {
	UserID     uint
	AmountOwed int64
}

// ExpenseInput carries the validated fields of a create/update expense command.
type ExpenseInput struct {
	GroupID     uint
	PayerID     uint
	Description string
	Amount      int64
	Currency    string
	Category    models.Category
	Date        time.Time
	Splits      []SplitInput
}

// ExpenseServicer defines the contract for expense commands.
type ExpenseServicer interface {
	CreateExpense(requesterID uint, in ExpenseInput) (*models.Expense, error)
	UpdateExpense(requesterID, expenseID uint, in ExpenseInput) (*models.Expense, error)
	DeleteExpense(requesterID, expenseID uint) error
	GetGroupExpenses(requesterID, groupID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
}

// SettlementServicer defines the contract for recording payments.
type SettlementServicer interface {
	RecordSettlement(requesterID, groupID, payerID, payeeID uint, amount int64) (*models.Settlement, error)
	GetGroupSettlements(requesterID, groupID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Settlement], error)
}

// MemberBalance is one member's net position in a group, in minor units.
type MemberBalance struct {
	UserID  uint
	Balance int64
}

// GroupBalances is the derived balance sheet of a group together with the
// minimal transfer list that would settle it.
type GroupBalances struct {
	Balances  []MemberBalance
	Suggested []ledger.Transfer
}

// UserSummary aggregates a user's position across all their groups, in
// minor units.
type UserSummary struct {
	TotalOwed  int64 // sum of positive balances: what others owe this user
	TotalOwe   int64 // sum of negative balances: what this user owes
	NetBalance int64
}

// BalanceServicer derives balances from the stored records. Balances are
// never persisted; they are recomputed on every read.
type BalanceServicer interface {
	ComputeGroupBalances(groupID uint) (map[uint]int64, error)
	GetGroupBalances(requesterID, groupID uint) (*GroupBalances, error)
	GetUserSummary(userID uint) (*UserSummary, error)
}

// RecurringInput carries the validated fields of a create recurring command.
type RecurringInput struct {
	GroupID       uint
	PayerID       uint
	Description   string
	Amount        int64
	Currency      string
	Category      models.Category
	Frequency     models.Frequency
	NextSpawnDate time.Time
	Splits        []SplitInput
}

// RecurringServicer defines the contract for recurring expense rules and
// the spawn scheduler.
type RecurringServicer interface {
	CreateRecurring(requesterID uint, in RecurringInput) (*models.RecurringExpense, error)
	GetGroupRecurring(requesterID, groupID uint) ([]models.RecurringExpense, error)
	SetStatus(requesterID, recurringID uint, status models.RecurringStatus) (*models.RecurringExpense, error)
	TriggerSpawn(now time.Time) ([]uint, error)
}
