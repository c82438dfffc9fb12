package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"divvy/internal/models"
	"divvy/internal/money"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username/email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	n := nextID()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestGroup creates a group owned by creator, with creator as its
// first member.
func CreateTestGroup(t *testing.T, db *gorm.DB, creator *models.User) *models.Group {
	t.Helper()

	group := &models.Group{
		Name:         fmt.Sprintf("Test Group %d", nextID()),
		BaseCurrency: "USD",
		CreatedBy:    creator.ID,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}

	AddTestMember(t, db, group, creator)
	return group
}

// AddTestMember adds a user to a group.
func AddTestMember(t *testing.T, db *gorm.DB, group *models.Group, user *models.User) *models.Membership {
	t.Helper()

	m := &models.Membership{
		GroupID:  group.ID,
		UserID:   user.ID,
		JoinDate: time.Now(),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
	return m
}

// CreateTestExpense creates an expense paid by payer and split evenly
// among the given participants (amount in cents).
func CreateTestExpense(t *testing.T, db *gorm.DB, group *models.Group, payer *models.User, amount int64, participants ...*models.User) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     payer.ID,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Amount:      amount,
		Currency:    group.BaseCurrency,
		Category:    models.CategoryGeneral,
		Date:        time.Now(),
	}
	shares := money.SplitEven(amount, len(participants))
	for i, p := range participants {
		expense.Splits = append(expense.Splits, models.Split{UserID: p.ID, AmountOwed: shares[i]})
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestSettlement records a payment from payer to payee (amount in cents).
func CreateTestSettlement(t *testing.T, db *gorm.DB, group *models.Group, payer, payee *models.User, amount int64) *models.Settlement {
	t.Helper()

	s := &models.Settlement{
		GroupID:  group.ID,
		PayerID:  payer.ID,
		PayeeID:  payee.ID,
		Amount:   amount,
		Currency: group.BaseCurrency,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("failed to create test settlement: %v", err)
	}
	return s
}

// CreateTestRecurring creates an active recurring expense with an even
// split template and the given next spawn date.
func CreateTestRecurring(t *testing.T, db *gorm.DB, group *models.Group, payer *models.User, amount int64, freq models.Frequency, next time.Time, participants ...*models.User) *models.RecurringExpense {
	t.Helper()

	re := &models.RecurringExpense{
		GroupID:       group.ID,
		PayerID:       payer.ID,
		Description:   fmt.Sprintf("Test Recurring %d", nextID()),
		Amount:        amount,
		Currency:      group.BaseCurrency,
		Category:      models.CategoryRent,
		Frequency:     freq,
		Status:        models.RecurringActive,
		NextSpawnDate: next,
	}
	shares := money.SplitEven(amount, len(participants))
	for i, p := range participants {
		re.Splits = append(re.Splits, models.RecurringSplit{UserID: p.ID, AmountOwed: shares[i]})
	}
	if err := db.Create(re).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return re
}
