package services

import (
	"testing"

	"divvy/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewUserService(db)

	user, err := svc.CreateUser("frank", "Frank@Example.com", "password123")
	testutil.AssertNoError(t, err)

	if user.Email != "frank@example.com" {
		t.Errorf("expected lowercased email, got %s", user.Email)
	}
	if user.Password == "password123" {
		t.Error("password must be stored hashed")
	}
	if !svc.VerifyPassword(user, "password123") {
		t.Error("expected password to verify")
	}
	if svc.VerifyPassword(user, "wrong") {
		t.Error("expected wrong password to fail")
	}

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.CreateUser("frank", "other@example.com", "password123")
		testutil.AssertAppError(t, err, "DUPLICATE_USERNAME")
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.CreateUser("frank2", "frank@example.com", "password123")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.CreateUser("", "a@b.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewUserService(db)
	created := testutil.CreateTestUser(t, db)

	byName, err := svc.GetUserByUsername(created.Username)
	testutil.AssertNoError(t, err)
	if byName.ID != created.ID {
		t.Errorf("expected user %d, got %d", created.ID, byName.ID)
	}

	byID, err := svc.GetUserByID(created.ID)
	testutil.AssertNoError(t, err)
	if byID.Username != created.Username {
		t.Errorf("expected username %s, got %s", created.Username, byID.Username)
	}

	_, err = svc.GetUserByUsername("nobody")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")

	_, err = svc.GetUserByID(9999)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestSearchUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewUserService(db)

	first, err := svc.CreateUser("searchme_one", "searchme1@example.com", "password123")
	testutil.AssertNoError(t, err)
	_, err = svc.CreateUser("searchme_two", "searchme2@example.com", "password123")
	testutil.AssertNoError(t, err)
	_, err = svc.CreateUser("unrelated", "unrelated@example.com", "password123")
	testutil.AssertNoError(t, err)

	users, err := svc.SearchUsers("SEARCHME", 10)
	testutil.AssertNoError(t, err)
	if len(users) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(users))
	}
	if users[0].ID != first.ID {
		t.Errorf("expected results ordered by username, got %s first", users[0].Username)
	}

	users, err = svc.SearchUsers("  ", 10)
	testutil.AssertNoError(t, err)
	if len(users) != 0 {
		t.Errorf("expected blank query to match nothing, got %d", len(users))
	}

	users, err = svc.SearchUsers("searchme", 1)
	testutil.AssertNoError(t, err)
	if len(users) != 1 {
		t.Errorf("expected limit to cap results, got %d", len(users))
	}
}
