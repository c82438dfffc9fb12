package ledger

import (
	"testing"

	"divvy/internal/models"
	"divvy/internal/testutil"
)

func applyTransfers(balances map[uint]int64, transfers []Transfer) map[uint]int64 {
	out := make(map[uint]int64, len(balances))
	for id, b := range balances {
		out[id] = b
	}
	for _, tr := range transfers {
		out[tr.FromID] += tr.Amount
		out[tr.ToID] -= tr.Amount
	}
	return out
}

func TestSuggestSettlements(t *testing.T) {
	t.Run("two_member_group", func(t *testing.T) {
		balances := map[uint]int64{1: 1500, 2: -1500}
		transfers, err := SuggestSettlements(balances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(transfers) != 1 {
			t.Fatalf("expected 1 transfer, got %d", len(transfers))
		}
		tr := transfers[0]
		if tr.FromID != 2 || tr.ToID != 1 || tr.Amount != 1500 {
			t.Errorf("transfer = %+v, want {FromID:2 ToID:1 Amount:1500}", tr)
		}
	})

	t.Run("settled_group_suggests_nothing", func(t *testing.T) {
		transfers, err := SuggestSettlements(map[uint]int64{1: 0, 2: 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(transfers) != 0 {
			t.Errorf("expected no transfers, got %v", transfers)
		}
	})

	t.Run("one_debtor_many_creditors", func(t *testing.T) {
		balances := map[uint]int64{1: 500, 2: 300, 3: -800}
		transfers, err := SuggestSettlements(balances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(transfers) != 2 {
			t.Fatalf("expected 2 transfers, got %d: %v", len(transfers), transfers)
		}
		// Largest credit first.
		if transfers[0].ToID != 1 || transfers[0].Amount != 500 {
			t.Errorf("first transfer = %+v, want 500 to user 1", transfers[0])
		}
	})

	t.Run("transfer_count_bound", func(t *testing.T) {
		cases := []map[uint]int64{
			{1: 100, 2: -100},
			{1: 500, 2: 300, 3: -800},
			{1: 250, 2: 250, 3: -100, 4: -400},
			{1: 1, 2: 2, 3: 3, 4: -1, 5: -2, 6: -3},
			{1: 999, 2: -999, 3: 1, 4: -1, 5: 0},
		}
		for _, balances := range cases {
			var creditors, debtors int
			for _, b := range balances {
				if b > 0 {
					creditors++
				} else if b < 0 {
					debtors++
				}
			}
			bound := creditors
			if debtors > bound {
				bound = debtors
			}

			transfers, err := SuggestSettlements(balances)
			if err != nil {
				t.Fatalf("unexpected error for %v: %v", balances, err)
			}
			if len(transfers) > bound {
				t.Errorf("balances %v: %d transfers exceeds bound %d", balances, len(transfers), bound)
			}

			// Applying the suggestions must zero every balance.
			for id, b := range applyTransfers(balances, transfers) {
				if b != 0 {
					t.Errorf("balances %v: user %d left at %d after settling", balances, id, b)
				}
			}
		}
	})

	t.Run("deterministic_tie_break", func(t *testing.T) {
		// Users 2 and 3 owe the same amount: lower ID settles first.
		balances := map[uint]int64{1: 1000, 2: -500, 3: -500}
		for i := 0; i < 10; i++ {
			transfers, err := SuggestSettlements(balances)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if transfers[0].FromID != 2 || transfers[1].FromID != 3 {
				t.Fatalf("run %d: non-deterministic order %v", i, transfers)
			}
		}
	})

	t.Run("unbalanced_input_fails", func(t *testing.T) {
		_, err := SuggestSettlements(map[uint]int64{1: 100, 2: -50})
		testutil.AssertAppError(t, err, "UNBALANCED_LEDGER")
	})
}

func TestEndToEndScenario(t *testing.T) {
	// A pays 30.00 split evenly with B, B settles 15.00, group is even.
	exp := models.Expense{PayerID: 1, Amount: 3000, Splits: []models.Split{
		{UserID: 1, AmountOwed: 1500},
		{UserID: 2, AmountOwed: 1500},
	}}

	balances := ComputeBalances([]uint{1, 2}, []models.Expense{exp}, nil)
	transfers, err := SuggestSettlements(balances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transfers) != 1 || transfers[0].FromID != 2 || transfers[0].ToID != 1 || transfers[0].Amount != 1500 {
		t.Fatalf("suggested %v, want single 15.00 transfer from 2 to 1", transfers)
	}

	settlement := models.Settlement{PayerID: 2, PayeeID: 1, Amount: 1500}
	balances = ComputeBalances([]uint{1, 2}, []models.Expense{exp}, []models.Settlement{settlement})
	transfers, err = SuggestSettlements(balances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transfers) != 0 {
		t.Fatalf("expected no suggestions after settling, got %v", transfers)
	}
}
