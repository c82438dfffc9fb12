package ledger

import (
	"testing"

	"divvy/internal/models"
)

func expense(payer uint, amount int64, shares map[uint]int64) models.Expense {
	e := models.Expense{PayerID: payer, Amount: amount}
	for uid, owed := range shares {
		e.Splits = append(e.Splits, models.Split{UserID: uid, AmountOwed: owed})
	}
	return e
}

func assertConservation(t *testing.T, balances map[uint]int64) {
	t.Helper()
	var sum int64
	for _, b := range balances {
		sum += b
	}
	if sum != 0 {
		t.Fatalf("balances sum to %d, want 0 (balances: %v)", sum, balances)
	}
}

func TestComputeBalances(t *testing.T) {
	t.Run("empty_group_is_all_zero", func(t *testing.T) {
		balances := ComputeBalances([]uint{1, 2, 3}, nil, nil)
		if len(balances) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(balances))
		}
		for id, b := range balances {
			if b != 0 {
				t.Errorf("user %d balance = %d, want 0", id, b)
			}
		}
	})

	t.Run("even_two_way_split", func(t *testing.T) {
		// A pays 30.00 split evenly with B: A +15.00, B -15.00.
		exp := expense(1, 3000, map[uint]int64{1: 1500, 2: 1500})
		balances := ComputeBalances([]uint{1, 2}, []models.Expense{exp}, nil)

		if balances[1] != 1500 {
			t.Errorf("payer balance = %d, want 1500", balances[1])
		}
		if balances[2] != -1500 {
			t.Errorf("debtor balance = %d, want -1500", balances[2])
		}
		assertConservation(t, balances)
	})

	t.Run("settlement_zeroes_debt", func(t *testing.T) {
		exp := expense(1, 3000, map[uint]int64{1: 1500, 2: 1500})
		settlement := models.Settlement{PayerID: 2, PayeeID: 1, Amount: 1500}
		balances := ComputeBalances([]uint{1, 2}, []models.Expense{exp}, []models.Settlement{settlement})

		if balances[1] != 0 || balances[2] != 0 {
			t.Errorf("balances = %v, want both zero", balances)
		}
	})

	t.Run("overpayment_flips_sign", func(t *testing.T) {
		exp := expense(1, 3000, map[uint]int64{1: 1500, 2: 1500})
		settlement := models.Settlement{PayerID: 2, PayeeID: 1, Amount: 2000}
		balances := ComputeBalances([]uint{1, 2}, []models.Expense{exp}, []models.Settlement{settlement})

		if balances[2] != 500 {
			t.Errorf("overpaying debtor balance = %d, want +500", balances[2])
		}
		assertConservation(t, balances)
	})

	t.Run("payer_not_in_splits", func(t *testing.T) {
		// A pays 10.00 entirely for B and C.
		exp := expense(1, 1000, map[uint]int64{2: 500, 3: 500})
		balances := ComputeBalances([]uint{1, 2, 3}, []models.Expense{exp}, nil)

		if balances[1] != 1000 {
			t.Errorf("payer balance = %d, want 1000", balances[1])
		}
		assertConservation(t, balances)
	})

	t.Run("historical_member_still_counted", func(t *testing.T) {
		// User 3 left the group but still owes on an old expense.
		exp := expense(1, 1000, map[uint]int64{2: 500, 3: 500})
		balances := ComputeBalances([]uint{1, 2}, []models.Expense{exp}, nil)

		if balances[3] != -500 {
			t.Errorf("departed member balance = %d, want -500", balances[3])
		}
		assertConservation(t, balances)
	})

	t.Run("conservation_after_every_step", func(t *testing.T) {
		members := []uint{1, 2, 3, 4}
		var expenses []models.Expense
		var settlements []models.Settlement

		steps := []func(){
			func() { expenses = append(expenses, expense(1, 1001, map[uint]int64{1: 251, 2: 250, 3: 250, 4: 250})) },
			func() { expenses = append(expenses, expense(2, 9999, map[uint]int64{2: 3333, 3: 3333, 4: 3333})) },
			func() { settlements = append(settlements, models.Settlement{PayerID: 3, PayeeID: 2, Amount: 3333}) },
			func() { expenses = append(expenses, expense(4, 70, map[uint]int64{1: 24, 2: 23, 3: 23})) },
			func() { settlements = append(settlements, models.Settlement{PayerID: 4, PayeeID: 2, Amount: 5000}) },
		}
		for i, step := range steps {
			step()
			balances := ComputeBalances(members, expenses, settlements)
			var sum int64
			for _, b := range balances {
				sum += b
			}
			if sum != 0 {
				t.Fatalf("after step %d: balances sum to %d, want 0", i+1, sum)
			}
		}
	})
}
