package ledger

import (
	apperrors "divvy/internal/errors"
)

// Transfer is a suggested payment that reduces group debt.
type Transfer struct {
	FromID uint
	ToID   uint
	Amount int64
}

// SuggestSettlements returns the minimal ordered list of transfers that
// zeroes every balance. Greedy largest-debtor against largest-creditor is
// optimal in transfer count for a single netting pool: each step fully
// resolves at least one party, so the result never exceeds
// max(#creditors, #debtors).
//
// Ties on magnitude break by ascending user ID for determinism. Balances
// are integer minor units, so conservation must be exact; a non-zero sum
// means the calculator or the stored records are corrupt and surfaces as
// ErrUnbalancedLedger rather than a wrong suggestion list.
func SuggestSettlements(balances map[uint]int64) ([]Transfer, error) {
	var total int64
	credit := make(map[uint]int64)
	debt := make(map[uint]int64)
	for id, b := range balances {
		total += b
		switch {
		case b > 0:
			credit[id] = b
		case b < 0:
			debt[id] = -b
		}
	}
	if total != 0 {
		return nil, apperrors.ErrUnbalancedLedger
	}

	var transfers []Transfer
	for len(debt) > 0 && len(credit) > 0 {
		debtor := largest(debt)
		creditor := largest(credit)

		amount := debt[debtor]
		if credit[creditor] < amount {
			amount = credit[creditor]
		}
		transfers = append(transfers, Transfer{FromID: debtor, ToID: creditor, Amount: amount})

		debt[debtor] -= amount
		credit[creditor] -= amount
		if debt[debtor] == 0 {
			delete(debt, debtor)
		}
		if credit[creditor] == 0 {
			delete(credit, creditor)
		}
	}

	return transfers, nil
}

// largest returns the user with the biggest amount, breaking ties by
// ascending user ID. Groups are small, so a scan per step beats keeping a
// heap in order.
func largest(amounts map[uint]int64) uint {
	var best uint
	var bestAmount int64 = -1
	for id, a := range amounts {
		if a > bestAmount || (a == bestAmount && id < best) {
			best = id
			bestAmount = a
		}
	}
	return best
}
