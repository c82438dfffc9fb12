// Package ledger holds the pure accounting core: computing member
// balances from expense and settlement records, and suggesting the
// minimal set of transfers that settles a group. All amounts are int64
// minor units; the package touches no storage.
package ledger

import "divvy/internal/models"

// ComputeBalances derives each member's net position. Positive means the
// group owes the member money, negative means the member owes the group.
//
// Per expense the payer is credited the full amount and every split
// holder is debited their share; a payer who also appears in the splits
// nets the two, which is the intended "pays for others" semantics. Per
// settlement the payer is credited and the payee debited, moving both
// toward zero.
//
// Members with no activity stay at zero. Historical members who still
// appear on old splits are included even if absent from memberIDs, so
// conservation holds over the whole record set.
func ComputeBalances(memberIDs []uint, expenses []models.Expense, settlements []models.Settlement) map[uint]int64 {
	balances := make(map[uint]int64, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = 0
	}

	for _, e := range expenses {
		balances[e.PayerID] += e.Amount
		for _, s := range e.Splits {
			balances[s.UserID] -= s.AmountOwed
		}
	}

	for _, s := range settlements {
		balances[s.PayerID] += s.Amount
		balances[s.PayeeID] -= s.Amount
	}

	return balances
}
