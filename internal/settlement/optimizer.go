// Package settlement turns expense records into net balances and a reduced
// set of payer-to-payee transfers that clears all debts.
//
// The optimizer is pure and stateless: every function is a synchronous
// mapping from a transaction snapshot to outputs, recomputed in full on
// every query. The greedy largest-debtor/largest-creditor matching does not
// always produce the theoretical minimum transaction count (that problem is
// subset-sum hard) but it always transfers exactly the total imbalance and
// never emits more than max(#debtors, #creditors) settlements.
package settlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ykuznetsov/settleup/internal/expense/split"
	"github.com/ykuznetsov/settleup/internal/money"
)

// Transaction is an immutable expense snapshot: who paid the total, and how
// it was shared. Shares are assumed to sum to Amount within tolerance (the
// split package enforces that at record-creation time).
type Transaction struct {
	Amount  decimal.Decimal
	PayerID string
	Shares  []split.Share
}

// Settlement is a single instructed payment. Amount is always positive and
// From never equals To.
type Settlement struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Plan pairs the net balance map with the settlements that clear it.
type Plan struct {
	Balances    map[string]decimal.Decimal `json:"balances"`
	Settlements []Settlement               `json:"settlements"`
}

// UserView is the plan filtered to a single participant.
type UserView struct {
	NetBalance decimal.Decimal `json:"net_balance"`
	Owes       []Settlement    `json:"owes"`
	OwedBy     []Settlement    `json:"owed_by"`
}

// NetBalances computes the net balance per participant: each payer is
// credited the full transaction amount, each share participant is debited
// their share. A payer who appears in the shares nets to "paid the total,
// owes their own share" automatically. Participants never mentioned in any
// transaction are absent from the map, not present with zero.
func NetBalances(txns []Transaction) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)

	for _, txn := range txns {
		balances[txn.PayerID] = balances[txn.PayerID].Add(txn.Amount)
		for _, share := range txn.Shares {
			balances[share.ParticipantID] = balances[share.ParticipantID].Sub(share.Amount)
		}
	}

	return balances
}

// party is a debtor or creditor with its remaining unsettled magnitude.
type party struct {
	id     string
	amount decimal.Decimal
}

// Optimize reduces a balance map to a list of settlements using greedy
// largest-debtor/largest-creditor matching. Balances within +-0.01 of zero
// are treated as settled and never matched. Equal magnitudes tie-break on
// participant ID ascending, so the output is deterministic for any input.
func Optimize(balances map[string]decimal.Decimal) []Settlement {
	var debtors, creditors []party

	for id, balance := range balances {
		rounded := money.Round(balance)
		switch {
		case rounded.LessThan(money.Tolerance.Neg()):
			debtors = append(debtors, party{id: id, amount: rounded.Abs()})
		case rounded.GreaterThan(money.Tolerance):
			creditors = append(creditors, party{id: id, amount: rounded})
		}
	}

	byMagnitude := func(parties []party) func(i, j int) bool {
		return func(i, j int) bool {
			if !parties[i].amount.Equal(parties[j].amount) {
				return parties[i].amount.GreaterThan(parties[j].amount)
			}
			return parties[i].id < parties[j].id
		}
	}
	sort.Slice(debtors, byMagnitude(debtors))
	sort.Slice(creditors, byMagnitude(creditors))

	settlements := []Settlement{}
	i, j := 0, 0

	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.amount, creditor.amount)
		rounded := money.Round(amount)

		if rounded.GreaterThan(money.Tolerance) {
			settlements = append(settlements, Settlement{
				From:   debtor.id,
				To:     creditor.id,
				Amount: rounded,
			})
		}

		debtor.amount = money.Round(debtor.amount.Sub(amount))
		creditor.amount = money.Round(creditor.amount.Sub(amount))

		if debtor.amount.LessThan(money.Tolerance) {
			i++
		}
		if creditor.amount.LessThan(money.Tolerance) {
			j++
		}
	}

	return settlements
}

// BuildPlan computes the full settlement plan for a transaction snapshot.
// An empty snapshot yields an empty balance map and no settlements; this is
// an explicit base case, distinct from a non-empty snapshot whose balances
// all happen to be zero.
func BuildPlan(txns []Transaction) Plan {
	if len(txns) == 0 {
		return Plan{
			Balances:    map[string]decimal.Decimal{},
			Settlements: []Settlement{},
		}
	}

	balances := NetBalances(txns)
	return Plan{
		Balances:    balances,
		Settlements: Optimize(balances),
	}
}

// ForUser computes the plan and filters it to one participant's view.
// NetBalance is zero when the participant appears in no transaction.
func ForUser(txns []Transaction, participantID string) UserView {
	plan := BuildPlan(txns)

	view := UserView{
		NetBalance: money.Round(plan.Balances[participantID]),
		Owes:       []Settlement{},
		OwedBy:     []Settlement{},
	}
	for _, s := range plan.Settlements {
		switch participantID {
		case s.From:
			view.Owes = append(view.Owes, s)
		case s.To:
			view.OwedBy = append(view.OwedBy, s)
		}
	}

	return view
}
