package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykuznetsov/settleup/internal/expense/split"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// tripTxns is a weekend trip: alice pays 300 split three ways, bob pays 75
// split between bob and carol.
func tripTxns() []Transaction {
	return []Transaction{
		{
			Amount:  d("300"),
			PayerID: "alice",
			Shares: []split.Share{
				{ParticipantID: "alice", Amount: d("100")},
				{ParticipantID: "bob", Amount: d("100")},
				{ParticipantID: "carol", Amount: d("100")},
			},
		},
		{
			Amount:  d("75"),
			PayerID: "bob",
			Shares: []split.Share{
				{ParticipantID: "bob", Amount: d("37.50")},
				{ParticipantID: "carol", Amount: d("37.50")},
			},
		},
	}
}

func TestNetBalances(t *testing.T) {
	balances := NetBalances(tripTxns())

	require.Len(t, balances, 3)
	assert.True(t, balances["alice"].Equal(d("200")))
	assert.True(t, balances["bob"].Equal(d("-62.50")))
	assert.True(t, balances["carol"].Equal(d("-137.50")))
}

func TestNetBalancesPayerInShares(t *testing.T) {
	// Paying for yourself alone nets to zero.
	balances := NetBalances([]Transaction{
		{
			Amount:  d("50"),
			PayerID: "alice",
			Shares:  []split.Share{{ParticipantID: "alice", Amount: d("50")}},
		},
	})
	assert.True(t, balances["alice"].IsZero())
}

func TestNetBalancesSparse(t *testing.T) {
	balances := NetBalances(tripTxns())
	_, ok := balances["dave"]
	assert.False(t, ok, "uninvolved participants are absent, not zero")
}

func TestOptimize(t *testing.T) {
	t.Run("single creditor", func(t *testing.T) {
		settlements := Optimize(map[string]decimal.Decimal{
			"alice": d("200"),
			"bob":   d("-25"),
			"carol": d("-175"),
		})

		require.Len(t, settlements, 2)
		assert.Equal(t, "carol", settlements[0].From)
		assert.Equal(t, "alice", settlements[0].To)
		assert.True(t, settlements[0].Amount.Equal(d("175")))
		assert.Equal(t, "bob", settlements[1].From)
		assert.Equal(t, "alice", settlements[1].To)
		assert.True(t, settlements[1].Amount.Equal(d("25")))
	})

	t.Run("all settled", func(t *testing.T) {
		settlements := Optimize(map[string]decimal.Decimal{
			"alice": d("0"),
			"bob":   d("0"),
		})
		assert.Empty(t, settlements)
		assert.NotNil(t, settlements)
	})

	t.Run("within tolerance is settled", func(t *testing.T) {
		settlements := Optimize(map[string]decimal.Decimal{
			"alice": d("0.01"),
			"bob":   d("-0.01"),
		})
		assert.Empty(t, settlements)
	})

	t.Run("just outside tolerance is not", func(t *testing.T) {
		settlements := Optimize(map[string]decimal.Decimal{
			"alice": d("0.02"),
			"bob":   d("-0.02"),
		})
		require.Len(t, settlements, 1)
		assert.True(t, settlements[0].Amount.Equal(d("0.02")))
	})

	t.Run("equal magnitudes tie-break on id", func(t *testing.T) {
		settlements := Optimize(map[string]decimal.Decimal{
			"zed":   d("-50"),
			"ann":   d("-50"),
			"mike":  d("60"),
			"brian": d("40"),
		})

		// Debtors at 50/50 order ann before zed; creditors order mike
		// (60) before brian (40).
		require.Len(t, settlements, 3)
		want := []struct {
			from, to, amount string
		}{
			{"ann", "mike", "50"},
			{"zed", "mike", "10"},
			{"zed", "brian", "40"},
		}
		for i, w := range want {
			assert.Equal(t, w.from, settlements[i].From)
			assert.Equal(t, w.to, settlements[i].To)
			assert.True(t, settlements[i].Amount.Equal(d(w.amount)),
				"settlement %d amount %s", i, settlements[i].Amount)
		}
	})

	t.Run("settlement count bound", func(t *testing.T) {
		settlements := Optimize(map[string]decimal.Decimal{
			"a": d("-10"), "b": d("-20"), "c": d("-30"),
			"x": d("25"), "y": d("35"),
		})
		assert.LessOrEqual(t, len(settlements), 3+2-1)
	})
}

// Applying the settlements to the balance map must bring every participant
// within tolerance of zero.
func TestOptimizeClearsBalances(t *testing.T) {
	cases := []map[string]decimal.Decimal{
		{"alice": d("200"), "bob": d("-25"), "carol": d("-175")},
		{"a": d("33.34"), "b": d("-16.67"), "c": d("-16.67")},
		{"a": d("-0.02"), "b": d("0.02")},
		{"a": d("100.55"), "b": d("-50.25"), "c": d("-50.30")},
	}

	for _, balances := range cases {
		remaining := make(map[string]decimal.Decimal, len(balances))
		for id, b := range balances {
			remaining[id] = b
		}

		for _, s := range Optimize(balances) {
			assert.True(t, s.Amount.GreaterThan(decimal.Zero))
			assert.NotEqual(t, s.From, s.To)
			remaining[s.From] = remaining[s.From].Add(s.Amount)
			remaining[s.To] = remaining[s.To].Sub(s.Amount)
		}
		for id, b := range remaining {
			assert.True(t, b.Abs().LessThanOrEqual(d("0.01")),
				"%s left with %s", id, b)
		}
	}
}

func TestBuildPlan(t *testing.T) {
	t.Run("empty snapshot", func(t *testing.T) {
		plan := BuildPlan(nil)
		assert.NotNil(t, plan.Balances)
		assert.Empty(t, plan.Balances)
		assert.NotNil(t, plan.Settlements)
		assert.Empty(t, plan.Settlements)
	})

	t.Run("trip snapshot", func(t *testing.T) {
		plan := BuildPlan(tripTxns())

		assert.True(t, plan.Balances["alice"].Equal(d("200")))
		require.Len(t, plan.Settlements, 2)
		assert.Equal(t, "carol", plan.Settlements[0].From)
		assert.True(t, plan.Settlements[0].Amount.Equal(d("137.50")))
		assert.Equal(t, "bob", plan.Settlements[1].From)
		assert.True(t, plan.Settlements[1].Amount.Equal(d("62.50")))
	})
}

func TestForUser(t *testing.T) {
	txns := tripTxns()

	t.Run("creditor", func(t *testing.T) {
		view := ForUser(txns, "alice")
		assert.True(t, view.NetBalance.Equal(d("200")))
		assert.Empty(t, view.Owes)
		require.Len(t, view.OwedBy, 2)
	})

	t.Run("debtor", func(t *testing.T) {
		view := ForUser(txns, "carol")
		assert.True(t, view.NetBalance.Equal(d("-137.50")))
		require.Len(t, view.Owes, 1)
		assert.Equal(t, "alice", view.Owes[0].To)
		assert.Empty(t, view.OwedBy)
	})

	t.Run("uninvolved user", func(t *testing.T) {
		view := ForUser(txns, "dave")
		assert.True(t, view.NetBalance.IsZero())
		assert.Empty(t, view.Owes)
		assert.Empty(t, view.OwedBy)
		assert.NotNil(t, view.Owes)
		assert.NotNil(t, view.OwedBy)
	})
}
