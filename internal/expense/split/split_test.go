package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func amounts(shares []Share) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.Amount.StringFixed(2)
	}
	return out
}

func shareSum(shares []Share) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []string
		want         []string
	}{
		{
			name:         "divides evenly",
			total:        "90.00",
			participants: []string{"alice", "bob", "carol"},
			want:         []string{"30.00", "30.00", "30.00"},
		},
		{
			name:         "indivisible cent goes to first participants",
			total:        "100",
			participants: []string{"alice", "bob", "carol"},
			want:         []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "two leftover cents",
			total:        "100.01",
			participants: []string{"alice", "bob", "carol"},
			want:         []string{"33.34", "33.34", "33.33"},
		},
		{
			name:         "single participant takes everything",
			total:        "59.99",
			participants: []string{"alice"},
			want:         []string{"59.99"},
		},
		{
			name:         "total smaller than one cent per participant",
			total:        "0.02",
			participants: []string{"alice", "bob", "carol"},
			want:         []string{"0.01", "0.01", "0.00"},
		},
		{
			name:         "duplicate ids each get a slot",
			total:        "10.00",
			participants: []string{"alice", "alice", "bob"},
			want:         []string{"3.34", "3.33", "3.33"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Equal(d(tt.total), tt.participants)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amounts(shares))
			assert.True(t, shareSum(shares).Equal(d(tt.total)), "shares must sum to the total exactly")

			for i, s := range shares {
				assert.Equal(t, tt.participants[i], s.ParticipantID, "output order must follow input order")
			}
		})
	}
}

func TestEqualErrors(t *testing.T) {
	_, err := Equal(d("100"), nil)
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	_, err = Equal(d("0"), []string{"alice"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Equal(d("-5"), []string{"alice"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestEqualFairness(t *testing.T) {
	// No two shares may ever differ by more than one cent.
	totals := []string{"100", "0.05", "123.45", "999.99", "7"}
	for _, total := range totals {
		for n := 1; n <= 7; n++ {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = "p"
			}
			shares, err := Equal(d(total), ids)
			require.NoError(t, err)

			min, max := shares[0].Amount, shares[0].Amount
			for _, s := range shares {
				if s.Amount.LessThan(min) {
					min = s.Amount
				}
				if s.Amount.GreaterThan(max) {
					max = s.Amount
				}
			}
			assert.True(t, max.Sub(min).LessThanOrEqual(d("0.01")),
				"total %s across %d: spread %s", total, n, max.Sub(min))
			assert.True(t, shareSum(shares).Equal(d(total)))
		}
	}
}

func TestByWeights(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		weighted []WeightedParticipant
		want     []string
	}{
		{
			name:  "clean percentages",
			total: "1000",
			weighted: []WeightedParticipant{
				{ParticipantID: "alice", Weight: d("60")},
				{ParticipantID: "bob", Weight: d("40")},
			},
			want: []string{"600.00", "400.00"},
		},
		{
			name:  "last entry absorbs rounding drift",
			total: "100",
			weighted: []WeightedParticipant{
				{ParticipantID: "alice", Weight: d("33.33")},
				{ParticipantID: "bob", Weight: d("33.33")},
				{ParticipantID: "carol", Weight: d("33.34")},
			},
			want: []string{"33.33", "33.33", "33.34"},
		},
		{
			name:  "uneven weights on an odd total",
			total: "99.99",
			weighted: []WeightedParticipant{
				{ParticipantID: "alice", Weight: d("50")},
				{ParticipantID: "bob", Weight: d("30")},
				{ParticipantID: "carol", Weight: d("20")},
			},
			want: []string{"50.00", "30.00", "19.99"},
		},
		{
			name:  "zero weight participant",
			total: "80",
			weighted: []WeightedParticipant{
				{ParticipantID: "alice", Weight: d("0")},
				{ParticipantID: "bob", Weight: d("100")},
			},
			want: []string{"0.00", "80.00"},
		},
		{
			name:  "weight sum within tolerance",
			total: "100",
			weighted: []WeightedParticipant{
				{ParticipantID: "alice", Weight: d("50")},
				{ParticipantID: "bob", Weight: d("50.01")},
			},
			want: []string{"50.00", "50.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := ByWeights(d(tt.total), tt.weighted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amounts(shares))
			assert.True(t, shareSum(shares).Equal(d(tt.total)), "shares must sum to the total exactly")
		})
	}
}

func TestByWeightsErrors(t *testing.T) {
	two := []WeightedParticipant{
		{ParticipantID: "alice", Weight: d("50")},
		{ParticipantID: "bob", Weight: d("40")},
	}

	t.Run("empty participants", func(t *testing.T) {
		_, err := ByWeights(d("100"), nil)
		assert.ErrorIs(t, err, ErrInvalidParticipants)
	})

	t.Run("non-positive total", func(t *testing.T) {
		_, err := ByWeights(d("0"), two)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("weight above 100", func(t *testing.T) {
		_, err := ByWeights(d("100"), []WeightedParticipant{
			{ParticipantID: "alice", Weight: d("101")},
		})
		assert.ErrorIs(t, err, ErrInvalidWeight)
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := ByWeights(d("100"), []WeightedParticipant{
			{ParticipantID: "alice", Weight: d("-1")},
			{ParticipantID: "bob", Weight: d("101")},
		})
		assert.ErrorIs(t, err, ErrInvalidWeight)
	})

	t.Run("sum off by ten reports the sum", func(t *testing.T) {
		_, err := ByWeights(d("100"), two)
		var sumErr *WeightSumError
		require.ErrorAs(t, err, &sumErr)
		assert.True(t, sumErr.Sum.Equal(d("90")))
		assert.Equal(t, "weights must sum to 100, got 90.00", err.Error())
	})

	t.Run("individual weight checked before sum", func(t *testing.T) {
		// 150 + 20 sums to 170, but the per-weight range check fires first.
		_, err := ByWeights(d("100"), []WeightedParticipant{
			{ParticipantID: "alice", Weight: d("150")},
			{ParticipantID: "bob", Weight: d("20")},
		})
		assert.ErrorIs(t, err, ErrInvalidWeight)
	})
}

func TestValidateShares(t *testing.T) {
	shares := []Share{
		{ParticipantID: "alice", Amount: d("60")},
		{ParticipantID: "bob", Amount: d("40")},
	}

	assert.NoError(t, ValidateShares(shares, d("100")))
	assert.NoError(t, ValidateShares(shares, d("100.01")), "one cent off is within tolerance")

	err := ValidateShares(shares, d("100.02"))
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "share amounts (100.00) must equal total amount (100.02)", err.Error())

	assert.ErrorIs(t, ValidateShares(nil, d("100")), ErrInvalidParticipants)
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	for _, st := range []SplitType{SplitTypeEqual, SplitTypePercentage, SplitTypeExact} {
		s, err := f.Create(st)
		require.NoError(t, err)
		assert.Equal(t, st, s.Type())
	}

	_, err := f.CreateFromString("RANDOM")
	assert.Error(t, err)
}

func TestStrategies(t *testing.T) {
	f := NewFactory()

	t.Run("equal ignores weights", func(t *testing.T) {
		s, _ := f.Create(SplitTypeEqual)
		shares, err := s.Calculate(d("100"), []Participant{
			{ID: "alice", Weight: dp("99")},
			{ID: "bob"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"50.00", "50.00"}, amounts(shares))
	})

	t.Run("percentage requires weights", func(t *testing.T) {
		s, _ := f.Create(SplitTypePercentage)
		_, err := s.Calculate(d("100"), []Participant{
			{ID: "alice", Weight: dp("50")},
			{ID: "bob"},
		})
		assert.ErrorIs(t, err, ErrMissingWeight)
	})

	t.Run("exact requires amounts that sum to the total", func(t *testing.T) {
		s, _ := f.Create(SplitTypeExact)

		shares, err := s.Calculate(d("100"), []Participant{
			{ID: "alice", Amount: dp("70.50")},
			{ID: "bob", Amount: dp("29.50")},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"70.50", "29.50"}, amounts(shares))

		_, err = s.Calculate(d("100"), []Participant{
			{ID: "alice", Amount: dp("70")},
			{ID: "bob"},
		})
		assert.ErrorIs(t, err, ErrMissingAmount)

		_, err = s.Calculate(d("100"), []Participant{
			{ID: "alice", Amount: dp("70")},
			{ID: "bob", Amount: dp("20")},
		})
		var mismatch *MismatchError
		assert.ErrorAs(t, err, &mismatch)

		_, err = s.Calculate(d("100"), []Participant{
			{ID: "alice", Amount: dp("-10")},
			{ID: "bob", Amount: dp("110")},
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}
