package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

const tolerance = 1e-9

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		rank       int
		hasNft     bool
		wantBase   float64
		wantFinal  float64
		wantBonus  float64
		wantHas    bool
		wantFactor float64
	}{
		{"rank 1 without nft", 1, false, 5.0, 5.0, 0, false, 1.0},
		{"rank 1 with nft", 1, true, 5.0, 5.5, 0.5, true, 1.1},
		{"rank 3 without nft", 3, false, 2.0, 2.0, 0, false, 1.0},
		{"rank 10 with nft", 10, true, 0.3, 0.33, 0.03, true, 1.1},
		{"rank 11 with nft earns nothing", 11, true, 0, 0, 0, false, 1.0},
		{"rank 0 earns nothing", 0, true, 0, 0, 0, false, 1.0},
		{"negative rank earns nothing", -5, false, 0, 0, 0, false, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.rank, tt.hasNft)
			assert.Equal(t, tt.rank, got.Rank)
			assert.InDelta(t, tt.wantBase, got.BaseReward, tolerance)
			assert.InDelta(t, tt.wantFinal, got.FinalReward, tolerance)
			assert.InDelta(t, tt.wantBonus, got.BonusAmount, tolerance)
			assert.Equal(t, tt.wantHas, got.HasBonus)
			assert.InDelta(t, tt.wantFactor, got.BonusMultiplier, tolerance)
		})
	}
}

func TestProcessRanked(t *testing.T) {
	entries := []Entry{
		{Rank: 1, Wallet: "w1", HasQualifyingNft: true},
		{Rank: 2, Wallet: "w2"},
		{Rank: 3, Wallet: "w3", HasQualifyingNft: true},
		{Rank: 11, Wallet: "w11", HasQualifyingNft: true}, // skipped
		{Rank: 42, Wallet: "w42"},                         // skipped
	}

	results, sum := ProcessRanked(entries)

	assert.Len(t, results, 3)
	assert.Equal(t, "w1", results[0].Wallet)
	assert.InDelta(t, 5.5, results[0].FinalReward, tolerance)
	assert.InDelta(t, 3.0, results[1].FinalReward, tolerance)
	assert.InDelta(t, 2.2, results[2].FinalReward, tolerance)

	assert.InDelta(t, 10.7, sum.TotalReward, tolerance)
	assert.InDelta(t, 0.7, sum.TotalBonus, tolerance)
	assert.Equal(t, 2, sum.BonusHolders)
}

func TestProcessRankedEmpty(t *testing.T) {
	results, sum := ProcessRanked(nil)
	assert.Empty(t, results)
	assert.Equal(t, Summary{}, sum)
}

func TestCalculateProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rank := rapid.IntRange(-3, 30).Draw(rt, "rank")
		hasNft := rapid.Bool().Draw(rt, "hasNft")

		got := Calculate(rank, hasNft)

		if got.BaseReward == 0 {
			// Zero base never earns a bonus.
			if got.HasBonus || got.FinalReward != 0 || got.BonusAmount != 0 {
				rt.Fatalf("zero-base rank %d must stay zero: %+v", rank, got)
			}
			return
		}

		want := got.BaseReward
		if hasNft {
			want *= HolderBonusMultiplier
		}
		if diff := got.FinalReward - want; diff > tolerance || diff < -tolerance {
			rt.Fatalf("final reward %v, want %v", got.FinalReward, want)
		}
		if diff := got.BonusAmount - (got.FinalReward - got.BaseReward); diff > tolerance || diff < -tolerance {
			rt.Fatalf("bonus amount %v inconsistent", got.BonusAmount)
		}
	})
}
