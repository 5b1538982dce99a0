// Package rewards computes SOL reward amounts for monthly leaderboard
// standings. Amounts are pure arithmetic over a fixed rank table; NFT
// ownership is an input, never looked up here.
package rewards

// HolderBonusMultiplier is applied to the base reward for holders of the
// qualifying OG collection NFT.
const HolderBonusMultiplier = 1.1

// baseRewards maps 1-based leaderboard ranks to SOL amounts. Ranks outside
// the table earn nothing.
var baseRewards = map[int]float64{
	1:  5.0,
	2:  3.0,
	3:  2.0,
	4:  1.5,
	5:  1.0,
	6:  0.8,
	7:  0.6,
	8:  0.5,
	9:  0.4,
	10: 0.3,
}

// RewardedRanks is the number of leaderboard positions that earn a payout.
const RewardedRanks = 10

// Entry is one leaderboard position to be priced.
type Entry struct {
	Rank             int    `json:"rank"`
	Wallet           string `json:"wallet,omitempty"`
	HasQualifyingNft bool   `json:"has_qualifying_nft"`
}

// Result is the priced reward for a single rank.
type Result struct {
	Rank            int     `json:"rank"`
	Wallet          string  `json:"wallet,omitempty"`
	BaseReward      float64 `json:"base_reward"`
	HasBonus        bool    `json:"has_bonus"`
	BonusMultiplier float64 `json:"bonus_multiplier"`
	FinalReward     float64 `json:"final_reward"`
	BonusAmount     float64 `json:"bonus_amount"`
}

// Summary aggregates a batch of priced rewards.
type Summary struct {
	TotalReward  float64 `json:"total_reward"`
	TotalBonus   float64 `json:"total_bonus"`
	BonusHolders int     `json:"bonus_holders"`
}

// BaseReward returns the SOL amount for a rank, 0 for ranks outside 1-10.
func BaseReward(rank int) float64 {
	return baseRewards[rank]
}

// Calculate prices a single leaderboard position. The holder bonus is never
// applied to a zero base reward, even when hasQualifyingNft is true.
func Calculate(rank int, hasQualifyingNft bool) Result {
	base := BaseReward(rank)
	if base == 0 {
		return Result{Rank: rank, BonusMultiplier: 1.0}
	}

	multiplier := 1.0
	if hasQualifyingNft {
		multiplier = HolderBonusMultiplier
	}
	final := base * multiplier

	return Result{
		Rank:            rank,
		BaseReward:      base,
		HasBonus:        hasQualifyingNft,
		BonusMultiplier: multiplier,
		FinalReward:     final,
		BonusAmount:     final - base,
	}
}

// ProcessRanked prices every entry within the rewarded ranks and returns the
// per-rank results plus batch totals. Entries outside the rewarded ranks are
// skipped entirely.
func ProcessRanked(entries []Entry) ([]Result, Summary) {
	results := make([]Result, 0, len(entries))
	var sum Summary

	for _, e := range entries {
		if e.Rank < 1 || e.Rank > RewardedRanks {
			continue
		}
		r := Calculate(e.Rank, e.HasQualifyingNft)
		r.Wallet = e.Wallet
		results = append(results, r)

		sum.TotalReward += r.FinalReward
		sum.TotalBonus += r.BonusAmount
		if r.HasBonus {
			sum.BonusHolders++
		}
	}
	return results, sum
}
