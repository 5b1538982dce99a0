package codes

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solquestio/solquest-api/models"
)

func newTestLedger(t *testing.T) (*Ledger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewLedger(store), store
}

func mustGenerate(t *testing.T, l *Ledger, store Store, count int, campaign string) []models.SecretCode {
	t.Helper()
	batch, err := l.Generate(count, campaign)
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), batch))
	return batch
}

func TestGenerate(t *testing.T) {
	ledger, _ := newTestLedger(t)

	batch, err := ledger.Generate(50, "twitter-giveaway")
	require.NoError(t, err)
	require.Len(t, batch, 50)

	seen := make(map[string]bool)
	for _, sc := range batch {
		assert.Len(t, sc.Code, codeLength)
		assert.Equal(t, sc.Code, strings.ToUpper(sc.Code))
		assert.False(t, sc.Used)
		assert.Equal(t, "twitter-giveaway", sc.Campaign)
		assert.Equal(t, batch[0].BatchID, sc.BatchID)
		assert.False(t, seen[sc.Code], "duplicate code %s", sc.Code)
		seen[sc.Code] = true

		for _, r := range sc.Code {
			assert.Contains(t, codeAlphabet, string(r))
		}
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Generate(0, "c")
	assert.Error(t, err)
	_, err = ledger.Generate(-3, "c")
	assert.Error(t, err)
	_, err = ledger.Generate(5, "  ")
	assert.Error(t, err)
}

func TestRedeemLifecycle(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	batch := mustGenerate(t, ledger, store, 1, "og-launch")
	code := batch[0].Code

	// Unknown code is a rejection outcome, not an error.
	res, err := ledger.Redeem(ctx, "NOSUCHCODE", "W1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Outcome)

	// First redemption wins.
	res, err = ledger.Redeem(ctx, code, "W1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedeemed, res.Outcome)
	assert.Equal(t, "og-launch", res.Campaign)
	assert.Equal(t, batch[0].CreatedAt, res.CreatedAt)

	// Second redemption reports the original redeemer, and the new wallet
	// is not recorded.
	res, err = ledger.Redeem(ctx, code, "W2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyUsed, res.Outcome)
	assert.Equal(t, "W1", res.UsedBy)
	require.NotNil(t, res.UsedAt)

	stored, err := store.FindByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "W1", stored.UsedBy)
}

func TestRedeemCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	require.NoError(t, store.Insert(ctx, []models.SecretCode{{
		Code:      "SOLQUESTOG",
		Campaign:  "twitter-giveaway",
		CreatedAt: time.Now(),
	}}))

	res, err := ledger.Redeem(ctx, "  solquestog ", "W1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedeemed, res.Outcome)

	res, err = ledger.Redeem(ctx, "SolQuestOG", "W2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyUsed, res.Outcome)
	assert.Equal(t, "W1", res.UsedBy)
}

func TestRedeemConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	code := mustGenerate(t, ledger, store, 1, "race")[0].Code

	const callers = 32
	results := make([]RedeemResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ledger.Redeem(ctx, code, string(rune('A'+i%26))+"-wallet")
		}(i)
	}
	wg.Wait()

	redeemed := 0
	var winner string
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		switch results[i].Outcome {
		case OutcomeRedeemed:
			redeemed++
		case OutcomeAlreadyUsed:
			if winner == "" {
				winner = results[i].UsedBy
			}
			assert.Equal(t, winner, results[i].UsedBy)
		default:
			t.Fatalf("unexpected outcome %s", results[i].Outcome)
		}
	}
	assert.Equal(t, 1, redeemed, "exactly one caller may win")

	stored, err := store.FindByCode(ctx, code)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	assert.NotEmpty(t, stored.UsedBy)
}

func TestRedeemCorruptRow(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	require.NoError(t, store.Insert(ctx, []models.SecretCode{{
		Code:     "BROKEN",
		Campaign: "c",
		Used:     true, // used with no redeemer recorded
	}}))

	_, err := ledger.Redeem(ctx, "BROKEN", "W1")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)

	a := mustGenerate(t, ledger, store, 3, "alpha")
	mustGenerate(t, ledger, store, 2, "beta")

	_, err := ledger.Redeem(ctx, a[0].Code, "W1")
	require.NoError(t, err)
	_, err = ledger.Redeem(ctx, a[1].Code, "W2")
	require.NoError(t, err)

	stats, err := ledger.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(2), stats.Used)
	assert.Equal(t, int64(3), stats.Remaining)
	assert.Equal(t, CampaignStats{Total: 3, Used: 2, Remaining: 1}, stats.Campaigns["alpha"])
	assert.Equal(t, CampaignStats{Total: 2, Used: 0, Remaining: 2}, stats.Campaigns["beta"])
}

func TestHasRedeemerUsedAnyCode(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	batch := mustGenerate(t, ledger, store, 2, "c")

	ok, err := ledger.HasRedeemerUsedAnyCode(ctx, "W1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ledger.Redeem(ctx, batch[0].Code, "W1")
	require.NoError(t, err)

	ok, err = ledger.HasRedeemerUsedAnyCode(ctx, "W1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.HasRedeemerUsedAnyCode(ctx, "W2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnusedSample(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, []models.SecretCode{
		{Code: "CCC", Campaign: "alpha", CreatedAt: base.Add(2 * time.Hour)},
		{Code: "AAA", Campaign: "alpha", CreatedAt: base},
		{Code: "BBB", Campaign: "beta", CreatedAt: base.Add(time.Hour)},
		{Code: "DDD", Campaign: "alpha", CreatedAt: base, Used: true, UsedBy: "W9"},
	}))

	sample, err := ledger.UnusedSample(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, sample, 3)
	assert.Equal(t, "AAA", sample[0].Code)
	assert.Equal(t, "BBB", sample[1].Code)
	assert.Equal(t, "CCC", sample[2].Code)

	// Stable for the same storage state.
	again, err := ledger.UnusedSample(ctx, "", 10)
	require.NoError(t, err)
	assert.Equal(t, sample, again)

	alpha, err := ledger.UnusedSample(ctx, "alpha", 10)
	require.NoError(t, err)
	require.Len(t, alpha, 2)
	assert.Equal(t, "AAA", alpha[0].Code)

	limited, err := ledger.UnusedSample(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	none, err := ledger.UnusedSample(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
