// Package codes manages single-use secret redemption codes: batch
// generation, exactly-once redemption, and usage reporting.
//
// The ledger owns no storage itself; it drives an abstract Store whose
// conditional update provides the at-most-one-winner redemption guarantee.
package codes

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solquestio/solquest-api/models"
)

// codeAlphabet is the standard base32 alphabet: 32 symbols, 5 bits per
// character, no 0/1/8/9 that get confused with letters.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// codeLength at 5 bits per character yields 130 bits of entropy.
const codeLength = 26

// RedeemOutcome classifies the result of a redemption attempt.
type RedeemOutcome string

const (
	// OutcomeInvalid means no stored code matches.
	OutcomeInvalid RedeemOutcome = "invalid"
	// OutcomeAlreadyUsed means the code exists but was redeemed before.
	OutcomeAlreadyUsed RedeemOutcome = "already_used"
	// OutcomeRedeemed means this caller won the redemption.
	OutcomeRedeemed RedeemOutcome = "redeemed"
)

// RedeemResult reports a redemption attempt. Invalid and AlreadyUsed are
// normal rejection outcomes, not errors; only storage failures surface as
// errors from Redeem.
type RedeemResult struct {
	Outcome   RedeemOutcome `json:"outcome"`
	Campaign  string        `json:"campaign,omitempty"`
	CreatedAt time.Time     `json:"created_at,omitempty"`
	// UsedBy/UsedAt identify the original redeemer on AlreadyUsed.
	UsedBy string     `json:"used_by,omitempty"`
	UsedAt *time.Time `json:"used_at,omitempty"`
}

// Stats aggregates code usage across all campaigns.
type Stats struct {
	Total     int64                    `json:"total"`
	Used      int64                    `json:"used"`
	Remaining int64                    `json:"remaining"`
	Campaigns map[string]CampaignStats `json:"campaigns"`
}

// CampaignStats is the per-campaign slice of Stats.
type CampaignStats struct {
	Total     int64 `json:"total"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
}

// Ledger coordinates code generation and redemption over a Store.
type Ledger struct {
	store Store
	now   func() time.Time
}

// NewLedger creates a ledger backed by store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Generate produces count fresh unused codes tagged with campaign and a
// shared batch id. The caller persists them via the store; generation itself
// has no side effects.
func (l *Ledger) Generate(count int, campaign string) ([]models.SecretCode, error) {
	if count <= 0 {
		return nil, fmt.Errorf("code count must be positive, got %d", count)
	}
	campaign = strings.TrimSpace(campaign)
	if campaign == "" {
		return nil, fmt.Errorf("campaign must not be empty")
	}

	batchID := uuid.NewString()
	now := l.now()

	batch := make([]models.SecretCode, 0, count)
	for i := 0; i < count; i++ {
		token, err := randomToken()
		if err != nil {
			return nil, fmt.Errorf("generate code token: %w", err)
		}
		batch = append(batch, models.SecretCode{
			Code:      token,
			Campaign:  campaign,
			BatchID:   batchID,
			CreatedAt: now,
		})
	}
	return batch, nil
}

// Redeem attempts to consume a code for redeemerID. Matching is
// case-insensitive. At most one concurrent caller per code observes
// OutcomeRedeemed; every other caller gets OutcomeAlreadyUsed with the
// winner's identity.
func (l *Ledger) Redeem(ctx context.Context, code, redeemerID string) (RedeemResult, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return RedeemResult{Outcome: OutcomeInvalid}, nil
	}

	sc, err := l.store.FindByCode(ctx, normalized)
	if err != nil {
		return RedeemResult{}, fmt.Errorf("look up code: %w", err)
	}
	if sc == nil {
		return RedeemResult{Outcome: OutcomeInvalid}, nil
	}
	if sc.Used {
		return alreadyUsedResult(sc)
	}

	won, err := l.store.MarkUsed(ctx, normalized, redeemerID, l.now())
	if err != nil {
		return RedeemResult{}, fmt.Errorf("mark code used: %w", err)
	}
	if !won {
		// Lost the race: fetch the winner for the audit trail.
		sc, err = l.store.FindByCode(ctx, normalized)
		if err != nil {
			return RedeemResult{}, fmt.Errorf("look up code after lost race: %w", err)
		}
		if sc == nil || !sc.Used {
			return RedeemResult{}, fmt.Errorf("code %s in inconsistent state after redemption race", normalized)
		}
		return alreadyUsedResult(sc)
	}

	return RedeemResult{
		Outcome:   OutcomeRedeemed,
		Campaign:  sc.Campaign,
		CreatedAt: sc.CreatedAt,
	}, nil
}

// Stats aggregates usage counts over all stored codes, grouped by campaign.
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	rows, err := l.store.CountByCampaign(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate code stats: %w", err)
	}

	stats := Stats{Campaigns: make(map[string]CampaignStats, len(rows))}
	for _, row := range rows {
		stats.Total += row.Total
		stats.Used += row.Used
		stats.Campaigns[row.Campaign] = CampaignStats{
			Total:     row.Total,
			Used:      row.Used,
			Remaining: row.Total - row.Used,
		}
	}
	stats.Remaining = stats.Total - stats.Used
	return stats, nil
}

// HasRedeemerUsedAnyCode reports whether redeemerID has redeemed any code.
func (l *Ledger) HasRedeemerUsedAnyCode(ctx context.Context, redeemerID string) (bool, error) {
	return l.store.HasRedeemer(ctx, redeemerID)
}

// UnusedSample returns up to limit unused codes, optionally filtered by
// campaign. Order is stable for a given storage state.
func (l *Ledger) UnusedSample(ctx context.Context, campaign string, limit int) ([]models.SecretCode, error) {
	if limit <= 0 {
		return nil, nil
	}
	return l.store.Unused(ctx, campaign, limit)
}

// Normalize maps a user-supplied code to its canonical stored form.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func alreadyUsedResult(sc *models.SecretCode) (RedeemResult, error) {
	if sc.UsedBy == "" {
		// used=true with no redeemer recorded means the table is corrupt.
		return RedeemResult{}, fmt.Errorf("code %s marked used without a redeemer", sc.Code)
	}
	return RedeemResult{
		Outcome: OutcomeAlreadyUsed,
		UsedBy:  sc.UsedBy,
		UsedAt:  sc.UsedAt,
	}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)&31]
	}
	return string(buf), nil
}
