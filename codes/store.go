package codes

import (
	"context"
	"time"

	"github.com/solquestio/solquest-api/models"
)

// CampaignCount is one row of the per-campaign usage aggregate.
type CampaignCount struct {
	Campaign string `json:"campaign"`
	Total    int64  `json:"total"`
	Used     int64  `json:"used"`
}

// Store is the persistence contract the ledger depends on. Implementations
// must make MarkUsed an atomic conditional update: of any number of
// concurrent callers for the same code, at most one observes true.
type Store interface {
	// Insert appends a batch of new codes. Existing rows are never touched.
	Insert(ctx context.Context, batch []models.SecretCode) error
	// FindByCode returns the code row for a normalized (uppercase) token,
	// or nil when no such code exists.
	FindByCode(ctx context.Context, code string) (*models.SecretCode, error)
	// MarkUsed transitions a code from unused to used. Returns false when
	// the code is missing or already used.
	MarkUsed(ctx context.Context, code, redeemerID string, usedAt time.Time) (bool, error)
	// CountByCampaign aggregates total/used counts grouped by campaign.
	CountByCampaign(ctx context.Context) ([]CampaignCount, error)
	// HasRedeemer reports whether any code was redeemed by redeemerID.
	HasRedeemer(ctx context.Context, redeemerID string) (bool, error)
	// Unused returns up to limit unused codes, optionally filtered by
	// campaign (empty string means all), in stable created-at/code order.
	Unused(ctx context.Context, campaign string, limit int) ([]models.SecretCode, error)
}
