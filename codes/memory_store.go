package codes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/solquestio/solquest-api/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and local
// development; production uses GormStore.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]*models.SecretCode
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]*models.SecretCode)}
}

// Insert appends a batch of codes.
func (m *MemoryStore) Insert(ctx context.Context, batch []models.SecretCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range batch {
		cp := sc
		m.codes[Normalize(sc.Code)] = &cp
	}
	return nil
}

// FindByCode returns a copy of the stored code, or nil when absent.
func (m *MemoryStore) FindByCode(ctx context.Context, code string) (*models.SecretCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.codes[Normalize(code)]
	if !ok {
		return nil, nil
	}
	cp := *sc
	return &cp, nil
}

// MarkUsed performs the conditional unused-to-used transition under the
// store mutex, mirroring the atomic UPDATE of the SQL store.
func (m *MemoryStore) MarkUsed(ctx context.Context, code, redeemerID string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.codes[Normalize(code)]
	if !ok || sc.Used {
		return false, nil
	}
	at := usedAt
	sc.Used = true
	sc.UsedBy = redeemerID
	sc.UsedAt = &at
	return true, nil
}

// CountByCampaign aggregates usage grouped by campaign.
func (m *MemoryStore) CountByCampaign(ctx context.Context) ([]CampaignCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byCampaign := make(map[string]*CampaignCount)
	for _, sc := range m.codes {
		row, ok := byCampaign[sc.Campaign]
		if !ok {
			row = &CampaignCount{Campaign: sc.Campaign}
			byCampaign[sc.Campaign] = row
		}
		row.Total++
		if sc.Used {
			row.Used++
		}
	}

	rows := make([]CampaignCount, 0, len(byCampaign))
	for _, row := range byCampaign {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Campaign < rows[j].Campaign })
	return rows, nil
}

// HasRedeemer reports whether any code was redeemed by redeemerID.
func (m *MemoryStore) HasRedeemer(ctx context.Context, redeemerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.codes {
		if sc.Used && sc.UsedBy == redeemerID {
			return true, nil
		}
	}
	return false, nil
}

// Unused lists unused codes in created-at then code order.
func (m *MemoryStore) Unused(ctx context.Context, campaign string, limit int) ([]models.SecretCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.SecretCode, 0, limit)
	for _, sc := range m.codes {
		if sc.Used {
			continue
		}
		if campaign != "" && sc.Campaign != campaign {
			continue
		}
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
