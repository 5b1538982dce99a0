package codes

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/solquestio/solquest-api/models"
)

// GormStore persists codes in the secret_codes table. The unused-to-used
// transition is a single conditional UPDATE, so concurrent redemptions of
// the same code resolve to exactly one winner at the database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an initialized gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Insert appends a batch of codes in one statement.
func (s *GormStore) Insert(ctx context.Context, batch []models.SecretCode) error {
	if len(batch) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&batch).Error
}

// FindByCode returns the row for a normalized code, or nil when absent.
func (s *GormStore) FindByCode(ctx context.Context, code string) (*models.SecretCode, error) {
	var sc models.SecretCode
	err := s.db.WithContext(ctx).Where("code = ?", Normalize(code)).First(&sc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// MarkUsed flips used=false to used=true atomically; the rows-affected count
// tells whether this caller won.
func (s *GormStore) MarkUsed(ctx context.Context, code, redeemerID string, usedAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.SecretCode{}).
		Where("code = ? AND used = ?", Normalize(code), false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_by": redeemerID,
			"used_at": usedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountByCampaign aggregates usage with a single GROUP BY scan.
func (s *GormStore) CountByCampaign(ctx context.Context) ([]CampaignCount, error) {
	var rows []CampaignCount
	err := s.db.WithContext(ctx).Model(&models.SecretCode{}).
		Select("campaign, COUNT(*) AS total, SUM(used) AS used").
		Group("campaign").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// HasRedeemer reports whether redeemerID appears on any used code.
func (s *GormStore) HasRedeemer(ctx context.Context, redeemerID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SecretCode{}).
		Where("used = ? AND used_by = ?", true, redeemerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Unused lists unused codes in created-at then code order.
func (s *GormStore) Unused(ctx context.Context, campaign string, limit int) ([]models.SecretCode, error) {
	q := s.db.WithContext(ctx).Where("used = ?", false)
	if campaign != "" {
		q = q.Where("campaign = ?", campaign)
	}
	var out []models.SecretCode
	err := q.Order("created_at ASC, code ASC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
