package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visa-consultancy/backend/internal/model"
)

// SequenceRepository per-namespace display-name counters
type SequenceRepository interface {
	// Next draws the next display name of the namespace. The counter row stays
	// locked until the surrounding transaction ends, so concurrent draws in one
	// namespace never see the same number.
	Next(ctx context.Context, code string) (string, error)
	// Ensure creates the namespace or updates its prefix and padding, keeping the counter
	Ensure(ctx context.Context, code, prefix string, padding int) error
}

type sequenceRepo struct {
	db *gorm.DB
}

// NewSequenceRepo creates a SequenceRepository
func NewSequenceRepo(db *gorm.DB) SequenceRepository {
	return &sequenceRepo{db: db}
}

func (r *sequenceRepo) Next(ctx context.Context, code string) (string, error) {
	var seq model.Sequence
	result := r.db.WithContext(ctx).
		Model(&seq).
		Clauses(clause.Returning{}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"next_number": gorm.Expr("next_number + 1"),
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", gorm.ErrRecordNotFound
	}
	// RETURNING yields the incremented counter; the drawn number is the one before it
	return seq.Format(seq.NextNumber - 1), nil
}

func (r *sequenceRepo) Ensure(ctx context.Context, code, prefix string, padding int) error {
	seq := model.Sequence{Code: code, Prefix: prefix, Padding: padding, NextNumber: 1}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"prefix", "padding", "updated_at"}),
		}).
		Create(&seq).Error
}
