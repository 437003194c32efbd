package repository

import (
	"errors"

	"filemover/internal/db"
	"filemover/internal/model"
)

var ErrNoDB = errors.New("history database not initialised")

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Save(outcome model.MoveOutcome) error {
	if db.DB == nil {
		return ErrNoDB
	}

	rec := model.NewMoveRecord(outcome)
	return db.DB.Create(&rec).Error
}

type Stats struct {
	Total    int64 `json:"total"`
	Moved    int64 `json:"moved"`
	Vanished int64 `json:"vanished"`
	Failed   int64 `json:"failed"`
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if db.DB == nil {
		return stats, ErrNoDB
	}

	if err := db.DB.Model(&model.MoveRecord{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.MoveRecord{}).
		Where("outcome = ?", model.OutcomeMoved).
		Count(&stats.Moved).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.MoveRecord{}).
		Where("outcome = ?", model.OutcomeSourceVanished).
		Count(&stats.Vanished).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Moved - stats.Vanished
	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.MoveRecord, error) {
	if db.DB == nil {
		return nil, ErrNoDB
	}

	var records []model.MoveRecord
	result := db.DB.
		Order("moved_at desc").
		Limit(limit).
		Find(&records)

	return records, result.Error
}

func (r *HistoryRepository) GetFailed() ([]model.MoveRecord, error) {
	if db.DB == nil {
		return nil, ErrNoDB
	}

	var records []model.MoveRecord
	result := db.DB.
		Where("outcome IN ?", []model.OutcomeKind{model.OutcomeExhaustedRetries, model.OutcomeFatal}).
		Order("moved_at desc").
		Find(&records)

	return records, result.Error
}
