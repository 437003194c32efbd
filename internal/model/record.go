package model

import (
	"time"

	"gorm.io/gorm"
)

type MoveRecord struct {
	gorm.Model
	FileID   string      `gorm:"index;not null" json:"file_id"`
	Outcome  OutcomeKind `gorm:"not null" json:"outcome"`
	Origin   Origin      `gorm:"not null" json:"origin"`
	SrcPath  string      `gorm:"not null" json:"src_path"`
	DstPath  string      `json:"dst_path"`
	Attempts int         `json:"attempts"`
	ErrMsg   string      `json:"err_msg"`
	MovedAt  time.Time   `gorm:"not null" json:"moved_at"`
}

func NewMoveRecord(o MoveOutcome) MoveRecord {
	rec := MoveRecord{
		FileID:   o.File.ID,
		Outcome:  o.Kind,
		Origin:   o.File.Origin,
		SrcPath:  o.File.SourcePath,
		DstPath:  o.DestPath,
		Attempts: o.Attempts,
		MovedAt:  time.Now(),
	}
	if o.Err != nil {
		rec.ErrMsg = o.Err.Error()
	}

	return rec
}
