package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingDeletion is one staged removal. At most one row may exist per media
// file; the row is destroyed on restore or retention-expiry cleanup and kept
// (approved) after the staged file is purged.
type PendingDeletion struct {
	ID     uuid.UUID `json:"id"      gorm:"type:uuid;primaryKey"`
	FileID uuid.UUID `json:"file_id" gorm:"type:uuid;uniqueIndex;not null"`

	OriginalPath string `json:"original_path" gorm:"type:text;not null"`

	// StagedPath is nil when the source file could not be located at staging
	// time; the deletion is then logical only.
	StagedPath *string `json:"staged_path,omitempty" gorm:"type:text"`

	Size   int64  `json:"size" gorm:"not null"`
	Reason string `json:"reason" gorm:"type:text;not null"`

	// Links back to the originating duplicate group, when any.
	GroupID    *uuid.UUID `json:"group_id,omitempty"     gorm:"type:uuid"`
	KeptFileID *uuid.UUID `json:"kept_file_id,omitempty" gorm:"type:uuid"`
	ScoreDelta *int       `json:"score_delta,omitempty"`

	LanguageConcern       bool   `json:"language_concern" gorm:"default:false;index"`
	LanguageConcernReason string `json:"language_concern_reason,omitempty" gorm:"type:text"`

	Status     DeletionStatus `json:"status" gorm:"type:varchar(20);not null;default:'staged';index"`
	Note       string         `json:"note,omitempty" gorm:"type:text"`
	StagedAt   time.Time      `json:"staged_at" gorm:"not null;index"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`

	// PurgedAt is set when the staged file was physically removed.
	PurgedAt *time.Time `json:"purged_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	File MediaFile `json:"-" gorm:"foreignKey:FileID"`
}

// OperationLog is an immutable audit record of one physical move, delete or
// restore attempt, including failures. Rows are append-only.
type OperationLog struct {
	ID              uuid.UUID     `json:"id"      gorm:"type:uuid;primaryKey"`
	FileID          uuid.UUID     `json:"file_id" gorm:"type:uuid;not null;index"`
	Operation       OperationType `json:"operation" gorm:"type:varchar(50);not null"`
	SourcePath      string        `json:"source_path" gorm:"type:text;not null"`
	DestinationPath *string       `json:"destination_path,omitempty" gorm:"type:text"`
	Size            int64         `json:"size"`
	Success         bool          `json:"success" gorm:"not null"`
	ErrorMessage    string        `json:"error_message,omitempty" gorm:"type:text"`
	PerformedAt     time.Time     `json:"performed_at" gorm:"not null;index"`
}

func (PendingDeletion) TableName() string {
	return "pending_deletions"
}

func (OperationLog) TableName() string {
	return "operation_log"
}
