package models

import (
	"time"

	"github.com/google/uuid"
)

// DuplicateGroup is a set of two or more media files judged to represent the
// same content. The group hash is derived from the sorted member IDs, so
// re-running detection over the same members resolves to the same group.
type DuplicateGroup struct {
	ID            uuid.UUID     `json:"id"         gorm:"type:uuid;primaryKey"`
	GroupHash     string        `json:"group_hash" gorm:"type:varchar(128);uniqueIndex;not null"`
	DuplicateType DuplicateType `json:"duplicate_type" gorm:"type:varchar(20);not null;index"`
	Confidence    float64       `json:"confidence"`

	// Denormalized from the first member for listing without joins.
	Title     string    `json:"title,omitempty"`
	Year      int       `json:"year,omitempty"`
	Season    int       `json:"season,omitempty"`
	Episode   int       `json:"episode,omitempty"`
	MediaType MediaType `json:"media_type,omitempty" gorm:"type:varchar(20)"`

	MemberCount       int         `json:"member_count" gorm:"default:0"`
	RecommendedAction GroupAction `json:"recommended_action" gorm:"type:varchar(20);index"`
	ActionReason      string      `json:"action_reason,omitempty" gorm:"type:text"`

	Reviewed   bool       `json:"reviewed" gorm:"default:false;index"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	DetectedAt time.Time  `json:"detected_at" gorm:"index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relationships
	Members []DuplicateMember `json:"members,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// DuplicateMember joins a group to a media file with the member's rank within
// the group (1 = best quality) and its recommended handling.
type DuplicateMember struct {
	ID      uuid.UUID `json:"id"       gorm:"type:uuid;primaryKey"`
	GroupID uuid.UUID `json:"group_id" gorm:"type:uuid;not null;index:idx_member_group_file,unique"`
	FileID  uuid.UUID `json:"file_id"  gorm:"type:uuid;not null;index:idx_member_group_file,unique"`

	Rank         int          `json:"rank" gorm:"not null"`
	Action       MemberAction `json:"action" gorm:"type:varchar(20)"`
	Reason       string       `json:"reason,omitempty" gorm:"type:text"`
	QualityScore int          `json:"quality_score"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	File MediaFile `json:"-" gorm:"foreignKey:FileID"`
}

// GroupDecision records a manual decision made against a duplicate group.
type GroupDecision struct {
	ID           uuid.UUID  `json:"id"       gorm:"type:uuid;primaryKey"`
	GroupID      uuid.UUID  `json:"group_id" gorm:"type:uuid;not null;index"`
	Action       string     `json:"action" gorm:"type:varchar(50);not null"`
	KeeperFileID *uuid.UUID `json:"keeper_file_id,omitempty" gorm:"type:uuid"`
	Notes        string     `json:"notes,omitempty" gorm:"type:text"`
	DecidedAt    time.Time  `json:"decided_at"`
}

func (DuplicateGroup) TableName() string {
	return "duplicate_groups"
}

func (DuplicateMember) TableName() string {
	return "duplicate_members"
}

func (GroupDecision) TableName() string {
	return "group_decisions"
}
