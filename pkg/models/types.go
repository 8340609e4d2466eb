package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MediaType represents the type of media content.
type MediaType string

const (
	MediaTypeMovie       MediaType = "movie"
	MediaTypeTV          MediaType = "tv"
	MediaTypeDocumentary MediaType = "documentary"
	MediaTypeOther       MediaType = "other"
)

// GroupAction is the recommended handling for a duplicate group.
type GroupAction string

const (
	GroupActionAutoDelete   GroupAction = "auto_delete"
	GroupActionManualReview GroupAction = "manual_review"
	GroupActionDismissed    GroupAction = "dismissed"
)

// MemberAction is the recommended handling for a single group member.
type MemberAction string

const (
	MemberActionKeep   MemberAction = "keep"
	MemberActionDelete MemberAction = "delete"
	MemberActionReview MemberAction = "review"
)

// DuplicateType distinguishes the detection strategy that formed a group.
type DuplicateType string

const (
	DuplicateTypeExact DuplicateType = "exact"
	DuplicateTypeFuzzy DuplicateType = "fuzzy"
)

// DeletionStatus is the explicit lifecycle state of a pending deletion.
type DeletionStatus string

const (
	DeletionStatusStaged   DeletionStatus = "staged"
	DeletionStatusApproved DeletionStatus = "approved"
)

// OperationType identifies a physical storage operation in the audit log.
type OperationType string

const (
	OperationMoveToStaging   OperationType = "move_to_staging"
	OperationPermanentDelete OperationType = "permanent_delete"
	OperationRestore         OperationType = "restore"
	OperationExpireCleanup   OperationType = "expire_cleanup"
)

// StringList stores a list of language tags (or similar short strings) as a
// JSON-encoded text column so the same model works on Postgres and SQLite.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// Contains reports whether the list holds the given tag. Matching is
// case-sensitive; callers comparing language tags lowercase the list first.
func (l StringList) Contains(tag string) bool {
	for _, t := range l {
		if t == tag {
			return true
		}
	}
	return false
}
