package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaFile represents one inventoried file with its complete technical
// metadata. Files are never hard-deleted by the pipeline; physical removal is
// tracked through PendingDeletion and the deleted flags here.
type MediaFile struct {
	ID       uuid.UUID `json:"id"        gorm:"type:uuid;primaryKey"`
	Filename string    `json:"filename"  gorm:"not null"`
	Path     string    `json:"path"      gorm:"uniqueIndex;not null"`
	Size     int64     `json:"size"      gorm:"not null"`

	// ContentHash is absent until an external hasher supplies it.
	ContentHash *string `json:"content_hash,omitempty" gorm:"index"`

	// Technical metadata supplied by the inventory feed.
	Width              int     `json:"width,omitempty"`
	Height             int     `json:"height,omitempty"`
	Resolution         string  `json:"resolution,omitempty"  gorm:"type:varchar(20)"`
	VideoCodec         string  `json:"video_codec,omitempty" gorm:"type:varchar(50)"`
	AudioCodec         string  `json:"audio_codec,omitempty" gorm:"type:varchar(50)"`
	Bitrate            int     `json:"bitrate,omitempty"` // kbps
	Framerate          float64 `json:"framerate,omitempty"`
	HDRType            string  `json:"hdr_type,omitempty" gorm:"type:varchar(20)"`
	AudioChannels      int     `json:"audio_channels,omitempty"`
	AudioTrackCount    int     `json:"audio_track_count"    gorm:"default:1"`
	SubtitleTrackCount int     `json:"subtitle_track_count" gorm:"default:0"`

	// Language tracking, lowercase ISO 639-2 tags.
	AudioLanguages        StringList `json:"audio_languages,omitempty"    gorm:"type:text"`
	SubtitleLanguages     StringList `json:"subtitle_languages,omitempty" gorm:"type:text"`
	DominantAudioLanguage string     `json:"dominant_audio_language,omitempty" gorm:"type:varchar(10)"`

	// Parsed release metadata.
	ParsedTitle   string    `json:"parsed_title,omitempty" gorm:"index"`
	ParsedYear    int       `json:"parsed_year,omitempty"`
	ParsedSeason  int       `json:"parsed_season,omitempty"`
	ParsedEpisode int       `json:"parsed_episode,omitempty"`
	MediaType     MediaType `json:"media_type" gorm:"type:varchar(20);not null;default:'other';index"`

	QualityScore int `json:"quality_score" gorm:"index"`

	// Lifecycle flags, mutated by the grouper, the ingester, and the
	// deletion lifecycle.
	IsDuplicate bool       `json:"is_duplicate" gorm:"default:false;index"`
	IsDeleted   bool       `json:"is_deleted"   gorm:"default:false;index"`
	IsMissing   bool       `json:"is_missing"   gorm:"default:false;index"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	DiscoveredAt time.Time `json:"discovered_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Memberships []DuplicateMember `json:"-" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

// IngestHistory records one inventory snapshot ingest.
type IngestHistory struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	StartedAt    time.Time  `json:"started_at" gorm:"not null;index"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FilesSeen    int        `json:"files_seen"    gorm:"default:0"`
	FilesNew     int        `json:"files_new"     gorm:"default:0"`
	FilesUpdated int        `json:"files_updated" gorm:"default:0"`
	Status       string     `json:"status" gorm:"type:varchar(20);default:'running'"`
	ErrorMessage string     `json:"error_message,omitempty" gorm:"type:text"`
}

func (MediaFile) TableName() string {
	return "media_files"
}

func (IngestHistory) TableName() string {
	return "ingest_history"
}
