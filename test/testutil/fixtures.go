package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediavault/mediavault/pkg/models"
)

// CreateTestMediaFile creates a 1080p movie file with sensible defaults.
func CreateTestMediaFile(title string, year int) *models.MediaFile {
	now := time.Now().UTC()
	id := uuid.New()
	return &models.MediaFile{
		ID:                    id,
		Filename:              fmt.Sprintf("%s.%d.1080p.x264.mkv", title, year),
		Path:                  fmt.Sprintf("/volume1/movies/%s.%d.1080p.x264-%s.mkv", title, year, id.String()[:8]),
		Size:                  8 << 30,
		Width:                 1920,
		Height:                1080,
		Resolution:            "1080p",
		VideoCodec:            "x264",
		AudioCodec:            "ac3",
		Bitrate:               8000,
		Framerate:             23.976,
		AudioChannels:         6,
		AudioTrackCount:       1,
		SubtitleTrackCount:    2,
		AudioLanguages:        models.StringList{"eng"},
		SubtitleLanguages:     models.StringList{"eng", "spa"},
		DominantAudioLanguage: "eng",
		ParsedTitle:           title,
		ParsedYear:            year,
		MediaType:             models.MediaTypeMovie,
		DiscoveredAt:          now,
		LastSeenAt:            now,
	}
}

// CreateTestEpisodeFile creates a TV episode file.
func CreateTestEpisodeFile(title string, year, season, episode int) *models.MediaFile {
	file := CreateTestMediaFile(title, year)
	file.Filename = fmt.Sprintf("%s.S%02dE%02d.1080p.x264.mkv", title, season, episode)
	file.Path = fmt.Sprintf("/volume1/tv/%s/Season %d/%s", title, season, file.Filename)
	file.ParsedSeason = season
	file.ParsedEpisode = episode
	file.MediaType = models.MediaTypeTV
	return file
}

// CreateTestGroup creates a duplicate group without members.
func CreateTestGroup(hash, title string, year int) *models.DuplicateGroup {
	return &models.DuplicateGroup{
		ID:            uuid.New(),
		GroupHash:     hash,
		DuplicateType: models.DuplicateTypeFuzzy,
		Confidence:    92.5,
		Title:         title,
		Year:          year,
		MediaType:     models.MediaTypeMovie,
		DetectedAt:    time.Now().UTC(),
	}
}

// CreateTestPendingDeletion creates a staged deletion record for a file.
func CreateTestPendingDeletion(file *models.MediaFile) *models.PendingDeletion {
	staged := fmt.Sprintf("/volume1/@pending_deletion/movies/2026-01-15/%s", file.Filename)
	return &models.PendingDeletion{
		ID:           uuid.New(),
		FileID:       file.ID,
		OriginalPath: file.Path,
		StagedPath:   &staged,
		Size:         file.Size,
		Reason:       "lower quality duplicate",
		Status:       models.DeletionStatusStaged,
		StagedAt:     time.Now().UTC(),
	}
}
