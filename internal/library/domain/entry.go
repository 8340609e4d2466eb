package domain

import (
	"time"

	"github.com/mediavault/mediavault/pkg/models"
)

// FileEntry is one record from the external inventory feed, with technical
// metadata already extracted by the prober.
type FileEntry struct {
	Path        string
	Filename    string
	Size        int64
	ContentHash *string

	Width              int
	Height             int
	Resolution         string
	VideoCodec         string
	AudioCodec         string
	Bitrate            int // kbps
	Framerate          float64
	HDRType            string
	AudioChannels      int
	AudioTrackCount    int
	SubtitleTrackCount int

	AudioLanguages        []string
	SubtitleLanguages     []string
	DominantAudioLanguage string

	ParsedTitle   string
	ParsedYear    int
	ParsedSeason  int
	ParsedEpisode int
	MediaType     models.MediaType
}

// Apply copies the entry's feed-owned fields onto a media file record.
// Lifecycle flags and the stored quality score are left alone.
func (e FileEntry) Apply(file *models.MediaFile, now time.Time) {
	file.Filename = e.Filename
	file.Path = e.Path
	file.Size = e.Size
	file.ContentHash = e.ContentHash
	file.Width = e.Width
	file.Height = e.Height
	file.Resolution = e.Resolution
	file.VideoCodec = e.VideoCodec
	file.AudioCodec = e.AudioCodec
	file.Bitrate = e.Bitrate
	file.Framerate = e.Framerate
	file.HDRType = e.HDRType
	file.AudioChannels = e.AudioChannels
	file.AudioTrackCount = e.AudioTrackCount
	file.SubtitleTrackCount = e.SubtitleTrackCount
	file.AudioLanguages = models.StringList(e.AudioLanguages)
	file.SubtitleLanguages = models.StringList(e.SubtitleLanguages)
	file.DominantAudioLanguage = e.DominantAudioLanguage
	file.ParsedTitle = e.ParsedTitle
	file.ParsedYear = e.ParsedYear
	file.ParsedSeason = e.ParsedSeason
	file.ParsedEpisode = e.ParsedEpisode
	if e.MediaType != "" {
		file.MediaType = e.MediaType
	}
	file.IsMissing = false
	file.LastSeenAt = now
}

// Changed reports whether the entry differs from the stored record in any
// feed-owned field that would require an update.
func (e FileEntry) Changed(file *models.MediaFile) bool {
	if file.Size != e.Size ||
		file.Width != e.Width ||
		file.Height != e.Height ||
		file.VideoCodec != e.VideoCodec ||
		file.Bitrate != e.Bitrate ||
		file.AudioTrackCount != e.AudioTrackCount ||
		file.SubtitleTrackCount != e.SubtitleTrackCount ||
		file.IsMissing {
		return true
	}
	if (file.ContentHash == nil) != (e.ContentHash == nil) {
		return true
	}
	if file.ContentHash != nil && e.ContentHash != nil && *file.ContentHash != *e.ContentHash {
		return true
	}
	return false
}
