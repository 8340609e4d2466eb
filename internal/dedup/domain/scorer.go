package domain

import (
	"sort"
	"strings"

	"github.com/mediavault/mediavault/pkg/models"
)

// MaxQualityScore is the ceiling for the additive quality metric.
const MaxQualityScore = 200

// hdrTypes that earn the HDR bonus.
var hdrTypes = map[string]bool{
	"HDR10":        true,
	"HDR10+":       true,
	"Dolby Vision": true,
	"HLG":          true,
}

// QualityScore computes the deterministic 0-200 quality metric for a file.
//
// Composition: resolution (0-100), codec (0-22), bitrate normalized against a
// resolution-specific ideal (0-30), audio channels (10 or 15), extra audio
// tracks (+3 each, max 10), subtitle tracks (+2 each, max 10), HDR (+15).
func QualityScore(file *models.MediaFile) int {
	score := 0

	if file.Height > 0 {
		switch {
		case file.Height >= 2160:
			score += 100
		case file.Height >= 1080:
			score += 75
		case file.Height >= 720:
			score += 50
		case file.Height >= 480:
			score += 25
		default:
			score += 10
		}
	}

	score += codecScore(file.VideoCodec)
	score += bitrateScore(file.Bitrate, file.Height)

	if file.AudioChannels >= 5 {
		score += 15
	} else {
		score += 10
	}

	if file.AudioTrackCount > 1 {
		extra := (file.AudioTrackCount - 1) * 3
		if extra > 10 {
			extra = 10
		}
		score += extra
	}

	if file.SubtitleTrackCount > 0 {
		subs := file.SubtitleTrackCount * 2
		if subs > 10 {
			subs = 10
		}
		score += subs
	}

	if hdrTypes[file.HDRType] {
		score += 15
	}

	if score > MaxQualityScore {
		score = MaxQualityScore
	}
	return score
}

func codecScore(codec string) int {
	c := strings.ToLower(codec)
	switch {
	case strings.Contains(c, "hevc"), strings.Contains(c, "h265"), strings.Contains(c, "x265"):
		return 20
	case strings.Contains(c, "avc"), strings.Contains(c, "h264"), strings.Contains(c, "x264"):
		return 15
	case strings.Contains(c, "vp9"):
		return 18
	case strings.Contains(c, "av1"):
		return 22
	default:
		return 0
	}
}

// bitrateScore normalizes bitrate (kbps) against the ideal for the file's
// resolution tier and scales it to 0-30. Bitrates above the ideal earn no
// bonus.
func bitrateScore(bitrate, height int) int {
	if bitrate <= 0 || height <= 0 {
		return 0
	}

	var ideal int
	switch {
	case height >= 2160:
		ideal = 50000
	case height >= 1080:
		ideal = 10000
	case height >= 720:
		ideal = 5000
	case height >= 480:
		ideal = 2500
	default:
		ideal = 1000
	}

	ratio := float64(bitrate) / float64(ideal)
	if ratio > 1.0 {
		ratio = 1.0
	}
	return int(ratio * 30)
}

// RankFiles sorts files by quality score descending, stable so ties keep
// their input order. Stored nonzero scores are reused; missing scores are
// computed. The input slice is not modified.
func RankFiles(files []*models.MediaFile) []*models.MediaFile {
	ranked := make([]*models.MediaFile, len(files))
	copy(ranked, files)

	for _, f := range ranked {
		if f.QualityScore == 0 {
			f.QualityScore = QualityScore(f)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].QualityScore > ranked[j].QualityScore
	})
	return ranked
}

// LanguagePolicy controls when a candidate-for-removal file raises a
// language concern.
type LanguagePolicy struct {
	RequireEnglishAudio  bool
	ForeignFilmHeuristic bool
}

// CheckLanguageConcern reports whether removing the file risks losing English
// audio or foreign-film subtitle coverage, with a human-readable reason.
func (p LanguagePolicy) CheckLanguageConcern(file *models.MediaFile) (bool, string) {
	audio := lowerAll(file.AudioLanguages)
	subs := lowerAll(file.SubtitleLanguages)
	dominant := strings.ToLower(file.DominantAudioLanguage)

	if p.RequireEnglishAudio && (audio.Contains("eng") || dominant == "eng") {
		return true, "file contains English audio; require manual review before deletion"
	}

	if p.ForeignFilmHeuristic && !audio.Contains("eng") && subs.Contains("eng") {
		return true, "foreign-film heuristic triggered (non-English audio with English subtitles)"
	}

	return false, ""
}

func lowerAll(langs models.StringList) models.StringList {
	out := make(models.StringList, 0, len(langs))
	for _, l := range langs {
		out = append(out, strings.ToLower(l))
	}
	return out
}
