package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mediavault/mediavault/internal/dedup/domain"
	"github.com/mediavault/mediavault/pkg/models"
)

type ScorerTestSuite struct {
	suite.Suite
}

func (suite *ScorerTestSuite) TestQualityScore_Components() {
	tests := []struct {
		name     string
		file     *models.MediaFile
		expected int
	}{
		{
			name: "4k hevc at ideal bitrate with surround and hdr",
			file: &models.MediaFile{
				Height:             2160,
				VideoCodec:         "hevc",
				Bitrate:            50000,
				AudioChannels:      6,
				AudioTrackCount:    1,
				SubtitleTrackCount: 0,
				HDRType:            "HDR10",
			},
			// 100 + 20 + 30 + 15 + 15
			expected: 180,
		},
		{
			name: "1080p x264 stereo",
			file: &models.MediaFile{
				Height:          1080,
				VideoCodec:      "x264",
				Bitrate:         5000,
				AudioChannels:   2,
				AudioTrackCount: 1,
			},
			// 75 + 15 + 15 + 10
			expected: 115,
		},
		{
			name: "720p vp9",
			file: &models.MediaFile{
				Height:          720,
				VideoCodec:      "vp9",
				Bitrate:         5000,
				AudioChannels:   2,
				AudioTrackCount: 1,
			},
			// 50 + 18 + 30 + 10
			expected: 108,
		},
		{
			name: "480p av1 dolby vision",
			file: &models.MediaFile{
				Height:          480,
				VideoCodec:      "av1",
				Bitrate:         2500,
				AudioChannels:   2,
				AudioTrackCount: 1,
				HDRType:         "Dolby Vision",
			},
			// 25 + 22 + 30 + 10 + 15
			expected: 102,
		},
		{
			name: "unknown height contributes no resolution or bitrate score",
			file: &models.MediaFile{
				VideoCodec:      "h264",
				Bitrate:         8000,
				AudioChannels:   2,
				AudioTrackCount: 1,
			},
			// 15 + 10
			expected: 25,
		},
		{
			name: "extra audio tracks capped at ten",
			file: &models.MediaFile{
				Height:          1080,
				VideoCodec:      "x265",
				Bitrate:         10000,
				AudioChannels:   6,
				AudioTrackCount: 8,
			},
			// 75 + 20 + 30 + 15 + 10 (21 capped)
			expected: 150,
		},
		{
			name: "subtitle tracks capped at ten",
			file: &models.MediaFile{
				Height:             1080,
				VideoCodec:         "x264",
				Bitrate:            10000,
				AudioChannels:      2,
				AudioTrackCount:    1,
				SubtitleTrackCount: 9,
			},
			// 75 + 15 + 30 + 10 + 10 (18 capped)
			expected: 140,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			assert.Equal(suite.T(), tt.expected, domain.QualityScore(tt.file))
		})
	}
}

func (suite *ScorerTestSuite) TestQualityScore_Deterministic() {
	// Arrange
	file := &models.MediaFile{
		Height:             2160,
		VideoCodec:         "hevc",
		Bitrate:            42000,
		AudioChannels:      8,
		AudioTrackCount:    3,
		SubtitleTrackCount: 4,
		HDRType:            "HDR10+",
	}

	// Act & Assert
	first := domain.QualityScore(file)
	for i := 0; i < 10; i++ {
		assert.Equal(suite.T(), first, domain.QualityScore(file))
	}
}

func (suite *ScorerTestSuite) TestQualityScore_Bounds() {
	// Arrange - extreme inputs must not escape [0, 200]
	maxed := &models.MediaFile{
		Height:             4320,
		VideoCodec:         "av1",
		Bitrate:            1 << 30,
		AudioChannels:      64,
		AudioTrackCount:    100,
		SubtitleTrackCount: 100,
		HDRType:            "Dolby Vision",
	}
	empty := &models.MediaFile{}

	// Act & Assert
	assert.LessOrEqual(suite.T(), domain.QualityScore(maxed), 200)
	assert.GreaterOrEqual(suite.T(), domain.QualityScore(empty), 0)
}

func (suite *ScorerTestSuite) TestQualityScore_BitrateNoBonusAboveIdeal() {
	// Arrange
	atIdeal := &models.MediaFile{Height: 1080, Bitrate: 10000, AudioChannels: 2}
	aboveIdeal := &models.MediaFile{Height: 1080, Bitrate: 99000, AudioChannels: 2}

	// Act & Assert
	assert.Equal(suite.T(), domain.QualityScore(atIdeal), domain.QualityScore(aboveIdeal))
}

func (suite *ScorerTestSuite) TestRankFiles_DescendingStableTies() {
	// Arrange
	low := &models.MediaFile{Filename: "low", QualityScore: 90}
	tieFirst := &models.MediaFile{Filename: "tie-first", QualityScore: 120}
	tieSecond := &models.MediaFile{Filename: "tie-second", QualityScore: 120}
	high := &models.MediaFile{Filename: "high", QualityScore: 150}

	// Act
	ranked := domain.RankFiles([]*models.MediaFile{low, tieFirst, tieSecond, high})

	// Assert
	assert.Equal(suite.T(), "high", ranked[0].Filename)
	assert.Equal(suite.T(), "tie-first", ranked[1].Filename)
	assert.Equal(suite.T(), "tie-second", ranked[2].Filename)
	assert.Equal(suite.T(), "low", ranked[3].Filename)
}

func (suite *ScorerTestSuite) TestRankFiles_ComputesMissingScores() {
	// Arrange
	unscored := &models.MediaFile{
		Height:        1080,
		VideoCodec:    "x264",
		Bitrate:       10000,
		AudioChannels: 6,
	}
	stored := &models.MediaFile{QualityScore: 42}

	// Act
	ranked := domain.RankFiles([]*models.MediaFile{unscored, stored})

	// Assert - the unscored file gets a computed score, the stored one is reused
	assert.Equal(suite.T(), 135, ranked[0].QualityScore)
	assert.Equal(suite.T(), 42, ranked[1].QualityScore)
}

func (suite *ScorerTestSuite) TestCheckLanguageConcern() {
	policy := domain.LanguagePolicy{RequireEnglishAudio: true, ForeignFilmHeuristic: true}

	tests := []struct {
		name    string
		file    *models.MediaFile
		concern bool
	}{
		{
			name:    "english audio track",
			file:    &models.MediaFile{AudioLanguages: models.StringList{"eng", "fra"}},
			concern: true,
		},
		{
			name:    "dominant english audio",
			file:    &models.MediaFile{DominantAudioLanguage: "eng"},
			concern: true,
		},
		{
			name: "foreign audio with english subtitles",
			file: &models.MediaFile{
				AudioLanguages:    models.StringList{"jpn"},
				SubtitleLanguages: models.StringList{"eng"},
			},
			concern: true,
		},
		{
			name: "foreign audio without english subtitles",
			file: &models.MediaFile{
				AudioLanguages:    models.StringList{"jpn"},
				SubtitleLanguages: models.StringList{"jpn"},
			},
			concern: false,
		},
		{
			name:    "case folded tags",
			file:    &models.MediaFile{AudioLanguages: models.StringList{"ENG"}},
			concern: true,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			concern, reason := policy.CheckLanguageConcern(tt.file)
			assert.Equal(suite.T(), tt.concern, concern)
			if tt.concern {
				assert.NotEmpty(suite.T(), reason)
			}
		})
	}
}

func (suite *ScorerTestSuite) TestCheckLanguageConcern_PolicyDisabled() {
	// Arrange
	policy := domain.LanguagePolicy{}
	file := &models.MediaFile{
		AudioLanguages:    models.StringList{"eng"},
		SubtitleLanguages: models.StringList{"eng"},
	}

	// Act
	concern, _ := policy.CheckLanguageConcern(file)

	// Assert
	assert.False(suite.T(), concern)
}

func TestScorerTestSuite(t *testing.T) {
	suite.Run(t, new(ScorerTestSuite))
}
