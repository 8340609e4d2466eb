package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mediavault/mediavault/internal/dedup/domain"
	"github.com/mediavault/mediavault/pkg/models"
)

type SimilarityTestSuite struct {
	suite.Suite
}

func (suite *SimilarityTestSuite) TestSimilarityRatio() {
	// Act & Assert
	assert.InDelta(suite.T(), 100.0, domain.SimilarityRatio("movie.mkv", "movie.mkv"), 0.001)
	assert.InDelta(suite.T(), 100.0, domain.SimilarityRatio("Movie.MKV", "movie.mkv"), 0.001)
	assert.InDelta(suite.T(), 0.0, domain.SimilarityRatio("aaaa", "zzzz"), 0.001)

	// One edit across four characters is exactly 75.
	assert.InDelta(suite.T(), 75.0, domain.SimilarityRatio("abcd", "abce"), 0.001)
}

func (suite *SimilarityTestSuite) TestKeyFor_EpisodicVsTitle() {
	// Arrange
	episode := &models.MediaFile{
		ParsedTitle:   "Red Dwarf",
		ParsedYear:    1988,
		ParsedSeason:  3,
		ParsedEpisode: 5,
		MediaType:     models.MediaTypeTV,
	}
	movie := &models.MediaFile{
		ParsedTitle: "Red Dwarf",
		ParsedYear:  1988,
		MediaType:   models.MediaTypeMovie,
	}

	// Act
	episodeKey := domain.KeyFor(episode)
	movieKey := domain.KeyFor(movie)

	// Assert - the two key shapes can never collide
	assert.IsType(suite.T(), domain.EpisodicKey{}, episodeKey)
	assert.IsType(suite.T(), domain.TitleKey{}, movieKey)
	assert.Equal(suite.T(), "red dwarf|1988|s03e05", episodeKey.String())
	assert.Equal(suite.T(), "red dwarf|1988", movieKey.String())
}

func (suite *SimilarityTestSuite) TestKeyFor_CaseFolded() {
	// Arrange
	upper := &models.MediaFile{ParsedTitle: "THE MATRIX", ParsedYear: 1999, MediaType: models.MediaTypeMovie}
	lower := &models.MediaFile{ParsedTitle: "the matrix", ParsedYear: 1999, MediaType: models.MediaTypeMovie}

	// Act & Assert
	assert.Equal(suite.T(), domain.KeyFor(upper).String(), domain.KeyFor(lower).String())
}

func (suite *SimilarityTestSuite) TestCluster_GreedySingleLink() {
	// Arrange - a and b are near-identical, c is unrelated
	a := &models.MediaFile{Filename: "The.Matrix.1999.1080p.x264.mkv"}
	b := &models.MediaFile{Filename: "The.Matrix.1999.1080p.x265.mkv"}
	c := &models.MediaFile{Filename: "completely-unrelated-name.avi"}

	// Act
	clusters := domain.Cluster([]*models.MediaFile{a, b, c}, 85)

	// Assert - singletons are dropped
	assert.Len(suite.T(), clusters, 1)
	assert.Equal(suite.T(), []*models.MediaFile{a, b}, clusters[0])
}

func (suite *SimilarityTestSuite) TestCluster_ThresholdBoundary() {
	// Arrange - one edit across four characters: ratio exactly 75
	a := &models.MediaFile{Filename: "abcd"}
	b := &models.MediaFile{Filename: "abce"}

	// Act
	atThreshold := domain.Cluster([]*models.MediaFile{a, b}, 75)
	aboveThreshold := domain.Cluster([]*models.MediaFile{a, b}, 76)

	// Assert - meeting the threshold groups, one point below does not
	assert.Len(suite.T(), atThreshold, 1)
	assert.Empty(suite.T(), aboveThreshold)
}

func (suite *SimilarityTestSuite) TestCluster_EachFileClaimedOnce() {
	// Arrange - all three are mutually similar
	a := &models.MediaFile{Filename: "show.s01e01.1080p.mkv"}
	b := &models.MediaFile{Filename: "show.s01e01.1080p.mk4"}
	c := &models.MediaFile{Filename: "show.s01e01.1080p.avi"}

	// Act
	clusters := domain.Cluster([]*models.MediaFile{a, b, c}, 85)

	// Assert
	assert.Len(suite.T(), clusters, 1)
	assert.Len(suite.T(), clusters[0], 3)
}

func (suite *SimilarityTestSuite) TestClusterConfidence_MeanOfPairs() {
	// Arrange
	a := &models.MediaFile{Filename: "abcd"}
	b := &models.MediaFile{Filename: "abcd"}
	c := &models.MediaFile{Filename: "abce"}

	// Act - pairs: (a,b)=100, (a,c)=75, (b,c)=75
	confidence := domain.ClusterConfidence([]*models.MediaFile{a, b, c})

	// Assert
	assert.InDelta(suite.T(), (100.0+75.0+75.0)/3.0, confidence, 0.001)
}

func TestSimilarityTestSuite(t *testing.T) {
	suite.Run(t, new(SimilarityTestSuite))
}
