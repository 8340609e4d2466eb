package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mediavault/mediavault/internal/library/domain"
	"github.com/mediavault/mediavault/internal/library/repository"
	"github.com/mediavault/mediavault/internal/library/service"
	"github.com/mediavault/mediavault/pkg/events"
	"github.com/mediavault/mediavault/pkg/logger"
	"github.com/mediavault/mediavault/pkg/models"
	"github.com/mediavault/mediavault/pkg/utils"
	"github.com/mediavault/mediavault/test/testutil"
)

type InventoryServiceTestSuite struct {
	suite.Suite

	ctx context.Context
	tdb *testutil.TestDB
	svc *service.InventoryService
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.tdb = testutil.SetupTestDB(suite.T())

	log := logger.NewNoopLogger()
	suite.svc = service.NewInventoryService(
		repository.NewGormRepository(suite.tdb.DB),
		events.NewInMemoryEventBus(log),
		utils.NewInMemoryCache(),
		log,
	)
}

func entry(path string, size int64) domain.FileEntry {
	return domain.FileEntry{
		Path:            path,
		Filename:        "film.mkv",
		Size:            size,
		Width:           1920,
		Height:          1080,
		Resolution:      "1080p",
		VideoCodec:      "x264",
		Bitrate:         8000,
		AudioChannels:   6,
		AudioTrackCount: 1,
		ParsedTitle:     "Film",
		ParsedYear:      2020,
		MediaType:       models.MediaTypeMovie,
	}
}

func (suite *InventoryServiceTestSuite) TestIngestSnapshot_CreatesAndScores() {
	// Act
	history, err := suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{
		entry("/volume1/movies/film.mkv", 1<<30),
	})

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "completed", history.Status)
	assert.Equal(suite.T(), 1, history.FilesSeen)
	assert.Equal(suite.T(), 1, history.FilesNew)

	stored, err := suite.svc.GetMediaFileByPath(suite.ctx, "/volume1/movies/film.mkv")
	require.NoError(suite.T(), err)
	// 75 resolution + 15 codec + 24 bitrate + 15 channels
	assert.Equal(suite.T(), 129, stored.QualityScore)
	assert.False(suite.T(), stored.IsMissing)
}

func (suite *InventoryServiceTestSuite) TestIngestSnapshot_UpdatesChangedFiles() {
	// Arrange
	_, err := suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{
		entry("/volume1/movies/film.mkv", 1<<30),
	})
	require.NoError(suite.T(), err)

	// Act - same path, bigger file with better bitrate
	changed := entry("/volume1/movies/film.mkv", 2<<30)
	changed.Bitrate = 10000
	history, err := suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{changed})

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, history.FilesUpdated)
	assert.Zero(suite.T(), history.FilesNew)

	stored, err := suite.svc.GetMediaFileByPath(suite.ctx, "/volume1/movies/film.mkv")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2<<30), stored.Size)
	assert.Equal(suite.T(), 10000, stored.Bitrate)
	// Score recomputed with the full-bitrate bonus
	assert.Equal(suite.T(), 135, stored.QualityScore)
}

func (suite *InventoryServiceTestSuite) TestIngestSnapshot_FlagsUnseenMissing() {
	// Arrange
	_, err := suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{
		entry("/volume1/movies/film.mkv", 1<<30),
		entry("/volume1/movies/other.mkv", 1<<30),
	})
	require.NoError(suite.T(), err)

	// Act - second snapshot no longer contains other.mkv
	_, err = suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{
		entry("/volume1/movies/film.mkv", 1<<30),
	})
	require.NoError(suite.T(), err)

	// Assert
	missing := true
	flagged, err := suite.svc.ListMediaFiles(suite.ctx, repository.MediaFilter{IsMissing: &missing})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), flagged, 1)
	assert.Equal(suite.T(), "/volume1/movies/other.mkv", flagged[0].Path)
}

func (suite *InventoryServiceTestSuite) TestIngestSnapshot_MissingFileReappears() {
	// Arrange
	_, err := suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{
		entry("/volume1/movies/film.mkv", 1<<30),
	})
	require.NoError(suite.T(), err)
	_, err = suite.svc.IngestSnapshot(suite.ctx, nil)
	require.NoError(suite.T(), err)

	// Act - the file shows up again
	_, err = suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{
		entry("/volume1/movies/film.mkv", 1<<30),
	})
	require.NoError(suite.T(), err)

	// Assert
	stored, err := suite.svc.GetMediaFileByPath(suite.ctx, "/volume1/movies/film.mkv")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), stored.IsMissing)
}

func (suite *InventoryServiceTestSuite) TestListMediaFiles_Filters() {
	// Arrange
	movie := entry("/volume1/movies/film.mkv", 1<<30)
	tv := entry("/volume1/tv/show.mkv", 1<<30)
	tv.MediaType = models.MediaTypeTV
	tv.ParsedSeason = 1
	tv.ParsedEpisode = 2
	_, err := suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{movie, tv})
	require.NoError(suite.T(), err)

	// Act
	tvType := models.MediaTypeTV
	tvOnly, err := suite.svc.ListMediaFiles(suite.ctx, repository.MediaFilter{MediaType: &tvType})
	require.NoError(suite.T(), err)

	minScore := 1000
	highScore, err := suite.svc.ListMediaFiles(suite.ctx, repository.MediaFilter{MinQualityScore: &minScore})
	require.NoError(suite.T(), err)

	count, err := suite.svc.CountMediaFiles(suite.ctx, repository.MediaFilter{})
	require.NoError(suite.T(), err)

	// Assert
	require.Len(suite.T(), tvOnly, 1)
	assert.Equal(suite.T(), "/volume1/tv/show.mkv", tvOnly[0].Path)
	assert.Empty(suite.T(), highScore)
	assert.Equal(suite.T(), int64(2), count)
}

func (suite *InventoryServiceTestSuite) TestGetMediaFile_CachesResult() {
	// Arrange
	_, err := suite.svc.IngestSnapshot(suite.ctx, []domain.FileEntry{
		entry("/volume1/movies/film.mkv", 1<<30),
	})
	require.NoError(suite.T(), err)
	stored, err := suite.svc.GetMediaFileByPath(suite.ctx, "/volume1/movies/film.mkv")
	require.NoError(suite.T(), err)

	// Act - prime the cache, then mutate the row behind the service's back
	first, err := suite.svc.GetMediaFile(suite.ctx, stored.ID)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.tdb.DB.Model(&models.MediaFile{}).
		Where("id = ?", stored.ID).Update("filename", "renamed.mkv").Error)
	second, err := suite.svc.GetMediaFile(suite.ctx, stored.ID)
	require.NoError(suite.T(), err)

	// Assert - cached read does not observe the direct update
	assert.Equal(suite.T(), first.Filename, second.Filename)
}

func (suite *InventoryServiceTestSuite) TestListIngestHistory() {
	// Arrange
	_, err := suite.svc.IngestSnapshot(suite.ctx, nil)
	require.NoError(suite.T(), err)
	_, err = suite.svc.IngestSnapshot(suite.ctx, nil)
	require.NoError(suite.T(), err)

	// Act
	history, err := suite.svc.ListIngestHistory(suite.ctx, 10)

	// Assert
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), history, 2)
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}
