package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mediavault/mediavault/internal/deletion/repository"
	"github.com/mediavault/mediavault/internal/deletion/service"
	"github.com/mediavault/mediavault/internal/storage"
	pkgerrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/events"
	"github.com/mediavault/mediavault/pkg/logger"
	"github.com/mediavault/mediavault/pkg/models"
	"github.com/mediavault/mediavault/test/testutil"
)

type DeletionServiceTestSuite struct {
	suite.Suite

	ctx       context.Context
	tdb       *testutil.TestDB
	repo      *repository.GormRepository
	svc       *service.DeletionService
	mediaRoot string
	staging   string
}

func (suite *DeletionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.tdb = testutil.SetupTestDB(suite.T())
	suite.repo = repository.NewGormRepository(suite.tdb.DB)

	tempDir := suite.T().TempDir()
	suite.mediaRoot = filepath.Join(tempDir, "media")
	suite.staging = filepath.Join(tempDir, "staging")
	require.NoError(suite.T(), os.MkdirAll(suite.mediaRoot, 0o755))

	log := logger.NewNoopLogger()
	suite.svc = service.NewDeletionService(
		suite.repo,
		storage.NewChainResolver("", "", "", log),
		storage.NewOSMover(),
		events.NewInMemoryEventBus(log),
		log,
		service.Options{
			StagingRoots:   []string{suite.staging},
			StagingSubdirs: []string{"movies", "tv", "documentaries"},
			Retention:      30 * 24 * time.Hour,
		},
	)
}

// createFileOnDisk writes a media file record whose path points at a real
// file under the test media root.
func (suite *DeletionServiceTestSuite) createFileOnDisk(name string) *models.MediaFile {
	path := filepath.Join(suite.mediaRoot, name)
	require.NoError(suite.T(), os.WriteFile(path, []byte("payload"), 0o644))

	file := testutil.CreateTestMediaFile("Test Film", 2020)
	file.Filename = name
	file.Path = path
	require.NoError(suite.T(), suite.tdb.DB.Create(file).Error)
	return file
}

func (suite *DeletionServiceTestSuite) operationLogs() []models.OperationLog {
	var logs []models.OperationLog
	require.NoError(suite.T(), suite.tdb.DB.Order("performed_at").Find(&logs).Error)
	return logs
}

func (suite *DeletionServiceTestSuite) TestStage_MovesFileToStaging() {
	// Arrange
	file := suite.createFileOnDisk("film.mkv")

	// Act
	pending, err := suite.svc.Stage(suite.ctx, service.StageRequest{
		FileID: file.ID,
		Reason: "lower quality duplicate",
	})

	// Assert
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), pending.StagedPath)
	assert.Equal(suite.T(), models.DeletionStatusStaged, pending.Status)

	// Physical file moved into <root>/movies/<date>/<name>
	assert.NoFileExists(suite.T(), file.Path)
	assert.FileExists(suite.T(), *pending.StagedPath)
	assert.Contains(suite.T(), *pending.StagedPath, filepath.Join(suite.staging, "movies"))

	// Record flagged deleted
	var stored models.MediaFile
	require.NoError(suite.T(), suite.tdb.DB.First(&stored, "id = ?", file.ID).Error)
	assert.True(suite.T(), stored.IsDeleted)
	assert.NotNil(suite.T(), stored.DeletedAt)

	// Audit trail
	logs := suite.operationLogs()
	require.Len(suite.T(), logs, 1)
	assert.Equal(suite.T(), models.OperationMoveToStaging, logs[0].Operation)
	assert.True(suite.T(), logs[0].Success)
}

func (suite *DeletionServiceTestSuite) TestStage_CollisionGetsSuffix() {
	// Arrange - two distinct files with the same basename
	first := suite.createFileOnDisk("same.mkv")

	sub := filepath.Join(suite.mediaRoot, "sub")
	require.NoError(suite.T(), os.MkdirAll(sub, 0o755))
	secondPath := filepath.Join(sub, "same.mkv")
	require.NoError(suite.T(), os.WriteFile(secondPath, []byte("payload2"), 0o644))
	second := testutil.CreateTestMediaFile("Test Film", 2020)
	second.Filename = "same.mkv"
	second.Path = secondPath
	require.NoError(suite.T(), suite.tdb.DB.Create(second).Error)

	// Act
	p1, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: first.ID, Reason: "dup"})
	require.NoError(suite.T(), err)
	p2, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: second.ID, Reason: "dup"})
	require.NoError(suite.T(), err)

	// Assert
	assert.Equal(suite.T(), "same.mkv", filepath.Base(*p1.StagedPath))
	assert.Equal(suite.T(), "same_1.mkv", filepath.Base(*p2.StagedPath))
	assert.FileExists(suite.T(), *p1.StagedPath)
	assert.FileExists(suite.T(), *p2.StagedPath)
}

func (suite *DeletionServiceTestSuite) TestStage_RejectsSecondStaging() {
	// Arrange
	file := suite.createFileOnDisk("film.mkv")
	_, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})
	require.NoError(suite.T(), err)

	// Act
	_, err = suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})

	// Assert
	assert.True(suite.T(), pkgerrors.IsConflict(err))
}

func (suite *DeletionServiceTestSuite) TestStage_MissingSourceStagesLogically() {
	// Arrange - record exists, file does not
	file := testutil.CreateTestMediaFile("Ghost Film", 2019)
	file.Path = filepath.Join(suite.mediaRoot, "ghost.mkv")
	require.NoError(suite.T(), suite.tdb.DB.Create(file).Error)

	// Act
	pending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})

	// Assert
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), pending.StagedPath)
	assert.Equal(suite.T(), "source missing", pending.Note)

	var stored models.MediaFile
	require.NoError(suite.T(), suite.tdb.DB.First(&stored, "id = ?", file.ID).Error)
	assert.True(suite.T(), stored.IsDeleted)

	logs := suite.operationLogs()
	require.Len(suite.T(), logs, 1)
	assert.False(suite.T(), logs[0].Success)
	assert.Contains(suite.T(), logs[0].ErrorMessage, "missing")
}

func (suite *DeletionServiceTestSuite) TestApprove_RemovesStagedFile() {
	// Arrange
	file := suite.createFileOnDisk("film.mkv")
	pending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})
	require.NoError(suite.T(), err)

	// Act
	approved, err := suite.svc.Approve(suite.ctx, pending.ID)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.DeletionStatusApproved, approved.Status)
	assert.NotNil(suite.T(), approved.ApprovedAt)
	assert.NotNil(suite.T(), approved.PurgedAt)
	assert.NoFileExists(suite.T(), *pending.StagedPath)
}

func (suite *DeletionServiceTestSuite) TestApprove_Twice() {
	// Arrange
	file := suite.createFileOnDisk("film.mkv")
	pending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})
	require.NoError(suite.T(), err)
	_, err = suite.svc.Approve(suite.ctx, pending.ID)
	require.NoError(suite.T(), err)

	// Act
	_, err = suite.svc.Approve(suite.ctx, pending.ID)

	// Assert
	assert.True(suite.T(), pkgerrors.IsConflict(err))
}

func (suite *DeletionServiceTestSuite) TestApprove_WithoutStagedFile() {
	// Arrange - source was missing at staging time
	file := testutil.CreateTestMediaFile("Ghost Film", 2019)
	file.Path = filepath.Join(suite.mediaRoot, "ghost.mkv")
	require.NoError(suite.T(), suite.tdb.DB.Create(file).Error)
	pending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})
	require.NoError(suite.T(), err)

	// Act
	approved, err := suite.svc.Approve(suite.ctx, pending.ID)

	// Assert - absence of a staged file is not an error
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.DeletionStatusApproved, approved.Status)
	assert.Nil(suite.T(), approved.PurgedAt)
}

func (suite *DeletionServiceTestSuite) TestRestore_RoundTrip() {
	// Arrange
	file := suite.createFileOnDisk("film.mkv")
	pending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})
	require.NoError(suite.T(), err)
	require.NoFileExists(suite.T(), file.Path)

	// Act
	err = suite.svc.Restore(suite.ctx, pending.ID)

	// Assert
	require.NoError(suite.T(), err)
	assert.FileExists(suite.T(), file.Path)

	var stored models.MediaFile
	require.NoError(suite.T(), suite.tdb.DB.First(&stored, "id = ?", file.ID).Error)
	assert.False(suite.T(), stored.IsDeleted)
	assert.Nil(suite.T(), stored.DeletedAt)

	var count int64
	require.NoError(suite.T(), suite.tdb.DB.Model(&models.PendingDeletion{}).Count(&count).Error)
	assert.Zero(suite.T(), count)
}

func (suite *DeletionServiceTestSuite) TestRestore_AfterApprovalRejected() {
	// Arrange
	file := suite.createFileOnDisk("film.mkv")
	pending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: file.ID, Reason: "dup"})
	require.NoError(suite.T(), err)
	_, err = suite.svc.Approve(suite.ctx, pending.ID)
	require.NoError(suite.T(), err)

	// Act
	err = suite.svc.Restore(suite.ctx, pending.ID)

	// Assert
	assert.True(suite.T(), pkgerrors.IsConflict(err))
}

func (suite *DeletionServiceTestSuite) TestCleanupExpired_SweepsOldUnapproved() {
	// Arrange - one deletion staged 31 days ago, one 29 days ago
	old := suite.createFileOnDisk("old.mkv")
	oldPending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: old.ID, Reason: "dup"})
	require.NoError(suite.T(), err)

	recent := suite.createFileOnDisk("recent.mkv")
	recentPending, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: recent.ID, Reason: "dup"})
	require.NoError(suite.T(), err)

	backdate := func(pendingID interface{}, age time.Duration) {
		err := suite.tdb.DB.Model(&models.PendingDeletion{}).
			Where("id = ?", pendingID).
			Update("staged_at", time.Now().UTC().Add(-age)).Error
		require.NoError(suite.T(), err)
	}
	backdate(oldPending.ID, 31*24*time.Hour)
	backdate(recentPending.ID, 29*24*time.Hour)

	// Act
	cleaned, err := suite.svc.CleanupExpired(suite.ctx)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, cleaned)
	assert.NoFileExists(suite.T(), *oldPending.StagedPath)
	assert.FileExists(suite.T(), *recentPending.StagedPath)

	var remaining []*models.PendingDeletion
	require.NoError(suite.T(), suite.tdb.DB.Find(&remaining).Error)
	require.Len(suite.T(), remaining, 1)
	assert.Equal(suite.T(), recentPending.ID, remaining[0].ID)
}

func (suite *DeletionServiceTestSuite) TestListPendingDeletions_LanguageConcernFilter() {
	// Arrange
	plain := suite.createFileOnDisk("plain.mkv")
	_, err := suite.svc.Stage(suite.ctx, service.StageRequest{FileID: plain.ID, Reason: "dup"})
	require.NoError(suite.T(), err)

	flagged := suite.createFileOnDisk("flagged.mkv")
	_, err = suite.svc.Stage(suite.ctx, service.StageRequest{
		FileID:                flagged.ID,
		Reason:                "dup",
		LanguageConcern:       true,
		LanguageConcernReason: "file contains English audio",
	})
	require.NoError(suite.T(), err)

	// Act
	concern := true
	filtered, err := suite.svc.ListPendingDeletions(suite.ctx, repository.PendingFilter{LanguageConcern: &concern})
	all, allErr := suite.svc.ListPendingDeletions(suite.ctx, repository.PendingFilter{})

	// Assert
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), allErr)
	assert.Len(suite.T(), all, 2)
	require.Len(suite.T(), filtered, 1)
	assert.Equal(suite.T(), flagged.ID, filtered[0].FileID)
}

func TestDeletionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DeletionServiceTestSuite))
}
