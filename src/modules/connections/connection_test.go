package connection

import (
	"fmt"
	"testing"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/Sagarsingh9528/Ping/src/modules/tasks"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Follow{}, &models.Connection{},
		&models.ConnectionRequest{}, &models.Notification{}, &models.DeferredTask{},
	))
	database.DB = db
	return db
}

func createUser(t *testing.T, db *gorm.DB, id string) models.User {
	t.Helper()
	user := models.User{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "User " + id,
		Username: "user_" + id,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestTargetInputValidation(t *testing.T) {
	require.Error(t, helpers.Validate(targetInput{}))
	require.NoError(t, helpers.Validate(targetInput{ID: "bob"}))
}

func TestFollowAndUnfollow(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	created, err := FollowUser(db, "alice", "bob")
	require.NoError(t, err)
	require.True(t, created)

	// following again is a no-op success
	created, err = FollowUser(db, "alice", "bob")
	require.NoError(t, err)
	require.False(t, created)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	require.EqualValues(t, 1, edges)

	// follow produced exactly one notification despite the repeat
	var notes int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("receiver_id = ? AND kind = ?", "bob", models.NotificationFollow).
		Count(&notes).Error)
	require.EqualValues(t, 1, notes)

	require.NoError(t, UnfollowUser(db, "alice", "bob"))
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	require.EqualValues(t, 0, edges)

	// unfollowing a non-following pair is a no-op success
	require.NoError(t, UnfollowUser(db, "alice", "bob"))
}

func TestFollowSurvivesFanoutFailure(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	// break notification writes; the follow edge must still land
	require.NoError(t, db.Migrator().DropTable(&models.Notification{}))

	created, err := FollowUser(db, "alice", "bob")
	require.NoError(t, err)
	require.True(t, created)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	require.EqualValues(t, 1, edges)
}

func TestFollowSelfInvalid(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")

	_, err := FollowUser(db, "alice", "alice")
	require.ErrorIs(t, err, helpers.ErrInvalidOperation)
}

func TestFollowUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")

	_, err := FollowUser(db, "alice", "ghost")
	require.ErrorIs(t, err, helpers.ErrNotFound)
}

func TestRequestConnectionStateMachine(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")
	scheduler := tasks.NewDBScheduler(db)

	status, err := RequestConnection(db, scheduler, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, "pending", status)

	// exactly one request row for the pair
	var requests []models.ConnectionRequest
	require.NoError(t, db.Find(&requests).Error)
	require.Len(t, requests, 1)
	require.Equal(t, models.ConnectionPending, requests[0].Status)

	// repeat from either direction reports pending, not an error
	status, err = RequestConnection(db, scheduler, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, "already_pending", status)
	status, err = RequestConnection(db, scheduler, "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, "already_pending", status)

	require.NoError(t, AcceptConnection(db, "bob", "alice"))

	// both directions inserted exactly once, even after a duplicate accept
	require.NoError(t, AcceptConnection(db, "bob", "alice"))
	var pairs int64
	require.NoError(t, db.Model(&models.Connection{}).Count(&pairs).Error)
	require.EqualValues(t, 2, pairs)

	require.NoError(t, db.First(&requests[0], requests[0].ID).Error)
	require.Equal(t, models.ConnectionAccepted, requests[0].Status)

	// a fresh request against an accepted pair is a hard failure
	_, err = RequestConnection(db, scheduler, "alice", "bob")
	require.ErrorIs(t, err, helpers.ErrAlreadyConnected)
}

func TestAcceptWithoutPendingRequest(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	err := AcceptConnection(db, "bob", "alice")
	require.ErrorIs(t, err, helpers.ErrNotFound)
}

func TestRequestConnectionSelfInvalid(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")

	_, err := RequestConnection(db, nil, "alice", "alice")
	require.ErrorIs(t, err, helpers.ErrInvalidOperation)
}

func TestRequestConnectionRateLimit(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	for i := 0; i < 21; i++ {
		createUser(t, db, fmt.Sprintf("target%d", i))
	}

	for i := 0; i < 19; i++ {
		status, err := RequestConnection(db, nil, "alice", fmt.Sprintf("target%d", i))
		require.NoError(t, err)
		require.Equal(t, "pending", status)
	}

	// the 20th request in the window succeeds
	status, err := RequestConnection(db, nil, "alice", "target19")
	require.NoError(t, err)
	require.Equal(t, "pending", status)

	// the 21st is rate limited
	_, err = RequestConnection(db, nil, "alice", "target20")
	require.ErrorIs(t, err, helpers.ErrRateLimited)

	// requests older than the 24h window do not count
	require.NoError(t, db.Model(&models.ConnectionRequest{}).
		Where("to_user_id = ?", "target0").
		Update("created_at", time.Now().Add(-25*time.Hour)).Error)
	_, err = RequestConnection(db, nil, "alice", "target20")
	require.NoError(t, err)
}

func TestRequestConnectionSchedulesReminder(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	_, err := RequestConnection(db, tasks.NewDBScheduler(db), "alice", "bob")
	require.NoError(t, err)

	var reminders int64
	require.NoError(t, db.Model(&models.DeferredTask{}).
		Where("kind = ?", models.TaskConnectionReminder).
		Count(&reminders).Error)
	require.EqualValues(t, 1, reminders)
}

func TestListRelationships(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")
	createUser(t, db, "carol")

	_, err := FollowUser(db, "bob", "alice")
	require.NoError(t, err)
	_, err = FollowUser(db, "alice", "carol")
	require.NoError(t, err)

	_, err = RequestConnection(db, nil, "carol", "alice")
	require.NoError(t, err)

	rel, err := ListRelationships(db, "alice")
	require.NoError(t, err)
	require.Len(t, rel.Followers, 1)
	require.Equal(t, "bob", rel.Followers[0].ID)
	require.Len(t, rel.Following, 1)
	require.Equal(t, "carol", rel.Following[0].ID)
	require.Empty(t, rel.Connections)
	require.Len(t, rel.PendingConnections, 1)
	require.Equal(t, "carol", rel.PendingConnections[0].ID)

	require.NoError(t, AcceptConnection(db, "alice", "carol"))
	rel, err = ListRelationships(db, "alice")
	require.NoError(t, err)
	require.Len(t, rel.Connections, 1)
	require.Empty(t, rel.PendingConnections)

	// connections stay independent of follow state
	require.NoError(t, UnfollowUser(db, "alice", "carol"))
	rel, err = ListRelationships(db, "alice")
	require.NoError(t, err)
	require.Len(t, rel.Connections, 1)
}
