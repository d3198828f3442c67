package loops

import (
	"fmt"
	"testing"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
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
		&models.User{}, &models.Loop{}, &models.LoopLike{},
		&models.LoopComment{}, &models.Notification{},
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

func TestCreateLoopRequiresMedia(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")

	_, err := CreateLoopRecord(db, "alice", "caption only", "")
	require.ErrorIs(t, err, helpers.ErrEmptyContent)

	loop, err := CreateLoopRecord(db, "alice", "", "https://cdn/clip.mp4")
	require.NoError(t, err)
	require.Equal(t, "alice", loop.UserID)
}

func TestToggleLikeSymmetry(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")
	loop, err := CreateLoopRecord(db, "bob", "hi", "https://cdn/clip.mp4")
	require.NoError(t, err)

	liked, count, err := ToggleLike(db, "alice", loop.ID)
	require.NoError(t, err)
	require.True(t, liked)
	require.EqualValues(t, 1, count)

	// the owner got exactly one like notification, pointed at the loop
	var note models.Notification
	require.NoError(t, db.Where("receiver_id = ? AND kind = ?", "bob", models.NotificationLike).
		First(&note).Error)
	require.NotNil(t, note.LoopID)
	require.Equal(t, loop.ID, *note.LoopID)

	liked, count, err = ToggleLike(db, "alice", loop.ID)
	require.NoError(t, err)
	require.False(t, liked)
	require.EqualValues(t, 0, count)

	// unliking created no new notification
	var notes int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&notes).Error)
	require.EqualValues(t, 1, notes)
}

func TestToggleLikeUnknownLoop(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	loop, err := CreateLoopRecord(db, "alice", "hi", "https://cdn/clip.mp4")
	require.NoError(t, err)
	require.NoError(t, db.Where("id = ?", loop.ID).Delete(&models.Loop{}).Error)

	_, _, err = ToggleLike(db, "alice", loop.ID)
	require.ErrorIs(t, err, helpers.ErrNotFound)
}

func TestAddComment(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")
	loop, err := CreateLoopRecord(db, "bob", "hi", "https://cdn/clip.mp4")
	require.NoError(t, err)

	comment, err := AddComment(db, "alice", loop.ID, "great clip")
	require.NoError(t, err)
	require.Equal(t, loop.ID, comment.LoopID)

	var notes int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("receiver_id = ? AND kind = ?", "bob", models.NotificationComment).
		Count(&notes).Error)
	require.EqualValues(t, 1, notes)

	// commenting on your own loop is fine but silent
	_, err = AddComment(db, "bob", loop.ID, "thanks")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Notification{}).
		Where("receiver_id = ?", "bob").
		Count(&notes).Error)
	require.EqualValues(t, 1, notes)

	_, err = AddComment(db, "alice", loop.ID, "")
	require.ErrorIs(t, err, helpers.ErrEmptyContent)
}

func TestListLoopsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")

	old, err := CreateLoopRecord(db, "alice", "old", "https://cdn/old.mp4")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Loop{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	fresh, err := CreateLoopRecord(db, "alice", "fresh", "https://cdn/new.mp4")
	require.NoError(t, err)

	loops, err := ListLoops(db, 20, 0)
	require.NoError(t, err)
	require.Len(t, loops, 2)
	require.Equal(t, fresh.ID, loops[0].ID)
	require.Equal(t, old.ID, loops[1].ID)

	// pagination walks the same order
	page, err := ListLoops(db, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, old.ID, page[0].ID)
}
