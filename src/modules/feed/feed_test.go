package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	connection "github.com/Sagarsingh9528/Ping/src/modules/connections"
	"github.com/Sagarsingh9528/Ping/src/modules/posts"
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
		&models.User{}, &models.Follow{}, &models.Post{}, &models.Like{},
		&models.Save{}, &models.Comment{}, &models.Notification{},
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

func TestFeedScope(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "viewer")
	createUser(t, db, "followed")
	createUser(t, db, "stranger")

	_, err := connection.FollowUser(db, "viewer", "followed")
	require.NoError(t, err)

	_, err = posts.CreatePostRecord(db, "viewer", "mine", nil)
	require.NoError(t, err)
	_, err = posts.CreatePostRecord(db, "followed", "from followed", nil)
	require.NoError(t, err)
	_, err = posts.CreatePostRecord(db, "stranger", "should not appear", nil)
	require.NoError(t, err)

	feed, err := AssemblePosts(db, "viewer", 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, post := range feed {
		require.Contains(t, []string{"viewer", "followed"}, post.UserID)
	}
}

func TestFeedOrderReverseChronological(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "viewer")
	createUser(t, db, "author")
	_, err := connection.FollowUser(db, "viewer", "author")
	require.NoError(t, err)

	older, err := posts.CreatePostRecord(db, "author", "older", nil)
	require.NoError(t, err)
	newer, err := posts.CreatePostRecord(db, "author", "newer", nil)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", newer.ID).
		Update("created_at", time.Now()).Error)

	feed, err := AssemblePosts(db, "viewer", 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, "newer", feed[0].Content)
	require.Equal(t, "older", feed[1].Content)
}

// End-to-end: A follows B, B posts, A sees it, A likes it, likes again.
func TestFeedLikeScenario(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "A")
	createUser(t, db, "B")

	_, err := connection.FollowUser(db, "A", "B")
	require.NoError(t, err)

	post, err := posts.CreatePostRecord(db, "B", "hello", nil)
	require.NoError(t, err)

	feed, err := AssemblePosts(db, "A", 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Equal(t, "hello", feed[0].Content)
	require.Equal(t, "B", feed[0].UserID)

	liked, count, err := posts.ToggleLike(db, "A", post.ID)
	require.NoError(t, err)
	require.True(t, liked)
	require.EqualValues(t, 1, count)

	var notes int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("receiver_id = ? AND kind = ?", "B", models.NotificationLike).
		Count(&notes).Error)
	require.EqualValues(t, 1, notes)

	liked, count, err = posts.ToggleLike(db, "A", post.ID)
	require.NoError(t, err)
	require.False(t, liked)
	require.EqualValues(t, 0, count)

	require.NoError(t, db.Model(&models.Notification{}).
		Where("receiver_id = ? AND kind = ?", "B", models.NotificationLike).
		Count(&notes).Error)
	require.EqualValues(t, 1, notes)

	decorated, err := Decorate(db, "A", feed)
	require.NoError(t, err)
	require.Len(t, decorated, 1)
	require.False(t, decorated[0].Liked)
	require.EqualValues(t, 0, decorated[0].LikesCount)
}

func TestFeedPagination(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "viewer")
	for i := 0; i < 5; i++ {
		_, err := posts.CreatePostRecord(db, "viewer", fmt.Sprintf("post %d", i), nil)
		require.NoError(t, err)
	}

	page, err := AssemblePosts(db, "viewer", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)

	rest, err := AssemblePosts(db, "viewer", 10, 2)
	require.NoError(t, err)
	require.Len(t, rest, 3)
}
