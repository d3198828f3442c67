package tasks

import (
	"fmt"
	"testing"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeSender struct {
	sent []string // "to|subject"
}

func (s *fakeSender) Send(to, subject, body string) error {
	s.sent = append(s.sent, to+"|"+subject)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Story{}, &models.StoryView{},
		&models.ConnectionRequest{}, &models.Message{}, &models.DeferredTask{},
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

func TestRunDueOnlyRunsDueTasks(t *testing.T) {
	db := setupTestDB(t)
	scheduler := NewDBScheduler(db)
	now := time.Now()

	require.NoError(t, scheduler.Schedule(models.TaskStoryExpire, uuid.New().String(), now.Add(-time.Minute)))
	require.NoError(t, scheduler.Schedule(models.TaskStoryExpire, uuid.New().String(), now.Add(time.Hour)))

	runner := NewRunner(&fakeSender{})
	require.NoError(t, runner.RunDue(db, now))

	var done, pending int64
	require.NoError(t, db.Model(&models.DeferredTask{}).Where("done = ?", true).Count(&done).Error)
	require.NoError(t, db.Model(&models.DeferredTask{}).Where("done = ?", false).Count(&pending).Error)
	require.EqualValues(t, 1, done)
	require.EqualValues(t, 1, pending)
}

func TestStoryExpiry(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")

	story := models.Story{ID: uuid.New(), UserID: "alice", Content: "hi", MediaType: "text"}
	require.NoError(t, db.Create(&story).Error)
	require.NoError(t, db.Create(&models.StoryView{StoryID: story.ID, ViewerID: "bob"}).Error)

	scheduler := NewDBScheduler(db)
	require.NoError(t, scheduler.Schedule(models.TaskStoryExpire, story.ID.String(), time.Now().Add(-time.Minute)))

	runner := NewRunner(&fakeSender{})
	require.NoError(t, runner.RunDue(db, time.Now()))

	var stories, views int64
	require.NoError(t, db.Model(&models.Story{}).Count(&stories).Error)
	require.NoError(t, db.Model(&models.StoryView{}).Count(&views).Error)
	require.EqualValues(t, 0, stories)
	require.EqualValues(t, 0, views)

	// expiring an already-gone story is a no-op
	require.NoError(t, scheduler.Schedule(models.TaskStoryExpire, story.ID.String(), time.Now().Add(-time.Minute)))
	require.NoError(t, runner.RunDue(db, time.Now()))
}

func TestConnectionReminderStillPending(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	request := models.ConnectionRequest{FromUserID: "alice", ToUserID: "bob", Status: models.ConnectionPending}
	require.NoError(t, db.Create(&request).Error)

	scheduler := NewDBScheduler(db)
	require.NoError(t, scheduler.Schedule(models.TaskConnectionReminder, fmt.Sprintf("%d", request.ID), time.Now().Add(-time.Minute)))

	sender := &fakeSender{}
	runner := NewRunner(sender)
	require.NoError(t, runner.RunDue(db, time.Now()))

	require.Len(t, sender.sent, 1)
	require.Contains(t, sender.sent[0], "bob@example.com")
}

func TestConnectionReminderSuppressedWhenAccepted(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	request := models.ConnectionRequest{FromUserID: "alice", ToUserID: "bob", Status: models.ConnectionPending}
	require.NoError(t, db.Create(&request).Error)

	scheduler := NewDBScheduler(db)
	require.NoError(t, scheduler.Schedule(models.TaskConnectionReminder, fmt.Sprintf("%d", request.ID), time.Now().Add(-time.Minute)))

	// accepted before the reminder fires
	require.NoError(t, db.Model(&models.ConnectionRequest{}).
		Where("id = ?", request.ID).
		Update("status", models.ConnectionAccepted).Error)

	sender := &fakeSender{}
	runner := NewRunner(sender)
	require.NoError(t, runner.RunDue(db, time.Now()))

	require.Empty(t, sender.sent)

	// the task is done either way
	var pending int64
	require.NoError(t, db.Model(&models.DeferredTask{}).Where("done = ?", false).Count(&pending).Error)
	require.EqualValues(t, 0, pending)
}

func TestMessageDigestChainSurvivesFailure(t *testing.T) {
	db := setupTestDB(t)
	scheduler := NewDBScheduler(db)
	require.NoError(t, scheduler.Schedule(models.TaskMessageDigest, "", time.Now().Add(-time.Minute)))

	// break the digest query so the task fails after rescheduling
	require.NoError(t, db.Migrator().DropTable(&models.Message{}))

	runner := NewRunner(&fakeSender{})
	require.NoError(t, runner.RunDue(db, time.Now()))

	// the failed run is done, and tomorrow's digest is already queued
	var pending int64
	require.NoError(t, db.Model(&models.DeferredTask{}).
		Where("kind = ? AND done = ?", models.TaskMessageDigest, false).
		Count(&pending).Error)
	require.EqualValues(t, 1, pending)
}

func TestMessageDigestReschedulesItself(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	message := models.Message{ID: uuid.New(), FromUserID: "bob", ToUserID: "alice", Text: "hey", MessageType: "text"}
	require.NoError(t, db.Create(&message).Error)

	scheduler := NewDBScheduler(db)
	require.NoError(t, scheduler.Schedule(models.TaskMessageDigest, "", time.Now().Add(-time.Minute)))

	sender := &fakeSender{}
	runner := NewRunner(sender)
	require.NoError(t, runner.RunDue(db, time.Now()))

	require.Len(t, sender.sent, 1)
	require.Contains(t, sender.sent[0], "alice@example.com")

	// a new digest task is queued for tomorrow
	var pending int64
	require.NoError(t, db.Model(&models.DeferredTask{}).
		Where("kind = ? AND done = ?", models.TaskMessageDigest, false).
		Count(&pending).Error)
	require.EqualValues(t, 1, pending)

	// seen messages do not appear in the next digest
	require.NoError(t, db.Model(&models.Message{}).Where("id = ?", message.ID).Update("seen", true).Error)
	require.NoError(t, runner.RunDue(db, time.Now().Add(25*time.Hour)))
	require.Len(t, sender.sent, 1)
}
