package tasks

import (
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/config"
	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"gorm.io/gorm"
)

// Scheduler enqueues work to run at or after a future time, outside the
// request path. The payload is an id, not a snapshot: handlers re-read
// current state at execution time.
type Scheduler interface {
	Schedule(kind, payload string, runAt time.Time) error
}

// Sender delivers email. Failures are logged by callers, never retried in
// the request path.
type Sender interface {
	Send(to, subject, body string) error
}

// DBScheduler persists tasks in the deferred_tasks table.
type DBScheduler struct {
	db *gorm.DB
}

func NewDBScheduler(db *gorm.DB) *DBScheduler {
	return &DBScheduler{db: db}
}

func (s *DBScheduler) Schedule(kind, payload string, runAt time.Time) error {
	task := models.DeferredTask{Kind: kind, Payload: payload, RunAt: runAt}
	return s.db.Create(&task).Error
}

// DefaultScheduler returns a scheduler over the application database.
func DefaultScheduler() Scheduler {
	return NewDBScheduler(database.DB)
}

// SMTPSender sends mail through the configured SMTP relay.
type SMTPSender struct{}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	host := config.Config("SMTP_HOST")
	port := config.Config("SMTP_PORT")
	from := config.Config("SMTP_FROM")
	password := config.Config("SMTP_PASSWORD")
	if host == "" || from == "" {
		return fmt.Errorf("SMTP_HOST or SMTP_FROM is not set in the environment variables")
	}
	if port == "" {
		port = "587"
	}

	msg := []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	var auth smtp.Auth
	if password != "" {
		auth = smtp.PlainAuth("", from, password, host)
	}
	return smtp.SendMail(host+":"+port, auth, from, []string{to}, msg)
}

var defaultSender Sender = NewSMTPSender()

// Mail sends an email off the request path; failures are logged only.
func Mail(to, subject, body string) {
	go func() {
		if err := defaultSender.Send(to, subject, body); err != nil {
			log.Println("Error sending email:", err)
		}
	}()
}

// Runner polls for due tasks and dispatches them. Handlers are idempotent:
// state may have changed between enqueue and run.
type Runner struct {
	sender   Sender
	interval time.Duration
}

func NewRunner(sender Sender) *Runner {
	return &Runner{sender: sender, interval: time.Minute}
}

func (r *Runner) Run() {
	r.ensureDigestScheduled(database.DB)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := r.RunDue(database.DB, time.Now()); err != nil {
			log.Println("Error running deferred tasks:", err)
		}
	}
}

// RunDue executes every task due at the given time and marks it done.
// A task is marked done even when its handler fails; the external mail
// relay owns delivery retries, not this runner.
func (r *Runner) RunDue(db *gorm.DB, now time.Time) error {
	var due []models.DeferredTask
	if err := db.Where("done = ? AND run_at <= ?", false, now).
		Order("run_at asc").
		Find(&due).Error; err != nil {
		return err
	}

	for _, task := range due {
		if err := r.dispatch(db, task); err != nil {
			log.Printf("Task %d (%s) failed: %v\n", task.ID, task.Kind, err)
		}
		if err := db.Model(&models.DeferredTask{}).
			Where("id = ?", task.ID).
			Update("done", true).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) dispatch(db *gorm.DB, task models.DeferredTask) error {
	switch task.Kind {
	case models.TaskStoryExpire:
		return r.expireStory(db, task.Payload)
	case models.TaskConnectionReminder:
		return r.remindConnection(db, task.Payload)
	case models.TaskMessageDigest:
		return r.sendMessageDigest(db)
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

// expireStory deletes the story if it still exists. The story may already
// have been replaced by a newer one, in which case this is a no-op.
func (r *Runner) expireStory(db *gorm.DB, storyID string) error {
	if err := db.Where("story_id = ?", storyID).Delete(&models.StoryView{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", storyID).Delete(&models.Story{}).Error
}

// remindConnection emails the recipient of a request that is still pending
// 24h after creation. Accepted requests suppress the reminder.
func (r *Runner) remindConnection(db *gorm.DB, payload string) error {
	requestID, err := strconv.Atoi(payload)
	if err != nil {
		return fmt.Errorf("bad connection reminder payload %q: %w", payload, err)
	}

	var request models.ConnectionRequest
	if err := db.Where("id = ?", requestID).First(&request).Error; err != nil {
		return nil // request gone, nothing to remind about
	}
	if request.Status != models.ConnectionPending {
		return nil
	}

	var sender, receiver models.User
	if err := db.Where("id = ?", request.FromUserID).First(&sender).Error; err != nil {
		return err
	}
	if err := db.Where("id = ?", request.ToUserID).First(&receiver).Error; err != nil {
		return err
	}

	body := fmt.Sprintf("Hi %s,\n\n%s sent you a connection request a day ago and it is still waiting for you.\n", receiver.FullName, sender.FullName)
	if err := r.sender.Send(receiver.Email, "You have a pending connection request", body); err != nil {
		log.Println("Error sending reminder email:", err)
	}
	return nil
}

// sendMessageDigest emails every user a count of messages that arrived
// unseen in the last 24h. The next run is scheduled before any emailing so
// a failure mid-digest cannot break the daily chain.
func (r *Runner) sendMessageDigest(db *gorm.DB) error {
	if err := NewDBScheduler(db).Schedule(models.TaskMessageDigest, "", time.Now().Add(24*time.Hour)); err != nil {
		return err
	}

	since := time.Now().Add(-24 * time.Hour)

	var rows []struct {
		ToUserID string
		Unseen   int64
	}
	if err := db.Model(&models.Message{}).
		Select("to_user_id, COUNT(*) as unseen").
		Where("seen = ? AND created_at > ?", false, since).
		Group("to_user_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		var user models.User
		if err := db.Where("id = ?", row.ToUserID).First(&user).Error; err != nil {
			continue
		}
		body := fmt.Sprintf("Hi %s,\n\nYou have %d unseen message(s) waiting for you.\n", user.FullName, row.Unseen)
		if err := r.sender.Send(user.Email, "Your daily message digest", body); err != nil {
			log.Println("Error sending digest email:", err)
		}
	}
	return nil
}

// ensureDigestScheduled seeds the recurring digest on first start.
func (r *Runner) ensureDigestScheduled(db *gorm.DB) {
	if db == nil {
		return
	}
	var pending int64
	if err := db.Model(&models.DeferredTask{}).
		Where("kind = ? AND done = ?", models.TaskMessageDigest, false).
		Count(&pending).Error; err != nil {
		log.Println("Error checking digest schedule:", err)
		return
	}
	if pending == 0 {
		if err := NewDBScheduler(db).Schedule(models.TaskMessageDigest, "", time.Now().Add(24*time.Hour)); err != nil {
			log.Println("Error scheduling digest:", err)
		}
	}
}
