package connection

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/Sagarsingh9528/Ping/src/modules/notifications"
	"github.com/Sagarsingh9528/Ping/src/modules/tasks"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A sender may open at most this many connection requests per rolling 24h.
const maxRequestsPerDay = 20

// FollowUser adds the directed follow edge. Following yourself is invalid;
// following someone you already follow is a no-op success. The insert is an
// atomic add-if-absent so concurrent follows never double-insert.
func FollowUser(db *gorm.DB, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, fmt.Errorf("%w: you cannot follow yourself", helpers.ErrInvalidOperation)
	}

	var target models.User
	if err := db.Where("id = ?", targetID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: user %s", helpers.ErrNotFound, targetID)
		}
		return false, err
	}

	follow := models.Follow{FollowerID: actorID, FollowingID: targetID}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		// already following
		return false, nil
	}

	// the edge is already in; a fan-out failure must not undo it
	if err := notifications.Fanout(db, actorID, targetID, models.NotificationFollow, "started following you", notifications.Refs{}); err != nil {
		log.Println("Error creating follow notification:", err)
	}
	return true, nil
}

// UnfollowUser removes the edge; removing an absent edge is a no-op success.
func UnfollowUser(db *gorm.DB, actorID, targetID string) error {
	return db.Where("follower_id = ? AND following_id = ?", actorID, targetID).
		Delete(&models.Follow{}).Error
}

// RequestConnection creates a pending request toward targetID. Outcomes:
// "pending" (created), "already_pending" (a request for the pair exists in
// either direction), or an error (self request, rate limited, already
// connected).
func RequestConnection(db *gorm.DB, scheduler tasks.Scheduler, actorID, targetID string) (string, error) {
	if actorID == targetID {
		return "", fmt.Errorf("%w: you cannot connect with yourself", helpers.ErrInvalidOperation)
	}

	var target models.User
	if err := db.Where("id = ?", targetID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %s", helpers.ErrNotFound, targetID)
		}
		return "", err
	}

	var sentToday int64
	windowStart := time.Now().Add(-24 * time.Hour)
	if err := db.Model(&models.ConnectionRequest{}).
		Where("from_user_id = ? AND created_at > ?", actorID, windowStart).
		Count(&sentToday).Error; err != nil {
		return "", err
	}
	if sentToday >= maxRequestsPerDay {
		return "", fmt.Errorf("%w: you have sent more than %d connection requests in the last 24 hours", helpers.ErrRateLimited, maxRequestsPerDay)
	}

	// At most one request per unordered pair: look up both directions.
	var existing models.ConnectionRequest
	err := db.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
		actorID, targetID, targetID, actorID).
		First(&existing).Error
	if err == nil {
		if existing.Status == models.ConnectionAccepted {
			return "", fmt.Errorf("%w: you are already connected with this user", helpers.ErrAlreadyConnected)
		}
		return "already_pending", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	request := models.ConnectionRequest{
		FromUserID: actorID,
		ToUserID:   targetID,
		Status:     models.ConnectionPending,
	}
	if err := db.Create(&request).Error; err != nil {
		return "", err
	}

	// Reminder fires in 24h; the handler re-checks the request is still
	// pending before emailing.
	if scheduler != nil {
		if err := scheduler.Schedule(models.TaskConnectionReminder, fmt.Sprintf("%d", request.ID), time.Now().Add(24*time.Hour)); err != nil {
			return "", err
		}
	}
	return "pending", nil
}

// AcceptConnection requires a pending request from requesterID to actorID.
// Both connection directions are inserted with add-if-absent semantics, so
// a duplicate accept cannot double-insert.
func AcceptConnection(db *gorm.DB, actorID, requesterID string) error {
	var request models.ConnectionRequest
	err := db.Where("from_user_id = ? AND to_user_id = ? AND status = ?",
		requesterID, actorID, models.ConnectionPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no pending connection request from this user", helpers.ErrNotFound)
		}
		return err
	}

	pair := []models.Connection{
		{UserID: actorID, PeerID: requesterID},
		{UserID: requesterID, PeerID: actorID},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pair).Error; err != nil {
		return err
	}

	return db.Model(&models.ConnectionRequest{}).
		Where("id = ?", request.ID).
		Update("status", models.ConnectionAccepted).Error
}

// Relationships is the read model for a user's graph neighborhood.
type Relationships struct {
	Followers          []models.User `json:"followers"`
	Following          []models.User `json:"following"`
	Connections        []models.User `json:"connections"`
	PendingConnections []models.User `json:"pending_connections"`
}

// ListRelationships resolves follower/following/connection/pending sets to
// user profiles.
func ListRelationships(db *gorm.DB, userID string) (*Relationships, error) {
	rel := &Relationships{
		Followers:          []models.User{},
		Following:          []models.User{},
		Connections:        []models.User{},
		PendingConnections: []models.User{},
	}

	if err := db.Where("id IN (?)",
		db.Model(&models.Follow{}).Select("follower_id").Where("following_id = ?", userID)).
		Find(&rel.Followers).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id IN (?)",
		db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)).
		Find(&rel.Following).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id IN (?)",
		db.Model(&models.Connection{}).Select("peer_id").Where("user_id = ?", userID)).
		Find(&rel.Connections).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id IN (?)",
		db.Model(&models.ConnectionRequest{}).Select("from_user_id").
			Where("to_user_id = ? AND status = ?", userID, models.ConnectionPending)).
		Find(&rel.PendingConnections).Error; err != nil {
		return nil, err
	}
	return rel, nil
}

// targetInput is the shared request body of the graph mutations.
type targetInput struct {
	ID string `json:"id" validate:"required"`
}

func Follow(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input targetInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing id", err)
	}

	created, err := FollowUser(db, actorID, input.ID)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	if !created {
		return helpers.HandleSuccess(c, fiber.StatusOK, "Already following this user", nil)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Successfully followed the user", nil)
}

func Unfollow(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input targetInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing id", err)
	}

	if err := UnfollowUser(db, actorID, input.ID); err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to unfollow user", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Successfully unfollowed the user", nil)
}

func Connect(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input targetInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing id", err)
	}

	status, err := RequestConnection(db, tasks.DefaultScheduler(), actorID, input.ID)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	if status == "already_pending" {
		return helpers.HandleSuccess(c, fiber.StatusOK, "Connection request already pending", fiber.Map{"status": status})
	}

	// Immediate email to the recipient; failures are logged, not retried.
	var actor, target models.User
	if db.Where("id = ?", actorID).First(&actor).Error == nil &&
		db.Where("id = ?", input.ID).First(&target).Error == nil {
		tasks.Mail(target.Email, "New connection request",
			fmt.Sprintf("Hi %s,\n\n%s wants to connect with you on Ping.\n", target.FullName, actor.FullName))
	}

	return helpers.HandleSuccess(c, fiber.StatusCreated, "Connection request sent", fiber.Map{"status": status})
}

func Accept(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input targetInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing id", err)
	}

	if err := AcceptConnection(db, actorID, input.ID); err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Connection accepted", nil)
}

func GetConnections(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	rel, err := ListRelationships(db, userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch connections", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Connections retrieved", rel)
}
