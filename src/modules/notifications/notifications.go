package notifications

import (
	"log"

	"github.com/Sagarsingh9528/Ping/src/core/channels"
	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Refs points a notification at the record that caused it.
type Refs struct {
	PostID    *uuid.UUID
	LoopID    *uuid.UUID
	StoryID   *uuid.UUID
	MessageID *uuid.UUID
}

// Fanout derives a notification from a graph or content mutation. Self
// notifications are suppressed: nothing is created when sender == receiver.
// The record is also pushed over the receiver's live channel, best effort.
func Fanout(db *gorm.DB, senderID, receiverID, kind, message string, refs Refs) error {
	if senderID == receiverID {
		return nil
	}

	notification := models.Notification{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Kind:       kind,
		Message:    message,
		PostID:     refs.PostID,
		LoopID:     refs.LoopID,
		StoryID:    refs.StoryID,
		MessageID:  refs.MessageID,
	}
	if err := db.Create(&notification).Error; err != nil {
		return err
	}

	if !channels.Default.Push(receiverID, channels.Event{Kind: "notification", Data: notification}) {
		log.Printf("User %s offline, notification %d delivered on next fetch\n", receiverID, notification.ID)
	}
	return nil
}

func GetNotifications(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	var notifications []models.Notification
	if err := db.Where("receiver_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch notifications", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Notifications fetched successfully", notifications)
}

func MarkAsRead(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	var input struct {
		NotificationIDs []uint `json:"notification_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if len(input.NotificationIDs) == 0 {
		return helpers.HandleError(c, fiber.StatusBadRequest, "notification_ids is required", nil)
	}

	// Ownership check: only the receiver may mark a notification read.
	result := db.Model(&models.Notification{}).
		Where("id IN (?) AND receiver_id = ?", input.NotificationIDs, userID).
		Updates(map[string]interface{}{"is_read": true})
	if result.Error != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to mark notifications as read", result.Error)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Marked as read", fiber.Map{"updated": result.RowsAffected})
}
