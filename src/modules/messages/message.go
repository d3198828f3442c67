package messages

import (
	"errors"
	"fmt"
	"log"

	"github.com/Sagarsingh9528/Ping/src/core/channels"
	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/Sagarsingh9528/Ping/src/modules/notifications"
	"github.com/Sagarsingh9528/Ping/src/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SendMessageRecord persists a direct message and fans out a notification.
// Live delivery to the receiver is best effort: an offline receiver simply
// sees the message on the next fetch.
func SendMessageRecord(db *gorm.DB, fromUserID, toUserID, text, mediaURL string) (*models.Message, error) {
	if text == "" && mediaURL == "" {
		return nil, fmt.Errorf("%w: a message needs text or media", helpers.ErrEmptyMessage)
	}

	var receiver models.User
	if err := db.Where("id = ?", toUserID).First(&receiver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", helpers.ErrNotFound, toUserID)
		}
		return nil, err
	}

	messageType := "text"
	if mediaURL != "" {
		messageType = "image"
	}

	message := models.Message{
		ID:          uuid.New(),
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		Text:        text,
		MediaURL:    mediaURL,
		MessageType: messageType,
		Seen:        false,
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, err
	}

	channels.Default.Push(toUserID, channels.Event{Kind: "message", Data: message})

	// the message is already in; a fan-out failure must not undo it
	if err := notifications.Fanout(db, fromUserID, toUserID, models.NotificationMessage, "sent you a message",
		notifications.Refs{MessageID: &message.ID}); err != nil {
		log.Println("Error creating message notification:", err)
	}
	return &message, nil
}

// FetchThread returns every message between the pair, newest first, and
// marks messages addressed to the caller as seen. Repeated fetches are
// idempotent after the first.
func FetchThread(db *gorm.DB, callerID, peerID string) ([]models.Message, error) {
	thread := []models.Message{}
	err := db.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
		callerID, peerID, peerID, callerID).
		Order("created_at desc").
		Find(&thread).Error
	if err != nil {
		return nil, err
	}

	if err := db.Model(&models.Message{}).
		Where("from_user_id = ? AND to_user_id = ? AND seen = ?", peerID, callerID, false).
		Update("seen", true).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

// RecentThread is the newest message per sender addressed to a user.
type RecentThread struct {
	From    models.User    `json:"from"`
	Message models.Message `json:"message"`
}

// ListRecentThreads reduces the receiver's inbox to the most recent message
// per sender, sorted by recency. Single pass over the sorted inbox.
func ListRecentThreads(db *gorm.DB, userID string) ([]RecentThread, error) {
	var inbox []models.Message
	if err := db.Where("to_user_id = ?", userID).
		Order("created_at desc").
		Find(&inbox).Error; err != nil {
		return nil, err
	}

	threads := []RecentThread{}
	seen := make(map[string]bool)
	for _, message := range inbox {
		if seen[message.FromUserID] {
			continue
		}
		seen[message.FromUserID] = true

		var sender models.User
		if err := db.Where("id = ?", message.FromUserID).First(&sender).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // sender account deleted, thread is orphaned
			}
			return nil, err
		}
		threads = append(threads, RecentThread{From: sender, Message: message})
	}
	return threads, nil
}

func SendMessage(c *fiber.Ctx) error {
	db := database.DB
	fromUserID := c.Locals("user_id").(string)

	toUserID := c.FormValue("to_user_id")
	text := c.FormValue("text")
	if toUserID == "" {
		var input struct {
			ToUserID string `json:"to_user_id"`
			Text     string `json:"text"`
		}
		if err := c.BodyParser(&input); err == nil {
			toUserID = input.ToUserID
			text = input.Text
		}
	}
	if toUserID == "" {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing to_user_id", nil)
	}

	var mediaURL string
	if file, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateImageUpload(file); err != nil {
			return helpers.HandleError(c, fiber.StatusBadRequest, err.Error(), err)
		}
		fileName := uuid.New().String() + "-" + file.Filename
		filePath := fmt.Sprintf("message-media/%s", fileName)
		_, publicURL, _, err := utils.UploadToSupabaseStorage(file, filePath)
		if err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload media", err)
		}
		mediaURL = publicURL
	}

	message, err := SendMessageRecord(db, fromUserID, toUserID, text, mediaURL)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Message sent", message)
}

func GetThread(c *fiber.Ctx) error {
	db := database.DB
	callerID := c.Locals("user_id").(string)
	peerID := c.Params("user_id")

	thread, err := FetchThread(db, callerID, peerID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch messages", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Messages fetched successfully", thread)
}

func GetRecentThreads(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	threads, err := ListRecentThreads(db, userID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch recent messages", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Recent messages fetched successfully", threads)
}

// UpgradeWebSocket gates the live-delivery endpoint on a valid upgrade
// request; Protected() has already resolved user_id.
func UpgradeWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// LiveHandler parks the connection in the channel registry until the client
// goes away. Events sent while the user is offline are not replayed.
func LiveHandler(conn *websocket.Conn) {
	userID, ok := conn.Locals("user_id").(string)
	if !ok || userID == "" {
		conn.Close()
		return
	}

	channels.Default.Register(userID, conn)
	defer channels.Default.Unregister(userID, conn)
	defer conn.Close()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
