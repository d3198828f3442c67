package identity

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Sagarsingh9528/Ping/src/core/config"
	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileHints is what the identity provider tells us about a user.
type ProfileHints struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_image_url"`
}

func (h ProfileHints) fullName() string {
	name := strings.TrimSpace(h.FirstName + " " + h.LastName)
	if name == "" {
		return "Unnamed User"
	}
	return name
}

// preferredUsername derives a handle from the provider hint or the email
// local part.
func preferredUsername(authID string, hints ProfileHints) string {
	if hints.Username != "" {
		return hints.Username
	}
	if at := strings.Index(hints.Email, "@"); at > 0 {
		return hints.Email[:at]
	}
	if len(authID) >= 8 {
		return "user_" + authID[:8]
	}
	return "user_" + authID
}

// uniqueUsername retries with a random suffix until the handle is free.
// Handle uniqueness is non-critical, so collisions fall back to generation
// instead of failing the sync.
func uniqueUsername(db *gorm.DB, candidate string) (string, error) {
	name := candidate
	for attempt := 0; attempt < 5; attempt++ {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", name).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return name, nil
		}
		name = fmt.Sprintf("%s_%d", candidate, rand.Intn(10000))
	}
	return name, nil
}

// ResolveOrCreate maps an externally verified identity to a user record,
// inserting one on first sight. The upsert is idempotent: a concurrent
// create of the same id loses quietly and the existing row is returned.
func ResolveOrCreate(db *gorm.DB, authID string, hints ProfileHints) (*models.User, error) {
	var user models.User
	err := db.Where("id = ?", authID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := uniqueUsername(db, preferredUsername(authID, hints))
	if err != nil {
		return nil, err
	}

	email := hints.Email
	if email == "" {
		email = authID + "@placeholder.ping"
	}

	user = models.User{
		ID:             authID,
		Email:          email,
		FullName:       hints.fullName(),
		Username:       username,
		ProfilePicture: hints.ProfilePicture,
	}
	if err := db.Create(&user).Error; err != nil {
		// lost a race with the provider webhook; re-read
		var existing models.User
		if lookupErr := db.Where("id = ?", authID).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &user, nil
}

// ApplyUpdate patches the record with last-write-wins semantics; provider
// update events may arrive out of order.
func ApplyUpdate(db *gorm.DB, authID string, hints ProfileHints) error {
	updates := map[string]interface{}{
		"full_name":       hints.fullName(),
		"profile_picture": hints.ProfilePicture,
	}
	if hints.Email != "" {
		updates["email"] = hints.Email
	}
	if hints.Username != "" {
		updates["username"] = hints.Username
	}
	return db.Model(&models.User{}).Where("id = ?", authID).Updates(updates).Error
}

// Remove deletes the user record. Owned content is NOT cascade-deleted;
// orphaned posts and messages are a known limitation.
func Remove(db *gorm.DB, authID string) error {
	return db.Where("id = ?", authID).Delete(&models.User{}).Error
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
		ProfileHints
	} `json:"data"`
}

// Webhook consumes identity-provider lifecycle events. The provider signs
// requests with a shared secret.
func Webhook(c *fiber.Ctx) error {
	db := database.DB

	secret := config.Config("IDENTITY_WEBHOOK_SECRET")
	given := c.Get("X-Webhook-Secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid webhook secret", nil)
	}

	var event webhookEvent
	if err := c.BodyParser(&event); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid event payload", err)
	}
	if event.Data.ID == "" {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing user id in event", nil)
	}

	switch event.Type {
	case "user.created":
		if _, err := ResolveOrCreate(db, event.Data.ID, event.Data.ProfileHints); err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to sync user", err)
		}
	case "user.updated":
		if err := ApplyUpdate(db, event.Data.ID, event.Data.ProfileHints); err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to update user", err)
		}
	case "user.deleted":
		if err := Remove(db, event.Data.ID); err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to delete user", err)
		}
	default:
		return helpers.HandleError(c, fiber.StatusBadRequest, "Unknown event type", nil)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Event processed", nil)
}
