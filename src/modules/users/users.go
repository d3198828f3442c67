package users

import (
	"errors"
	"fmt"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/Sagarsingh9528/Ping/src/modules/identity"
	"github.com/Sagarsingh9528/Ping/src/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetMe resolves the authenticated caller, creating the record on first
// sight in case the provider webhook lagged behind the first request.
func GetMe(c *fiber.Ctx) error {
	db := database.DB
	authID := c.Locals("user_id").(string)

	user, err := identity.ResolveOrCreate(db, authID, identity.ProfileHints{})
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to resolve user", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "User profile retrieved successfully", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	updates := map[string]interface{}{}
	if v := c.FormValue("full_name"); v != "" {
		updates["full_name"] = v
	}
	if v := c.FormValue("bio"); v != "" {
		updates["bio"] = v
	}
	if v := c.FormValue("location"); v != "" {
		updates["location"] = v
	}
	if v := c.FormValue("username"); v != "" {
		var count int64
		if err := db.Model(&models.User{}).
			Where("username = ? AND id <> ?", v, userID).
			Count(&count).Error; err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to check username", err)
		}
		if count > 0 {
			return helpers.HandleError(c, fiber.StatusBadRequest, "Username already exists", nil)
		}
		updates["username"] = v
	}

	if len(updates) > 0 {
		if result := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates); result.Error != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to update profile", result.Error)
		}
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusNotFound, "User not found", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "User profile updated successfully", user)
}

func uploadUserPhoto(c *fiber.Ctx, formField, folder, column string) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	file, err := c.FormFile(formField)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "File upload failed", err)
	}
	if err := utils.ValidateImageUpload(file); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, err.Error(), err)
	}

	fileName := uuid.New().String() + "-" + file.Filename
	filePath := fmt.Sprintf("%s/%s", folder, fileName)
	_, publicURL, _, err := utils.UploadToSupabaseStorage(file, filePath)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload file to storage", err)
	}

	if result := db.Model(&models.User{}).Where("id = ?", userID).
		Update(column, publicURL); result.Error != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to update photo metadata", result.Error)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Photo updated successfully", fiber.Map{column: publicURL})
}

func UploadProfilePhoto(c *fiber.Ctx) error {
	return uploadUserPhoto(c, "profile_photo", "profile-photos", "profile_picture")
}

func UploadCoverPhoto(c *fiber.Ctx) error {
	return uploadUserPhoto(c, "cover_photo", "cover-photos", "cover_photo")
}

func GetProfileByUsername(c *fiber.Ctx) error {
	db := database.DB
	username := c.Params("username")

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.HandleError(c, fiber.StatusNotFound, "User not found", err)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch profile", err)
	}

	var posts []models.Post
	if err := db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&posts).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch posts", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Profile retrieved", fiber.Map{
		"user":  user,
		"posts": posts,
	})
}

func Search(c *fiber.Ctx) error {
	db := database.DB
	keyword := c.Query("keyword")
	if keyword == "" {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Keyword is required", nil)
	}

	users := []models.User{}
	pattern := "%" + keyword + "%"
	if err := db.Where("username LIKE ? OR full_name LIKE ?", pattern, pattern).
		Find(&users).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Search failed", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Users found", users)
}

// Discover lists everyone the caller does not already follow.
func Discover(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	users := []models.User{}
	if err := db.Where("id <> ?", userID).
		Where("id NOT IN (?)",
			db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)).
		Find(&users).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Suggested users retrieved", users)
}
