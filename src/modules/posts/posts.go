package posts

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
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// derivePostType tags a post from what it carries. Purely descriptive.
func derivePostType(content string, mediaURLs []string) string {
	switch {
	case content != "" && len(mediaURLs) > 0:
		return "text_with_image"
	case len(mediaURLs) > 0:
		return "image"
	default:
		return "text"
	}
}

// CreatePostRecord inserts a post. A post needs text or media, having
// neither is an EmptyContent error.
func CreatePostRecord(db *gorm.DB, userID, content string, mediaURLs []string) (*models.Post, error) {
	if content == "" && len(mediaURLs) == 0 {
		return nil, fmt.Errorf("%w: a post needs text or media", helpers.ErrEmptyContent)
	}

	post := models.Post{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   content,
		MediaURLs: mediaURLs,
		PostType:  derivePostType(content, mediaURLs),
	}
	if err := db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ToggleLike flips the actor's like membership on the post. The insert and
// delete are atomic set operations, so concurrent likers cannot clobber
// each other. A transition to liked notifies the owner unless the actor is
// the owner.
func ToggleLike(db *gorm.DB, actorID string, postID uuid.UUID) (liked bool, count int64, err error) {
	var post models.Post
	if err := db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, fmt.Errorf("%w: post %s", helpers.ErrNotFound, postID)
		}
		return false, 0, err
	}

	like := models.Like{UserID: actorID, PostID: postID}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	if result.Error != nil {
		return false, 0, result.Error
	}

	if result.RowsAffected > 0 {
		liked = true
		// the like row is already in; a fan-out failure must not undo it
		if err := notifications.Fanout(db, actorID, post.UserID, models.NotificationLike, "liked your post",
			notifications.Refs{PostID: &post.ID}); err != nil {
			log.Println("Error creating like notification:", err)
		}
	} else {
		// already liked: flip back off
		if err := db.Where("user_id = ? AND post_id = ?", actorID, postID).
			Delete(&models.Like{}).Error; err != nil {
			return false, 0, err
		}
	}

	if err := db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// AddComment appends to the post's comment list, notifies the owner and
// broadcasts a live comment event to online users.
func AddComment(db *gorm.DB, actorID string, postID uuid.UUID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment text is required", helpers.ErrEmptyContent)
	}

	var post models.Post
	if err := db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %s", helpers.ErrNotFound, postID)
		}
		return nil, err
	}

	comment := models.Comment{
		ID:      uuid.New(),
		PostID:  postID,
		UserID:  actorID,
		Content: content,
	}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := notifications.Fanout(db, actorID, post.UserID, models.NotificationComment, "commented on your post",
		notifications.Refs{PostID: &post.ID}); err != nil {
		log.Println("Error creating comment notification:", err)
	}

	channels.Default.Push(post.UserID, channels.Event{Kind: "comment", Data: comment})
	return &comment, nil
}

// ToggleSave flips the actor's bookmark on the post. No notification.
func ToggleSave(db *gorm.DB, actorID string, postID uuid.UUID) (saved bool, err error) {
	var post models.Post
	if err := db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: post %s", helpers.ErrNotFound, postID)
		}
		return false, err
	}

	save := models.Save{UserID: actorID, PostID: postID}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&save)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	return false, db.Where("user_id = ? AND post_id = ?", actorID, postID).Delete(&models.Save{}).Error
}

// DeletePostRecord removes a post and its dependent rows. Only the owner
// may delete.
func DeletePostRecord(db *gorm.DB, actorID string, postID uuid.UUID) error {
	var post models.Post
	if err := db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post %s", helpers.ErrNotFound, postID)
		}
		return err
	}
	if post.UserID != actorID {
		return fmt.Errorf("%w: only the owner can delete a post", helpers.ErrForbidden)
	}

	for _, dependent := range []interface{}{&models.Like{}, &models.Save{}, &models.Comment{}} {
		if err := db.Where("post_id = ?", postID).Delete(dependent).Error; err != nil {
			return err
		}
	}
	return db.Where("id = ?", postID).Delete(&models.Post{}).Error
}

func CreatePost(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	content := c.FormValue("content")

	var mediaURLs []string
	if form, err := c.MultipartForm(); err == nil {
		for _, file := range form.File["images"] {
			if err := utils.ValidateImageUpload(file); err != nil {
				return helpers.HandleError(c, fiber.StatusBadRequest, err.Error(), err)
			}
			fileName := uuid.New().String() + "-" + file.Filename
			filePath := fmt.Sprintf("post-media/%s", fileName)
			_, publicURL, _, err := utils.UploadToSupabaseStorage(file, filePath)
			if err != nil {
				return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload media", err)
			}
			mediaURLs = append(mediaURLs, publicURL)
		}
	}

	post, err := CreatePostRecord(db, userID, content, mediaURLs)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Post created successfully", post)
}

func CreateLike(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input struct {
		PostID string `json:"post_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing post_id", err)
	}
	postID, err := uuid.Parse(input.PostID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post_id format", err)
	}

	liked, count, err := ToggleLike(db, actorID, postID)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, message, fiber.Map{
		"liked":       liked,
		"likes_count": count,
	})
}

func CreateComment(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input struct {
		PostID  string `json:"post_id"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	postID, err := uuid.Parse(input.PostID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post_id format", err)
	}

	comment, err := AddComment(db, actorID, postID, input.Message)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Comment added successfully", comment)
}

func CreateSave(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input struct {
		PostID string `json:"post_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	postID, err := uuid.Parse(input.PostID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post_id format", err)
	}

	saved, err := ToggleSave(db, actorID, postID)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	message := "Post removed from saved"
	if saved {
		message = "Post saved"
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, message, fiber.Map{"saved": saved})
}

func DeletePost(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	postID, err := uuid.Parse(c.Params("post_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post_id format", err)
	}

	if err := DeletePostRecord(db, actorID, postID); err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Post deleted successfully", nil)
}

func GetLikesCount(c *fiber.Ctx) error {
	db := database.DB

	postID, err := uuid.Parse(c.Params("post_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post_id format", err)
	}

	var count int64
	if err := db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch likes count", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Likes count retrieved", fiber.Map{"likes_count": count})
}
