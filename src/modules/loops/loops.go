package loops

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

// CreateLoopRecord inserts a loop. Media is mandatory; the caption is not.
func CreateLoopRecord(db *gorm.DB, userID, caption, mediaURL string) (*models.Loop, error) {
	if mediaURL == "" {
		return nil, fmt.Errorf("%w: a loop needs media", helpers.ErrEmptyContent)
	}

	loop := models.Loop{
		ID:       uuid.New(),
		UserID:   userID,
		Caption:  caption,
		MediaURL: mediaURL,
	}
	if err := db.Create(&loop).Error; err != nil {
		return nil, err
	}
	return &loop, nil
}

// ToggleLike flips the actor's like membership on the loop, same atomic
// add-if-absent / keyed-delete pair as post likes. A transition to liked
// notifies the owner; fan-out failure never undoes the toggle.
func ToggleLike(db *gorm.DB, actorID string, loopID uuid.UUID) (liked bool, count int64, err error) {
	var loop models.Loop
	if err := db.Where("id = ?", loopID).First(&loop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, fmt.Errorf("%w: loop %s", helpers.ErrNotFound, loopID)
		}
		return false, 0, err
	}

	like := models.LoopLike{UserID: actorID, LoopID: loopID}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	if result.Error != nil {
		return false, 0, result.Error
	}

	if result.RowsAffected > 0 {
		liked = true
		if err := notifications.Fanout(db, actorID, loop.UserID, models.NotificationLike, "liked your loop",
			notifications.Refs{LoopID: &loop.ID}); err != nil {
			log.Println("Error creating like notification:", err)
		}
	} else {
		if err := db.Where("user_id = ? AND loop_id = ?", actorID, loopID).
			Delete(&models.LoopLike{}).Error; err != nil {
			return false, 0, err
		}
	}

	if err := db.Model(&models.LoopLike{}).Where("loop_id = ?", loopID).Count(&count).Error; err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// AddComment appends to the loop's comment list and notifies the owner.
func AddComment(db *gorm.DB, actorID string, loopID uuid.UUID, content string) (*models.LoopComment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment text is required", helpers.ErrEmptyContent)
	}

	var loop models.Loop
	if err := db.Where("id = ?", loopID).First(&loop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: loop %s", helpers.ErrNotFound, loopID)
		}
		return nil, err
	}

	comment := models.LoopComment{
		ID:      uuid.New(),
		LoopID:  loopID,
		UserID:  actorID,
		Content: content,
	}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := notifications.Fanout(db, actorID, loop.UserID, models.NotificationComment, "commented on your loop",
		notifications.Refs{LoopID: &loop.ID}); err != nil {
		log.Println("Error creating comment notification:", err)
	}

	channels.Default.Push(loop.UserID, channels.Event{Kind: "loop_comment", Data: comment})
	return &comment, nil
}

// ListLoops returns every loop, newest first. The loop surface has no
// follow scoping: all clips are public.
func ListLoops(db *gorm.DB, limit, offset int) ([]models.Loop, error) {
	loops := []models.Loop{}
	err := db.Order("created_at DESC, id").
		Limit(limit).
		Offset(offset).
		Find(&loops).Error
	if err != nil {
		return nil, err
	}
	return loops, nil
}

func Upload(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	caption := c.FormValue("caption")

	file, err := c.FormFile("media")
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Media is required", err)
	}
	mediaType, err := utils.ValidateStoryUpload(file)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, err.Error(), err)
	}
	if mediaType != "video" {
		return helpers.HandleError(c, fiber.StatusBadRequest, "A loop needs video media", nil)
	}

	fileName := uuid.New().String() + "-" + file.Filename
	filePath := fmt.Sprintf("loop-media/%s", fileName)
	_, publicURL, _, err := utils.UploadToSupabaseStorage(file, filePath)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload media", err)
	}

	loop, err := CreateLoopRecord(db, userID, caption, publicURL)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Loop uploaded successfully", loop)
}

func CreateLike(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	var input struct {
		LoopID string `json:"loop_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing loop_id", err)
	}
	loopID, err := uuid.Parse(input.LoopID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid loop_id format", err)
	}

	liked, count, err := ToggleLike(db, actorID, loopID)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	message := "Loop unliked"
	if liked {
		message = "Loop liked"
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
		LoopID  string `json:"loop_id" validate:"required"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing loop_id", err)
	}
	loopID, err := uuid.Parse(input.LoopID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid loop_id format", err)
	}

	comment, err := AddComment(db, actorID, loopID, input.Message)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Comment added successfully", comment)
}

func GetLoops(c *fiber.Ctx) error {
	db := database.DB

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	loops, err := ListLoops(db, limit, offset)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch loops", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Loops fetched successfully", loops)
}
