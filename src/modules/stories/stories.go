package stories

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/Sagarsingh9528/Ping/src/modules/tasks"
	"github.com/Sagarsingh9528/Ping/src/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const storyTTL = 24 * time.Hour

// CreateStoryRecord replaces the owner's active story. The previous story,
// if any, is deleted first so a user never has more than one. Expiry is
// handled by a deferred task keyed by the new story id.
func CreateStoryRecord(db *gorm.DB, scheduler tasks.Scheduler, userID, content, mediaURL, mediaType, background string) (*models.Story, error) {
	if content == "" && mediaURL == "" {
		return nil, fmt.Errorf("%w: a story needs text or media", helpers.ErrEmptyContent)
	}
	if mediaType == "" {
		mediaType = "text"
	}

	var previous models.Story
	err := db.Where("user_id = ?", userID).First(&previous).Error
	if err == nil {
		if err := db.Where("story_id = ?", previous.ID).Delete(&models.StoryView{}).Error; err != nil {
			return nil, err
		}
		if err := db.Where("id = ?", previous.ID).Delete(&models.Story{}).Error; err != nil {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	story := models.Story{
		ID:              uuid.New(),
		UserID:          userID,
		Content:         content,
		MediaURL:        mediaURL,
		MediaType:       mediaType,
		BackgroundColor: background,
	}
	if err := db.Create(&story).Error; err != nil {
		return nil, err
	}

	if scheduler != nil {
		if err := scheduler.Schedule(models.TaskStoryExpire, story.ID.String(), time.Now().Add(storyTTL)); err != nil {
			return nil, err
		}
	}
	return &story, nil
}

// ViewStory appends the viewer once; the first view wins and repeats are
// no-ops. The insert is an atomic add-if-absent.
func ViewStory(db *gorm.DB, actorID string, storyID uuid.UUID) (*models.Story, error) {
	var story models.Story
	if err := db.Where("id = ?", storyID).First(&story).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: story %s", helpers.ErrNotFound, storyID)
		}
		return nil, err
	}

	view := models.StoryView{StoryID: storyID, ViewerID: actorID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// StoryFeed returns the viewer's followed users' stories created within the
// last 24h, newest first. The age filter backs up the scheduled deletion.
func StoryFeed(db *gorm.DB, viewerID string) ([]models.Story, error) {
	cutoff := time.Now().Add(-storyTTL)
	stories := []models.Story{}
	err := db.Where("created_at > ?", cutoff).
		Where("user_id IN (?)",
			db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", viewerID)).
		Order("created_at desc").
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}

// StoriesByUsername returns the named user's active stories. The 24h window
// applies the same way it does in the feed.
func StoriesByUsername(db *gorm.DB, username string) ([]models.Story, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", helpers.ErrNotFound, username)
		}
		return nil, err
	}

	cutoff := time.Now().Add(-storyTTL)
	stories := []models.Story{}
	err := db.Where("user_id = ? AND created_at > ?", user.ID, cutoff).
		Order("created_at desc").
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}

func CreateStory(c *fiber.Ctx) error {
	db := database.DB
	userID := c.Locals("user_id").(string)

	content := c.FormValue("content")
	background := c.FormValue("background_color")

	var mediaURL, mediaType string
	if file, err := c.FormFile("media"); err == nil {
		mediaType, err = utils.ValidateStoryUpload(file)
		if err != nil {
			return helpers.HandleError(c, fiber.StatusBadRequest, err.Error(), err)
		}
		fileName := uuid.New().String() + "-" + file.Filename
		filePath := fmt.Sprintf("story-media/%s", fileName)
		_, publicURL, _, err := utils.UploadToSupabaseStorage(file, filePath)
		if err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload media", err)
		}
		mediaURL = publicURL
	}

	story, err := CreateStoryRecord(db, tasks.DefaultScheduler(), userID, content, mediaURL, mediaType, background)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Story created successfully", story)
}

func View(c *fiber.Ctx) error {
	db := database.DB
	actorID := c.Locals("user_id").(string)

	storyID, err := uuid.Parse(c.Params("story_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid story_id format", err)
	}

	story, err := ViewStory(db, actorID, storyID)
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}

	var viewers []models.User
	if err := db.Where("id IN (?)",
		db.Model(&models.StoryView{}).Select("viewer_id").Where("story_id = ?", storyID)).
		Find(&viewers).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch viewers", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Story viewed", fiber.Map{
		"story":   story,
		"viewers": viewers,
	})
}

func GetStoriesByUsername(c *fiber.Ctx) error {
	db := database.DB

	stories, err := StoriesByUsername(db, c.Params("username"))
	if err != nil {
		return helpers.HandleError(c, helpers.StatusForError(err), err.Error(), err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Stories fetched successfully", stories)
}

func GetStoryFeed(c *fiber.Ctx) error {
	db := database.DB
	viewerID := c.Locals("user_id").(string)

	stories, err := StoryFeed(db, viewerID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch stories", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Stories fetched successfully", stories)
}
