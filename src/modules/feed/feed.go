package feed

import (
	"strconv"
	"time"

	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/helpers"
	"github.com/Sagarsingh9528/Ping/src/core/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FeedPost struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Content       string    `json:"content"`
	MediaURLs     []string  `json:"media_urls"`
	PostType      string    `json:"post_type"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	Liked         bool      `json:"liked"`
	Saved         bool      `json:"saved"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssemblePosts returns posts authored by the viewer or anyone the viewer
// follows, newest first. Ties on created_at break on insertion order (id),
// keeping the sort stable. Each call re-queries from scratch; no cursor
// state is kept server side.
func AssemblePosts(db *gorm.DB, viewerID string, limit, offset int) ([]models.Post, error) {
	posts := []models.Post{}
	err := db.Where("user_id = ? OR user_id IN (?)", viewerID,
		db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", viewerID)).
		Order("created_at DESC, id").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Decorate resolves per-post counts and the viewer's own like/save flags.
func Decorate(db *gorm.DB, viewerID string, posts []models.Post) ([]FeedPost, error) {
	feedPosts := make([]FeedPost, 0, len(posts))
	for _, post := range posts {
		var likes, comments, viewerLiked, viewerSaved int64
		if err := db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", post.ID, viewerID).Count(&viewerLiked).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&models.Save{}).Where("post_id = ? AND user_id = ?", post.ID, viewerID).Count(&viewerSaved).Error; err != nil {
			return nil, err
		}

		mediaURLs := []string(post.MediaURLs)
		if mediaURLs == nil {
			mediaURLs = []string{}
		}
		feedPosts = append(feedPosts, FeedPost{
			ID:            post.ID.String(),
			UserID:        post.UserID,
			Content:       post.Content,
			MediaURLs:     mediaURLs,
			PostType:      post.PostType,
			LikesCount:    likes,
			CommentsCount: comments,
			Liked:         viewerLiked > 0,
			Saved:         viewerSaved > 0,
			CreatedAt:     post.CreatedAt,
		})
	}
	return feedPosts, nil
}

func FetchFeed(c *fiber.Ctx) error {
	db := database.DB
	viewerID := c.Locals("user_id").(string)

	limit, offset := ParsePagination(c)

	posts, err := AssemblePosts(db, viewerID, limit, offset)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch feed", err)
	}

	feedPosts, err := Decorate(db, viewerID, posts)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch feed", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Feed fetched successfully", feedPosts)
}

// ParsePagination extracts and validates pagination parameters.
func ParsePagination(c *fiber.Ctx) (int, int) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
