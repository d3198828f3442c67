package router

import (
	"fmt"
	"sort"

	"github.com/Sagarsingh9528/Ping/src/core/middleware"
	connection "github.com/Sagarsingh9528/Ping/src/modules/connections"
	"github.com/Sagarsingh9528/Ping/src/modules/feed"
	"github.com/Sagarsingh9528/Ping/src/modules/identity"
	"github.com/Sagarsingh9528/Ping/src/modules/loops"
	"github.com/Sagarsingh9528/Ping/src/modules/messages"
	"github.com/Sagarsingh9528/Ping/src/modules/notifications"
	"github.com/Sagarsingh9528/Ping/src/modules/posts"
	"github.com/Sagarsingh9528/Ping/src/modules/stories"
	"github.com/Sagarsingh9528/Ping/src/modules/users"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

func InitialiseAndSetupRoutes(app *fiber.App) {
	root := app.Group("/", logger.New())

	root.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	apiV1 := root.Group("/api/v1")
	setupAPIV1Routes(apiV1)

	routes := app.GetRoutes()
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})
	for _, route := range routes {
		fmt.Printf("%s\t%s\n", route.Method, route.Path)
	}
}

func setupAPIV1Routes(router fiber.Router) {
	// Grouped API endpoints
	userGroup := router.Group("/users")
	postGroup := router.Group("/posts")
	loopGroup := router.Group("/loops")
	storyGroup := router.Group("/stories")
	feedGroup := router.Group("/feed")
	messageGroup := router.Group("/messages")
	notificationGroup := router.Group("/notifications")
	webhookGroup := router.Group("/webhooks")

	// Identity-provider webhooks (secret-checked, no JWT)
	webhookGroup.Post("/identity", identity.Webhook)

	// User routes
	userGroup.Get("/me", middleware.Protected(), users.GetMe)
	userGroup.Put("/profile", middleware.Protected(), users.UpdateProfile)
	userGroup.Post("/upload-profile-photo", middleware.Protected(), users.UploadProfilePhoto)
	userGroup.Post("/upload-cover-photo", middleware.Protected(), users.UploadCoverPhoto)
	userGroup.Get("/search", middleware.Protected(), users.Search)
	userGroup.Get("/discover", middleware.Protected(), users.Discover)
	userGroup.Get("/profile/:username", middleware.Protected(), users.GetProfileByUsername)

	// Relationship graph
	userGroup.Post("/follow", middleware.Protected(), connection.Follow)
	userGroup.Post("/unfollow", middleware.Protected(), connection.Unfollow)
	userGroup.Post("/connect", middleware.Protected(), connection.Connect)
	userGroup.Post("/connect/accept", middleware.Protected(), connection.Accept)
	userGroup.Get("/connections", middleware.Protected(), connection.GetConnections)

	// Posts
	postGroup.Post("/add", middleware.Protected(), posts.CreatePost)
	postGroup.Post("/like", middleware.Protected(), posts.CreateLike)
	postGroup.Post("/comment", middleware.Protected(), posts.CreateComment)
	postGroup.Post("/save", middleware.Protected(), posts.CreateSave)
	postGroup.Get("/:post_id/likes/count", middleware.Protected(), posts.GetLikesCount)
	postGroup.Delete("/:post_id", middleware.Protected(), posts.DeletePost)

	// Loops
	loopGroup.Post("/upload", middleware.Protected(), loops.Upload)
	loopGroup.Get("/", middleware.Protected(), loops.GetLoops)
	loopGroup.Post("/like", middleware.Protected(), loops.CreateLike)
	loopGroup.Post("/comment", middleware.Protected(), loops.CreateComment)

	// Stories
	storyGroup.Post("/create", middleware.Protected(), stories.CreateStory)
	storyGroup.Get("/feed", middleware.Protected(), stories.GetStoryFeed)
	storyGroup.Get("/user/:username", middleware.Protected(), stories.GetStoriesByUsername)
	storyGroup.Post("/view/:story_id", middleware.Protected(), stories.View)

	// Feed routes
	feedGroup.Get("/", middleware.Protected(), feed.FetchFeed)

	// Messaging routes
	messageGroup.Post("/send", middleware.Protected(), messages.SendMessage)
	messageGroup.Get("/recent", middleware.Protected(), messages.GetRecentThreads)
	messageGroup.Get("/thread/:user_id", middleware.Protected(), messages.GetThread)
	messageGroup.Get("/ws", middleware.Protected(), messages.UpgradeWebSocket, websocket.New(messages.LiveHandler))

	// Notifications
	notificationGroup.Get("/", middleware.Protected(), notifications.GetNotifications)
	notificationGroup.Post("/mark-read", middleware.Protected(), notifications.MarkAsRead)
}
