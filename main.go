package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/Sagarsingh9528/Ping/src/core/config"
	"github.com/Sagarsingh9528/Ping/src/core/database"
	"github.com/Sagarsingh9528/Ping/src/core/router"
	"github.com/Sagarsingh9528/Ping/src/modules/tasks"
)

func main() {
	// Initialize the Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // video uploads up to 50MB
	})

	// Middleware
	app.Use(recover.New())   // Recover middleware to handle panics
	app.Use(requestid.New()) // Middleware to generate unique request IDs

	// Setup environment variables
	config.SetupEnv()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.Config("ALLOWED_ORIGINS"),
	}))

	// Connect to the database
	database.ConnectDB()

	// Background runner for deferred tasks (story expiry, connection
	// reminders, unseen-message digests)
	runner := tasks.NewRunner(tasks.NewSMTPSender())
	go runner.Run()

	// Set up routes
	router.InitialiseAndSetupRoutes(app)

	// Get port from config and start the server
	port := config.Config("APP_PORT")
	log.Fatal(app.Listen(fmt.Sprintf(":%s", port)))
}
