package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"academy/cache"
	"academy/config"
	adminController "academy/controllers/admin"
	courseController "academy/controllers/course"
	learningController "academy/controllers/learning"
	paymentController "academy/controllers/payments"
	"academy/database"
	"academy/realtime"
	adminRoutes "academy/routers/adminRoutes"
	authRoutes "academy/routers/authRoutes"
	courseRoutes "academy/routers/courseRoutes"
	paymentRoutes "academy/routers/paymentRoutes"
	learningService "academy/services/learning"
	paymentService "academy/services/payments"
	"academy/tasks"
	"academy/utils"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	store := cache.NewStore(config.AppConfig.RedisAddr)
	hub := realtime.NewHub()

	worker := tasks.NewWorker(database.Database.Db, hub)
	worker.Start()

	cacheTTL := time.Duration(config.AppConfig.CacheTTLMins) * time.Minute
	learningSvc := learningService.NewService(database.Database.Db, store, hub, worker, cacheTTL)
	paymentSvc := paymentService.NewService(database.Database.Db, store, hub, worker, learningSvc)

	courseController.Init(learningSvc, paymentSvc)
	learningController.Init(learningSvc, paymentSvc)
	paymentController.Init(paymentSvc)
	adminController.Init(paymentSvc)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve static files from the public folder
	app.Static("/", "./public")

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	adminRoutes.SetupAdminRoutes(app)
	realtime.SetupRealtimeRoutes(app, hub)

	utils.InitializeContentScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
