package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"competition-entry-system/handlers"
	"competition-entry-system/middleware"
	"competition-entry-system/models"
	"competition-entry-system/services"
	"competition-entry-system/utils"
	"competition-entry-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — JSON payloads only, no media uploads
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.Studio{},
		&models.Dancer{},
		&models.DancerRegistration{},
		&models.Entry{},
		&models.EntryParticipant{},
		&models.Payment{},
		&models.Score{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Optional ranking cache
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Printf("✅ Redis ranking cache enabled (%s)", addr)
	} else {
		log.Println("⚠️  REDIS_ADDR not set — rankings served uncached")
	}

	eventService := services.NewEventService(db)
	entryService := services.NewEntryService(db)
	feeService := services.NewFeeService(db)
	financeService := services.NewFinanceService(db)
	scoreService := services.NewScoreService(db, rdb)
	dancerService := services.NewDancerService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Payment provider polling (mirrors provider payments into our ledger)
	paymentSyncClient := workers.NewPaymentSyncClient(db)
	go workers.PollPayments(ctx, paymentSyncClient, 15*time.Second)

	// Registration-deadline scheduler
	eventService.StartDeadlineScheduler()

	// ✅ Setup routes — enforced Gateway auth on everything
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupEntryRoutes(app, entryService, feeService)
	handlers.SetupFinanceRoutes(app, financeService)
	handlers.SetupScoreRoutes(app, scoreService)
	handlers.SetupDancerRoutes(app, dancerService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Payment polling running (every 15s)")
	log.Println("✅ Registration-deadline scheduler running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
