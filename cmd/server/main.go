package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduhelm-backend/internal/config"
	"eduhelm-backend/internal/database"
	"eduhelm-backend/internal/handlers"
	"eduhelm-backend/internal/middleware"
	"eduhelm-backend/internal/repository"
	"eduhelm-backend/internal/router"
	"eduhelm-backend/internal/services"
	"eduhelm-backend/internal/websocket"
	"eduhelm-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting EduHelm Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	goalRepo := repository.NewGoalRepo(pool)
	scheduleRepo := repository.NewScheduleRepo(pool)
	courseRepo := repository.NewCourseRepo(pool)
	noteRepo := repository.NewNoteRepo(pool)
	resourceRepo := repository.NewResourceRepo(pool)
	groupRepo := repository.NewGroupRepo(pool)
	discussionRepo := repository.NewDiscussionRepo(pool)
	reviewRepo := repository.NewReviewRepo(pool)
	badgeRepo := repository.NewBadgeRepo(pool)
	notifRepo := repository.NewNotificationRepo(pool)
	activityRepo := repository.NewActivityRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth, emailService)
	activityPublisher := services.NewActivityPublisher(redisClients.Queue)
	notifier := services.NewNotifier(notifRepo, redisClients.PubSub)
	feedService := services.NewFeedService(activityRepo)
	goalService := services.NewGoalService(goalRepo, sessionRepo, activityPublisher)
	progressService := services.NewProgressService(sessionRepo, userRepo, courseRepo, goalService, activityPublisher)
	scheduleService := services.NewScheduleService(scheduleRepo)
	courseService := services.NewCourseService(courseRepo, activityPublisher)
	noteService := services.NewNoteService(noteRepo, activityPublisher)
	resourceService := services.NewResourceService(resourceRepo, activityPublisher)
	groupService := services.NewGroupService(groupRepo, discussionRepo, notifier, activityPublisher)
	reviewService := services.NewReviewService(reviewRepo, noteRepo, resourceRepo, notifier, activityPublisher)
	badgeService := services.NewBadgeService(badgeRepo, notifier, activityPublisher)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewSessionHandler(progressService)
	goalHandler := handlers.NewGoalHandler(goalService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	courseHandler := handlers.NewCourseHandler(courseService)
	noteHandler := handlers.NewNoteHandler(noteService)
	resourceHandler := handlers.NewResourceHandler(resourceService, cfg.StoragePath)
	groupHandler := handlers.NewGroupHandler(groupService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	badgeHandler := handlers.NewBadgeHandler(badgeService)
	notificationHandler := handlers.NewNotificationHandler(notifier, feedService)

	// ──── Step 5: Start Activity Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, activityRepo, badgeService, cfg.EventWorkers)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.EventWorkers)

	notificationScheduler := services.NewNotificationScheduler(userRepo, scheduleRepo, goalRepo, notifier, emailService)
	notificationScheduler.Start()
	log.Println("✓ Notification scheduler started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		sessionHandler,
		goalHandler,
		scheduleHandler,
		courseHandler,
		noteHandler,
		resourceHandler,
		groupHandler,
		reviewHandler,
		badgeHandler,
		notificationHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		notificationScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ EduHelm Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
