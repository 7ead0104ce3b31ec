package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"eduhelm-backend/internal/handlers"
	"eduhelm-backend/internal/middleware"
	"eduhelm-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	goalHandler *handlers.GoalHandler,
	scheduleHandler *handlers.ScheduleHandler,
	courseHandler *handlers.CourseHandler,
	noteHandler *handlers.NoteHandler,
	resourceHandler *handlers.ResourceHandler,
	groupHandler *handlers.GroupHandler,
	reviewHandler *handlers.ReviewHandler,
	badgeHandler *handlers.BadgeHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Get("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── User Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", authHandler.Me)
			r.Put("/me", authHandler.UpdateProfile)
			r.Get("/stats", badgeHandler.Stats)
		})

		// ──── Study Session Routes ────
		r.Route("/study-sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", sessionHandler.Start)
			r.Post("/{id}/stop", sessionHandler.Stop)
			r.Get("/active", sessionHandler.Active)
			r.Get("/history", sessionHandler.History)
		})

		// ──── Dashboard & Analytics Routes ────
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", sessionHandler.Dashboard)
			r.Get("/analytics", sessionHandler.Analytics)
		})

		// ──── Goal Routes ────
		r.Route("/goals", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Put("/", goalHandler.Set)
			r.Get("/", goalHandler.List)
			r.Delete("/{id}", goalHandler.Delete)
		})

		// ──── Schedule Routes ────
		r.Route("/schedules", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", scheduleHandler.Create)
			r.Get("/", scheduleHandler.List)
			r.Delete("/{id}", scheduleHandler.Delete)
		})

		// ──── Course Routes ────
		r.Route("/courses", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", courseHandler.List)
			r.Get("/{id}", courseHandler.Get)
			r.Get("/{id}/lessons/{lessonID}", courseHandler.GetLesson)
			r.Post("/{id}/lessons/{lessonID}/complete", courseHandler.CompleteLesson)
			r.Delete("/{id}/lessons/{lessonID}/complete", courseHandler.UncompleteLesson)
		})

		// ──── Note Routes ────
		r.Route("/notes", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)
			r.Get("/{id}", noteHandler.Get)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
			r.Get("/{id}/reviews", reviewHandler.ListForNote)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", noteHandler.CreateCategory)
				r.Get("/", noteHandler.ListCategories)
				r.Delete("/{id}", noteHandler.DeleteCategory)
			})
		})

		// ──── Resource Routes ────
		r.Route("/resources", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", resourceHandler.Create)
			r.Post("/upload", resourceHandler.Upload)
			r.Get("/", resourceHandler.List)
			r.Get("/{id}", resourceHandler.Get)
			r.Put("/{id}", resourceHandler.Update)
			r.Delete("/{id}", resourceHandler.Delete)
			r.Post("/{id}/download", resourceHandler.Download)
			r.Get("/{id}/reviews", reviewHandler.ListForResource)
		})

		// ──── Study Group Routes ────
		r.Route("/groups", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", groupHandler.Create)
			r.Get("/", groupHandler.List)
			r.Get("/mine", groupHandler.ListMine)
			r.Get("/{id}", groupHandler.Get)
			r.Delete("/{id}", groupHandler.Delete)
			r.Post("/{id}/join", groupHandler.Join)
			r.Post("/{id}/leave", groupHandler.Leave)
			r.Get("/{id}/members", groupHandler.Members)
			r.Put("/{id}/members/{memberID}/role", groupHandler.UpdateMemberRole)

			r.Route("/{id}/discussions", func(r chi.Router) {
				r.Post("/", groupHandler.CreateDiscussion)
				r.Get("/", groupHandler.ListDiscussions)
				r.Get("/{discussionID}", groupHandler.GetDiscussion)
				r.Delete("/{discussionID}", groupHandler.DeleteDiscussion)
				r.Post("/{discussionID}/replies", groupHandler.Reply)
				r.Put("/{discussionID}/pin", groupHandler.PinDiscussion)
				r.Put("/{discussionID}/lock", groupHandler.LockDiscussion)
			})
		})

		// ──── Peer Review Routes ────
		r.Route("/reviews", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", reviewHandler.Create)
			r.Get("/mine", reviewHandler.ListMine)
		})

		// ──── Badge Routes ────
		r.Route("/badges", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", badgeHandler.List)
			r.Post("/check", badgeHandler.Check)
		})

		// ──── Notification & Activity Routes ────
		r.Route("/notifications", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", notificationHandler.List)
			r.Put("/{id}/read", notificationHandler.MarkRead)
			r.Put("/read-all", notificationHandler.MarkAllRead)
		})

		r.Route("/activity", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", notificationHandler.Feed)
			r.Get("/mine", notificationHandler.MyFeed)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
