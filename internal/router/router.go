package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classpoint/engage-backend/internal/config"
	"github.com/classpoint/engage-backend/internal/handler"
	"github.com/classpoint/engage-backend/internal/middleware"
	"github.com/classpoint/engage-backend/internal/response"
	"github.com/classpoint/engage-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Poll      *handler.PollHandler
	Student   *handler.StudentHandler
	Class     *handler.ClassHandler
	Quiz      *handler.QuizHandler
	Answer    *handler.AnswerHandler
	Media     *handler.MediaHandler
	Dashboard *handler.DashboardHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiters: login attempts and vote bursts are the abuse surfaces.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	voteLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/teacher/login", handlers.Auth.TeacherLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.GET("/teacher/me", middleware.RequireTeacherJWT(authService), handlers.Auth.GetTeacherProfile)
	}

	// ─── 2. Quick Polls (Public) ───────────────────────────────────────
	// Poll creation works anonymously; a teacher token, when present, is
	// recorded as the creator.
	polls := router.Group("/api/v1/quickpolls")
	{
		polls.POST("", middleware.OptionalJWT(authService), handlers.Poll.CreatePoll)
		polls.GET("", handlers.Poll.SearchPollResults)
		polls.GET("/:code", handlers.Poll.GetPollDetails)
		polls.POST("/:code/vote", voteLimiter.Middleware(), handlers.Poll.SubmitVote)
		polls.GET("/:code/results", handlers.Poll.GetPollResults)
		polls.POST("/:code/close", handlers.Poll.ClosePoll)
	}

	// ─── 3. Class Joining (Public) ─────────────────────────────────────
	router.POST("/api/v1/classes/join", handlers.Student.JoinClass)

	// ─── 4. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/classes/:id/quizzes", handlers.Quiz.ListClassQuizzes)
		studentAPI.GET("/quizzes/:id", handlers.Quiz.GetQuiz)
		studentAPI.GET("/quizzes/:id/my-answer", handlers.Answer.GetMyAnswer)
		studentAPI.GET("/multi-quizzes/:id", handlers.Quiz.GetMultiQuiz)
		studentAPI.POST("/answers", handlers.Answer.SubmitAnswer)
		studentAPI.POST("/media/upload", handlers.Media.UploadMedia)
	}

	// ─── 5. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		// Class management
		teacherAPI.POST("/classes", handlers.Class.CreateClass)
		teacherAPI.GET("/classes", handlers.Class.ListClasses)
		teacherAPI.GET("/classes/:id", handlers.Class.GetClass)
		teacherAPI.PATCH("/classes/:id", handlers.Class.UpdateClass)
		teacherAPI.GET("/classes/:id/quizzes", handlers.Quiz.ListClassQuizzes)

		// Quiz authoring
		teacherAPI.POST("/quizzes", handlers.Quiz.CreateQuiz)
		teacherAPI.GET("/quizzes/:id", handlers.Quiz.GetQuiz)
		teacherAPI.PATCH("/quizzes/:id", handlers.Quiz.UpdateQuiz)
		teacherAPI.DELETE("/quizzes/:id", handlers.Quiz.DeleteQuiz)
		teacherAPI.GET("/quizzes/:id/submissions", handlers.Quiz.ListSubmissions)
		teacherAPI.GET("/multi-quizzes/:id", handlers.Quiz.GetMultiQuiz)

		// Roster and dashboard
		teacherAPI.GET("/students", handlers.Student.ListStudents)
		teacherAPI.GET("/dashboard", handlers.Dashboard.GetDashboard)
	}

	return router
}
