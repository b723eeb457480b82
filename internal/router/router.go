package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/qrattend-backend/internal/config"
	"github.com/stemsi/qrattend-backend/internal/handler"
	"github.com/stemsi/qrattend-backend/internal/middleware"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	QR         *handler.QRHandler
	Session    *handler.SessionHandler
	WS         *handler.WSHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background helpers such as the rate limiter's eviction loop.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	metricsHandler http.Handler,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	router.GET("/health", handlers.Health.Health)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	authLimiter := middleware.NewRateLimiter(ctx, cfg.LoginRatePerMin, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", authLimiter.Middleware(), handlers.Auth.StudentLogin)
		auth.POST("/teacher/login", authLimiter.Middleware(), handlers.Auth.TeacherLogin)

		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me",
			middleware.RequireJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
			handlers.Auth.Me,
		)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
		middleware.NoStore(),
	)
	{
		studentAPI.POST("/scan", handlers.Attendance.Scan)
		studentAPI.GET("/attendance", handlers.Attendance.StudentAttendance)
	}

	// ─── 3. Teacher Group (JWT + Single Device) ────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(
		middleware.RequireTeacherJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		teacherAPI.GET("/attendance", middleware.NoStore(), handlers.Attendance.Sheet)
		teacherAPI.GET("/attendance/export", middleware.NoStore(), handlers.Attendance.Export)

		teacherAPI.POST("/qr", handlers.QR.Generate)
		teacherAPI.GET("/qr", middleware.CacheControl(60), handlers.QR.Image)

		teacherAPI.GET("/sessions", middleware.NoStore(), handlers.Session.List)
		teacherAPI.POST("/sessions", handlers.Session.Open)
		teacherAPI.POST("/sessions/:id/close", handlers.Session.Close)
	}

	// ─── 4. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireTeacherJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/teacher/live", handlers.WS.LiveStream)
	}

	return router
}
