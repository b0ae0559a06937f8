// Package server contains the HTTP handlers and the Fiber wiring for the site.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/forms"
	"yatube/internal/media"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; form-action 'self'; frame-ancestors 'self'"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	views          fiber.Views
	pages          fiber.Storage
	media          media.Store
	sessions       *middleware.SessionManager
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	userService    *service.UserService
}

// Option customizes a Server built by NewServerWithDeps.
type Option func(*Server)

// WithViews replaces the embedded template engine.
func WithViews(v fiber.Views) Option {
	return func(s *Server) { s.views = v }
}

// WithPageStorage sets the storage behind the index page cache.
func WithPageStorage(st fiber.Storage) Option {
	return func(s *Server) { s.pages = st }
}

// WithMediaStore sets where uploaded images go.
func WithMediaStore(m media.Store) Option {
	return func(s *Server) { s.media = m }
}

// NewServer creates a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = cache.Connect(ctx, cfg.RedisURL)
	}

	pages, err := cache.NewPageStorage(cfg.CacheBackend, rdb)
	if err != nil {
		return nil, err
	}
	store, err := media.NewStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}

	return NewServerWithDeps(cfg, db, rdb, WithPageStorage(pages), WithMediaStore(store))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// rdb may be nil. Unset options default to a memory page cache, a local media
// store and the embedded templates.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, opts ...Option) (*Server, error) {
	s := &Server{
		config: cfg,
		db:     db,
		redis:  rdb,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.pages == nil {
		pages, err := cache.NewPageStorage(cache.BackendMemory, nil)
		if err != nil {
			return nil, err
		}
		s.pages = pages
	}
	if s.media == nil {
		s.media = media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	}
	if s.views == nil {
		s.views = views.New(s.media.URL)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db, rdb)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s.userRepo = userRepo
	s.postService = service.NewPostService(postRepo, groupRepo, userRepo, followRepo, commentRepo,
		media.NewImageSaver(s.media),
		service.PostOptions{
			PageSize: cfg.PageSize,
			Limits:   forms.Limits{MaxImageBytes: cfg.MediaMaxUploadBytes},
		})
	s.commentService = service.NewCommentService(commentRepo, postRepo)
	s.followService = service.NewFollowService(followRepo, userRepo)
	s.userService = service.NewUserService(userRepo)
	s.sessions = middleware.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, rdb, cfg.IsProduction())
	s.promMiddleware = middleware.InitMetrics("yatube")

	return s, nil
}

// App returns the Fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		s.app = s.NewApp()
	}
	return s.app
}

// NewApp builds a Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	maxUpload := forms.Limits{MaxImageBytes: s.config.MediaMaxUploadBytes}.ImageBytes()
	if n := int(maxUpload) + 1<<20; n > bodyLimit {
		bodyLimit = n
	}

	app := fiber.New(fiber.Config{
		AppName:      "Yatube",
		Views:        s.views,
		ViewsLayout:  views.BaseLayout,
		ErrorHandler: s.errorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    bodyLimit,
		UnescapePath: true,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(s.sessions.LoadSession())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy: contentSecurityPolicy,
	}))

	app.Use(middleware.StructuredLogger())

	perMinute := s.config.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 300
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.config.IsTest() || strings.HasPrefix(c.Path(), "/health/")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.media.(*media.LocalStore); ok {
		app.Static(local.BaseURL, local.Root, fiber.Static{MaxAge: 3600})
	}

	app.Get("/", middleware.PageCacheMetrics("index"), s.pageCache(), s.Index)
	app.Get("/group/:slug/", s.GroupList)
	app.Get("/profile/:username/", s.Profile)
	app.Get("/posts/:post_id/", s.PostDetail)

	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupPage)
	auth.Post("/signup/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Get("/login/", s.LoginPage)
	auth.Post("/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/logout/", s.Logout)
	auth.Post("/logout/", s.Logout)

	app.Get("/create/", middleware.LoginRequired, s.PostCreatePage)
	app.Post("/create/", middleware.LoginRequired,
		middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.PostCreate)
	app.Get("/posts/:post_id/edit/", middleware.LoginRequired, s.PostEditPage)
	app.Post("/posts/:post_id/edit/", middleware.LoginRequired, s.PostEdit)
	app.Post("/posts/:post_id/comment/", middleware.LoginRequired,
		middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.AddComment)

	app.Get("/follow/", middleware.LoginRequired, s.FollowIndex)
	for _, method := range []string{fiber.MethodGet, fiber.MethodPost} {
		app.Add(method, "/profile/:username/follow/", middleware.LoginRequired, s.ProfileFollow)
		app.Add(method, "/profile/:username/unfollow/", middleware.LoginRequired, s.ProfileUnfollow)
	}

	admin := app.Group("/admin", middleware.AdminRequired(s.isAdminByUserID))
	admin.Post("/cache/clear", s.ClearCache)
}

// pageCache caches rendered pages for CACHE_INDEX_TTL. Signed-in visitors get
// their own entries because the page header shows who is logged in.
func (s *Server) pageCache() fiber.Handler {
	ttl := s.config.CacheIndexTTL
	if ttl <= 0 {
		ttl = 20 * time.Second
	}
	return fibercache.New(fibercache.Config{
		Expiration:  ttl,
		CacheHeader: "X-Cache",
		Storage:     s.pages,
		KeyGenerator: func(c *fiber.Ctx) string {
			key := utils.CopyString(c.OriginalURL())
			if uid, ok := middleware.CurrentUserID(c); ok {
				key = fmt.Sprintf("u%d|%s", uid, key)
			}
			return key
		},
	})
}

// ClearPageCache drops every cached page.
func (s *Server) ClearPageCache(ctx context.Context) error {
	if err := cache.ResetLogged(ctx, s.pages); err != nil {
		return models.NewInternalError(err)
	}
	observability.PageCacheClears.Inc()
	return nil
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// errorHandler turns handler errors into pages.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code != fiber.StatusNotFound {
		return c.Status(fe.Code).SendString(fe.Message)
	}

	switch {
	case fe != nil || models.IsNotFound(err):
		c.Status(fiber.StatusNotFound)
		if rerr := s.render(c, "core/404", fiber.Map{"title": "Page not found", "path": c.Path()}); rerr != nil {
			return c.SendString("Not Found")
		}
		return nil
	case models.HasCode(err, models.CodeUnauthorized):
		return c.Redirect(middleware.LoginURL(c.OriginalURL()), fiber.StatusFound)
	case models.HasCode(err, models.CodeForbidden):
		return c.Status(fiber.StatusForbidden).SendString(err.Error())
	case models.HasCode(err, models.CodeValidation):
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	middleware.Logger.ErrorContext(c.UserContext(), "request failed",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	c.Status(fiber.StatusInternalServerError)
	if rerr := s.render(c, "core/500", fiber.Map{"title": "Server error"}); rerr != nil {
		return c.SendString("Internal Server Error")
	}
	return nil
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: pages fall back to memory and rate limits fail open.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.pages != nil {
		if err := s.pages.Close(); err != nil {
			middleware.Logger.Error("error closing page cache", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
