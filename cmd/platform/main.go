package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/ogrenly/platform/pkg/blog"
	blogapi "github.com/ogrenly/platform/pkg/blog/api"
	"github.com/ogrenly/platform/pkg/bookmark"
	bookmarkapi "github.com/ogrenly/platform/pkg/bookmark/api"
	"github.com/ogrenly/platform/pkg/client"
	"github.com/ogrenly/platform/pkg/config"
	"github.com/ogrenly/platform/pkg/course"
	courseapi "github.com/ogrenly/platform/pkg/course/api"
	"github.com/ogrenly/platform/pkg/devicebind"
	devicebindapi "github.com/ogrenly/platform/pkg/devicebind/api"
	"github.com/ogrenly/platform/pkg/enrollment"
	enrollmentapi "github.com/ogrenly/platform/pkg/enrollment/api"
	"github.com/ogrenly/platform/pkg/filestorage"
	"github.com/ogrenly/platform/pkg/iam"
	iamapi "github.com/ogrenly/platform/pkg/iam/api"
	"github.com/ogrenly/platform/pkg/loginhistory"
	"github.com/ogrenly/platform/pkg/notification"
	"github.com/ogrenly/platform/pkg/ratelimit"
	"github.com/ogrenly/platform/pkg/review"
	reviewapi "github.com/ogrenly/platform/pkg/review/api"
	"github.com/ogrenly/platform/pkg/tokenverify"
)

// Config is the process configuration, read from the environment
type Config struct {
	DatabaseConfig config.DatabaseConfig
	AppConfig      app.AppConfig
	JwtConfig      config.JwtConfig
	GateConfig     config.GateConfig
	SMTPConfig     config.SMTPConfig
	StorageConfig  config.StorageConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	storage, err := filestorage.NewMinioStorage(context.Background(), cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed creating object storage client", "endpoint", cfg.StorageConfig.Endpoint, "err", err)
		os.Exit(-1)
	}

	// Users
	userRepository := iam.NewPostgresUserRepository(pool)
	userService := iam.NewUserService(userRepository)

	// Device binding
	historyRepository, err := loginhistory.NewRepository("postgres", loginhistory.RepositoryConfig{Pool: pool})
	if err != nil {
		slog.Error("Failed creating login history repository", "err", err)
		os.Exit(-1)
	}

	var notifier notification.Notifier
	if cfg.SMTPConfig.Enabled {
		notifier, err = notification.NewEmailNotifier(notification.SMTPConfig{
			Host:     cfg.SMTPConfig.Host,
			Port:     cfg.SMTPConfig.Port,
			TLS:      cfg.SMTPConfig.TLS,
			Username: cfg.SMTPConfig.Username,
			Password: cfg.SMTPConfig.Password,
			From:     cfg.SMTPConfig.From,
		})
		if err != nil {
			slog.Error("Failed creating email notifier", "host", cfg.SMTPConfig.Host, "err", err)
			os.Exit(-1)
		}
	} else {
		notifier = notification.NewMockNotifier()
	}
	deviceAlert := notification.NewDeviceAlert(notifier, userService)

	bindingService := devicebind.NewService(historyRepository, devicebind.WithNotifier(deviceAlert))
	verifier := tokenverify.NewJwtVerifier(cfg.JwtConfig.Secret)
	gate := devicebind.NewGate(verifier, userService, bindingService,
		devicebind.WithWebClientType(cfg.GateConfig.WebClientType))

	// Content
	postService := blog.NewPostService(blog.NewPostgresPostRepository(pool), storage)
	courseService := course.NewCourseService(course.NewPostgresCourseRepository(pool), storage)
	enrollmentService := enrollment.NewEnrollmentService(enrollment.NewPostgresEnrollmentRepository(pool), courseService)
	bookmarkService := bookmark.NewBookmarkService(bookmark.NewPostgresBookmarkRepository(pool), postService, courseService)
	reviewService := review.NewReviewService(review.NewPostgresReviewRepository(pool), courseService)

	// Handlers
	authHandle := devicebindapi.NewAuthHandler(verifier, bindingService)
	deviceHandle := devicebindapi.NewDeviceHandler(bindingService)
	userHandle := iamapi.NewUserHandler(userService)
	postHandle := blogapi.NewPostHandler(postService)
	courseHandle := courseapi.NewCourseHandler(courseService)
	enrollmentHandle := enrollmentapi.NewEnrollmentHandler(enrollmentService)
	bookmarkHandle := bookmarkapi.NewBookmarkHandler(bookmarkService)
	reviewHandle := reviewapi.NewReviewHandler(reviewService, courseService)

	// The verify-login endpoint carries its own token; it must stay
	// outside the gate or no new device could ever get in. Throttled
	// per IP instead, so bindings cannot be guessed by brute force.
	loginLimiter := ratelimit.NewMiddleware(10, 10)
	server.R.Route("/auth", func(r chi.Router) {
		r.Use(loginLimiter.Handler)
		authHandle.Routes(r)
	})

	server.R.Group(func(r chi.Router) {
		r.Use(gate.Middleware)
		r.Use(client.RequireAuth)

		r.Route("/devices", deviceHandle.Routes)
		r.Route("/posts", postHandle.PublicRoutes)
		r.Route("/courses", func(r chi.Router) {
			courseHandle.PublicRoutes(r)
			reviewHandle.Routes(r)
		})
		r.Route("/enrollments", enrollmentHandle.Routes)
		r.Route("/bookmarks", bookmarkHandle.Routes)

		r.Group(func(r chi.Router) {
			r.Use(client.RequireStaff)
			r.Route("/admin/posts", postHandle.StaffRoutes)
			r.Route("/admin/courses", courseHandle.StaffRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(client.RequireRole(client.RoleAdmin, client.RoleOwner))
			r.Route("/admin/users", userHandle.Routes)
		})
	})

	server.Run()
}
