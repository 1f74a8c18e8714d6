// Package main runs the platform without external services, using in-memory
// repositories and storage. Useful for quick development, demos and learning
// the API without database setup. All data is lost when the server stops;
// for production use cmd/platform with PostgreSQL.
package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"

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
	AppConfig  app.AppConfig
	JwtConfig  config.JwtConfig
	GateConfig config.GateConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	storage := filestorage.NewInMemStorage()

	userService := iam.NewUserService(iam.NewInMemUserRepository())

	deviceAlert := notification.NewDeviceAlert(notification.NewMockNotifier(), userService)
	bindingService := devicebind.NewService(loginhistory.NewInMemRepository(),
		devicebind.WithNotifier(deviceAlert))
	verifier := tokenverify.NewJwtVerifier(cfg.JwtConfig.Secret)
	gate := devicebind.NewGate(verifier, userService, bindingService,
		devicebind.WithWebClientType(cfg.GateConfig.WebClientType))

	postService := blog.NewPostService(blog.NewInMemPostRepository(), storage)
	courseService := course.NewCourseService(course.NewInMemCourseRepository(), storage)
	enrollmentService := enrollment.NewEnrollmentService(enrollment.NewInMemEnrollmentRepository(), courseService)
	bookmarkService := bookmark.NewBookmarkService(bookmark.NewInMemBookmarkRepository(), postService, courseService)
	reviewService := review.NewReviewService(review.NewInMemReviewRepository(), courseService)

	authHandle := devicebindapi.NewAuthHandler(verifier, bindingService)
	deviceHandle := devicebindapi.NewDeviceHandler(bindingService)
	userHandle := iamapi.NewUserHandler(userService)
	postHandle := blogapi.NewPostHandler(postService)
	courseHandle := courseapi.NewCourseHandler(courseService)
	enrollmentHandle := enrollmentapi.NewEnrollmentHandler(enrollmentService)
	bookmarkHandle := bookmarkapi.NewBookmarkHandler(bookmarkService)
	reviewHandle := reviewapi.NewReviewHandler(reviewService, courseService)

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
