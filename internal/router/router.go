package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/orchid-lms/orchid-go-api/internal/config"
	"github.com/orchid-lms/orchid-go-api/internal/handler"
	"github.com/orchid-lms/orchid-go-api/internal/middleware"
	"github.com/orchid-lms/orchid-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HealthHandler               *handler.HealthHandler
	QuizHandler                 *handler.QuizHandler
	QuizSubmissionHandler       *handler.QuizSubmissionHandler
	AssignmentHandler           *handler.AssignmentHandler
	AssignmentSubmissionHandler *handler.AssignmentSubmissionHandler
	PlagiarismHandler           *handler.PlagiarismHandler
	JWTMiddleware               fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	if deps.HealthHandler != nil {
		deps.HealthHandler.Register(api)
	}
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.QuizHandler != nil {
		quizzes := api.Group("/quizzes", jwtMiddleware)
		deps.QuizHandler.Register(quizzes)

		if deps.QuizSubmissionHandler != nil {
			deps.QuizSubmissionHandler.Register(quizzes)
		}
	}

	if deps.AssignmentHandler != nil || deps.AssignmentSubmissionHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.Register(assignments)
		}
		if deps.AssignmentSubmissionHandler != nil {
			deps.AssignmentSubmissionHandler.Register(assignments)
		}
	}

	if deps.PlagiarismHandler != nil {
		plagiarism := api.Group("/plagiarism",
			jwtMiddleware,
			middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin),
			middleware.RateLimit("plagiarism", 5, time.Minute),
		)
		deps.PlagiarismHandler.Register(plagiarism)
	}
}
