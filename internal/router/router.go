package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/config"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/handler"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/middleware"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ClassroomHandler  *handler.ClassroomHandler
	AssignmentHandler *handler.AssignmentHandler
	QuestionHandler   *handler.QuestionHandler
	AttemptHandler    *handler.AttemptHandler
	ResultHandler     *handler.ResultHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)

		authProtected := api.Group("/auth", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	if deps.ClassroomHandler != nil {
		classrooms := api.Group("/classrooms", jwtMiddleware)
		deps.ClassroomHandler.Register(classrooms)

		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.RegisterClassroomRoutes(classrooms)
		}
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)

		if deps.QuestionHandler != nil {
			deps.QuestionHandler.RegisterAssignmentRoutes(assignments)
		}
		if deps.AttemptHandler != nil {
			deps.AttemptHandler.RegisterAssignmentRoutes(assignments)
		}
	}

	if deps.QuestionHandler != nil {
		questions := api.Group("/questions", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.QuestionHandler.Register(questions)
	}

	if deps.AttemptHandler != nil {
		attempts := api.Group("/attempts", jwtMiddleware)
		deps.AttemptHandler.Register(attempts)
	}

	if deps.ResultHandler != nil {
		results := api.Group("/results", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.ResultHandler.Register(results)
	}
}
