package restapi

import (
	"github.com/AppFriend/DrGolly-sub001/config"
	v1 "github.com/AppFriend/DrGolly-sub001/internal/controller/restapi/v1"
	"github.com/AppFriend/DrGolly-sub001/internal/usecase"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title Marketing events pipeline
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(app *fiber.App, cfg *config.Config, ev usecase.EventsUseCase, l logger.Interface) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Health
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewTrackRoutes(apiV1Group, ev, l)
	}
}
