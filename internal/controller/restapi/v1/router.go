package v1

import (
	"github.com/AppFriend/DrGolly-sub001/internal/usecase"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewTrackRoutes(apiV1Group fiber.Router, ev usecase.EventsUseCase, l logger.Interface) {
	r := &V1{events: ev, logger: l}

	{
		apiV1Group.Post("/track/order", r.trackOrder)
		apiV1Group.Post("/track/subscription", r.trackSubscription)
		apiV1Group.Post("/track/checkout", r.trackCheckout)
	}
}
