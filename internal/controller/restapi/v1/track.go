package v1

import (
	"net/http"

	"github.com/AppFriend/DrGolly-sub001/internal/controller/restapi/v1/response"
	"github.com/AppFriend/DrGolly-sub001/internal/controller/restapi/v1/validate"
	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// @Summary  	Track completed order
// @Description Accepts an order hook and emits "Placed Order" toward Klaviyo. Fire-and-forget: delivery happens after the response.
// @Tags 		track
// @Accept 		json
// @Produce 	json
// @Param 		order body dto.Order true "Completed order"
// @Success 	202 {object} response.Accepted
// @Failure 	400 {object} response.Error "Malformed body or missing id/email"
// @Router 		/v1/track/order [post]
func (r *V1) trackOrder(ctx *fiber.Ctx) error {
	var order dto.Order
	if err := ctx.BodyParser(&order); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid body")
	}

	if order.ID == "" {
		return errorResponse(ctx, http.StatusBadRequest, "id is required")
	}
	if !validate.Email(order.Email) {
		return errorResponse(ctx, http.StatusBadRequest, "valid email is required")
	}

	r.events.TrackPurchase(ctx.UserContext(), order)

	return ctx.Status(http.StatusAccepted).JSON(response.Accepted{Status: "accepted"})
}

// @Summary  	Track activated subscription
// @Description Accepts a subscription hook and emits "Subscription Started" toward Klaviyo.
// @Tags 		track
// @Accept 		json
// @Produce 	json
// @Param 		subscription body dto.Subscription true "Activated subscription"
// @Success 	202 {object} response.Accepted
// @Failure 	400 {object} response.Error "Malformed body or missing ids/email"
// @Router 		/v1/track/subscription [post]
func (r *V1) trackSubscription(ctx *fiber.Ctx) error {
	var sub dto.Subscription
	if err := ctx.BodyParser(&sub); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid body")
	}

	if sub.StripeSubscriptionID == "" {
		return errorResponse(ctx, http.StatusBadRequest, "stripe_subscription_id is required")
	}
	if !validate.Email(sub.Email) {
		return errorResponse(ctx, http.StatusBadRequest, "valid email is required")
	}

	r.events.TrackSubscriptionStarted(ctx.UserContext(), sub)

	return ctx.Status(http.StatusAccepted).JSON(response.Accepted{Status: "accepted"})
}

// @Summary  	Track checkout activity
// @Description Accepts a cart-touched hook and emits "Started Checkout"; fires on every meaningful cart update, keyed by updated_at.
// @Tags 		track
// @Accept 		json
// @Produce 	json
// @Param 		cart body dto.Cart true "Touched cart"
// @Success 	202 {object} response.Accepted
// @Failure 	400 {object} response.Error "Malformed body or missing id/email"
// @Router 		/v1/track/checkout [post]
func (r *V1) trackCheckout(ctx *fiber.Ctx) error {
	var cart dto.Cart
	if err := ctx.BodyParser(&cart); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid body")
	}

	if cart.ID == "" {
		return errorResponse(ctx, http.StatusBadRequest, "id is required")
	}
	if !validate.Email(cart.Email) {
		return errorResponse(ctx, http.StatusBadRequest, "valid email is required")
	}

	r.events.TrackStartedCheckout(ctx.UserContext(), cart)

	return ctx.Status(http.StatusAccepted).JSON(response.Accepted{Status: "accepted"})
}
