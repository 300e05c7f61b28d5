// Package forms serves the two public write endpoints: the mailing-list
// popup and the contact page.
package forms

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/examace-vault/services"
	"github.com/sahilchouksey/examace-vault/utils/middleware"
	"github.com/sahilchouksey/examace-vault/utils/response"
)

type FormsHandler struct {
	subscriptions *services.SubscriptionService
	contact       *services.ContactService
}

func NewFormsHandler(subscriptions *services.SubscriptionService, contact *services.ContactService) *FormsHandler {
	return &FormsHandler{subscriptions: subscriptions, contact: contact}
}

type formFailure struct {
	response.Notice
	Fields map[string]string `json:"fields,omitempty"`
}

// Subscribe handles POST /api/v1/subscriptions
func (h *FormsHandler) Subscribe(c *fiber.Ctx) error {
	var req services.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	res := h.subscriptions.Subscribe(c.UserContext(), req)
	switch res.Status {
	case services.Subscribed:
		return response.Created(c, res.Outcome.Title, res.Outcome)
	case services.AlreadySubscribed:
		return response.ErrorWithData(c, fiber.StatusConflict, res.Outcome.Description, response.CodeConflict, res.Outcome)
	case services.SubscribeInvalid:
		return response.ErrorWithData(c, fiber.StatusUnprocessableEntity, res.Outcome.Description, response.CodeValidation,
			formFailure{Notice: res.Outcome, Fields: res.Fields})
	default:
		return response.ErrorWithData(c, fiber.StatusInternalServerError, res.Outcome.Description, response.CodeInternal, res.Outcome)
	}
}

// Contact handles POST /api/v1/contact
func (h *FormsHandler) Contact(c *fiber.Ctx) error {
	var req services.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	res := h.contact.Submit(c.UserContext(), req, services.ContactMeta{
		RequestID: middleware.RequestID(c),
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	switch {
	case res.Sent:
		return response.SuccessWithMessage(c, res.Outcome.Title, res.Outcome)
	case res.Fields != nil:
		return response.ErrorWithData(c, fiber.StatusUnprocessableEntity, res.Outcome.Title, response.CodeValidation,
			formFailure{Notice: res.Outcome, Fields: res.Fields})
	default:
		return response.ErrorWithData(c, fiber.StatusBadGateway, res.Outcome.Title, response.CodeUnavailable, res.Outcome)
	}
}
