package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/database"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/utils/response"
	"github.com/sahilchouksey/examace-vault/utils/validation"
)

// SubscriptionStatus is the outcome of a subscribe attempt
type SubscriptionStatus string

const (
	Subscribed        SubscriptionStatus = "subscribed"
	AlreadySubscribed SubscriptionStatus = "already_subscribed"
	SubscribeInvalid  SubscriptionStatus = "invalid"
	SubscribeFailed   SubscriptionStatus = "failed"
)

// SubscriberStore persists mailing-list entries
type SubscriberStore interface {
	CreateSubscriber(ctx context.Context, s *model.Subscriber) error
}

// SubscribeRequest is the popup/footer payload
type SubscribeRequest struct {
	Email  string `json:"email" validate:"required,mailbox"`
	Source string `json:"source" validate:"omitempty,oneof=popup footer cli"`
}

// SubscriptionResult pairs the status with its toast
type SubscriptionResult struct {
	Status  SubscriptionStatus
	Outcome response.Notice
	Fields  map[string]string
	Err     error
}

// SubscriptionService handles mailing-list sign ups
type SubscriptionService struct {
	store     SubscriberStore
	validator *validation.Validator
	log       zerolog.Logger
}

func NewSubscriptionService(store SubscriberStore, logger zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:     store,
		validator: validation.NewValidator(),
		log:       logger.With().Str("component", "subscriptions").Logger(),
	}
}

// Subscribe inserts the address. A unique violation is not an error, it
// means the visitor is already on the list.
func (s *SubscriptionService) Subscribe(ctx context.Context, req SubscribeRequest) SubscriptionResult {
	req.Email = validation.NormalizeEmail(req.Email)
	if req.Email == "" {
		return SubscriptionResult{
			Status:  SubscribeInvalid,
			Outcome: response.Notice{Title: "Error", Description: "Please enter your email address."},
			Fields:  map[string]string{"email": "Email is required"},
		}
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return SubscriptionResult{
			Status:  SubscribeInvalid,
			Outcome: response.Notice{Title: "Error", Description: "Please enter a valid email address."},
			Fields:  validation.FormatValidationErrors(err),
		}
	}
	if req.Source == "" {
		req.Source = "popup"
	}

	err := s.store.CreateSubscriber(ctx, &model.Subscriber{Email: req.Email, Source: req.Source})
	switch {
	case err == nil:
		s.log.Info().Str("source", req.Source).Msg("new subscriber")
		return SubscriptionResult{
			Status: Subscribed,
			Outcome: response.Notice{
				Title:       "Success!",
				Description: "You have successfully subscribed to our updates.",
				CloseDialog: true,
			},
		}
	case database.IsUniqueViolation(err):
		return SubscriptionResult{
			Status: AlreadySubscribed,
			Outcome: response.Notice{
				Title:       "Already Subscribed",
				Description: "This email address is already subscribed.",
			},
		}
	default:
		s.log.Error().Err(err).Msg("failed to create subscriber")
		return SubscriptionResult{
			Status:  SubscribeFailed,
			Outcome: response.Notice{Title: "Error", Description: "Failed to subscribe. Please try again later."},
			Err:     err,
		}
	}
}
