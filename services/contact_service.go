package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/sahilchouksey/examace-vault/config"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/utils/response"
	"github.com/sahilchouksey/examace-vault/utils/validation"
)

// ContactStore persists contact form submissions
type ContactStore interface {
	CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error
	UpdateContactStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus, errMsg string) error
}

// ContactRequest is the contact page form
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,mailbox"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// ContactMeta is request context stored next to the message
type ContactMeta struct {
	RequestID string
	IP        string
	UserAgent string
}

// ContactResult is the toast plus the persisted row
type ContactResult struct {
	Sent    bool
	Outcome response.Notice
	Fields  map[string]string
	Message *model.ContactMessage
	Err     error
}

// ContactService forwards contact form messages to a fixed inbox
type ContactService struct {
	store       ContactStore
	mailer      Mailer
	to          string
	sendTimeout time.Duration
	validator   *validation.Validator
	log         zerolog.Logger
}

// NewContactService creates the service; to falls back to the support inbox
func NewContactService(store ContactStore, mailer Mailer, to string, logger zerolog.Logger) *ContactService {
	if to == "" {
		to = config.DefaultContactEmail
	}
	return &ContactService{
		store:       store,
		mailer:      mailer,
		to:          to,
		sendTimeout: 30 * time.Second,
		validator:   validation.NewValidator(),
		log:         logger.With().Str("component", "contact").Logger(),
	}
}

// Submit validates, persists and mails the message. A failed persist does not
// stop delivery; a failed delivery is recorded on the row.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest, meta ContactMeta) ContactResult {
	req.Name = validation.SanitizeString(req.Name)
	req.Email = validation.NormalizeEmail(req.Email)
	req.Subject = validation.SanitizeString(req.Subject)
	req.Message = validation.SanitizeString(req.Message)

	if err := s.validator.ValidateStruct(req); err != nil {
		return ContactResult{
			Outcome: response.Notice{Title: "Invalid message", Description: "Please check the highlighted fields."},
			Fields:  validation.FormatValidationErrors(err),
		}
	}

	msg := &model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Status:  model.ContactStatusPending,
		Meta: datatypes.JSONMap{
			"request_id": meta.RequestID,
			"ip":         meta.IP,
			"user_agent": meta.UserAgent,
		},
	}
	persisted := true
	if err := s.store.CreateContactMessage(ctx, msg); err != nil {
		persisted = false
		s.log.Error().Err(err).Msg("failed to persist contact message")
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	sendErr := s.mailer.Send(sendCtx, Mail{
		To:       s.to,
		ReplyTo:  fmt.Sprintf("%s <%s>", req.Name, req.Email),
		Subject:  "[Contact] " + req.Subject,
		HTMLBody: ContactMailBody(req.Name, req.Email, req.Subject, req.Message),
	})

	status, errMsg := model.ContactStatusSent, ""
	if sendErr != nil {
		status, errMsg = model.ContactStatusFailed, sendErr.Error()
		s.log.Error().Err(sendErr).Str("request_id", meta.RequestID).Msg("failed to send contact message")
	}
	msg.Status, msg.ErrorMsg = status, errMsg
	if persisted {
		// the request context may be gone by now
		if err := s.store.UpdateContactStatus(context.WithoutCancel(ctx), msg.ID, status, errMsg); err != nil {
			s.log.Warn().Err(err).Str("contact_id", msg.ID.String()).Msg("failed to record contact status")
		}
	}

	if sendErr != nil {
		return ContactResult{
			Outcome: response.Notice{
				Title:       "Failed to send message",
				Description: "Please try again later or contact us directly at " + config.DefaultContactEmail,
			},
			Message: msg,
			Err:     sendErr,
		}
	}
	return ContactResult{
		Sent: true,
		Outcome: response.Notice{
			Title:       "Message sent successfully!",
			Description: "We'll get back to you within 24 hours.",
			CloseDialog: true,
		},
		Message: msg,
	}
}
