package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Subscriber is a mailing-list entry created by the subscription popup
type Subscriber struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Source    string    `gorm:"type:varchar(50)" json:"source,omitempty"` // popup, footer, cli
	CreatedAt time.Time `json:"created_at"`
}

// ContactStatus tracks delivery of a contact form message
type ContactStatus string

const (
	ContactStatusPending ContactStatus = "pending"
	ContactStatusSent    ContactStatus = "sent"
	ContactStatusFailed  ContactStatus = "failed"
)

// ContactMessage is a persisted copy of every contact form submission
type ContactMessage struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string            `gorm:"type:varchar(255);not null" json:"name"`
	Email     string            `gorm:"type:varchar(254);not null;index" json:"email"`
	Subject   string            `gorm:"type:varchar(255)" json:"subject"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Status    ContactStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ErrorMsg  string            `gorm:"type:text" json:"error_msg,omitempty"`
	Meta      datatypes.JSONMap `gorm:"type:jsonb" json:"meta,omitempty"` // request id, ip, user agent
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
