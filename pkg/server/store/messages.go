package store

import (
	"errors"

	"github.com/vincentyu/portfolio-backend/pkg/model"
)

// ErrMessageNotFound is returned when a contact message doesn't exist
var ErrMessageNotFound = errors.New("message not found")

// MessagesStore abstracts contact message storage operations
type MessagesStore interface {
	// CreateMessage inserts a contact form submission and sets its ID.
	CreateMessage(msg *model.Message) error

	// ListMessages returns all messages, most recent ID first.
	ListMessages() ([]model.Message, error)

	// FetchMessage retrieves a message by ID.
	// Returns ErrMessageNotFound if the message doesn't exist.
	FetchMessage(id uint) (*model.Message, error)

	// DeleteMessage removes a message.
	// Returns ErrMessageNotFound if the message doesn't exist.
	DeleteMessage(id uint) error
}
