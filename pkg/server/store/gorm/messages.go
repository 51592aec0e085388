package gorm

import (
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// Ensure MessagesStore implements store.MessagesStore
var _ store.MessagesStore = (*MessagesStore)(nil)

// MessagesStore implements store.MessagesStore using GORM
type MessagesStore struct {
	db *gorm.DB
}

// NewMessagesStore creates a new MessagesStore
func NewMessagesStore(db *gorm.DB) *MessagesStore {
	return &MessagesStore{db: db}
}

func (s *MessagesStore) CreateMessage(msg *model.Message) error {
	return translate(s.db.Create(msg).Error, nil)
}

func (s *MessagesStore) ListMessages() ([]model.Message, error) {
	messages := []model.Message{}
	if err := s.db.Order("id DESC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessagesStore) FetchMessage(id uint) (*model.Message, error) {
	var msg model.Message
	if err := s.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, notFound(err, store.ErrMessageNotFound)
	}
	return &msg, nil
}

func (s *MessagesStore) DeleteMessage(id uint) error {
	tx := s.db.Where("id = ?", id).Delete(&model.Message{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrMessageNotFound
	}
	return nil
}
