package gorm

import (
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// Ensure CredentialStore implements store.CredentialStore
var _ store.CredentialStore = (*CredentialStore)(nil)

var userUniques = map[string]error{
	"user.email":    store.ErrDuplicateEmail,
	"user.username": store.ErrDuplicateUsername,
}

// CredentialStore implements store.CredentialStore using GORM
type CredentialStore struct {
	db *gorm.DB
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) CreateUser(user *model.User) error {
	return translate(s.db.Create(user).Error, userUniques)
}

func (s *CredentialStore) FetchUser(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, store.ErrUserNotFound)
	}
	user = user.Sanitized()
	return &user, nil
}

func (s *CredentialStore) Credentials(email string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, store.ErrUserNotFound)
	}
	return &user, nil
}

func (s *CredentialStore) ListUsers() ([]model.User, error) {
	var users []model.User
	if err := s.db.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (s *CredentialStore) UpdateUser(id uint, update store.UserUpdate) (*model.User, error) {
	values := map[string]interface{}{}
	if update.Username != nil {
		values["username"] = *update.Username
	}
	if update.Email != nil {
		values["email"] = *update.Email
	}
	if update.Role != nil {
		values["role"] = *update.Role
	}
	if len(values) > 0 {
		tx := s.db.Model(&model.User{}).Where("id = ?", id).Updates(values)
		if tx.Error != nil {
			return nil, translate(tx.Error, userUniques)
		}
		if tx.RowsAffected == 0 {
			return nil, store.ErrUserNotFound
		}
	}
	return s.FetchUser(id)
}

func (s *CredentialStore) SetPassword(id uint, hash string) error {
	tx := s.db.Model(&model.User{}).Where("id = ?", id).Update("password", hash)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *CredentialStore) DeleteUser(id uint) error {
	tx := s.db.Where("id = ?", id).Delete(&model.User{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
