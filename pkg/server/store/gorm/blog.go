package gorm

import (
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// Ensure BlogStore implements store.BlogStore
var _ store.BlogStore = (*BlogStore)(nil)

var blogUniques = map[string]error{"blog.slug": store.ErrDuplicateSlug}

// BlogStore implements store.BlogStore using GORM
type BlogStore struct {
	db *gorm.DB
}

// NewBlogStore creates a new BlogStore
func NewBlogStore(db *gorm.DB) *BlogStore {
	return &BlogStore{db: db}
}

func (s *BlogStore) ListPosts() ([]model.BlogPost, error) {
	posts := []model.BlogPost{}
	if err := s.db.Order("date DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *BlogStore) FetchPost(slug string) (*model.BlogPost, error) {
	var post model.BlogPost
	if err := s.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, notFound(err, store.ErrPostNotFound)
	}
	return &post, nil
}

func (s *BlogStore) CreatePost(post *model.BlogPost) error {
	return translate(s.db.Create(post).Error, blogUniques)
}

func (s *BlogStore) UpdatePost(slug string, update store.BlogPostUpdate) (*model.BlogPost, error) {
	values := map[string]interface{}{}
	setIf(values, "title", update.Title)
	setIf(values, "summary", update.Summary)
	setIf(values, "content", update.Content)
	setIf(values, "pillar", update.Pillar)
	setIf(values, "date", update.Date)

	if len(values) > 0 {
		tx := s.db.Model(&model.BlogPost{}).Where("slug = ?", slug).Updates(values)
		if tx.Error != nil {
			return nil, translate(tx.Error, blogUniques)
		}
		if tx.RowsAffected == 0 {
			return nil, store.ErrPostNotFound
		}
	}
	return s.FetchPost(slug)
}

func (s *BlogStore) DeletePost(slug string) error {
	tx := s.db.Where("slug = ?", slug).Delete(&model.BlogPost{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrPostNotFound
	}
	return nil
}

func setIf(values map[string]interface{}, column string, v *string) {
	if v != nil {
		values[column] = *v
	}
}
