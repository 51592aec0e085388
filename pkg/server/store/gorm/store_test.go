package gorm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/db"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")

	_, err := db.Migrate(path)
	require.NoError(t, err)

	database, err := db.Connect(db.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database
}

func strPtr(s string) *string { return &s }

func TestCredentialStore(t *testing.T) {
	s := NewCredentialStore(newTestDB(t))

	alice := &model.User{Username: "alice", Email: "alice@example.com", Password: "$2a$10$hash", Role: model.RoleUser}
	require.NoError(t, s.CreateUser(alice))
	require.NotZero(t, alice.ID)

	t.Run("fetch strips password", func(t *testing.T) {
		u, err := s.FetchUser(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.Empty(t, u.Password)
	})

	t.Run("credentials keep password", func(t *testing.T) {
		u, err := s.Credentials("alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$hash", u.Password)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.FetchUser(9999)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = s.Credentials("nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := s.CreateUser(&model.User{Username: "alice2", Email: "alice@example.com", Password: "x"})
		assert.ErrorIs(t, err, store.ErrDuplicateEmail)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := s.CreateUser(&model.User{Username: "alice", Email: "other@example.com", Password: "x"})
		assert.ErrorIs(t, err, store.ErrDuplicateUsername)
	})

	bob := &model.User{Username: "bob", Email: "bob@example.com", Password: "x", Role: model.RoleAdmin}
	require.NoError(t, s.CreateUser(bob))

	t.Run("list is sanitized", func(t *testing.T) {
		users, err := s.ListUsers()
		require.NoError(t, err)
		require.Len(t, users, 2)
		for _, u := range users {
			assert.Empty(t, u.Password)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		admin := model.RoleAdmin
		u, err := s.UpdateUser(alice.ID, store.UserUpdate{Role: &admin})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, u.Role)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("update to taken email", func(t *testing.T) {
		_, err := s.UpdateUser(alice.ID, store.UserUpdate{Email: strPtr("bob@example.com")})
		assert.ErrorIs(t, err, store.ErrDuplicateEmail)
	})

	t.Run("update missing user", func(t *testing.T) {
		_, err := s.UpdateUser(9999, store.UserUpdate{Username: strPtr("ghost")})
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("set password", func(t *testing.T) {
		require.NoError(t, s.SetPassword(bob.ID, "new-hash"))
		u, err := s.Credentials("bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", u.Password)
		assert.ErrorIs(t, s.SetPassword(9999, "h"), store.ErrUserNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteUser(bob.ID))
		assert.ErrorIs(t, s.DeleteUser(bob.ID), store.ErrUserNotFound)
	})
}

func TestBlogStore(t *testing.T) {
	s := NewBlogStore(newTestDB(t))

	posts, err := s.ListPosts()
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	require.NoError(t, s.CreatePost(&model.BlogPost{Slug: "older", Title: "Older", Summary: "s", Pillar: "tech", Date: "2024-01-01"}))
	require.NoError(t, s.CreatePost(&model.BlogPost{Slug: "newer", Title: "Newer", Summary: "s", Pillar: "tech", Date: "2024-06-01"}))

	t.Run("list newest first", func(t *testing.T) {
		posts, err := s.ListPosts()
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "newer", posts[0].Slug)
		assert.Equal(t, "older", posts[1].Slug)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		err := s.CreatePost(&model.BlogPost{Slug: "older", Title: "x", Summary: "s", Pillar: "p", Date: "2024-01-01"})
		assert.ErrorIs(t, err, store.ErrDuplicateSlug)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		post, err := s.UpdatePost("older", store.BlogPostUpdate{Title: strPtr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", post.Title)
		assert.Equal(t, "tech", post.Pillar)
		assert.Equal(t, "2024-01-01", post.Date)
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := s.UpdatePost("missing", store.BlogPostUpdate{Title: strPtr("x")})
		assert.ErrorIs(t, err, store.ErrPostNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeletePost("newer"))
		_, err := s.FetchPost("newer")
		assert.ErrorIs(t, err, store.ErrPostNotFound)
		assert.ErrorIs(t, s.DeletePost("newer"), store.ErrPostNotFound)
	})
}

func TestProjectsStore(t *testing.T) {
	s := NewProjectsStore(newTestDB(t))

	p := &model.Project{Slug: "site", Title: "Site", Summary: "s", Date: "2024-03-01"}
	require.NoError(t, s.CreateProject(p))

	t.Run("tags default to empty array", func(t *testing.T) {
		got, err := s.FetchProject("site")
		require.NoError(t, err)
		assert.NotNil(t, got.Tags)
		assert.Empty(t, got.Tags)
	})

	t.Run("update tags", func(t *testing.T) {
		tags := model.Tags{"go", "sqlite"}
		got, err := s.UpdateProject("site", store.ProjectUpdate{Tags: &tags})
		require.NoError(t, err)
		assert.Equal(t, model.Tags{"go", "sqlite"}, got.Tags)
		assert.Equal(t, "Site", got.Title)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		err := s.CreateProject(&model.Project{Slug: "site", Title: "x", Summary: "s", Date: "2024-01-01"})
		assert.ErrorIs(t, err, store.ErrDuplicateSlug)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.FetchProject("nope")
		assert.ErrorIs(t, err, store.ErrProjectNotFound)
		assert.ErrorIs(t, s.DeleteProject("nope"), store.ErrProjectNotFound)
	})
}

func TestMessagesStore(t *testing.T) {
	s := NewMessagesStore(newTestDB(t))

	first := &model.Message{Name: "A", Email: "a@example.com", Message: "hi", Date: "2024-01-01"}
	phone := "021 123"
	second := &model.Message{Name: "B", Email: "b@example.com", Phone: &phone, Message: "yo", Date: "2024-01-02"}
	require.NoError(t, s.CreateMessage(first))
	require.NoError(t, s.CreateMessage(second))

	msgs, err := s.ListMessages()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, second.ID, msgs[0].ID)
	assert.Nil(t, msgs[1].Phone)
	require.NotNil(t, msgs[0].Phone)
	assert.Equal(t, "021 123", *msgs[0].Phone)

	got, err := s.FetchMessage(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Message)

	require.NoError(t, s.DeleteMessage(first.ID))
	_, err = s.FetchMessage(first.ID)
	assert.ErrorIs(t, err, store.ErrMessageNotFound)
	assert.ErrorIs(t, s.DeleteMessage(first.ID), store.ErrMessageNotFound)
}

func TestHealthStore(t *testing.T) {
	assert.NoError(t, NewHealthStore(newTestDB(t)).CheckConnectivity())
}
