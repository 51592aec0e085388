package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/notify"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// MockCredentialStore implements store.CredentialStore for testing using testify/mock
type MockCredentialStore struct {
	mock.Mock
}

var _ store.CredentialStore = (*MockCredentialStore)(nil)

func (m *MockCredentialStore) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockCredentialStore) FetchUser(id uint) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCredentialStore) Credentials(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCredentialStore) ListUsers() ([]model.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockCredentialStore) UpdateUser(id uint, update store.UserUpdate) (*model.User, error) {
	args := m.Called(id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCredentialStore) SetPassword(id uint, hash string) error {
	args := m.Called(id, hash)
	return args.Error(0)
}

func (m *MockCredentialStore) DeleteUser(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockBlogStore implements store.BlogStore for testing using testify/mock
type MockBlogStore struct {
	mock.Mock
}

var _ store.BlogStore = (*MockBlogStore)(nil)

func (m *MockBlogStore) ListPosts() ([]model.BlogPost, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BlogPost), args.Error(1)
}

func (m *MockBlogStore) FetchPost(slug string) (*model.BlogPost, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlogPost), args.Error(1)
}

func (m *MockBlogStore) CreatePost(post *model.BlogPost) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockBlogStore) UpdatePost(slug string, update store.BlogPostUpdate) (*model.BlogPost, error) {
	args := m.Called(slug, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlogPost), args.Error(1)
}

func (m *MockBlogStore) DeletePost(slug string) error {
	args := m.Called(slug)
	return args.Error(0)
}

// MockProjectsStore implements store.ProjectsStore for testing using testify/mock
type MockProjectsStore struct {
	mock.Mock
}

var _ store.ProjectsStore = (*MockProjectsStore)(nil)

func (m *MockProjectsStore) ListProjects() ([]model.Project, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectsStore) FetchProject(slug string) (*model.Project, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectsStore) CreateProject(project *model.Project) error {
	args := m.Called(project)
	return args.Error(0)
}

func (m *MockProjectsStore) UpdateProject(slug string, update store.ProjectUpdate) (*model.Project, error) {
	args := m.Called(slug, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectsStore) DeleteProject(slug string) error {
	args := m.Called(slug)
	return args.Error(0)
}

// MockMessagesStore implements store.MessagesStore for testing using testify/mock
type MockMessagesStore struct {
	mock.Mock
}

var _ store.MessagesStore = (*MockMessagesStore)(nil)

func (m *MockMessagesStore) CreateMessage(msg *model.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockMessagesStore) ListMessages() ([]model.Message, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockMessagesStore) FetchMessage(id uint) (*model.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessagesStore) DeleteMessage(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotifier implements notify.Notifier for testing using testify/mock
type MockNotifier struct {
	mock.Mock
}

var _ notify.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) SendContact(ctx context.Context, msg notify.ContactMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockNotifier) Verify(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
