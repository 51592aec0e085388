package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentyu/portfolio-backend/pkg/backup"
	"github.com/vincentyu/portfolio-backend/pkg/db"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/password"
	gormstore "github.com/vincentyu/portfolio-backend/pkg/server/store/gorm"
)

// isolatedEnv points the configuration at a fresh directory with no
// config file and a new database path.
func isolatedEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PORTFOLIO_CONFIG_PATH", dir)
	t.Setenv("DB_FILE", filepath.Join(dir, "app.db"))
	t.Setenv("BACKUP_DIR", filepath.Join(dir, "backups"))
	t.Setenv("BCRYPT_ROUNDS", "4")
	t.Setenv("AUDIT_ENABLED", "false")
	return filepath.Join(dir, "app.db")
}

func TestReadSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trailing newline", "hunter22\n", "hunter22"},
		{"windows newline", "hunter22\r\n", "hunter22"},
		{"no newline", "hunter22", "hunter22"},
		{"first line only", "one\ntwo\n", "one"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSecret(strings.NewReader(tt.input), "Password: ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWaitForServer(t *testing.T) {
	t.Run("ready after a few attempts", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		require.NoError(t, waitForServer(srv.URL+"/health", 5, time.Millisecond))
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	})

	t.Run("gives up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := waitForServer(srv.URL+"/health", 2, time.Millisecond)
		assert.EqualError(t, err, "not ready after 2 attempts")
	})
}

func TestCreateAdmin(t *testing.T) {
	path := isolatedEnv(t)
	_, err := db.Migrate(path)
	require.NoError(t, err)

	user, err := createAdmin("vincent", "vincent@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	database, err := db.Connect(db.Config{Path: path})
	require.NoError(t, err)
	defer closeDB(database)

	stored, err := gormstore.NewCredentialStore(database).Credentials("vincent@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)
	assert.True(t, password.NewHasher(4).Verify("correct-horse", stored.Password))

	t.Run("duplicate email", func(t *testing.T) {
		_, err := createAdmin("other", "vincent@example.com", "correct-horse")
		assert.EqualError(t, err, "user with email 'vincent@example.com' already exists")
	})

	t.Run("short password", func(t *testing.T) {
		_, err := createAdmin("short", "short@example.com", "abc")
		assert.EqualError(t, err, "password must be at least 8 characters")
	})
}

func TestBackupCommands(t *testing.T) {
	path := isolatedEnv(t)
	_, err := db.Migrate(path)
	require.NoError(t, err)

	snapshot, err := withBackupService(func(ctx context.Context, svc *backup.Service) (string, error) {
		return svc.CreateBackup(ctx)
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(snapshot), "app-"))
	info, err := os.Stat(snapshot)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	export, err := withBackupService(func(ctx context.Context, svc *backup.Service) (string, error) {
		return svc.ExportToSQL(ctx)
	})
	require.NoError(t, err)
	assert.FileExists(t, export)
	assert.Equal(t, filepath.Dir(snapshot), filepath.Dir(export))
}

func TestStartupBackupFinishesBeforeShutdownBackup(t *testing.T) {
	path := isolatedEnv(t)
	_, err := db.Migrate(path)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	svc := backup.NewService(backup.Options{
		DBFile: path,
		Dir:    filepath.Join(filepath.Dir(path), "backups"),
		Log:    log,
	})

	done := startupBackup(context.Background(), svc)
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("startup backup did not finish")
	}

	_, err = svc.CreateBackup(backup.WithTrigger(context.Background(), backup.TriggerShutdown))
	require.NoError(t, err)

	artifacts, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, artifacts, 2)
}

func TestShowConfigurationRejectsUnknownFormat(t *testing.T) {
	isolatedEnv(t)
	assert.EqualError(t, showConfiguration("yaml"), `unknown output format "yaml"`)
}
