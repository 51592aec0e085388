package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/config"
	"github.com/vincentyu/portfolio-backend/pkg/db"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/endpoints"
)

// ServerInstance is a running server backed by its own SQLite file
type ServerInstance struct {
	Server    *server.Server
	DB        *gorm.DB
	Config    *config.Config
	ServerURL string
	listener  net.Listener
}

// testConfig returns a development configuration rooted at dir
func testConfig(dir string) *config.Config {
	return &config.Config{
		JWTSecret:       "integration-secret",
		JWTExpiry:       "1h",
		BcryptRounds:    4,
		DBFile:          filepath.Join(dir, "app.db"),
		FrontendOrigins: []string{"http://localhost:3000"},
		BindAddress:     "127.0.0.1",
		Port:            "0",
		Environment:     config.EnvDevelopment,
		LogLevel:        "error",
		BackupDir:       filepath.Join(dir, "backups"),
		BackupRetention: 30,
		BackupHour:      2,
	}
}

// StartServer migrates a fresh database in dir and serves it on a random
// local port.
func StartServer(dir string) (*ServerInstance, error) {
	cfg := testConfig(dir)

	if _, err := db.Migrate(cfg.DBFile); err != nil {
		return nil, err
	}
	database, err := db.Connect(db.Config{Path: cfg.DBFile})
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s, err := server.NewServer(cfg, database, log, nil)
	if err != nil {
		return nil, err
	}
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	instance := &ServerInstance{
		Server:    s,
		DB:        database,
		Config:    cfg,
		ServerURL: "http://" + listener.Addr().String(),
		listener:  listener,
	}

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL+"/health", 5*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts the server down and closes the database
func (si *ServerInstance) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = si.Server.Shutdown(ctx)
	_ = si.listener.Close()
	if sqlDB, err := si.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// waitForServer polls url until it answers 200 or timeout elapses
func waitForServer(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("server at %s not ready after %s", url, timeout)
}
