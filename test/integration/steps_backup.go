package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/jmoiron/sqlx"

	"github.com/vincentyu/portfolio-backend/pkg/backup"
	"github.com/vincentyu/portfolio-backend/pkg/db"
)

func (s *StepsContext) registerBackupSteps(sc *godog.ScenarioContext) {
	sc.Step(`^(\d+) old snapshots exist$`, s.oldSnapshotsExist)
	sc.Step(`^I create a backup$`, s.iCreateABackup)
	sc.Step(`^I export the database to SQL$`, s.iExportTheDatabaseToSQL)
	sc.Step(`^(\d+) snapshots should remain$`, s.snapshotsShouldRemain)
	sc.Step(`^the newest snapshot should be the one just created$`, s.theNewestSnapshotShouldBeTheOneJustCreated)
	sc.Step(`^replaying the export into a fresh database should restore (\d+) blog posts?$`, s.replayingTheExportShouldRestore)
}

func (s *StepsContext) backupService() *backup.Service {
	cfg := s.instance.Config
	return backup.NewService(backup.Options{
		DBFile:    cfg.DBFile,
		Dir:       cfg.BackupDir,
		Retention: cfg.BackupRetention,
		Checkpoint: func() error {
			return db.Checkpoint(s.instance.DB)
		},
	})
}

func (s *StepsContext) oldSnapshotsExist(n int) error {
	dir := s.instance.Config.BackupDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		path := filepath.Join(dir, "app-"+at.Format(backup.TimestampLayout)+".db")
		if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
			return err
		}
		if err := os.Chtimes(path, at, at); err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) iCreateABackup() error {
	path, err := s.backupService().CreateBackup(context.Background())
	if err != nil {
		return err
	}
	s.lastArtifact = path
	return nil
}

func (s *StepsContext) iExportTheDatabaseToSQL() error {
	path, err := s.backupService().ExportToSQL(context.Background())
	if err != nil {
		return err
	}
	s.lastArtifact = path
	return nil
}

func (s *StepsContext) snapshots() ([]backup.Artifact, error) {
	all, err := s.backupService().List()
	if err != nil {
		return nil, err
	}
	var out []backup.Artifact
	for _, a := range all {
		if strings.HasSuffix(a.Name, ".db") {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *StepsContext) snapshotsShouldRemain(n int) error {
	snapshots, err := s.snapshots()
	if err != nil {
		return err
	}
	if len(snapshots) != n {
		return fmt.Errorf("expected %d snapshots, found %d", n, len(snapshots))
	}
	return nil
}

func (s *StepsContext) theNewestSnapshotShouldBeTheOneJustCreated() error {
	snapshots, err := s.snapshots()
	if err != nil {
		return err
	}
	if len(snapshots) == 0 || snapshots[0].Path != s.lastArtifact {
		return fmt.Errorf("expected %s to be the newest snapshot", s.lastArtifact)
	}
	return nil
}

func (s *StepsContext) replayingTheExportShouldRestore(n int) error {
	script, err := os.ReadFile(s.lastArtifact)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, "restored.db")
	if _, err := db.Migrate(path); err != nil {
		return err
	}
	conn, err := sqlx.Open("sqlite3", db.DSN(path, false))
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Exec(string(script)); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	var count int
	if err := conn.Get(&count, `SELECT COUNT(*) FROM blog`); err != nil {
		return err
	}
	if count != n {
		return fmt.Errorf("expected %d restored blog posts, got %d", n, count)
	}
	return nil
}
