package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vincentyu/portfolio-backend/pkg/audit"
)

// DefaultRetention is the number of snapshots (and exports) kept
const DefaultRetention = 30

// TimestampLayout is the UTC timestamp embedded in artifact names
const TimestampLayout = "2006-01-02T15-04-05.000"

const (
	snapshotPrefix = "app-"
	snapshotSuffix = ".db"
	exportPrefix   = "export-"
	exportSuffix   = ".sql"
)

// Triggers recorded with each run
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
	TriggerShutdown = "shutdown"
)

type triggerKey struct{}

// WithTrigger tags ctx with what started a backup.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

func triggerOf(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return TriggerManual
}

// Uploader copies a finished snapshot off-site
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// Options configures a Service
type Options struct {
	// DBFile is the live database file
	DBFile string
	// Dir holds snapshots and exports
	Dir string
	// Retention is how many of each artifact kind are kept
	Retention int
	// Checkpoint flushes the WAL before copying; optional
	Checkpoint func() error
	// Uploader sends snapshots off-site; optional
	Uploader Uploader
	Log      logrus.FieldLogger
	Metrics  *Metrics
}

// Service creates snapshots and SQL exports of the database
type Service struct {
	dbFile     string
	dir        string
	retention  int
	checkpoint func() error
	uploader   Uploader
	log        logrus.FieldLogger
	metrics    *Metrics
	now        func() time.Time
}

// NewService creates a Service from opts
func NewService(opts Options) *Service {
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Service{
		dbFile:     opts.DBFile,
		dir:        opts.Dir,
		retention:  opts.Retention,
		checkpoint: opts.Checkpoint,
		uploader:   opts.Uploader,
		log:        opts.Log,
		metrics:    opts.Metrics,
		now:        time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Dir returns the backup directory
func (s *Service) Dir() string {
	return s.dir
}

// CreateBackup copies the database file into the backup directory and
// prunes old snapshots. It returns the snapshot path. When an uploader is
// configured, an upload failure is returned after the local copy is kept.
func (s *Service) CreateBackup(ctx context.Context) (string, error) {
	path, err := s.createBackup(ctx)
	s.metrics.observeBackup(err, s.now())

	event := audit.BackupEvent{Kind: "snapshot", Path: path, Trigger: triggerOf(ctx), Success: err == nil}
	if err != nil {
		event.ErrorMessage = err.Error()
		s.log.WithError(err).Error("database backup failed")
	} else {
		s.log.WithField("path", path).Info("database backup created")
	}
	audit.Log(event)
	return path, err
}

func (s *Service) createBackup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	if s.checkpoint != nil {
		if err := s.checkpoint(); err != nil {
			return "", fmt.Errorf("checkpoint database: %w", err)
		}
	}

	now := s.now()
	dst, err := s.copyFile(s.dbFile, snapshotPrefix, snapshotSuffix, now)
	if err != nil {
		return "", err
	}

	var uploadErr error
	if s.uploader != nil {
		if err := s.uploader.Upload(ctx, dst); err != nil {
			uploadErr = fmt.Errorf("upload %s: %w", filepath.Base(dst), err)
		}
	}

	s.prune(snapshotPrefix, snapshotSuffix)
	return dst, uploadErr
}

// artifactName returns a name for an artifact created at t that doesn't
// collide with an existing file.
func (s *Service) artifactName(prefix, suffix string, t time.Time) string {
	for i := 0; ; i++ {
		name := filepath.Join(s.dir, prefix+t.Add(time.Duration(i)*time.Millisecond).UTC().Format(TimestampLayout)+suffix)
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			return name
		}
	}
}

func (s *Service) copyFile(src, prefix, suffix string, now time.Time) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open database file: %w", err)
	}
	defer in.Close()

	dst := s.artifactName(prefix, suffix, now)
	if err := writeAtomic(dst, now, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	}); err != nil {
		return "", fmt.Errorf("copy database file: %w", err)
	}
	return dst, nil
}

// writeAtomic writes dst through a temporary file in the same directory and
// stamps its modification time with mtime.
func writeAtomic(dst string, mtime time.Time, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-"+filepath.Base(dst)+"-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return err
	}
	return os.Chtimes(dst, mtime, mtime)
}

// Artifact is a file in the backup directory
type Artifact struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// List returns the snapshots and exports in the backup directory, newest
// first.
func (s *Service) List() ([]Artifact, error) {
	snapshots, err := s.list(snapshotPrefix, snapshotSuffix)
	if err != nil {
		return nil, err
	}
	exports, err := s.list(exportPrefix, exportSuffix)
	if err != nil {
		return nil, err
	}
	all := append(snapshots, exports...)
	sortNewestFirst(all)
	return all, nil
}

func (s *Service) list(prefix, suffix string) ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Artifact
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Artifact{
			Name:    name,
			Path:    filepath.Join(s.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(a []Artifact) {
	sort.SliceStable(a, func(i, j int) bool {
		if !a[i].ModTime.Equal(a[j].ModTime) {
			return a[i].ModTime.After(a[j].ModTime)
		}
		return a[i].Name > a[j].Name
	})
}

// prune deletes artifacts of one kind beyond the retention count. Failures
// are logged only.
func (s *Service) prune(prefix, suffix string) {
	files, err := s.list(prefix, suffix)
	if err != nil {
		s.log.WithError(err).Warn("failed to list old backups")
		return
	}
	if len(files) <= s.retention {
		return
	}
	for _, f := range files[s.retention:] {
		if err := os.Remove(f.Path); err != nil {
			s.log.WithError(err).WithField("file", f.Name).Warn("failed to delete old backup")
			continue
		}
		s.log.WithField("file", f.Name).Info("deleted old backup")
	}
}
