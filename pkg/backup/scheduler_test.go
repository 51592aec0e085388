package backup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			name: "before the hour runs today",
			now:  time.Date(2024, 5, 1, 1, 30, 0, 0, time.UTC),
			hour: 2,
			want: time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			name: "after the hour runs tomorrow",
			now:  time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC),
			hour: 2,
			want: time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly on the hour runs tomorrow",
			now:  time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC),
			hour: 2,
			want: time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC),
		},
		{
			name: "month rollover",
			now:  time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC),
			hour: 2,
			want: time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			// NZ daylight saving ends 2024-04-07 03:00 NZDT; the next run
			// is still at 04:00 wall clock, 25 hours later.
			name: "keeps wall clock across DST change",
			now:  time.Date(2024, 4, 6, 4, 0, 0, 0, auckland),
			hour: 4,
			want: time.Date(2024, 4, 7, 4, 0, 0, 0, auckland),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(tt.now, tt.hour)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			if tt.name == "keeps wall clock across DST change" {
				assert.Equal(t, 25*time.Hour, got.Sub(tt.now))
			}
			assert.Equal(t, tt.hour, got.Hour())
		})
	}
}

type countingJob struct {
	mu       sync.Mutex
	backups  int
	exports  int
	failNext bool
	triggers []string
	ran      chan struct{}
}

func (j *countingJob) CreateBackup(ctx context.Context) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.backups++
	j.triggers = append(j.triggers, triggerOf(ctx))
	if j.failNext {
		return "", errors.New("disk full")
	}
	return "app.db", nil
}

func (j *countingJob) ExportToSQL(ctx context.Context) (string, error) {
	j.mu.Lock()
	j.exports++
	j.mu.Unlock()
	j.ran <- struct{}{}
	return "export.sql", nil
}

func TestSchedulerRunsEachCycle(t *testing.T) {
	log, _ := test.NewNullLogger()
	job := &countingJob{failNext: true, ran: make(chan struct{})}

	ticks := make(chan time.Time)
	var waits []time.Duration
	var waitsMu sync.Mutex

	s := NewScheduler(job, 2, log)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC) }
	s.after = func(d time.Duration) <-chan time.Time {
		waitsMu.Lock()
		waits = append(waits, d)
		waitsMu.Unlock()
		return ticks
	}

	s.Start(context.Background())
	s.Start(context.Background()) // no second loop

	for i := 0; i < 2; i++ {
		ticks <- time.Now()
		<-job.ran
	}
	s.Stop()

	job.mu.Lock()
	defer job.mu.Unlock()
	// a failing backup does not stop the export or the loop
	assert.Equal(t, 2, job.backups)
	assert.Equal(t, 2, job.exports)
	assert.Equal(t, []string{TriggerSchedule, TriggerSchedule}, job.triggers)

	waitsMu.Lock()
	defer waitsMu.Unlock()
	require.NotEmpty(t, waits)
	assert.Equal(t, time.Hour, waits[0])
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(&countingJob{}, 2, nil)
	assert.NotPanics(t, s.Stop)
}

func TestSchedulerStopsOnParentCancel(t *testing.T) {
	s := NewScheduler(&countingJob{}, 2, nil)
	s.after = func(time.Duration) <-chan time.Time { return make(chan time.Time) }

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
