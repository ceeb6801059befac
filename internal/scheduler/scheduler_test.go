package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/revpulse/pkg/config"
	"github.com/minsuk/revpulse/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	err      error
	runs     int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func newTestScheduler() *Scheduler {
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	s := New(log)
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob(&stubJob{name: "sync", schedule: "0 0 3 * * *"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sync"}, s.GetAllJobs())
}

func TestAddJobDuplicate(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&stubJob{name: "sync", schedule: "0 0 3 * * *"}))
	err := s.AddJob(&stubJob{name: "sync", schedule: "0 0 4 * * *"})
	assert.Error(t, err)
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob(&stubJob{name: "broken", schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "sync", schedule: "0 0 3 * * *"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, err := s.GetJobHistory("sync")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 1, job.runs)
	assert.Equal(t, 1.0, history.SuccessRate())
}

func TestRunJobRetriesOnFailure(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "sync", schedule: "0 0 3 * * *", err: errors.New("feed down")}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, err := s.GetJobHistory("sync")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, "feed down", history.Results[0].Error)
	assert.Equal(t, 4, job.runs)
}

func TestRunJobUnknown(t *testing.T) {
	s := newTestScheduler()

	err := s.RunJob("missing")
	assert.Error(t, err)
}

func TestJobHistoryCap(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "sync", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	require.NotNil(t, h.LastResult())
}

func TestJobHistoryEmpty(t *testing.T) {
	h := &JobHistory{}

	assert.Nil(t, h.LastResult())
	assert.Equal(t, 0.0, h.SuccessRate())
}
