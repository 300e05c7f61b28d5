package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/catalog/catalogtest"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/services"
)

type run struct {
	job     string
	status  model.CronJobStatus
	message string
	errMsg  string
}

type memRunLog struct {
	mu   sync.Mutex
	runs []run
}

func (m *memRunLog) Begin(ctx context.Context, job string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run{job: job, status: model.CronJobRunning})
	return uint(len(m.runs)), nil
}

func (m *memRunLog) Finish(ctx context.Context, id uint, status model.CronJobStatus, message, errMsg string, took time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &m.runs[id-1]
	r.status, r.message, r.errMsg = status, message, errMsg
	return nil
}

func TestRunNowRecordsOutcome(t *testing.T) {
	runs := &memRunLog{}
	m := NewCronManager(runs, zerolog.Nop())

	require.NoError(t, m.Register(Job{Name: "ok", Schedule: "0 0 * * * *", Run: func(ctx context.Context) (string, error) {
		return "done", nil
	}}))
	boom := errors.New("boom")
	require.NoError(t, m.Register(Job{Name: "bad", Schedule: "0 0 * * * *", Run: func(ctx context.Context) (string, error) {
		return "", boom
	}}))

	require.NoError(t, m.RunNow(context.Background(), "ok"))
	assert.ErrorIs(t, m.RunNow(context.Background(), "bad"), boom)

	require.Len(t, runs.runs, 2)
	assert.Equal(t, run{job: "ok", status: model.CronJobCompleted, message: "done"}, runs.runs[0])
	assert.Equal(t, model.CronJobFailed, runs.runs[1].status)
	assert.Equal(t, "boom", runs.runs[1].errMsg)
}

func TestRunNowUnknownJob(t *testing.T) {
	m := NewCronManager(&memRunLog{}, zerolog.Nop())
	assert.ErrorIs(t, m.RunNow(context.Background(), "nope"), ErrUnknownJob)
}

func TestRegisterRejectsBadJobs(t *testing.T) {
	m := NewCronManager(&memRunLog{}, zerolog.Nop())
	noop := func(ctx context.Context) (string, error) { return "", nil }

	assert.Error(t, m.Register(Job{Name: "x", Schedule: "not a schedule", Run: noop}))
	assert.Error(t, m.Register(Job{Name: "", Schedule: "0 0 * * * *", Run: noop}))
	require.NoError(t, m.Register(Job{Name: "x", Schedule: "0 0 * * * *", Run: noop}))
	assert.Error(t, m.Register(Job{Name: "x", Schedule: "0 0 * * * *", Run: noop}))
}

func TestStartStop(t *testing.T) {
	m := NewCronManager(&memRunLog{}, zerolog.Nop())
	m.Start()
	m.Stop()
}

type fakeInvalidator struct{ patterns []string }

func (f *fakeInvalidator) DeletePattern(ctx context.Context, pattern string) (int, error) {
	f.patterns = append(f.patterns, pattern)
	return 7, nil
}

func TestWarmCatalogCacheWalksEveryLevel(t *testing.T) {
	tree := catalogtest.NewTree()
	inv := &fakeInvalidator{}
	job := WarmCatalogCache(catalog.NewFetcher(tree.Store, zerolog.Nop()), inv)

	msg, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dropped 7 keys, cached 4 entries", msg)
	assert.Equal(t, []string{"catalog:*"}, inv.patterns)
	assert.Equal(t, 4, tree.Store.ListCalls())
}

func TestWarmCatalogCacheStopsOnFailure(t *testing.T) {
	tree := catalogtest.NewTree()
	tree.Store.ListErr = errors.New("db down")
	job := WarmCatalogCache(catalog.NewFetcher(tree.Store, zerolog.Nop()), &fakeInvalidator{})

	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, tree.Store.ListErr)
}

type fixedStats struct{}

func (fixedStats) Refresh(ctx context.Context) (services.Stats, error) {
	return services.Stats{TotalResources: 12, TotalDownloads: 340}, nil
}

func TestRefreshStatsJob(t *testing.T) {
	msg, err := RefreshStats(fixedStats{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12 resources, 340 downloads", msg)
}

type fakePruner struct{ cutoff time.Time }

func (f *fakePruner) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

func TestPruneRunLogs(t *testing.T) {
	p := &fakePruner{}
	msg, err := PruneRunLogs(p, 30*24*time.Hour).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "removed 3 run logs", msg)
	assert.WithinDuration(t, time.Now().Add(-30*24*time.Hour), p.cutoff, time.Minute)
}
