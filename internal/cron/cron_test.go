package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/pkg/config"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// MockDeduper 模拟账号服务
type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) DedupeByEmail(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockResyncer 模拟看板
type MockResyncer struct {
	mock.Mock
}

func (m *MockResyncer) Resync(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var schedules = config.CronConfig{DedupeUsers: "0 4 * * *", Resync: "*/5 * * * *"}

func TestManager_Start(t *testing.T) {
	m := NewManager(schedules, new(MockDeduper), new(MockResyncer), logger.Nop())
	assert.NoError(t, m.Start())
	assert.Len(t, m.cron.Entries(), 2)
	m.Stop()
}

func TestManager_StartRejectsBadSchedule(t *testing.T) {
	m := NewManager(config.CronConfig{DedupeUsers: "every day", Resync: "*/5 * * * *"}, new(MockDeduper), new(MockResyncer), logger.Nop())
	assert.Error(t, m.Start())
}

func TestManager_RunNow(t *testing.T) {
	ctx := context.Background()
	dedupe := new(MockDeduper)
	board := new(MockResyncer)
	dedupe.On("DedupeByEmail", ctx).Return(2, nil).Once()
	board.On("Resync", ctx).Return(errors.New("store down")).Once()

	m := NewManager(schedules, dedupe, board, logger.Nop())
	assert.NoError(t, m.DedupeNow(ctx))
	assert.EqualError(t, m.ResyncNow(ctx), "store down")
	dedupe.AssertExpectations(t)
	board.AssertExpectations(t)
}

func TestManager_RunRecordsMetrics(t *testing.T) {
	m := NewManager(schedules, new(MockDeduper), new(MockResyncer), logger.Nop())

	okBefore := testutil.ToFloat64(metrics.CronRuns.WithLabelValues("noop_job", "ok"))
	errBefore := testutil.ToFloat64(metrics.CronRuns.WithLabelValues("noop_job", "error"))

	m.run("noop_job", func(context.Context) error { return nil })
	m.run("noop_job", func(context.Context) error { return errors.New("boom") })

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.CronRuns.WithLabelValues("noop_job", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.CronRuns.WithLabelValues("noop_job", "error")))
}
