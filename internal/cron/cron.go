// Package cron schedules the maintenance jobs: duplicate account cleanup and
// a periodic full resync of the live board.
package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/pkg/config"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

const (
	JobDedupeUsers = "dedupe_users"
	JobResync      = "resync"

	jobTimeout = 10 * time.Minute
)

// Deduper 合并重复邮箱的账号
type Deduper interface {
	DedupeByEmail(ctx context.Context) (int, error)
}

// Resyncer 从存储全量重建快照并通知监听者
type Resyncer interface {
	Resync(ctx context.Context) error
}

// Manager 定时任务管理器
type Manager struct {
	cron     *cron.Cron
	cfg      config.CronConfig
	accounts Deduper
	board    Resyncer
	log      logger.Logger
}

// NewManager 创建定时任务管理器
func NewManager(cfg config.CronConfig, accounts Deduper, board Resyncer, log logger.Logger) *Manager {
	return &Manager{
		cron:     cron.New(cron.WithLocation(time.Local)),
		cfg:      cfg,
		accounts: accounts,
		board:    board,
		log:      log,
	}
}

// Start 注册任务并启动调度。Cron格式: 分 时 日 月 周
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc(m.cfg.DedupeUsers, func() { m.run(JobDedupeUsers, m.DedupeNow) }); err != nil {
		return err
	}
	if _, err := m.cron.AddFunc(m.cfg.Resync, func() { m.run(JobResync, m.ResyncNow) }); err != nil {
		return err
	}

	m.cron.Start()
	m.log.Info("cron manager started",
		logger.String(JobDedupeUsers, m.cfg.DedupeUsers),
		logger.String(JobResync, m.cfg.Resync),
	)
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
	m.log.Info("cron manager stopped")
}

// DedupeNow 立即执行账号去重
func (m *Manager) DedupeNow(ctx context.Context) error {
	removed, err := m.accounts.DedupeByEmail(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		m.log.Info("duplicate accounts removed", logger.Int("removed", removed))
	}
	return nil
}

// ResyncNow 立即全量刷新快照并广播，补上推送丢失的变更
func (m *Manager) ResyncNow(ctx context.Context) error {
	return m.board.Resync(ctx)
}

func (m *Manager) run(job string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.RecordCronRun(job, err)
	if err != nil {
		m.log.Error("cron job failed", logger.String("job", job), logger.Error(err))
		return
	}
	m.log.Debug("cron job finished", logger.String("job", job), logger.Duration("duration", time.Since(start)))
}
