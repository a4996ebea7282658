package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/John-Sie/YangBeiKTV/internal/classifier"
	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/live"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/queue"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/crypto"
	"github.com/John-Sie/YangBeiKTV/pkg/jwt"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

var t0 = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

// env 内存仓储 + 同步通知通道组装出的完整服务
type env struct {
	songs     *repository.MemorySongRepository
	requests  repository.RequestRepository
	memReqs   *repository.MemoryRequestRepository
	users     *repository.MemoryUserRepository
	feedbacks *repository.MemoryFeedbackRepository
	ch        *notify.MemoryChannel
	board     *live.Board
	tokens    *jwt.Manager

	requestSvc  *RequestService
	catalogSvc  *CatalogService
	accountSvc  *AccountService
	feedbackSvc *FeedbackService
	statsSvc    *StatsService
}

type envOption func(*env)

// withRequests 替换点歌仓储，用于注入写库故障
func withRequests(r repository.RequestRepository) envOption {
	return func(e *env) { e.requests = r }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	ctx := context.Background()

	e := &env{
		songs:     repository.NewMemorySongRepository(),
		memReqs:   repository.NewMemoryRequestRepository(),
		users:     repository.NewMemoryUserRepository(),
		feedbacks: repository.NewMemoryFeedbackRepository(),
		ch:        notify.NewMemoryChannel(),
		tokens:    jwt.NewManager(&jwt.Config{Secret: "test-secret", Issuer: "ktv-test", TokenExpiry: time.Hour}),
	}
	e.requests = e.memReqs
	for _, opt := range opts {
		opt(e)
	}

	require.NoError(t, e.songs.UpsertBatch(ctx, []domain.Song{
		{ID: "s1", Title: "小幸運", Artist: "田馥甄", Language: "國語", AddedAt: t0},
		{ID: "s2", Title: "晴天", Artist: "周杰倫", Language: "國語", AddedAt: t0},
		{ID: "s3", Title: "家後", Artist: "江蕙", Language: "台語", AddedAt: t0},
		{ID: "s4", Title: "舊歌", Artist: "某人", Language: "國語", AddedAt: t0, IsDeleted: true},
	}))
	require.NoError(t, e.users.Save(ctx, &domain.User{ID: "u1", Email: "ming@example.com", Name: "王小明", Role: domain.RoleUser, Building: "A", Door: "76", Floor: "19", CreatedAt: t0}))
	require.NoError(t, e.users.Save(ctx, &domain.User{ID: "u2", Email: "hua@example.com", Name: "李小華", Role: domain.RoleUser, Building: "B", Door: "3", Floor: "5", CreatedAt: t0}))
	require.NoError(t, e.users.Save(ctx, &domain.User{ID: "admin", Email: "admin@example.com", Name: "管理員", Role: domain.RoleAdmin, CreatedAt: t0}))

	log := logger.Nop()
	e.board = live.NewBoard(e.songs, e.requests, e.users, log)
	require.NoError(t, e.board.Refresh(ctx))
	require.NoError(t, e.board.Watch(ctx, e.ch))
	t.Cleanup(e.board.Close)

	engine := queue.NewEngine(e.requests, e.ch, log)
	hasher := crypto.NewPasswordHasherWithParams(crypto.FastArgon2Params())

	e.requestSvc = NewRequestService(e.board, e.songs, e.requests, e.users, engine, e.ch, log)
	e.catalogSvc = NewCatalogService(e.board, e.songs, e.ch, classifier.NewHeuristic(), log)
	e.accountSvc = NewAccountService(e.users, e.requests, hasher, e.tokens, e.ch, log)
	e.feedbackSvc = NewFeedbackService(e.feedbacks, e.ch, log)
	e.statsSvc = NewStatsService(e.board)
	return e
}

func (e *env) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := e.users.Get(context.Background(), id)
	require.NoError(t, err)
	return u
}

// clock 单调递增的假时钟，保证点歌时间有先后
func clock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

// failingRequests 可按需让 Insert 失败的点歌仓储
type failingRequests struct {
	*repository.MemoryRequestRepository
	mock.Mock
}

func (f *failingRequests) Insert(ctx context.Context, r *domain.SongRequest) error {
	if err := f.Called(ctx, r).Error(0); err != nil {
		return err
	}
	return f.MemoryRequestRepository.Insert(ctx, r)
}
