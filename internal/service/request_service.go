package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/live"
	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/queue"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// SubmitOption 点歌附加选项
type SubmitOption func(*domain.SongRequest)

// WithKeyShift 指定升降 Key
func WithKeyShift(shift int) SubmitOption {
	return func(r *domain.SongRequest) {
		r.KeyShift = &shift
	}
}

// RequestService 点歌生命周期
//
// 当前用户总是由调用方显式传入，服务本身不读取任何全局状态。
type RequestService struct {
	board     *live.Board
	songs     repository.SongRepository
	requests  repository.RequestRepository
	users     repository.UserRepository
	engine    *queue.Engine
	publisher notify.Publisher
	log       logger.Logger
	now       func() time.Time
}

// NewRequestService 创建点歌服务
func NewRequestService(
	board *live.Board,
	songs repository.SongRepository,
	requests repository.RequestRepository,
	users repository.UserRepository,
	engine *queue.Engine,
	publisher notify.Publisher,
	log logger.Logger,
) *RequestService {
	return &RequestService{
		board:     board,
		songs:     songs,
		requests:  requests,
		users:     users,
		engine:    engine,
		publisher: publisher,
		log:       log.WithFields(logger.String("component", "request_service")),
		now:       time.Now,
	}
}

// Submit 点歌
//
// 校验全部在写库之前完成。新记录先放入看板的乐观队列，再同步写库；
// 写库失败时撤销乐观条目并返回 ErrBackendUnavailable。
func (s *RequestService) Submit(ctx context.Context, song *domain.Song, user *domain.User, opts ...SubmitOption) (*domain.SongRequest, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if user.IsSuspended {
		return nil, domain.ErrUserSuspended
	}
	if song == nil {
		return nil, domain.ErrSongNotFound
	}
	if !song.Eligible() {
		return nil, domain.ErrInvalidState
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	req := domain.SongRequest{
		ID:          id.String(),
		SongID:      song.ID,
		UserID:      user.ID,
		// timestamptz 只有微秒精度，乐观条目与落库后的排序须一致
		RequestedAt: s.now().UTC().Truncate(time.Microsecond),
		Status:      domain.StatusQueued,
	}
	for _, opt := range opts {
		opt(&req)
	}

	s.board.ApplyOptimistic(req)

	if err := s.requests.Insert(ctx, &req); err != nil {
		s.board.Rollback(req.ID)
		metrics.RecordSubmit("rolled_back")
		s.log.WithContext(ctx).Error("request insert failed, optimistic entry rolled back",
			logger.String("request_id", req.ID),
			logger.String("song_id", song.ID),
			logger.String("user_id", user.ID),
			logger.Error(err),
		)
		if errors.Is(err, domain.ErrBackendUnavailable) {
			return nil, err
		}
		return nil, domain.Unavailable("insert request", err)
	}

	metrics.RecordSubmit("ok")
	s.log.WithContext(ctx).Info("song requested",
		logger.String("request_id", req.ID),
		logger.String("song_id", song.ID),
		logger.String("user_id", user.ID),
	)

	if err := s.publisher.Publish(ctx, notify.TableRequests); err != nil {
		s.log.WithContext(ctx).Warn("publish change failed", logger.Error(err))
	}
	return &req, nil
}

// SubmitByID 按歌号点歌，优先从看板快照解析歌曲
func (s *RequestService) SubmitByID(ctx context.Context, songID string, user *domain.User, opts ...SubmitOption) (*domain.SongRequest, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if songID == "" {
		return nil, domain.ErrInvalidSongID
	}
	if song, ok := s.board.Song(songID); ok {
		return s.Submit(ctx, &song, user, opts...)
	}

	song, err := s.songs.Get(ctx, songID)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, song, user, opts...)
}

// CancelOwn 取消点歌。本人或管理员可取消；只有排队中的点歌可以取消
func (s *RequestService) CancelOwn(ctx context.Context, requestID string, user *domain.User) error {
	if user == nil {
		return domain.ErrUnauthenticated
	}
	if requestID == "" {
		return domain.ErrRequestNotFound
	}

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if !req.OwnedBy(user.ID) && !user.IsAdmin() {
		return domain.ErrForbidden
	}
	if !req.Queued() {
		return domain.ErrInvalidState
	}
	// 与其他取消并发时由引擎按幂等处理
	return s.engine.Cancel(ctx, requestID)
}

// MarkPlayed 管理员标记已唱
func (s *RequestService) MarkPlayed(ctx context.Context, requestID string, operator *domain.User) error {
	if operator == nil {
		return domain.ErrUnauthenticated
	}
	if !operator.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.engine.MarkPlayed(ctx, requestID)
}

// ToggleFavorite 收藏/取消收藏，返回切换后的收藏列表
func (s *RequestService) ToggleFavorite(ctx context.Context, userID, songID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if songID == "" {
		return nil, domain.ErrInvalidSongID
	}

	favorites, err := s.users.ToggleFavorite(ctx, userID, songID)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, notify.TableUsers); err != nil {
		s.log.WithContext(ctx).Warn("publish change failed", logger.Error(err))
	}
	return favorites, nil
}

// Queue 当前队列
func (s *RequestService) Queue() []live.QueueItem {
	return s.board.Queue()
}
