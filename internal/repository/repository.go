package repository

import (
	"context"
	"time"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// 所有实现遵守同一约定：
//   - 记录不存在返回 domain.ErrXxxNotFound
//   - 存储故障包装为 domain.ErrBackendUnavailable
//   - FetchAll 返回完整快照，调用方不做增量合并

// SongRepository 曲库仓储接口
type SongRepository interface {
	FetchAll(ctx context.Context) ([]domain.Song, error)
	Get(ctx context.Context, id string) (*domain.Song, error)
	// Upsert 歌号相同则覆盖
	Upsert(ctx context.Context, song *domain.Song) error
	// UpsertBatch 一批要么全部成功要么全部失败
	UpsertBatch(ctx context.Context, songs []domain.Song) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
}

// RequestRepository 点歌仓储接口
type RequestRepository interface {
	// FetchAll 按 requested_at 排序，相同时刻按写入顺序
	FetchAll(ctx context.Context) ([]domain.SongRequest, error)
	Get(ctx context.Context, id string) (*domain.SongRequest, error)
	Insert(ctx context.Context, req *domain.SongRequest) error
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error
	// UpdateStatusIf 仅当当前状态为 from 时更新，返回是否更新
	UpdateStatusIf(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	FetchAll(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Save 整条覆盖，后写者胜
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	// ToggleFavorite 原子切换收藏，返回切换后的收藏列表
	ToggleFavorite(ctx context.Context, userID, songID string) ([]string, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// FeedbackRepository 意见反馈仓储接口
type FeedbackRepository interface {
	// List 新的在前
	List(ctx context.Context) ([]domain.Feedback, error)
	Insert(ctx context.Context, fb *domain.Feedback) error
	Delete(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) error
}
