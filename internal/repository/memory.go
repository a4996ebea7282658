package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// 内存实现用于 storage.driver=memory 与测试，读写都返回副本

// MemorySongRepository 内存曲库
type MemorySongRepository struct {
	mu    sync.RWMutex
	songs map[string]domain.Song
}

// NewMemorySongRepository 创建内存曲库
func NewMemorySongRepository() *MemorySongRepository {
	return &MemorySongRepository{songs: make(map[string]domain.Song)}
}

func cloneSong(s domain.Song) domain.Song {
	s.Tags = slices.Clone(s.Tags)
	return s
}

func (r *MemorySongRepository) FetchAll(_ context.Context) ([]domain.Song, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Song, 0, len(r.songs))
	for _, s := range r.songs {
		out = append(out, cloneSong(s))
	}
	slices.SortFunc(out, func(a, b domain.Song) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *MemorySongRepository) Get(_ context.Context, id string) (*domain.Song, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.songs[id]
	if !ok {
		return nil, domain.ErrSongNotFound
	}
	s = cloneSong(s)
	return &s, nil
}

func (r *MemorySongRepository) upsert(s domain.Song) {
	if old, ok := r.songs[s.ID]; ok {
		s.AddedAt = old.AddedAt
	}
	r.songs[s.ID] = cloneSong(s)
}

func (r *MemorySongRepository) Upsert(_ context.Context, song *domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsert(*song)
	return nil
}

func (r *MemorySongRepository) UpsertBatch(_ context.Context, songs []domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range songs {
		r.upsert(s)
	}
	return nil
}

func (r *MemorySongRepository) SetDeleted(_ context.Context, id string, deleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.songs[id]
	if !ok {
		return domain.ErrSongNotFound
	}
	s.IsDeleted = deleted
	r.songs[id] = s
	return nil
}

// MemoryRequestRepository 内存点歌记录，保持插入顺序
type MemoryRequestRepository struct {
	mu       sync.RWMutex
	requests []domain.SongRequest
}

// NewMemoryRequestRepository 创建内存点歌仓储
func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{}
}

func (r *MemoryRequestRepository) index(id string) int {
	return slices.IndexFunc(r.requests, func(req domain.SongRequest) bool { return req.ID == id })
}

func (r *MemoryRequestRepository) FetchAll(_ context.Context) ([]domain.SongRequest, error) {
	r.mu.RLock()
	out := slices.Clone(r.requests)
	r.mu.RUnlock()
	// 同一时刻按插入顺序，与 requests.seq 一致
	slices.SortStableFunc(out, func(a, b domain.SongRequest) int {
		return a.RequestedAt.Compare(b.RequestedAt)
	})
	return out, nil
}

func (r *MemoryRequestRepository) Get(_ context.Context, id string) (*domain.SongRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return nil, domain.ErrRequestNotFound
	}
	req := r.requests[i]
	return &req, nil
}

func (r *MemoryRequestRepository) Insert(_ context.Context, req *domain.SongRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, *req)
	return nil
}

func (r *MemoryRequestRepository) UpdateStatus(_ context.Context, id string, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return domain.ErrRequestNotFound
	}
	r.requests[i].Status = status
	return nil
}

func (r *MemoryRequestRepository) UpdateStatusIf(_ context.Context, id string, from, to domain.RequestStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 || r.requests[i].Status != from {
		return false, nil
	}
	r.requests[i].Status = to
	return true, nil
}

func (r *MemoryRequestRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.requests)
	r.requests = slices.DeleteFunc(r.requests, func(req domain.SongRequest) bool { return req.UserID == userID })
	return int64(before - len(r.requests)), nil
}

// MemoryUserRepository 内存用户
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository 创建内存用户仓储
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func cloneUser(u domain.User) domain.User {
	u.Favorites = slices.Clone(u.Favorites)
	if u.LastLogin != nil {
		t := *u.LastLogin
		u.LastLogin = &t
	}
	return u
}

func (r *MemoryUserRepository) FetchAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b domain.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *MemoryUserRepository) Get(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

// GetByEmail 与 PostgreSQL 实现同样的优先级：管理员、最近登录、最近创建
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *domain.User
	for _, u := range r.users {
		if u.Email != email {
			continue
		}
		if best == nil || domain.Prefer(&u, best) {
			c := cloneUser(u)
			best = &c
		}
	}
	if best == nil {
		return nil, domain.ErrUserNotFound
	}
	return best, nil
}

func (r *MemoryUserRepository) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) ToggleFavorite(_ context.Context, userID, songID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.ToggleFavorite(songID)
	r.users[userID] = u
	return slices.Clone(u.Favorites), nil
}

func (r *MemoryUserRepository) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RecordLogin(at)
	r.users[id] = u
	return nil
}

// MemoryFeedbackRepository 内存意见反馈
type MemoryFeedbackRepository struct {
	mu   sync.RWMutex
	list []domain.Feedback
}

// NewMemoryFeedbackRepository 创建内存意见反馈仓储
func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{}
}

func (r *MemoryFeedbackRepository) List(_ context.Context) ([]domain.Feedback, error) {
	r.mu.RLock()
	out := slices.Clone(r.list)
	r.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b domain.Feedback) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *MemoryFeedbackRepository) Insert(_ context.Context, fb *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, *fb)
	return nil
}

func (r *MemoryFeedbackRepository) find(id string) int {
	return slices.IndexFunc(r.list, func(fb domain.Feedback) bool { return fb.ID == id })
}

func (r *MemoryFeedbackRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return domain.ErrFeedbackNotFound
	}
	r.list = slices.Delete(r.list, i, i+1)
	return nil
}

func (r *MemoryFeedbackRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(id)
	if i < 0 {
		return domain.ErrFeedbackNotFound
	}
	r.list[i].IsRead = true
	return nil
}

var (
	_ SongRepository     = (*MemorySongRepository)(nil)
	_ RequestRepository  = (*MemoryRequestRepository)(nil)
	_ UserRepository     = (*MemoryUserRepository)(nil)
	_ FeedbackRepository = (*MemoryFeedbackRepository)(nil)
)
