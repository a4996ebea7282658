// Package live 保存最新的完整快照，供所有读取视图使用。
//
// 每次收到变更通知都重新拉取全部数据并整体替换快照，派生视图（队列、排行）
// 在读取时从快照重新计算，不做增量修补。
package live

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/queue"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// Snapshot 某一时刻的完整数据。切片只读，调用方不得修改
type Snapshot struct {
	Songs     []domain.Song
	Requests  []domain.SongRequest
	Users     []domain.User
	FetchedAt time.Time
}

// QueueItem 队列中的一行，附带显示用信息
type QueueItem struct {
	Position  int                `json:"position"`
	Request   domain.SongRequest `json:"request"`
	Song      *domain.Song       `json:"song,omitempty"` // 歌曲已不存在时为空
	Requester string             `json:"requester"`
	Residence string             `json:"residence,omitempty"`
	Pending   bool               `json:"pending"` // 尚未写入成功的乐观条目
}

// Board 实时看板
type Board struct {
	songs    repository.SongRepository
	requests repository.RequestRepository
	users    repository.UserRepository
	log      logger.Logger

	sf singleflight.Group
	// requested 在每次 Refresh 调用时递增；covered 是已成功拉取所覆盖的最大编号
	genMu     sync.Mutex
	requested uint64
	covered   uint64

	mu      sync.RWMutex
	snap    Snapshot
	pending []domain.SongRequest

	listenMu  sync.RWMutex
	listeners []func(notify.Table)

	subs []*notify.Subscription
}

// NewBoard 创建看板，需调用 Refresh 载入第一份快照
func NewBoard(songs repository.SongRepository, requests repository.RequestRepository, users repository.UserRepository, log logger.Logger) *Board {
	return &Board{
		songs:    songs,
		requests: requests,
		users:    users,
		log:      log.WithFields(logger.String("component", "board")),
	}
}

// OnChange 注册变更回调（例如 WebSocket 广播），在快照替换之后调用
func (b *Board) OnChange(fn func(notify.Table)) {
	b.listenMu.Lock()
	defer b.listenMu.Unlock()
	b.listeners = append(b.listeners, fn)
}

func (b *Board) emit(table notify.Table) {
	b.listenMu.RLock()
	fns := slices.Clone(b.listeners)
	b.listenMu.RUnlock()
	for _, fn := range fns {
		fn(table)
	}
}

// Refresh 并发拉取三张表并整体替换快照，失败时保留旧快照。
// 并发触发会合并：加入一次在本次调用之前就已开始的拉取不算数，
// 之后会再跟一次拉取，所有在等待的调用共用这一次。
func (b *Board) Refresh(ctx context.Context) error {
	b.genMu.Lock()
	b.requested++
	gen := b.requested
	b.genMu.Unlock()

	for {
		if _, err, _ := b.sf.Do("refresh", func() (interface{}, error) {
			return nil, b.refreshOnce(ctx)
		}); err != nil {
			return err
		}
		b.genMu.Lock()
		done := b.covered >= gen
		b.genMu.Unlock()
		if done {
			return nil
		}
	}
}

func (b *Board) refreshOnce(ctx context.Context) error {
	b.genMu.Lock()
	gen := b.requested
	b.genMu.Unlock()

	start := time.Now()
	snap, err := b.fetch(ctx)
	metrics.RecordRefresh(time.Since(start), err)
	if err != nil {
		b.log.WithContext(ctx).Warn("snapshot refresh failed", logger.Error(err))
		return err
	}
	b.replace(snap)

	b.genMu.Lock()
	if gen > b.covered {
		b.covered = gen
	}
	b.genMu.Unlock()
	return nil
}

// Resync 全量刷新后通知所有表的监听者，用于补上丢失的变更通知
func (b *Board) Resync(ctx context.Context) error {
	if err := b.Refresh(ctx); err != nil {
		return err
	}
	for _, table := range []notify.Table{notify.TableSongs, notify.TableRequests, notify.TableUsers} {
		b.emit(table)
	}
	return nil
}

func (b *Board) fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		songs, err := b.songs.FetchAll(gctx)
		snap.Songs = songs
		return err
	})
	g.Go(func() error {
		requests, err := b.requests.FetchAll(gctx)
		snap.Requests = requests
		return err
	})
	g.Go(func() error {
		users, err := b.users.FetchAll(gctx)
		snap.Users = users
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}

func (b *Board) replace(snap Snapshot) {
	b.mu.Lock()
	b.snap = snap
	// 已进入快照的乐观条目不再需要
	if len(b.pending) > 0 {
		known := make(map[string]struct{}, len(snap.Requests))
		for _, r := range snap.Requests {
			known[r.ID] = struct{}{}
		}
		b.pending = slices.DeleteFunc(b.pending, func(r domain.SongRequest) bool {
			_, ok := known[r.ID]
			return ok
		})
	}
	queued := len(queue.Derive(b.mergedLocked()))
	b.mu.Unlock()

	metrics.QueueLength.Set(float64(queued))
}

// mergedLocked 快照请求加上尚未落库的乐观条目，调用方持有锁
func (b *Board) mergedLocked() []domain.SongRequest {
	if len(b.pending) == 0 {
		return b.snap.Requests
	}
	out := make([]domain.SongRequest, 0, len(b.snap.Requests)+len(b.pending))
	out = append(out, b.snap.Requests...)
	return append(out, b.pending...)
}

// Snapshot 返回当前快照，请求列表已合并乐观条目
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.snap
	s.Requests = b.mergedLocked()
	return s
}

// Loaded 是否已成功载入过快照
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.snap.FetchedAt.IsZero()
}

// ApplyOptimistic 在写库之前把新点歌放入看板，让队列立即可见
func (b *Board) ApplyOptimistic(req domain.SongRequest) {
	b.mu.Lock()
	b.pending = append(b.pending, req)
	b.mu.Unlock()
	b.emit(notify.TableRequests)
}

// Rollback 撤销乐观条目，返回是否存在
func (b *Board) Rollback(requestID string) bool {
	b.mu.Lock()
	n := len(b.pending)
	b.pending = slices.DeleteFunc(b.pending, func(r domain.SongRequest) bool { return r.ID == requestID })
	removed := len(b.pending) < n
	b.mu.Unlock()
	if removed {
		b.emit(notify.TableRequests)
	}
	return removed
}

// Pending 尚未进入快照的乐观条目数
func (b *Board) Pending() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pending)
}

// Queue 当前队列，位置从 1 开始
func (b *Board) Queue() []QueueItem {
	b.mu.RLock()
	requests := b.mergedLocked()
	pending := make(map[string]struct{}, len(b.pending))
	for _, r := range b.pending {
		pending[r.ID] = struct{}{}
	}
	songs := domain.SongIndex(b.snap.Songs)
	users := domain.UserIndex(b.snap.Users)
	b.mu.RUnlock()

	entries := queue.Number(queue.Derive(requests))
	items := make([]QueueItem, len(entries))
	for i, e := range entries {
		item := QueueItem{Position: e.Position, Request: e.Request, Requester: domain.DefaultUserName}
		if s, ok := songs[e.Request.SongID]; ok {
			song := *s
			item.Song = &song
		}
		if u, ok := users[e.Request.UserID]; ok {
			item.Requester = u.DisplayName()
			item.Residence = u.Residence()
		}
		_, item.Pending = pending[e.Request.ID]
		items[i] = item
	}
	return items
}

// Song 按歌号查找（含已软删除）
func (b *Board) Song(id string) (domain.Song, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := slices.IndexFunc(b.snap.Songs, func(s domain.Song) bool { return s.ID == id })
	if i < 0 {
		return domain.Song{}, false
	}
	return b.snap.Songs[i], true
}

// EligibleSongs 可点歌曲
func (b *Board) EligibleSongs() []domain.Song {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Song, 0, len(b.snap.Songs))
	for _, s := range b.snap.Songs {
		if s.Eligible() {
			out = append(out, s)
		}
	}
	return out
}

// Watch 订阅 songs、requests、users 的变更，每次通知都整体刷新后再广播；
// feedbacks 只转发广播。ctx 用于回调中的刷新。
func (b *Board) Watch(ctx context.Context, ch notify.Channel) error {
	for _, table := range []notify.Table{notify.TableSongs, notify.TableRequests, notify.TableUsers} {
		sub, err := ch.Subscribe(table, func() {
			if err := b.Refresh(ctx); err != nil {
				return
			}
			b.emit(table)
		})
		if err != nil {
			b.Close()
			return err
		}
		b.subs = append(b.subs, sub)
	}

	sub, err := ch.Subscribe(notify.TableFeedbacks, func() { b.emit(notify.TableFeedbacks) })
	if err != nil {
		b.Close()
		return err
	}
	b.subs = append(b.subs, sub)
	return nil
}

// Close 取消全部订阅
func (b *Board) Close() {
	for _, s := range b.subs {
		s.Unsubscribe()
	}
	b.subs = nil
}
