package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/John-Sie/YangBeiKTV/internal/classifier"
	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/live"
	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// ImportBatchSize 批量导入每批条数
const ImportBatchSize = 100

// BulkResult 批量导入结果
type BulkResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// CatalogService 曲库服务
type CatalogService struct {
	board      *live.Board
	songs      repository.SongRepository
	publisher  notify.Publisher
	classifier classifier.Classifier
	log        logger.Logger
	now        func() time.Time
}

// NewCatalogService 创建曲库服务
func NewCatalogService(board *live.Board, songs repository.SongRepository, publisher notify.Publisher, c classifier.Classifier, log logger.Logger) *CatalogService {
	return &CatalogService{
		board:      board,
		songs:      songs,
		publisher:  publisher,
		classifier: c,
		log:        log.WithFields(logger.String("component", "catalog_service")),
		now:        time.Now,
	}
}

// Search 在可点歌曲中按关键字与语言筛选，language 为空表示不限
func (s *CatalogService) Search(keyword, language string) []domain.Song {
	var out []domain.Song
	for _, song := range s.board.EligibleSongs() {
		if language != "" && song.Language != language {
			continue
		}
		if song.Matches(keyword) {
			out = append(out, song)
		}
	}
	return out
}

// Languages 可点歌曲出现过的语言
func (s *CatalogService) Languages() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, song := range s.board.EligibleSongs() {
		if _, ok := seen[song.Language]; !ok {
			seen[song.Language] = struct{}{}
			out = append(out, song.Language)
		}
	}
	slices.Sort(out)
	return out
}

// All 全部歌曲（含已软删除），管理后台使用
func (s *CatalogService) All() []domain.Song {
	return s.board.Snapshot().Songs
}

// Singers 某分类下的歌手，length 为字数筛选（0 不筛选）
func (s *CatalogService) Singers(cat classifier.Category, length int) []string {
	groups := classifier.GroupArtists(s.board.EligibleSongs(), s.classifier)
	return classifier.Filter(groups, cat, length)
}

// SingerCounts 各分类歌手数
func (s *CatalogService) SingerCounts() map[classifier.Category]int {
	groups := classifier.GroupArtists(s.board.EligibleSongs(), s.classifier)
	out := make(map[classifier.Category]int, len(groups))
	for cat, names := range groups {
		out[cat] = len(names)
	}
	return out
}

// SongsByArtist 某歌手的可点歌曲
func (s *CatalogService) SongsByArtist(artist string) []domain.Song {
	artist = strings.TrimSpace(artist)
	var out []domain.Song
	for _, song := range s.board.EligibleSongs() {
		if strings.TrimSpace(song.Artist) == artist {
			out = append(out, song)
		}
	}
	return out
}

// Upsert 新增或修改歌曲
func (s *CatalogService) Upsert(ctx context.Context, song *domain.Song) error {
	song.Normalize()
	if err := song.Validate(); err != nil {
		return err
	}
	if song.AddedAt.IsZero() {
		song.AddedAt = s.now().UTC()
	}
	if err := s.songs.Upsert(ctx, song); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// ImportSongs 批量导入。缺少歌号或歌名的行计为失败；其余按批写入，
// 一批失败只影响该批。
func (s *CatalogService) ImportSongs(ctx context.Context, rows []domain.Song) BulkResult {
	var result BulkResult
	now := s.now().UTC()

	valid := make([]domain.Song, 0, len(rows))
	for _, song := range rows {
		song.Normalize()
		if err := song.Validate(); err != nil {
			result.Failed++
			continue
		}
		if song.AddedAt.IsZero() {
			song.AddedAt = now
		}
		valid = append(valid, song)
	}

	for batch := range slices.Chunk(valid, ImportBatchSize) {
		if err := s.songs.UpsertBatch(ctx, batch); err != nil {
			result.Failed += len(batch)
			s.log.WithContext(ctx).Error("import batch failed",
				logger.Int("size", len(batch)),
				logger.String("first_id", batch[0].ID),
				logger.Error(err),
			)
			continue
		}
		result.Succeeded += len(batch)
	}

	metrics.RecordImport(result.Succeeded, result.Failed)
	s.log.WithContext(ctx).Info("songs imported",
		logger.Int("succeeded", result.Succeeded),
		logger.Int("failed", result.Failed),
	)
	if result.Succeeded > 0 {
		s.changed(ctx)
	}
	return result
}

// SoftDelete 下架歌曲，历史记录仍可解析
func (s *CatalogService) SoftDelete(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, true)
}

// Restore 恢复歌曲
func (s *CatalogService) Restore(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, false)
}

func (s *CatalogService) setDeleted(ctx context.Context, id string, deleted bool) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidSongID
	}
	if err := s.songs.SetDeleted(ctx, id, deleted); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

func (s *CatalogService) changed(ctx context.Context) {
	if err := s.publisher.Publish(ctx, notify.TableSongs); err != nil {
		s.log.WithContext(ctx).Warn("publish change failed", logger.Error(err))
	}
}
