package service

import (
	"time"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/live"
	"github.com/John-Sie/YangBeiKTV/internal/ranking"
)

// HistoryEntry 个人历史中的一行
type HistoryEntry struct {
	Request     domain.SongRequest `json:"request"`
	Song        *domain.Song       `json:"song,omitempty"`
	GlobalCount int                `json:"global_count"`
	MyCount     int                `json:"my_count"`
}

// SongStats 单曲点播次数
type SongStats struct {
	SongID      string `json:"song_id"`
	GlobalCount int    `json:"global_count"`
	MyCount     int    `json:"my_count"`
}

// StatsService 排行与统计，全部从看板快照计算
type StatsService struct {
	board *live.Board
	now   func() time.Time
}

// NewStatsService 创建统计服务
func NewStatsService(board *live.Board) *StatsService {
	return &StatsService{board: board, now: time.Now}
}

// TopSongs 时间窗口内的热门歌曲
func (s *StatsService) TopSongs(w ranking.Window, limit int) []ranking.SongCount {
	snap := s.board.Snapshot()
	return ranking.TopSongs(snap.Requests, snap.Songs, w.Start(s.now()), limit)
}

// TopSongsByLanguage 某语言的历来热门
func (s *StatsService) TopSongsByLanguage(language string, limit int) []ranking.SongCount {
	snap := s.board.Snapshot()
	return ranking.TopSongsByLanguage(snap.Requests, snap.Songs, language, limit)
}

// TopArtists 近一个月的热门歌手
func (s *StatsService) TopArtists(limit int) []ranking.ArtistCount {
	snap := s.board.Snapshot()
	return ranking.TopArtists(snap.Requests, snap.Songs, ranking.Month.Start(s.now()), limit)
}

// TopRequesters 点歌王
func (s *StatsService) TopRequesters(limit int) []ranking.RequesterCount {
	snap := s.board.Snapshot()
	return ranking.TopRequesters(snap.Requests, snap.Users, limit)
}

// Dashboard 管理后台概览
func (s *StatsService) Dashboard() ranking.Dashboard {
	snap := s.board.Snapshot()
	return ranking.BuildDashboard(snap.Songs, snap.Requests, snap.Users, s.now())
}

// SongStats 某首歌的全站与个人点播次数，userID 为空时只算全站
func (s *StatsService) SongStats(songID, userID string) SongStats {
	global, mine := ranking.PerUserStats(songID, userID, s.board.Snapshot().Requests)
	return SongStats{SongID: songID, GlobalCount: global, MyCount: mine}
}

// History 个人点歌记录，sungOnly 只保留已唱
func (s *StatsService) History(userID string, sungOnly bool) ([]HistoryEntry, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	snap := s.board.Snapshot()

	var rows []domain.SongRequest
	if sungOnly {
		rows = ranking.SungHistory(snap.Requests, userID)
	} else {
		rows = ranking.UserHistory(snap.Requests, userID)
	}

	songs := domain.SongIndex(snap.Songs)
	out := make([]HistoryEntry, len(rows))
	for i, r := range rows {
		global, mine := ranking.PerUserStats(r.SongID, userID, snap.Requests)
		e := HistoryEntry{Request: r, GlobalCount: global, MyCount: mine}
		if song, ok := songs[r.SongID]; ok {
			cp := *song
			e.Song = &cp
		}
		out[i] = e
	}
	return out, nil
}
