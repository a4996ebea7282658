package domain

import (
	"strings"
	"time"
)

const (
	// DefaultArtist 导入时缺少歌手的默认值
	DefaultArtist = "未知"
	// DefaultLanguage 导入时缺少语言的默认值
	DefaultLanguage = "Unknown"
)

// Song 曲库歌曲
type Song struct {
	ID        string    `json:"id"`       // 歌号，由管理员指定
	Title     string    `json:"title"`    // 歌名
	Artist    string    `json:"artist"`   // 歌手
	Language  string    `json:"language"` // 语言
	Tags      []string  `json:"tags,omitempty"`
	AddedAt   time.Time `json:"added_at"`
	IsDeleted bool      `json:"is_deleted"` // 软删除，历史记录仍可解析
}

// Validate 校验必填字段
func (s *Song) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSongID
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrInvalidSongTitle
	}
	return nil
}

// Normalize 修剪空白并补默认值
func (s *Song) Normalize() {
	s.ID = strings.TrimSpace(s.ID)
	s.Title = strings.TrimSpace(s.Title)
	s.Artist = strings.TrimSpace(s.Artist)
	s.Language = strings.TrimSpace(s.Language)
	if s.Artist == "" {
		s.Artist = DefaultArtist
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
}

// Eligible 是否可点
func (s *Song) Eligible() bool {
	return !s.IsDeleted
}

// SoftDelete 软删除
func (s *Song) SoftDelete() {
	s.IsDeleted = true
}

// Restore 恢复
func (s *Song) Restore() {
	s.IsDeleted = false
}

// Matches 关键字匹配歌名、歌手或歌号（不区分大小写）
func (s *Song) Matches(keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), keyword) ||
		strings.Contains(strings.ToLower(s.Artist), keyword) ||
		strings.Contains(strings.ToLower(s.ID), keyword)
}

// SongIndex 按 ID 索引歌曲
func SongIndex(songs []Song) map[string]*Song {
	idx := make(map[string]*Song, len(songs))
	for i := range songs {
		idx[songs[i].ID] = &songs[i]
	}
	return idx
}
