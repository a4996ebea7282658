package domain

import "time"

// RequestStatus 点歌状态
type RequestStatus string

const (
	StatusQueued    RequestStatus = "queued"
	StatusPlayed    RequestStatus = "played"
	StatusCancelled RequestStatus = "cancelled"
)

// Valid 是否为已知状态
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusPlayed, StatusCancelled:
		return true
	}
	return false
}

// Terminal 已唱或已取消后不可再变更
func (s RequestStatus) Terminal() bool {
	return s == StatusPlayed || s == StatusCancelled
}

// SongRequest 点歌记录
type SongRequest struct {
	ID          string        `json:"id"`
	SongID      string        `json:"song_id"`
	UserID      string        `json:"user_id"`
	RequestedAt time.Time     `json:"requested_at"` // 创建后不可变，排队唯一排序依据
	Status      RequestStatus `json:"status"`
	KeyShift    *int          `json:"key_shift,omitempty"` // 升降 Key
}

// Queued 是否仍在排队
func (r *SongRequest) Queued() bool {
	return r.Status == StatusQueued
}

// OwnedBy 是否为该用户点的歌
func (r *SongRequest) OwnedBy(userID string) bool {
	return r.UserID == userID
}
