package domain

import (
	"strings"
	"time"
)

// FeedbackType 反馈类型
type FeedbackType string

const (
	FeedbackIssue      FeedbackType = "issue"
	FeedbackSuggestion FeedbackType = "suggestion"
	FeedbackPraise     FeedbackType = "praise"
	FeedbackOther      FeedbackType = "other"
)

// Feedback 意见反馈
type Feedback struct {
	ID        string       `json:"id"`
	UserID    *string      `json:"user_id,omitempty"` // 匿名时为空
	Name      string       `json:"name"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Type      FeedbackType `json:"type"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	IsRead    bool         `json:"is_read"`
}

// Validate 校验类型与内容
func (f *Feedback) Validate() error {
	switch f.Type {
	case FeedbackIssue, FeedbackSuggestion, FeedbackPraise, FeedbackOther:
	default:
		return ErrInvalidFeedbackType
	}
	if strings.TrimSpace(f.Content) == "" {
		return ErrEmptyFeedback
	}
	return nil
}
