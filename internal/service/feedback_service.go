package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// FeedbackInput 反馈表单
type FeedbackInput struct {
	Name    string
	Email   string
	Phone   string
	Type    domain.FeedbackType
	Content string
}

// FeedbackService 意见反馈
type FeedbackService struct {
	feedbacks repository.FeedbackRepository
	publisher notify.Publisher
	log       logger.Logger
	now       func() time.Time
}

// NewFeedbackService 创建反馈服务
func NewFeedbackService(feedbacks repository.FeedbackRepository, publisher notify.Publisher, log logger.Logger) *FeedbackService {
	return &FeedbackService{
		feedbacks: feedbacks,
		publisher: publisher,
		log:       log.WithFields(logger.String("component", "feedback_service")),
		now:       time.Now,
	}
}

// Submit 提交反馈，user 为空表示匿名。已登录时未填写的联系方式取自账号
func (s *FeedbackService) Submit(ctx context.Context, user *domain.User, in FeedbackInput) (*domain.Feedback, error) {
	fb := &domain.Feedback{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Type:      in.Type,
		Content:   strings.TrimSpace(in.Content),
		CreatedAt: s.now().UTC(),
	}
	if user != nil {
		id := user.ID
		fb.UserID = &id
		if fb.Name == "" {
			fb.Name = user.DisplayName()
		}
		if fb.Email == "" {
			fb.Email = user.Email
		}
	}
	if err := fb.Validate(); err != nil {
		return nil, err
	}

	if err := s.feedbacks.Insert(ctx, fb); err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("feedback submitted",
		logger.String("feedback_id", fb.ID),
		logger.String("type", string(fb.Type)),
		logger.Bool("anonymous", fb.UserID == nil),
	)
	s.changed(ctx)
	return fb, nil
}

// List 管理员查看反馈，新的在前
func (s *FeedbackService) List(ctx context.Context, operator *domain.User) ([]domain.Feedback, error) {
	if err := requireAdmin(operator); err != nil {
		return nil, err
	}
	return s.feedbacks.List(ctx)
}

// Delete 删除反馈
func (s *FeedbackService) Delete(ctx context.Context, operator *domain.User, id string) error {
	if err := requireAdmin(operator); err != nil {
		return err
	}
	if err := s.feedbacks.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// MarkRead 标记已读
func (s *FeedbackService) MarkRead(ctx context.Context, operator *domain.User, id string) error {
	if err := requireAdmin(operator); err != nil {
		return err
	}
	if err := s.feedbacks.MarkRead(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

func (s *FeedbackService) changed(ctx context.Context) {
	if err := s.publisher.Publish(ctx, notify.TableFeedbacks); err != nil {
		s.log.WithContext(ctx).Warn("publish change failed", logger.Error(err))
	}
}
