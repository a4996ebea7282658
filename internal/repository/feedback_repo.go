package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// feedbackRepository PostgreSQL 意见反馈仓储实现
type feedbackRepository struct {
	db *pgxpool.Pool
}

// NewFeedbackRepository 创建意见反馈仓储
func NewFeedbackRepository(db *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// List 获取全部反馈
func (r *feedbackRepository) List(ctx context.Context) ([]domain.Feedback, error) {
	query := `
		SELECT id, user_id, name, email, phone, type, content, created_at, is_read
		FROM feedbacks
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list feedbacks", err, nil)
	}
	defer rows.Close()

	var list []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		err := rows.Scan(
			&fb.ID,
			&fb.UserID,
			&fb.Name,
			&fb.Email,
			&fb.Phone,
			&fb.Type,
			&fb.Content,
			&fb.CreatedAt,
			&fb.IsRead,
		)
		if err != nil {
			return nil, wrapErr("scan feedback", err, nil)
		}
		list = append(list, fb)
	}
	return list, wrapErr("list feedbacks", rows.Err(), nil)
}

// Insert 新增反馈
func (r *feedbackRepository) Insert(ctx context.Context, fb *domain.Feedback) error {
	query := `
		INSERT INTO feedbacks (id, user_id, name, email, phone, type, content, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		fb.ID,
		fb.UserID,
		fb.Name,
		fb.Email,
		fb.Phone,
		fb.Type,
		fb.Content,
		fb.CreatedAt,
		fb.IsRead,
	)
	return wrapErr("insert feedback", err, nil)
}

// Delete 删除反馈
func (r *feedbackRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM feedbacks WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete feedback", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFeedbackNotFound
	}
	return nil
}

// MarkRead 标记已读
func (r *feedbackRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE feedbacks SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return wrapErr("mark feedback read", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFeedbackNotFound
	}
	return nil
}
