package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

const requestColumns = `id, song_id, user_id, requested_at, status, key_shift`

// requestRepository PostgreSQL 点歌仓储实现
type requestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository 创建点歌仓储
func NewRequestRepository(db *pgxpool.Pool) RequestRepository {
	return &requestRepository{db: db}
}

func scanRequest(row rowScanner) (*domain.SongRequest, error) {
	var r domain.SongRequest
	err := row.Scan(
		&r.ID,
		&r.SongID,
		&r.UserID,
		&r.RequestedAt,
		&r.Status,
		&r.KeyShift,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FetchAll 获取全部点歌记录
func (r *requestRepository) FetchAll(ctx context.Context) ([]domain.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests ORDER BY requested_at, seq`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("fetch requests", err, nil)
	}
	defer rows.Close()

	var requests []domain.SongRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, wrapErr("scan request", err, nil)
		}
		requests = append(requests, *req)
	}
	return requests, wrapErr("fetch requests", rows.Err(), nil)
}

// Get 根据ID获取点歌
func (r *requestRepository) Get(ctx context.Context, id string) (*domain.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get request", err, domain.ErrRequestNotFound)
	}
	return req, nil
}

// Insert 新增点歌
func (r *requestRepository) Insert(ctx context.Context, req *domain.SongRequest) error {
	query := `
		INSERT INTO requests (id, song_id, user_id, requested_at, status, key_shift)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		req.ID,
		req.SongID,
		req.UserID,
		req.RequestedAt,
		req.Status,
		req.KeyShift,
	)
	return wrapErr("insert request", err, nil)
}

// UpdateStatus 无条件更新状态
func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE requests SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return wrapErr("update request status", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// UpdateStatusIf 条件更新，并发下只有一方成功
func (r *requestRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE requests SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, wrapErr("update request status", err, nil)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteByUser 删除用户的全部点歌
func (r *requestRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM requests WHERE user_id = $1`, userID)
	if err != nil {
		return 0, wrapErr("delete user requests", err, nil)
	}
	return tag.RowsAffected(), nil
}
