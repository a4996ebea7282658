package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

const songColumns = `id, title, artist, language, COALESCE(tags, '{}'), added_at, is_deleted`

// songRepository PostgreSQL 曲库仓储实现
type songRepository struct {
	db *pgxpool.Pool
}

// NewSongRepository 创建曲库仓储
func NewSongRepository(db *pgxpool.Pool) SongRepository {
	return &songRepository{db: db}
}

func scanSong(row rowScanner) (*domain.Song, error) {
	var s domain.Song
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Artist,
		&s.Language,
		&s.Tags,
		&s.AddedAt,
		&s.IsDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FetchAll 获取全部歌曲（含已软删除）
func (r *songRepository) FetchAll(ctx context.Context) ([]domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("fetch songs", err, nil)
	}
	defer rows.Close()

	var songs []domain.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, wrapErr("scan song", err, nil)
		}
		songs = append(songs, *s)
	}
	return songs, wrapErr("fetch songs", rows.Err(), nil)
}

// Get 根据歌号获取歌曲
func (r *songRepository) Get(ctx context.Context, id string) (*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = $1`
	s, err := scanSong(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get song", err, domain.ErrSongNotFound)
	}
	return s, nil
}

const upsertSongQuery = `
	INSERT INTO songs (id, title, artist, language, tags, added_at, is_deleted)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		artist = EXCLUDED.artist,
		language = EXCLUDED.language,
		tags = EXCLUDED.tags,
		is_deleted = EXCLUDED.is_deleted
`

func songArgs(s *domain.Song) []any {
	return []any{s.ID, s.Title, s.Artist, s.Language, s.Tags, s.AddedAt, s.IsDeleted}
}

// Upsert 新增或覆盖歌曲，added_at 以首次写入为准
func (r *songRepository) Upsert(ctx context.Context, song *domain.Song) error {
	_, err := r.db.Exec(ctx, upsertSongQuery, songArgs(song)...)
	return wrapErr("upsert song", err, nil)
}

// UpsertBatch 批量写入（使用事务）
func (r *songRepository) UpsertBatch(ctx context.Context, songs []domain.Song) error {
	if len(songs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err, nil)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range songs {
		batch.Queue(upsertSongQuery, songArgs(&songs[i])...)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range songs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return wrapErr(fmt.Sprintf("upsert song %s", songs[i].ID), err, nil)
		}
	}
	if err := results.Close(); err != nil {
		return wrapErr("close batch", err, nil)
	}

	return wrapErr("commit transaction", tx.Commit(ctx), nil)
}

// SetDeleted 软删除或恢复
func (r *songRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE songs SET is_deleted = $2 WHERE id = $1`, id, deleted)
	if err != nil {
		return wrapErr("set song deleted", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSongNotFound
	}
	return nil
}
