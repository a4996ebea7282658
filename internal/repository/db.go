package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// rowScanner pgx.Row 与 pgx.Rows 共用的扫描接口
type rowScanner interface {
	Scan(dest ...any) error
}

// wrapErr 统一错误映射：无记录返回 notFound，其余视为存储故障
func wrapErr(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return domain.Unavailable(op, err)
}
