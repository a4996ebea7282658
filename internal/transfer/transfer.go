// Package transfer 曲库导入与备份导出，支持 CSV 和 XLSX
package transfer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format 文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// utf8BOM 让 Excel 以 UTF-8 打开 CSV
const utf8BOM = "\ufeff"

// ErrUnsupportedFormat 不支持的文件格式
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseFormat 解析格式名，不区分大小写
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromFilename 按扩展名判断格式
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ContentType 下载时使用的 MIME 类型
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
