package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// 曲库文件列顺序：歌号, 歌名, 歌手, 语言, 标签, 加入时间
const (
	colID = iota
	colTitle
	colArtist
	colLanguage
	colTags
	colAddedAt
)

// tagSeparator 标签在单元格内的分隔符
const tagSeparator = "|"

// ParseSongs 读取曲库文件。第一行为表头；空行跳过。
// 缺少歌号或歌名的行原样返回，由调用方计为失败。
func ParseSongs(format Format, r io.Reader, now time.Time) ([]domain.Song, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	songs := make([]domain.Song, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		songs = append(songs, songFromRow(row, now))
	}
	return songs, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func songFromRow(row []string, now time.Time) domain.Song {
	s := domain.Song{
		ID:       cell(row, colID),
		Title:    cell(row, colTitle),
		Artist:   cell(row, colArtist),
		Language: cell(row, colLanguage),
		Tags:     splitTags(cell(row, colTags)),
		AddedAt:  now,
	}
	if v := cell(row, colAddedAt); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			s.AddedAt = t
		}
	}
	s.Normalize()
	return s
}

func splitTags(v string) []string {
	if v == "" {
		return []string{}
	}
	parts := strings.Split(v, tagSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
