package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// Table 一张待导出的表
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// SongsTable 曲库备份，列顺序与导入一致
func SongsTable(songs []domain.Song) Table {
	t := Table{
		Name:    "songs",
		Headers: []string{"id", "title", "artist", "language", "tags", "added_at", "is_deleted"},
		Rows:    make([][]string, 0, len(songs)),
	}
	for _, s := range songs {
		t.Rows = append(t.Rows, []string{
			s.ID,
			s.Title,
			s.Artist,
			s.Language,
			strings.Join(s.Tags, tagSeparator),
			formatTime(s.AddedAt),
			strconv.FormatBool(s.IsDeleted),
		})
	}
	return t
}

// UsersTable 用户备份，不含密码哈希
func UsersTable(users []domain.User) Table {
	t := Table{
		Name: "users",
		Headers: []string{
			"id", "email", "role", "name", "building", "floor", "door",
			"is_verified", "is_suspended", "login_count", "last_login",
			"favorites", "theme_preference", "created_at",
		},
		Rows: make([][]string, 0, len(users)),
	}
	for _, u := range users {
		lastLogin := ""
		if u.LastLogin != nil {
			lastLogin = formatTime(*u.LastLogin)
		}
		t.Rows = append(t.Rows, []string{
			u.ID,
			u.Email,
			string(u.Role),
			u.Name,
			u.Building,
			u.Floor,
			u.Door,
			strconv.FormatBool(u.IsVerified),
			strconv.FormatBool(u.IsSuspended),
			strconv.Itoa(u.LoginCount),
			lastLogin,
			strings.Join(u.Favorites, tagSeparator),
			u.ThemePreference,
			formatTime(u.CreatedAt),
		})
	}
	return t
}

// FeedbacksTable 意见反馈备份
func FeedbacksTable(feedbacks []domain.Feedback) Table {
	t := Table{
		Name:    "feedbacks",
		Headers: []string{"id", "user_id", "name", "email", "phone", "type", "content", "created_at", "is_read"},
		Rows:    make([][]string, 0, len(feedbacks)),
	}
	for _, fb := range feedbacks {
		userID := ""
		if fb.UserID != nil {
			userID = *fb.UserID
		}
		t.Rows = append(t.Rows, []string{
			fb.ID,
			userID,
			fb.Name,
			fb.Email,
			fb.Phone,
			string(fb.Type),
			fb.Content,
			formatTime(fb.CreatedAt),
			strconv.FormatBool(fb.IsRead),
		})
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Filename 下载文件名，例如 ktv_songs_backup.csv
func (t Table) Filename(format Format) string {
	return fmt.Sprintf("ktv_%s_backup.%s", t.Name, format)
}

// Write 按格式写出
func (t Table) Write(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		return t.writeCSV(w)
	case FormatXLSX:
		return t.writeXLSX(w)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (t Table) writeCSV(w io.Writer) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func (t Table) writeXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Name
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &t.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(t.Headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(t.Headers))
		_ = f.SetColWidth(sheet, "A", last, 15)

		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		})
		if err == nil {
			_ = f.SetCellStyle(sheet, "A1", last+"1", headerStyle)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
