package transfer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromFilename("songs.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromFilename("songs.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseSongs_CSV(t *testing.T) {
	in := "\ufeffid,title,artist,language,tags,added_at\n" +
		"1001, 小幸運 ,田馥甄,國語,抒情|電影,2023-01-02T03:04:05Z\n" +
		"\n" +
		"1002,\"Hello, World\",,,,\n" +
		"1003\n" +
		",沒有歌號,某人\n"

	songs, err := ParseSongs(FormatCSV, strings.NewReader(in), now)
	require.NoError(t, err)
	require.Len(t, songs, 4)

	assert.Equal(t, "1001", songs[0].ID)
	assert.Equal(t, "小幸運", songs[0].Title)
	assert.Equal(t, []string{"抒情", "電影"}, songs[0].Tags)
	assert.Equal(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), songs[0].AddedAt)

	assert.Equal(t, "Hello, World", songs[1].Title)
	assert.Equal(t, domain.DefaultArtist, songs[1].Artist)
	assert.Equal(t, domain.DefaultLanguage, songs[1].Language)
	assert.Equal(t, now, songs[1].AddedAt)

	assert.ErrorIs(t, songs[2].Validate(), domain.ErrInvalidSongTitle)
	assert.ErrorIs(t, songs[3].Validate(), domain.ErrInvalidSongID)
}

func TestParseSongs_HeaderOnly(t *testing.T) {
	songs, err := ParseSongs(FormatCSV, strings.NewReader("id,title\n"), now)
	require.NoError(t, err)
	assert.Empty(t, songs)

	_, err = ParseSongs("pdf", strings.NewReader(""), now)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSongsTable_RoundTrip(t *testing.T) {
	songs := []domain.Song{
		{ID: "1001", Title: "小幸運", Artist: "田馥甄", Language: "國語", Tags: []string{"抒情"}, AddedAt: now},
		{ID: "1002", Title: "He said \"hi\", twice", Artist: "Band", Language: "英語", Tags: []string{}, AddedAt: now, IsDeleted: true},
	}

	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, SongsTable(songs).Write(&buf, format))

			back, err := ParseSongs(format, &buf, time.Time{})
			require.NoError(t, err)
			require.Len(t, back, 2)
			for i := range songs {
				assert.Equal(t, songs[i].ID, back[i].ID)
				assert.Equal(t, songs[i].Title, back[i].Title)
				assert.Equal(t, songs[i].Tags, back[i].Tags)
				assert.True(t, songs[i].AddedAt.Equal(back[i].AddedAt))
			}
		})
	}
}

func TestWriteCSV_BOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FeedbacksTable(nil).Write(&buf, FormatCSV))
	assert.True(t, strings.HasPrefix(buf.String(), "\ufeffid,user_id,"))
}

func TestUsersTable_OmitsPasswordHash(t *testing.T) {
	last := now.Add(-time.Hour)
	users := []domain.User{{
		ID: "u1", Email: "a@example.com", PasswordHash: "$argon2id$secret", Role: domain.RoleAdmin,
		LoginCount: 3, LastLogin: &last, Favorites: []string{"s1", "s2"}, CreatedAt: now,
	}}
	tbl := UsersTable(users)
	assert.NotContains(t, tbl.Headers, "password_hash")
	for _, c := range tbl.Rows[0] {
		assert.NotContains(t, c, "argon2")
	}
	assert.Equal(t, "ktv_users_backup.xlsx", tbl.Filename(FormatXLSX))

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf, FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"users"}, f.GetSheetList())
	rows, err := f.GetRows("users")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a@example.com", rows[1][1])
	assert.Equal(t, "s1|s2", rows[1][11])
}

func TestFeedbacksTable(t *testing.T) {
	uid := "u1"
	tbl := FeedbacksTable([]domain.Feedback{
		{ID: "f1", Type: domain.FeedbackPraise, Content: "讚", CreatedAt: now},
		{ID: "f2", UserID: &uid, Type: domain.FeedbackIssue, Content: "壞了", IsRead: true, CreatedAt: now},
	})
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "", tbl.Rows[0][1])
	assert.Equal(t, "u1", tbl.Rows[1][1])
	assert.Equal(t, "true", tbl.Rows[1][8])
}
