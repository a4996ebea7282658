package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/John-Sie/YangBeiKTV/internal/classifier"
	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

func ids(songs []domain.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.ID
	}
	return out
}

func TestCatalogService_Browse(t *testing.T) {
	e := newEnv(t)

	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, ids(e.catalogSvc.Search("", "")), "soft deleted songs are hidden")
	assert.Equal(t, []string{"s2"}, ids(e.catalogSvc.Search("晴", "")))
	assert.Equal(t, []string{"s3"}, ids(e.catalogSvc.Search("", "台語")))
	assert.Empty(t, e.catalogSvc.Search("舊歌", ""))
	assert.Equal(t, []string{"台語", "國語"}, e.catalogSvc.Languages())
	assert.Len(t, e.catalogSvc.All(), 4)
	assert.Equal(t, []string{"s2"}, ids(e.catalogSvc.SongsByArtist(" 周杰倫 ")))
}

func TestCatalogService_SingersUsesClassifier(t *testing.T) {
	e := newEnv(t)
	e.catalogSvc.classifier = classifier.Func(func(name string) classifier.Category {
		if name == "周杰倫" {
			return classifier.Male
		}
		return classifier.Female
	})

	assert.Equal(t, []string{"周杰倫"}, e.catalogSvc.Singers(classifier.Male, 0))
	assert.Len(t, e.catalogSvc.Singers(classifier.Female, 0), 2)
	assert.Empty(t, e.catalogSvc.Singers(classifier.Female, 5))

	counts := e.catalogSvc.SingerCounts()
	assert.Equal(t, 1, counts[classifier.Male])
	assert.Equal(t, 2, counts[classifier.Female])
}

func TestCatalogService_UpsertAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	song := &domain.Song{ID: " s9 ", Title: " 新歌 "}
	require.NoError(t, e.catalogSvc.Upsert(ctx, song))
	assert.Equal(t, domain.DefaultArtist, song.Artist)
	assert.False(t, song.AddedAt.IsZero())

	got, ok := e.board.Song("s9")
	require.True(t, ok, "songs change refreshed the board")
	assert.Equal(t, "新歌", got.Title)

	assert.ErrorIs(t, e.catalogSvc.Upsert(ctx, &domain.Song{ID: "s10"}), domain.ErrInvalidSongTitle)

	require.NoError(t, e.catalogSvc.SoftDelete(ctx, "s1"))
	assert.NotContains(t, ids(e.catalogSvc.Search("", "")), "s1")
	_, err := e.requestSvc.SubmitByID(ctx, "s1", e.user(t, "u1"))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	require.NoError(t, e.catalogSvc.Restore(ctx, "s1"))
	_, err = e.requestSvc.SubmitByID(ctx, "s1", e.user(t, "u1"))
	assert.NoError(t, err)

	assert.ErrorIs(t, e.catalogSvc.SoftDelete(ctx, "missing"), domain.ErrSongNotFound)
	assert.ErrorIs(t, e.catalogSvc.SoftDelete(ctx, " "), domain.ErrInvalidSongID)
}

// batchSongs 让指定批次失败
type batchSongs struct {
	*repository.MemorySongRepository
	mock.Mock
}

func (b *batchSongs) UpsertBatch(ctx context.Context, songs []domain.Song) error {
	if err := b.Called(songs[0].ID).Error(0); err != nil {
		return err
	}
	return b.MemorySongRepository.UpsertBatch(ctx, songs)
}

func TestCatalogService_ImportSongs(t *testing.T) {
	ctx := context.Background()

	rows := make([]domain.Song, 0, 253)
	for i := range 250 {
		rows = append(rows, domain.Song{ID: fmt.Sprintf("%04d", i), Title: fmt.Sprintf("歌 %d", i)})
	}
	rows = append(rows, domain.Song{ID: "", Title: "沒有歌號"}, domain.Song{ID: "x1"}, domain.Song{ID: "x2", Title: "  "})

	t.Run("all batches succeed", func(t *testing.T) {
		e := newEnv(t)
		res := e.catalogSvc.ImportSongs(ctx, rows)
		assert.Equal(t, BulkResult{Succeeded: 250, Failed: 3}, res)
		assert.Len(t, e.catalogSvc.All(), 254)

		s, ok := e.board.Song("0007")
		require.True(t, ok)
		assert.Equal(t, domain.DefaultLanguage, s.Language)
	})

	t.Run("one failing batch does not fail the import", func(t *testing.T) {
		repo := &batchSongs{MemorySongRepository: repository.NewMemorySongRepository()}
		repo.On("UpsertBatch", "0100").Return(domain.Unavailable("upsert batch", errors.New("deadlock")))
		repo.On("UpsertBatch", mock.Anything).Return(nil)

		e := newEnv(t)
		svc := NewCatalogService(e.board, repo, e.ch, classifier.NewHeuristic(), logger.Nop())
		res := svc.ImportSongs(ctx, rows)
		assert.Equal(t, BulkResult{Succeeded: 150, Failed: 103}, res)
		repo.AssertNumberOfCalls(t, "UpsertBatch", 3)

		_, err := repo.Get(ctx, "0150")
		assert.ErrorIs(t, err, domain.ErrNotFound, "failed batch is all-or-nothing")
		_, err = repo.Get(ctx, "0200")
		assert.NoError(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		e := newEnv(t)
		assert.Equal(t, BulkResult{}, e.catalogSvc.ImportSongs(ctx, nil))
	})
}
