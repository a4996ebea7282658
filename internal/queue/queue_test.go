package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

var t0 = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

func req(id string, offset time.Duration, status domain.RequestStatus) domain.SongRequest {
	return domain.SongRequest{ID: id, SongID: "s-" + id, UserID: "u1", RequestedAt: t0.Add(offset), Status: status}
}

func ids(rs []domain.SongRequest) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestDerive(t *testing.T) {
	t.Run("filters and orders by requested time", func(t *testing.T) {
		in := []domain.SongRequest{
			req("b", 2*time.Minute, domain.StatusQueued),
			req("x", 0, domain.StatusPlayed),
			req("a", time.Minute, domain.StatusQueued),
			req("y", 3*time.Minute, domain.StatusCancelled),
			req("c", 3*time.Minute, domain.StatusQueued),
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids(Derive(in)))
	})

	t.Run("equal timestamps keep input order", func(t *testing.T) {
		in := []domain.SongRequest{
			req("second", time.Minute, domain.StatusQueued),
			req("first", 0, domain.StatusQueued),
			req("tie-1", 2*time.Minute, domain.StatusQueued),
			req("tie-2", 2*time.Minute, domain.StatusQueued),
			req("tie-3", 2*time.Minute, domain.StatusQueued),
		}
		assert.Equal(t, []string{"first", "second", "tie-1", "tie-2", "tie-3"}, ids(Derive(in)))
	})

	t.Run("does not modify input", func(t *testing.T) {
		in := []domain.SongRequest{req("b", time.Minute, domain.StatusQueued), req("a", 0, domain.StatusQueued)}
		_ = Derive(in)
		assert.Equal(t, []string{"b", "a"}, ids(in))
	})

	t.Run("empty and all terminal", func(t *testing.T) {
		assert.Empty(t, Derive(nil))
		assert.Empty(t, Derive([]domain.SongRequest{req("p", 0, domain.StatusPlayed)}))
	})

	t.Run("same request set yields same queue", func(t *testing.T) {
		in := []domain.SongRequest{
			req("a", time.Minute, domain.StatusQueued),
			req("b", 0, domain.StatusQueued),
			req("c", time.Minute, domain.StatusQueued),
		}
		assert.Equal(t, Derive(in), Derive(in))
	})
}

func TestNumber(t *testing.T) {
	q := Derive([]domain.SongRequest{
		req("a", 0, domain.StatusQueued),
		req("b", time.Minute, domain.StatusQueued),
		req("c", 2*time.Minute, domain.StatusQueued),
	})
	entries := Number(q)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Position)
	}

	// removing the head shifts everyone up by one
	q[0].Status = domain.StatusPlayed
	entries = Number(Derive(q))
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Request.ID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 2, entries[1].Position)

	assert.Empty(t, Number(nil))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.RequestStatus
		target  domain.RequestStatus
		changed bool
		want    domain.RequestStatus
		err     error
	}{
		{"queued to played", domain.StatusQueued, domain.StatusPlayed, true, domain.StatusPlayed, nil},
		{"queued to cancelled", domain.StatusQueued, domain.StatusCancelled, true, domain.StatusCancelled, nil},
		{"played again is noop", domain.StatusPlayed, domain.StatusPlayed, false, domain.StatusPlayed, nil},
		{"cancelled again is noop", domain.StatusCancelled, domain.StatusCancelled, false, domain.StatusCancelled, nil},
		{"played to cancelled", domain.StatusPlayed, domain.StatusCancelled, false, domain.StatusPlayed, domain.ErrInvalidState},
		{"cancelled to played", domain.StatusCancelled, domain.StatusPlayed, false, domain.StatusCancelled, domain.ErrInvalidState},
		{"back to queued", domain.StatusPlayed, domain.StatusQueued, false, domain.StatusPlayed, domain.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := req("r", 0, tt.from)
			changed, err := Transition(&r, tt.target)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, r.Status)
		})
	}

	t.Run("missing request", func(t *testing.T) {
		_, err := Transition(nil, domain.StatusPlayed)
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
