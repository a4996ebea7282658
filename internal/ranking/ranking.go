// Package ranking aggregates request history into leaderboards.
//
// Every function is a pure computation over a snapshot. Rules shared by all
// leaderboards:
//   - window lower bounds are inclusive (RequestedAt >= start)
//   - equal counts keep first-seen order in the request slice
//   - results are truncated to limit first, then ids that no longer resolve
//     are dropped, so a list may be shorter than limit
package ranking

import (
	"slices"
	"time"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// DefaultLimit is the leaderboard length when limit <= 0.
const DefaultLimit = 10

// Window is a trailing time interval.
type Window string

const (
	Week  Window = "week"
	Month Window = "month"
	Year  Window = "year"
)

// ParseWindow accepts "week", "month" or "year".
func ParseWindow(s string) (Window, bool) {
	switch w := Window(s); w {
	case Week, Month, Year:
		return w, true
	}
	return "", false
}

// Start returns the window's inclusive lower bound relative to now.
// Month and Year use calendar subtraction, not a fixed number of days.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case Week:
		return now.AddDate(0, 0, -7)
	case Month:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// SongCount is one row of a song leaderboard.
type SongCount struct {
	Song  domain.Song `json:"song"`
	Count int         `json:"count"`
}

// ArtistCount is one row of the artist leaderboard.
type ArtistCount struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// RequesterCount is one row of the requester leaderboard.
type RequesterCount struct {
	User  domain.User `json:"user"`
	Count int         `json:"count"`
}

type tally struct {
	key   string
	count int
}

// countBy groups by key, skipping ok == false, and sorts by count descending.
// The stable sort over first-seen order is the tie-break.
func countBy(requests []domain.SongRequest, key func(r *domain.SongRequest) (string, bool)) []tally {
	index := make(map[string]int)
	var out []tally
	for i := range requests {
		k, ok := key(&requests[i])
		if !ok {
			continue
		}
		if j, seen := index[k]; seen {
			out[j].count++
			continue
		}
		index[k] = len(out)
		out = append(out, tally{key: k, count: 1})
	}
	slices.SortStableFunc(out, func(a, b tally) int { return b.count - a.count })
	return out
}

func normLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func truncate(t []tally, limit int) []tally {
	if len(t) > limit {
		return t[:limit]
	}
	return t
}

func since(start time.Time) func(r *domain.SongRequest) bool {
	return func(r *domain.SongRequest) bool {
		return !r.RequestedAt.Before(start)
	}
}

func resolveSongs(t []tally, songs map[string]*domain.Song) []SongCount {
	out := make([]SongCount, 0, len(t))
	for _, e := range t {
		if s, ok := songs[e.key]; ok {
			out = append(out, SongCount{Song: *s, Count: e.count})
		}
	}
	return out
}

// TopSongs counts requests at or after windowStart per song.
func TopSongs(requests []domain.SongRequest, songs []domain.Song, windowStart time.Time, limit int) []SongCount {
	in := since(windowStart)
	t := countBy(requests, func(r *domain.SongRequest) (string, bool) {
		return r.SongID, in(r)
	})
	return resolveSongs(truncate(t, normLimit(limit)), domain.SongIndex(songs))
}

// TopSongsByLanguage counts all-time requests for songs in one language.
// Language lists are sparse, so no time window applies.
func TopSongsByLanguage(requests []domain.SongRequest, songs []domain.Song, language string, limit int) []SongCount {
	idx := domain.SongIndex(songs)
	t := countBy(requests, func(r *domain.SongRequest) (string, bool) {
		s, ok := idx[r.SongID]
		return r.SongID, ok && s.Language == language
	})
	return resolveSongs(truncate(t, normLimit(limit)), idx)
}

// TopArtists counts requests at or after windowStart per resolved artist.
// Callers use the Month window.
func TopArtists(requests []domain.SongRequest, songs []domain.Song, windowStart time.Time, limit int) []ArtistCount {
	idx := domain.SongIndex(songs)
	in := since(windowStart)
	t := countBy(requests, func(r *domain.SongRequest) (string, bool) {
		s, ok := idx[r.SongID]
		if !ok || !in(r) || s.Artist == "" {
			return "", false
		}
		return s.Artist, true
	})
	t = truncate(t, normLimit(limit))

	out := make([]ArtistCount, len(t))
	for i, e := range t {
		out[i] = ArtistCount{Artist: e.key, Count: e.count}
	}
	return out
}

// TopRequesters counts all-time requests per user.
func TopRequesters(requests []domain.SongRequest, users []domain.User, limit int) []RequesterCount {
	t := countBy(requests, func(r *domain.SongRequest) (string, bool) {
		return r.UserID, r.UserID != ""
	})
	t = truncate(t, normLimit(limit))

	idx := domain.UserIndex(users)
	out := make([]RequesterCount, 0, len(t))
	for _, e := range t {
		if u, ok := idx[e.key]; ok {
			out = append(out, RequesterCount{User: *u, Count: e.count})
		}
	}
	return out
}

// ActiveUsers counts distinct users whose last login is at or after start.
func ActiveUsers(users []domain.User, start time.Time) int {
	seen := make(map[string]struct{})
	for _, u := range users {
		if u.LastLogin != nil && !u.LastLogin.Before(start) {
			seen[u.ID] = struct{}{}
		}
	}
	return len(seen)
}

// WeeklyActiveUsers is ActiveUsers over the Week window.
func WeeklyActiveUsers(users []domain.User, now time.Time) int {
	return ActiveUsers(users, Week.Start(now))
}

// MonthlyActiveUsers is ActiveUsers over the Month window.
func MonthlyActiveUsers(users []domain.User, now time.Time) int {
	return ActiveUsers(users, Month.Start(now))
}

// RequestsSince counts requests at or after start, any status.
func RequestsSince(requests []domain.SongRequest, start time.Time) int {
	in := since(start)
	n := 0
	for i := range requests {
		if in(&requests[i]) {
			n++
		}
	}
	return n
}

// PerUserStats returns how often songID was requested overall and by userID.
func PerUserStats(songID, userID string, requests []domain.SongRequest) (global, mine int) {
	for _, r := range requests {
		if r.SongID != songID {
			continue
		}
		global++
		if userID != "" && r.UserID == userID {
			mine++
		}
	}
	return global, mine
}
