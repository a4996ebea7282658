package ranking

import (
	"slices"
	"time"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// Dashboard is the admin overview.
type Dashboard struct {
	WeeklyActiveUsers  int `json:"weekly_active_users"`
	MonthlyActiveUsers int `json:"monthly_active_users"`
	WeeklyRequests     int `json:"weekly_requests"`
	MonthlyRequests    int `json:"monthly_requests"`
	TotalUsers         int `json:"total_users"`
	TotalSongs         int `json:"total_songs"`
	QueueLength        int `json:"queue_length"`
}

// UserHistory returns userID's requests, newest first.
func UserHistory(requests []domain.SongRequest, userID string) []domain.SongRequest {
	var out []domain.SongRequest
	for _, r := range requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.SongRequest) int {
		return b.RequestedAt.Compare(a.RequestedAt)
	})
	return out
}

// SungHistory is UserHistory restricted to played requests.
func SungHistory(requests []domain.SongRequest, userID string) []domain.SongRequest {
	all := UserHistory(requests, userID)
	out := all[:0]
	for _, r := range all {
		if r.Status == domain.StatusPlayed {
			out = append(out, r)
		}
	}
	return out
}

// BuildDashboard computes the admin overview from a snapshot.
func BuildDashboard(songs []domain.Song, requests []domain.SongRequest, users []domain.User, now time.Time) Dashboard {
	d := Dashboard{
		WeeklyActiveUsers:  WeeklyActiveUsers(users, now),
		MonthlyActiveUsers: MonthlyActiveUsers(users, now),
		WeeklyRequests:     RequestsSince(requests, Week.Start(now)),
		MonthlyRequests:    RequestsSince(requests, Month.Start(now)),
		TotalUsers:         len(users),
	}
	for _, s := range songs {
		if s.Eligible() {
			d.TotalSongs++
		}
	}
	for _, r := range requests {
		if r.Queued() {
			d.QueueLength++
		}
	}
	return d
}
