// Package queue derives the live song queue and owns the request state rules.
package queue

import (
	"slices"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// Entry is a queued request with its 1-based position.
type Entry struct {
	Position int                `json:"position"`
	Request  domain.SongRequest `json:"request"`
}

// Derive returns the queued requests ordered by RequestedAt ascending.
// Ties keep their input order. The input slice is not modified.
func Derive(requests []domain.SongRequest) []domain.SongRequest {
	out := make([]domain.SongRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == domain.StatusQueued {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.SongRequest) int {
		return a.RequestedAt.Compare(b.RequestedAt)
	})
	return out
}

// Number assigns positions 1..n. Positions are never stored.
func Number(queue []domain.SongRequest) []Entry {
	entries := make([]Entry, len(queue))
	for i, r := range queue {
		entries[i] = Entry{Position: i + 1, Request: r}
	}
	return entries
}

// Transition applies target to req following the state machine
//
//	queued -> played
//	queued -> cancelled
//
// Repeating the current terminal state is a no-op (changed == false).
// Any other move out of a terminal state is ErrInvalidState.
func Transition(req *domain.SongRequest, target domain.RequestStatus) (changed bool, err error) {
	if req == nil {
		return false, domain.ErrRequestNotFound
	}
	if !target.Terminal() {
		return false, domain.ErrInvalidStatus
	}
	if req.Status == target {
		return false, nil
	}
	if req.Status != domain.StatusQueued {
		return false, domain.ErrInvalidState
	}
	req.Status = target
	return true, nil
}
