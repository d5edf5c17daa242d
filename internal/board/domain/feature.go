package domain

import (
	"errors"
	"time"
)

// Feature statuses form a simple workflow. There is no enforced ordering;
// admins may move a feature between any two statuses.
const (
	StatusOpen       = "open"
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusDeclined   = "declined"
)

var ErrInvalidStatus = errors.New("domain: invalid feature status")

// ValidStatus reports whether s is one of the recognized feature statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusPlanned, StatusInProgress, StatusDone, StatusDeclined:
		return true
	}
	return false
}

// Feature is a single request on the board. Votes is derived from the votes
// table, never stored.
type Feature struct {
	ID          string
	Title       string
	Description string
	Status      string
	AuthorName  string
	Votes       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sort orders for feature listings.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortVotes  = "votes"
)

// FeatureFilter narrows and pages a feature listing. Zero values mean
// "no constraint"; Page is 1-based.
type FeatureFilter struct {
	Query   string
	Status  string
	Sort    string
	Page    int
	PerPage int
}

// FeaturePage is one page of a filtered listing plus the total match count
// for pagination controls.
type FeaturePage struct {
	Features []Feature
	Total    int
	Page     int
	PerPage  int
}
