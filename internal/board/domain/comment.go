package domain

import "time"

// Comment is a note attached to a feature. ParentID is set for replies; a
// nil ParentID marks a top-level comment.
type Comment struct {
	ID         string
	FeatureID  string
	ParentID   *string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
